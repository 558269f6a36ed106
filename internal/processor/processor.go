// Package processor drives the upload-to-result pipeline: it accepts
// raw CSV bytes, assigns file identifiers, runs bounded-concurrency
// background jobs that stream, validate, and aggregate rows, and
// publishes a terminal record for every job.
//
// Operational caveat: if the process dies between the "processing"
// write and the terminal write, the record stays in processing forever.
// Recovery on restart is out of scope; the supervisor makes such
// records visible.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ntentasd/aggregator-api/internal/aggregate"
	"github.com/ntentasd/aggregator-api/internal/blob"
	"github.com/ntentasd/aggregator-api/internal/csvio"
	"github.com/ntentasd/aggregator-api/internal/events"
	"github.com/ntentasd/aggregator-api/internal/metrics"
	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

var (
	ErrEmptyInput   = errors.New("uploaded file is empty")
	ErrShuttingDown = errors.New("processor is shutting down")
)

// Processor coordinates the blob store, the result store, and the
// worker pool. It is the sole writer of ProcessingResult records and is
// safe for concurrent use without external locking.
type Processor struct {
	bucket    blob.Bucket
	results   store.ResultStore
	publisher events.Publisher
	logger    zerolog.Logger

	sem chan struct{}

	mu     sync.Mutex
	jobs   map[string]context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

func New(bucket blob.Bucket, results store.ResultStore, publisher events.Publisher, logger zerolog.Logger, workers int) *Processor {
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		bucket:    bucket,
		results:   results,
		publisher: publisher,
		logger:    logger,
		sem:       make(chan struct{}, workers),
		jobs:      make(map[string]context.CancelFunc),
	}
}

// Enqueue stores the raw bytes, writes the initial record, and submits
// a background job. It returns as soon as the two synchronous writes
// are done; the caller polls FetchResult for completion.
func (p *Processor) Enqueue(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyInput
	}

	fileID := uuid.NewString()
	key := fileID + "/" + sanitizeFilename(filename)

	if err := p.bucket.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	uploadedAt := time.Now().UTC()
	record := &types.ProcessingResult{
		FileID:     fileID,
		Status:     types.StatusUploaded,
		UploadedAt: uploadedAt,
		Errors:     []types.ProcessingError{},
	}
	if err := p.results.Put(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store initial record: %w", err)
	}

	if err := p.submit(fileID, key, uploadedAt); err != nil {
		return "", err
	}

	p.logger.Info().
		Str("file_id", fileID).
		Str("object_key", key).
		Msg("upload accepted")

	return fileID, nil
}

// FetchResult returns a snapshot copy of the current record, or
// store.NotFoundError when the file_id is unknown.
func (p *Processor) FetchResult(ctx context.Context, fileID string) (*types.ProcessingResult, error) {
	return p.results.Get(ctx, fileID)
}

// Shutdown stops accepting new work and best-effort cancels in-flight
// jobs. It never blocks on job completion and is safe to call more
// than once.
func (p *Processor) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for fileID, cancel := range p.jobs {
		p.logger.Debug().Str("file_id", fileID).Msg("cancelling in-flight job")
		cancel()
	}
}

// Wait blocks until every submitted job has finished. Intended for
// tests and orderly drains, not for the Shutdown path.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) submit(fileID, key string, uploadedAt time.Time) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrShuttingDown
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	p.jobs[fileID] = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.jobs, fileID)
			p.mu.Unlock()
			cancel()
		}()

		select {
		case p.sem <- struct{}{}:
		case <-jobCtx.Done():
			return
		}
		defer func() { <-p.sem }()

		p.processFile(jobCtx, fileID, key, uploadedAt)
	}()

	return nil
}

// processFile runs the per-job pipeline. Every failure mode below the
// job boundary folds into a terminal "failed" record; nothing
// propagates to the worker.
func (p *Processor) processFile(ctx context.Context, fileID, key string, uploadedAt time.Time) {
	ctx, span := otel.Tracer("aggregator-processor").Start(ctx, "processor.processFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("file.id", fileID),
		attribute.String("object.key", key),
	)

	processing := &types.ProcessingResult{
		FileID:     fileID,
		Status:     types.StatusProcessing,
		UploadedAt: uploadedAt,
		Errors:     []types.ProcessingError{},
	}
	if err := p.results.Put(ctx, processing); err != nil {
		p.logger.Error().Err(err).Str("file_id", fileID).Msg("failed to mark record processing")
	}

	start := time.Now()
	aggregates, rowErrors, runErr := p.run(ctx, key)
	elapsed := time.Since(start)

	var status types.ProcessingStatus
	switch {
	case runErr != nil:
		status = types.StatusFailed
		aggregates = nil
		rowErrors = []types.ProcessingError{{RowNumber: 1, Reason: runErr.Error()}}
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	case aggregates.RowCount == 0 && len(rowErrors) > 0:
		status = types.StatusFailed
		aggregates = nil
	case len(rowErrors) > 0:
		status = types.StatusPartial
	default:
		status = types.StatusProcessed
	}
	if runErr == nil {
		span.SetStatus(codes.Ok, "")
	}

	processedAt := time.Now().UTC()
	processingMS := elapsed.Milliseconds()
	if rowErrors == nil {
		rowErrors = []types.ProcessingError{}
	}
	terminal := &types.ProcessingResult{
		FileID:       fileID,
		Status:       status,
		UploadedAt:   uploadedAt,
		ProcessedAt:  &processedAt,
		ProcessingMS: &processingMS,
		Aggregates:   aggregates,
		Errors:       rowErrors,
	}

	// The terminal write must land even when the job context was
	// cancelled, so it runs on a fresh context.
	if err := p.results.Put(context.Background(), terminal); err != nil {
		p.logger.Error().Err(err).Str("file_id", fileID).Msg("failed to store terminal record")
		return
	}

	metrics.JobsCompletedTotal.WithLabelValues(string(status)).Inc()
	metrics.JobDurationSeconds.Observe(elapsed.Seconds())
	if aggregates != nil {
		metrics.RowsAcceptedTotal.Add(float64(aggregates.RowCount))
	}
	metrics.RowsRejectedTotal.Add(float64(len(rowErrors)))

	event := p.logger.Info()
	if status == types.StatusFailed {
		event = p.logger.Warn()
	}
	logCtx := event.
		Str("file_id", fileID).
		Str("status", string(status)).
		Int64("processing_ms", processingMS).
		Int("error_count", len(rowErrors))
	if aggregates != nil {
		logCtx = logCtx.Uint("row_count", aggregates.RowCount)
	}
	logCtx.Msg("processing finished")

	if err := p.publisher.PublishResult(terminal); err != nil {
		p.logger.Warn().Err(err).Str("file_id", fileID).Msg("failed to publish result event")
	}
}

// run streams the object through the parser, partitioning rows into
// aggregated readings and collected errors. A returned error is a
// structural or unexpected failure for the whole file.
func (p *Processor) run(ctx context.Context, key string) (*types.Aggregates, []types.ProcessingError, error) {
	rc, err := p.bucket.Open(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	reader, err := csvio.NewReader(rc)
	if err != nil {
		return nil, nil, err
	}

	acc := aggregate.New()
	var rowErrors []types.ProcessingError
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		if row.Err != nil {
			rowErrors = append(rowErrors, *row.Err)
			continue
		}
		acc.Add(*row.Reading)
	}

	return acc.Summary(), rowErrors, nil
}

// sanitizeFilename strips any path components so the blob key stays
// flat under the file_id prefix.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "upload.csv"
	}
	return name
}
