package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ntentasd/aggregator-api/internal/metrics"
	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

// Supervisor periodically scans the result store for records stuck in
// the processing state. A record can stay there forever if the process
// died before the terminal write; the supervisor cannot repair that,
// but it makes it visible instead of silent.
type Supervisor struct {
	Results   store.ResultStore
	Interval  time.Duration
	Threshold time.Duration
	Logger    zerolog.Logger

	cancelCtx context.CancelFunc
}

// NewSupervisor creates a new background worker for stuck-job detection.
func NewSupervisor(results store.ResultStore, interval, threshold time.Duration, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		Results:   results,
		Interval:  interval,
		Threshold: threshold,
		Logger:    logger,
	}
}

func (s *Supervisor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancelCtx = cancel

	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.Logger.Info().Msg("supervisor started")

		for {
			select {
			case <-ctx.Done():
				s.Logger.Info().Msg("supervisor stopped")
				return
			case <-ticker.C:
				if err := s.checkStuckRecords(ctx); err != nil {
					s.Logger.Error().Err(err).Msg("supervisor scan failed")
				}
			}
		}
	}()
}

// Stop gracefully stops the background worker.
func (s *Supervisor) Stop() {
	if s.cancelCtx != nil {
		s.cancelCtx()
	}
}

func (s *Supervisor) checkStuckRecords(ctx context.Context) error {
	records, err := s.Results.Scan(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-s.Threshold)
	stuck := 0
	for _, record := range records {
		if record.Status != types.StatusProcessing {
			continue
		}
		if record.UploadedAt.After(cutoff) {
			continue
		}
		stuck++
		s.Logger.Warn().
			Str("file_id", record.FileID).
			Time("uploaded_at", record.UploadedAt).
			Msg("record stuck in processing state")
	}

	metrics.JobsStuckProcessing.Set(float64(stuck))
	return nil
}
