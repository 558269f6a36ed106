package processor

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntentasd/aggregator-api/internal/blob"
	"github.com/ntentasd/aggregator-api/internal/events"
	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

func newTestProcessor(t *testing.T, workers int) (*Processor, *store.MemoryStore) {
	t.Helper()
	bucket, err := blob.NewMemoryBucket("test", "")
	require.NoError(t, err)
	results, err := store.NewMemoryStore("test", "")
	require.NoError(t, err)
	p := New(bucket, results, events.NewNoop(), zerolog.Nop(), workers)
	t.Cleanup(p.Shutdown)
	return p, results
}

func enqueueAndWait(t *testing.T, p *Processor, content string) *types.ProcessingResult {
	t.Helper()
	fileID, err := p.Enqueue(context.Background(), "data.csv", []byte(content))
	require.NoError(t, err)
	p.Wait()

	result, err := p.FetchResult(context.Background(), fileID)
	require.NoError(t, err)
	return result
}

func TestProcessor_SuccessfulProcessing(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	result := enqueueAndWait(t, p, "sensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,1.0\nsensor-2,2024-01-01T00:01:00Z,2.5\n")

	assert.Equal(t, types.StatusProcessed, result.Status)
	require.NotNil(t, result.Aggregates)
	assert.Equal(t, uint(2), result.Aggregates.RowCount)
	assert.Equal(t, 1.0, *result.Aggregates.MinValue)
	assert.Equal(t, 2.5, *result.Aggregates.MaxValue)
	assert.Equal(t, 1.75, *result.Aggregates.MeanValue)
	assert.Equal(t, map[string]uint{"sensor-1": 1, "sensor-2": 1}, result.Aggregates.PerSensorCount)
	assert.Empty(t, result.Errors)

	require.NotNil(t, result.ProcessedAt)
	require.NotNil(t, result.ProcessingMS)
	assert.GreaterOrEqual(t, *result.ProcessingMS, int64(0))
	assert.False(t, result.UploadedAt.IsZero())
	assert.False(t, result.ProcessedAt.Before(result.UploadedAt))
}

func TestProcessor_PartialProcessing(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	result := enqueueAndWait(t, p, "sensor_id,timestamp,value\n"+
		"sensor-a,2024-01-01T00:00:00Z,3.0\n"+
		" ,2024-01-01T01:00:00Z,1\n"+
		"sensor-b,invalid,2\n"+
		"sensor-c,2024-01-01T02:00:00Z,not-a-number\n")

	assert.Equal(t, types.StatusPartial, result.Status)
	require.NotNil(t, result.Aggregates)
	assert.Equal(t, uint(1), result.Aggregates.RowCount)
	assert.Equal(t, map[string]uint{"sensor-a": 1}, result.Aggregates.PerSensorCount)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, []types.ProcessingError{
		{RowNumber: 3, Reason: "missing sensor_id"},
		{RowNumber: 4, Reason: "invalid timestamp"},
		{RowNumber: 5, Reason: "invalid numeric value"},
	}, result.Errors)
}

func TestProcessor_AllRowsRejected(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	result := enqueueAndWait(t, p, "sensor_id,timestamp,value\n"+
		",2024-01-01T00:00:00Z,1\n"+
		"sensor-b,bad,2\n")

	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Nil(t, result.Aggregates)
	assert.Len(t, result.Errors, 2)
}

func TestProcessor_MissingRequiredColumns(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	result := enqueueAndWait(t, p, "sensor,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,1.0\n")

	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Nil(t, result.Aggregates)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, uint(1), result.Errors[0].RowNumber)
	assert.Equal(t, "CSV missing required columns: sensor_id", result.Errors[0].Reason)
}

func TestProcessor_HeaderOnlyIsProcessed(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	result := enqueueAndWait(t, p, "sensor_id,timestamp,value\n")

	assert.Equal(t, types.StatusProcessed, result.Status)
	require.NotNil(t, result.Aggregates)
	assert.Equal(t, uint(0), result.Aggregates.RowCount)
	assert.Nil(t, result.Aggregates.MinValue)
	assert.Empty(t, result.Errors)
}

func TestProcessor_EmptyUploadRejected(t *testing.T) {
	p, results := newTestProcessor(t, 1)

	_, err := p.Enqueue(context.Background(), "empty.csv", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	records, err := results.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records, "no record may be written for a rejected upload")
}

func TestProcessor_FetchUnknownFileID(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	_, err := p.FetchResult(context.Background(), "does-not-exist")
	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Error(), "does-not-exist")
}

func TestProcessor_FetchResultIsIdempotent(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	fileID, err := p.Enqueue(context.Background(), "data.csv", []byte("sensor_id,timestamp,value\ns,2024-01-01T00:00:00Z,1\n"))
	require.NoError(t, err)
	p.Wait()

	first, err := p.FetchResult(context.Background(), fileID)
	require.NoError(t, err)
	second, err := p.FetchResult(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// getFailingBucket proves the pipeline streams the object instead of
// materializing it.
type getFailingBucket struct {
	blob.Bucket
}

func (b *getFailingBucket) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("processor must stream without loading the whole object")
}

func TestProcessor_StreamsWithoutGet(t *testing.T) {
	inner, err := blob.NewMemoryBucket("test", t.TempDir())
	require.NoError(t, err)
	results, err := store.NewMemoryStore("test", "")
	require.NoError(t, err)
	p := New(&getFailingBucket{inner}, results, events.NewNoop(), zerolog.Nop(), 1)
	t.Cleanup(p.Shutdown)

	result := enqueueAndWait(t, p, "sensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,1.0\nsensor-2,2024-01-01T00:01:00+00:00,2.0\n")

	assert.Equal(t, types.StatusProcessed, result.Status)
	require.NotNil(t, result.Aggregates)
	assert.Equal(t, uint(2), result.Aggregates.RowCount)
}

// brokenStreamBucket returns a reader that yields the header and then
// fails mid-stream.
type brokenStreamBucket struct {
	blob.Bucket
}

type brokenReader struct {
	header io.Reader
	done   bool
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.done {
		n, err := r.header.Read(p)
		if err == io.EOF {
			r.done = true
			return n, nil
		}
		return n, err
	}
	return 0, errors.New("disk exploded")
}

func (b *brokenStreamBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(&brokenReader{header: strings.NewReader("sensor_id,timestamp,value\n")}), nil
}

func TestProcessor_UnexpectedFailureWritesFailedRecord(t *testing.T) {
	inner, err := blob.NewMemoryBucket("test", "")
	require.NoError(t, err)
	results, err := store.NewMemoryStore("test", "")
	require.NoError(t, err)
	p := New(&brokenStreamBucket{inner}, results, events.NewNoop(), zerolog.Nop(), 1)
	t.Cleanup(p.Shutdown)

	result := enqueueAndWait(t, p, "sensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,1.0\n")

	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Nil(t, result.Aggregates)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, uint(1), result.Errors[0].RowNumber)
	assert.Contains(t, result.Errors[0].Reason, "disk exploded")
}

// slowBucket delays each Open to make per-file processing time
// measurable.
type slowBucket struct {
	blob.Bucket
	delay time.Duration
}

func (b *slowBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	time.Sleep(b.delay)
	return b.Bucket.Open(ctx, key)
}

func TestProcessor_JobsRunInParallel(t *testing.T) {
	const (
		files = 4
		delay = 150 * time.Millisecond
	)

	inner, err := blob.NewMemoryBucket("test", "")
	require.NoError(t, err)
	results, err := store.NewMemoryStore("test", "")
	require.NoError(t, err)
	p := New(&slowBucket{inner, delay}, results, events.NewNoop(), zerolog.Nop(), files)
	t.Cleanup(p.Shutdown)

	start := time.Now()
	var wg sync.WaitGroup
	fileIDs := make([]string, files)
	for i := 0; i < files; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fileID, err := p.Enqueue(context.Background(), "data.csv", []byte("sensor_id,timestamp,value\ns,2024-01-01T00:00:00Z,1\n"))
			assert.NoError(t, err)
			fileIDs[n] = fileID
		}(i)
	}
	wg.Wait()
	p.Wait()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Duration(files)*delay,
		"jobs must overlap: %v elapsed for %d files with %v per-file delay", elapsed, files, delay)

	seen := make(map[string]bool)
	for _, fileID := range fileIDs {
		result, err := p.FetchResult(context.Background(), fileID)
		require.NoError(t, err)
		assert.Equal(t, types.StatusProcessed, result.Status)
		assert.False(t, seen[fileID], "file_ids must be unique")
		seen[fileID] = true
	}
}

func TestProcessor_ShutdownIsIdempotent(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	p.Shutdown()
	p.Shutdown()

	_, err := p.Enqueue(context.Background(), "data.csv", []byte("sensor_id,timestamp,value\n"))
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestProcessor_UploadedAtPreserved(t *testing.T) {
	p, _ := newTestProcessor(t, 1)

	before := time.Now().UTC()
	fileID, err := p.Enqueue(context.Background(), "data.csv", []byte("sensor_id,timestamp,value\ns,2024-01-01T00:00:00Z,1\n"))
	require.NoError(t, err)
	p.Wait()
	after := time.Now().UTC()

	result, err := p.FetchResult(context.Background(), fileID)
	require.NoError(t, err)
	assert.False(t, result.UploadedAt.Before(before))
	assert.False(t, result.UploadedAt.After(after))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"data.csv":            "data.csv",
		"../../etc/passwd":    "passwd",
		"dir/sub/file.csv":    "file.csv",
		"C:\\temp\\file.csv":  "file.csv",
		"":                    "upload.csv",
		".":                   "upload.csv",
		"..":                  "upload.csv",
		"  spaced name.csv  ": "spaced name.csv",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}
