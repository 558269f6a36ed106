package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

func TestSupervisor_DetectsStuckRecords(t *testing.T) {
	results, err := store.NewMemoryStore("test", "")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, results.Put(ctx, &types.ProcessingResult{
		FileID:     "stuck",
		Status:     types.StatusProcessing,
		UploadedAt: time.Now().UTC().Add(-time.Hour),
	}))
	require.NoError(t, results.Put(ctx, &types.ProcessingResult{
		FileID:     "fresh",
		Status:     types.StatusProcessing,
		UploadedAt: time.Now().UTC(),
	}))
	require.NoError(t, results.Put(ctx, &types.ProcessingResult{
		FileID:     "done",
		Status:     types.StatusProcessed,
		UploadedAt: time.Now().UTC().Add(-time.Hour),
	}))

	s := NewSupervisor(results, time.Second, 10*time.Minute, zerolog.Nop())
	assert.NoError(t, s.checkStuckRecords(ctx))
}

func TestSupervisor_StartStop(t *testing.T) {
	results, err := store.NewMemoryStore("test", "")
	require.NoError(t, err)

	s := NewSupervisor(results, 10*time.Millisecond, time.Minute, zerolog.Nop())
	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
}
