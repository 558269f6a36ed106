// Package store persists ProcessingResult records keyed by file_id.
// The store is a passive key-value collaborator: it enforces no
// business invariants beyond overwrite-by-key, and every read returns
// a detached copy.
package store

import (
	"context"
	"fmt"

	"github.com/ntentasd/aggregator-api/pkg/types"
)

type ResultStore interface {
	// Put overwrites the record keyed by its FileID. Safe under
	// concurrent calls from different jobs.
	Put(ctx context.Context, record *types.ProcessingResult) error

	// Get returns a detached copy of the record, or NotFoundError.
	Get(ctx context.Context, fileID string) (*types.ProcessingResult, error)

	// Scan returns detached copies of all records in unspecified order.
	Scan(ctx context.Context) ([]*types.ProcessingResult, error)

	Close()
}

type NotFoundError struct {
	FileID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no processing result found for file_id '%s'", e.FileID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
