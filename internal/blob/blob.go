// Package blob provides key-addressed byte storage for raw uploads.
// The default bucket keeps objects in memory and mirrors them to disk
// so the processing side can stream them back without materializing
// the whole object.
package blob

import (
	"context"
	"fmt"
	"io"
)

// Bucket is the storage contract for raw CSV objects. Put overwrites by
// key. Open returns a sequential reader over the object bytes; the
// caller must close it.
type Bucket interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context) ([]string, error)
}

type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object '%s' not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
