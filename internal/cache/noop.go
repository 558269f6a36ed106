package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by FetchResult when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

var _ Cache = (*Noop)(nil)

// Noop is used when no cache backend is configured; every fetch is a
// miss and every store is dropped.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) StoreResult(ctx context.Context, key string, data any, ttl time.Duration) error {
	return nil
}

func (n *Noop) FetchResult(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (n *Noop) Ping(ctx context.Context) error {
	return nil
}

func (n *Noop) Close() {}
