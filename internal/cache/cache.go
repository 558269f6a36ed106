// Package cache holds terminal processing results so the query path
// can skip the result store for records that will never change again.
package cache

import (
	"context"
	"time"
)

// Cache defines the terminal-result caching for the api.
type Cache interface {
	// StoreResult caches a terminal record with a TTL
	StoreResult(ctx context.Context, key string, data any, ttl time.Duration) error

	// FetchResult retrieves a cached record
	FetchResult(ctx context.Context, key string) ([]byte, error)

	// Ping checks cache connection
	Ping(ctx context.Context) error

	// Close gracefully closes any connections
	Close()
}
