package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var _ Cache = (*Valkey)(nil)

type Valkey struct {
	client  *redis.ClusterClient
	metrics *CacheMetrics
}

func NewValkey(addrs []string) *Valkey {
	opts := &redis.ClusterOptions{
		Addrs:       addrs,
		DialTimeout: 2 * time.Second,
	}
	client := redis.NewClusterClient(opts)
	cm := NewCacheMetrics("valkey")
	return &Valkey{client, cm}
}

func (v *Valkey) StoreResult(ctx context.Context, key string, data any, ttl time.Duration) error {
	ctx, span := otel.Tracer("aggregator-cache").Start(ctx, "cache.StoreResult")
	defer span.End()

	span.SetAttributes(
		attribute.String("cache.driver", "valkey"),
		attribute.String("cache.key", key),
		attribute.Int64("cache.ttl", int64(ttl.Seconds())),
	)

	ctx, cancel := context.WithTimeout(
		ctx,
		time.Millisecond*200,
	)
	defer cancel()

	b, err := json.Marshal(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	start := time.Now()
	if err := v.client.Set(ctx, key, b, ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to store result: %w", err)
	}
	v.metrics.RecordWrite(start)
	span.SetStatus(codes.Ok, "")

	return nil
}

func (v *Valkey) FetchResult(ctx context.Context, key string) ([]byte, error) {
	ctx, span := otel.Tracer("aggregator-cache").Start(ctx, "cache.FetchResult")
	defer span.End()

	span.SetAttributes(
		attribute.String("cache.driver", "valkey"),
		attribute.String("cache.key", key),
	)

	ctx, cancel := context.WithTimeout(
		ctx,
		time.Millisecond*100,
	)
	defer cancel()

	start := time.Now()
	val, err := v.client.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		v.metrics.RecordMiss()
		span.SetAttributes(attribute.String("cache.result", "miss"))
		span.SetStatus(codes.Ok, "")
		return nil, ErrCacheMiss
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("cache fetch: %w", err)
	default:
		v.metrics.RecordHit(start)
		span.SetAttributes(attribute.String("cache.result", "hit"))
		span.SetStatus(codes.Ok, "")
		return val, nil
	}
}

func (v *Valkey) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *Valkey) Close() {
	v.client.Close()
}
