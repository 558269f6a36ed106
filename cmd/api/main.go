package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ntentasd/aggregator-api/internal/blob"
	"github.com/ntentasd/aggregator-api/internal/cache"
	"github.com/ntentasd/aggregator-api/internal/config"
	"github.com/ntentasd/aggregator-api/internal/events"
	"github.com/ntentasd/aggregator-api/internal/processor"
	"github.com/ntentasd/aggregator-api/internal/routes"
	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/internal/tracing"
	"github.com/ntentasd/aggregator-api/internal/worker"
)

func main() {
	settings := config.Load()

	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	shutdownTracer := tracing.InitTracer()
	defer shutdownTracer(context.Background())

	bucket, err := buildBucket(settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize blob store")
	}

	results, err := buildResultStore(settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize result store")
	}
	defer results.Close()

	resultCache := buildCache(settings)
	defer resultCache.Close()

	publisher, err := buildPublisher(settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize event publisher")
	}
	defer publisher.Close()

	proc := processor.New(bucket, results, publisher, logger, settings.ProcessorWorkers)
	defer proc.Shutdown()

	sv := worker.NewSupervisor(results, 30*time.Second, 5*time.Minute, logger)
	sv.Start(context.Background())
	defer sv.Stop()

	app := routes.New(proc, results, resultCache, logger)
	mux := routes.NewMux(app)

	server := &http.Server{
		Addr:    settings.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		proc.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", settings.ListenAddr).
		Int("workers", settings.ProcessorWorkers).
		Msg("listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func buildBucket(settings config.Settings) (blob.Bucket, error) {
	if settings.S3Endpoint != "" {
		return blob.NewS3Bucket(
			settings.S3Endpoint,
			settings.S3AccessKey,
			settings.S3SecretKey,
			settings.S3Bucket,
		)
	}
	return blob.NewMemoryBucket(settings.BucketName, settings.BucketRootPath)
}

func buildResultStore(settings config.Settings) (store.ResultStore, error) {
	if len(settings.ScyllaNodes) > 0 {
		return store.NewScyllaStore(settings.ScyllaNodes, "aggregator", settings.TableName)
	}
	return store.NewMemoryStore(settings.TableName, settings.TablePersistencePath)
}

func buildCache(settings config.Settings) cache.Cache {
	switch {
	case len(settings.ValkeyNodes) > 0:
		return cache.NewValkey(settings.ValkeyNodes)
	case settings.MemcachedAddr != "":
		return cache.NewMemcached(settings.MemcachedAddr)
	default:
		return cache.NewNoop()
	}
}

func buildPublisher(settings config.Settings) (events.Publisher, error) {
	if len(settings.KafkaBrokers) > 0 {
		return events.NewKafkaPublisher(settings.KafkaBrokers)
	}
	return events.NewNoop(), nil
}
