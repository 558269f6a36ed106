package routes

import (
	"github.com/rs/zerolog"

	"github.com/ntentasd/aggregator-api/internal/cache"
	"github.com/ntentasd/aggregator-api/internal/processor"
	"github.com/ntentasd/aggregator-api/internal/store"
)

type App struct {
	Processor *processor.Processor
	Results   store.ResultStore
	Cache     cache.Cache
	Logger    zerolog.Logger
}

func New(p *processor.Processor, results store.ResultStore, c cache.Cache, logger zerolog.Logger) *App {
	return &App{
		Processor: p,
		Results:   results,
		Cache:     c,
		Logger:    logger,
	}
}
