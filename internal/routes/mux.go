// Package routes
package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ntentasd/aggregator-api/internal/web"
	"github.com/ntentasd/aggregator-api/pkg/utils"
)

func NewMux(app *App) http.Handler {
	mux := http.NewServeMux()

	// health check
	mux.HandleFunc("GET /health", healthHandler)

	// metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// upload + query
	mux.HandleFunc("POST /files", app.uploadHandler)
	mux.HandleFunc("GET /files/{file_id}", app.resultHandler)

	// browser pages
	ui := web.New(app.Results, app.Logger)
	mux.HandleFunc("GET /ui", ui.IndexHandler)
	mux.HandleFunc("GET /ui/files/{file_id}", ui.DetailHandler)

	return utils.WithCORS(mux)
}
