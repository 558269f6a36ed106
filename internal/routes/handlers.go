package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ntentasd/aggregator-api/internal/cache"
	"github.com/ntentasd/aggregator-api/internal/metrics"
	"github.com/ntentasd/aggregator-api/internal/processor"
	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/pkg/types"
	"github.com/ntentasd/aggregator-api/pkg/utils"
)

// resultCacheTTL bounds staleness if a cached entry somehow outlives
// its record; terminal records never change, so a long TTL is safe.
const resultCacheTTL = 5 * time.Minute

func healthHandler(w http.ResponseWriter, r *http.Request) {
	utils.ReplyJSON(w, http.StatusOK, utils.Body{
		"status": "ok",
	})
}

func (app *App) uploadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.HttpRequestLatencySeconds.WithLabelValues("POST").Observe(time.Since(start).Seconds())
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsRejectedTotal.Inc()
		utils.ReplyBadRequest(w, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	// Bounded by the upload size; processing streams from the blob
	// store afterwards.
	data, err := io.ReadAll(file)
	if err != nil {
		metrics.UploadsRejectedTotal.Inc()
		utils.ReplyBadRequest(w, "failed to read uploaded file")
		return
	}

	fileID, err := app.Processor.Enqueue(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrEmptyInput):
			metrics.UploadsRejectedTotal.Inc()
			utils.ReplyBadRequest(w, "Uploaded file is empty.")
		case errors.Is(err, processor.ErrShuttingDown):
			utils.ReplyJSON(w, http.StatusServiceUnavailable, utils.Body{
				"detail": "service is shutting down",
			})
		default:
			app.Logger.Error().Err(err).Msg("upload failed")
			utils.ReplyInternalServerError(w, err.Error())
		}
		return
	}

	metrics.UploadsAcceptedTotal.Inc()
	utils.ReplyJSON(w, http.StatusAccepted, utils.Body{
		"file_id": fileID,
	})
}

func (app *App) resultHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.HttpRequestLatencySeconds.WithLabelValues("GET").Observe(time.Since(start).Seconds())
	}()

	fileID := r.PathValue("file_id")

	cacheKey := "result:" + fileID
	if cached, err := app.Cache.FetchResult(r.Context(), cacheKey); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		app.Logger.Warn().Err(err).Str("file_id", fileID).Msg("cache fetch failed")
	}

	result, err := app.Processor.FetchResult(r.Context(), fileID)
	if err != nil {
		var nf *store.NotFoundError
		if errors.As(err, &nf) {
			utils.ReplyNotFound(w, fmt.Sprintf("No processing result found for file_id '%s'.", fileID))
			return
		}
		app.Logger.Error().Err(err).Str("file_id", fileID).Msg("result fetch failed")
		utils.ReplyInternalServerError(w, err.Error())
		return
	}

	// Terminal records never change again, so they are safe to cache.
	if result.Status.Terminal() {
		if err := app.Cache.StoreResult(r.Context(), cacheKey, result, resultCacheTTL); err != nil {
			app.Logger.Warn().Err(err).Str("file_id", fileID).Msg("cache store failed")
		}
	}

	replyRecord(w, result)
}

// replyRecord writes the record as a bare JSON object, matching the
// shape cached entries are stored in.
func replyRecord(w http.ResponseWriter, record *types.ProcessingResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}
