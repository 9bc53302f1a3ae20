package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nblkmal/nutrition-hub/pkg/lookup"
	"github.com/nblkmal/nutrition-hub/pkg/ninjas"
	"github.com/nblkmal/nutrition-hub/pkg/quota"
	"github.com/nblkmal/nutrition-hub/pkg/stats"
	"github.com/nblkmal/nutrition-hub/pkg/storage"
)

// apiError is the error payload of the response envelope.
type apiError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
}

// envelope is the standard response shape for all JSON endpoints.
type envelope struct {
	Data    any       `json:"data"`
	Success bool      `json:"success"`
	Error   *apiError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{
		Success: false,
		Error: &apiError{
			Message:    message,
			Code:       code,
			StatusCode: status,
		},
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// searchHandler maps the orchestrator's outcomes onto HTTP statuses:
// found 200, not found 404, quota-degraded 503, invalid query 400,
// provider failure 502.
func searchHandler(svc *lookup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, err := svc.Lookup(ctx, r.URL.Query().Get("q"))
		if err != nil {
			var vErr *lookup.ValidationError
			if errors.As(err, &vErr) {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", strings.Join(vErr.Reasons, "; "))
				return
			}
			if ninjas.Classify(err) != "" {
				writeError(w, http.StatusBadGateway, "EXTERNAL_API_ERROR", "Nutrition provider request failed")
				return
			}
			log.Error().Err(err).Str("route", "/api/foods/search").Msg("Lookup failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}

		switch result.Outcome {
		case lookup.OutcomeUnavailable:
			writeError(w, http.StatusServiceUnavailable, "API_QUOTA_EXCEEDED",
				"Search temporarily unavailable. Please try again later.")
		case lookup.OutcomeNotFound:
			writeError(w, http.StatusNotFound, "FOOD_NOT_FOUND", "Food not found")
		default:
			writeJSON(w, http.StatusOK, envelope{Data: result.Food, Success: true})
		}
	}
}

// cacheMetricsPayload mirrors the monitoring endpoint's response shape.
type cacheMetricsPayload struct {
	Cache struct {
		TotalFoods int64 `json:"totalFoods"`
		FromAPI    int64 `json:"fromApi"`
	} `json:"cache"`
	Performance struct {
		Today todayPerformance `json:"today"`
	} `json:"performance"`
	Quota quota.Status `json:"quota"`
}

type todayPerformance struct {
	CacheHits             int64  `json:"cacheHits"`
	CacheMisses           int64  `json:"cacheMisses"`
	TotalLookups          int64  `json:"totalLookups"`
	CacheHitRate          string `json:"cacheHitRate"`
	AverageResponseTimeMs int64  `json:"averageResponseTimeMs"`
}

func cacheMetricsHandler(store *storage.Store, ledger *quota.Ledger, recorder *stats.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var payload cacheMetricsPayload

		totalFoods, err := store.CountFoods(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read cache metrics")
			return
		}
		fromAPI, err := store.CountFoodsBySource(ctx, storage.SourceExternalAPI)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read cache metrics")
			return
		}
		payload.Cache.TotalFoods = totalFoods
		payload.Cache.FromAPI = fromAPI

		today, err := recorder.Today(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read search metrics")
			return
		}
		payload.Performance.Today = todayPerformance{
			CacheHits:             today.CacheHits,
			CacheMisses:           today.CacheMisses,
			TotalLookups:          today.TotalLookups,
			CacheHitRate:          fmt.Sprintf("%.2f%%", today.CacheHitRate),
			AverageResponseTimeMs: int64(math.Round(today.AverageResponseTime)),
		}

		status, err := ledger.Status(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read quota status")
			return
		}
		payload.Quota = status

		writeJSON(w, http.StatusOK, envelope{Data: payload, Success: true})
	}
}
