package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nblkmal/nutrition-hub/pkg/logging"
	"github.com/nblkmal/nutrition-hub/pkg/lookup"
	"github.com/nblkmal/nutrition-hub/pkg/ninjas"
	"github.com/nblkmal/nutrition-hub/pkg/quota"
	"github.com/nblkmal/nutrition-hub/pkg/stats"
	"github.com/nblkmal/nutrition-hub/pkg/storage"
)

func main() {
	// Configuration from environment (.env is optional)
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
		Output: os.Stderr,
	})

	apiKey := os.Getenv("CALORIENINJAS_API_KEY")
	dbPath := getEnv("DB_PATH", "data/nutrition-hub.db")
	port := getEnv("PORT", "8080")

	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open database")
	}
	logger.Info().Str("path", dbPath).Msg("Database ready")

	client, err := ninjas.New(ninjas.DefaultConfig(apiKey))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create nutrition client")
	}

	ledger := quota.NewLedger(store, quota.DefaultLimits(), logging.NewLogger("quota"))
	recorder := stats.NewRecorder(store, logging.NewLogger("stats"))

	svc := lookup.NewService(store, client, ledger, recorder, lookup.Config{
		RecordBillableFailures: os.Getenv("RECORD_BILLABLE_FAILURES") == "true",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/api/foods/search", searchHandler(svc))
	mux.HandleFunc("/api/metrics/cache", cacheMetricsHandler(store, ledger, recorder))
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Starting nutrition server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
