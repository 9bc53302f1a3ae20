// Package ninjas provides the CalorieNinjas nutrition API client with
// response classification and bounded retry.
package ninjas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for provider call operations.
var (
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_provider_requests_total",
		Help: "Total provider API requests by status",
	}, []string{"status"})

	providerRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nutrition_provider_request_duration_seconds",
		Help:    "Provider API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	providerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_provider_errors_total",
		Help: "Total provider API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the CalorieNinjas API origin.
const DefaultBaseURL = "https://api.calorieninjas.com"

// maxResponseSize bounds the provider response body read (1 MiB).
const maxResponseSize = 1 << 20

// Item is one nutrition record from the provider. Quantities are per
// serving_size_g grams.
type Item struct {
	Name                string  `json:"name"`
	Calories            float64 `json:"calories"`
	ServingSizeG        float64 `json:"serving_size_g"`
	FatTotalG           float64 `json:"fat_total_g"`
	FatSaturatedG       float64 `json:"fat_saturated_g"`
	ProteinG            float64 `json:"protein_g"`
	SodiumMg            float64 `json:"sodium_mg"`
	PotassiumMg         float64 `json:"potassium_mg"`
	CarbohydratesTotalG float64 `json:"carbohydrates_total_g"`
	FiberG              float64 `json:"fiber_g"`
	SugarG              float64 `json:"sugar_g"`
	CholesterolMg       float64 `json:"cholesterol_mg"`
}

// Config holds the client configuration.
type Config struct {
	// APIKey is the provider credential. Required.
	APIKey string

	// BaseURL overrides the provider origin (for tests).
	BaseURL string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry
	MaxAttempts  int           // Total attempts including the first
	InitialDelay time.Duration // Delay before the first retry
	Multiplier   float64       // Exponential backoff multiplier
}

// DefaultConfig returns the standard configuration: 3 attempts with fixed
// 1s/2s/4s backoff and a 30 second request timeout.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:       apiKey,
		BaseURL:      DefaultBaseURL,
		Timeout:      30 * time.Second,
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
	}
}

// Client is the CalorieNinjas API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new client. A missing API key is a configuration error,
// surfaced immediately and never retried.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 1 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "ninjas-client").Logger(),
	}, nil
}

// Fetch performs a single provider call for the given food query and
// classifies the outcome. A 2xx response with a valid but empty item list
// returns success with zero items; callers interpret that as "not found".
func (c *Client) Fetch(ctx context.Context, query string) ([]Item, error) {
	endpoint := c.config.BaseURL + "/v1/nutrition?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	providerRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		providerErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		providerRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().
			Err(err).
			Str("operation", "Fetch").
			Str("query", query).
			Msg("Provider request failed before receiving a status")
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	providerRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if apiErr := c.classifyStatus(resp.StatusCode); apiErr != nil {
		providerErrorsTotal.WithLabelValues(string(apiErr.Class)).Inc()
		c.logger.Warn().
			Str("operation", "Fetch").
			Str("query", query).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.Class)).
			Msg("Provider request error")
		return nil, apiErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		providerErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().
			Err(err).
			Str("operation", "Fetch").
			Str("query", query).
			Msg("Failed to read provider response body")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	// Items is a pointer so an absent "items" key (malformed response) is
	// distinguishable from a present-but-empty list (no match found).
	var parsed struct {
		Items *[]Item `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Items == nil {
		providerErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		c.logger.Error().
			Str("operation", "Fetch").
			Str("query", query).
			Int("status", resp.StatusCode).
			Msg("Invalid provider response structure")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassClient,
			Message:    "invalid response structure",
			Err:        err,
		}
	}

	return *parsed.Items, nil
}

// classifyStatus maps a non-2xx status to a typed error, nil otherwise.
func (c *Client) classifyStatus(status int) *APIError {
	switch {
	case status == http.StatusTooManyRequests:
		return &APIError{StatusCode: status, Class: ErrorClassQuota, Message: "api quota exceeded"}
	case status >= 500:
		return &APIError{StatusCode: status, Class: ErrorClassServer, Message: "provider server error"}
	case status >= 400:
		return &APIError{StatusCode: status, Class: ErrorClassClient, Message: "request failed"}
	default:
		return nil
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
