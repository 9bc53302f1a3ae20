package ninjas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = server.URL
	cfg.InitialDelay = 5 * time.Millisecond

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client, server
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.config.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", client.config.BaseURL, DefaultBaseURL)
	}
	if client.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", client.config.MaxAttempts)
	}
	if client.config.InitialDelay != 1*time.Second {
		t.Errorf("InitialDelay = %v, want 1s", client.config.InitialDelay)
	}
}

func TestClient_FetchSuccess(t *testing.T) {
	var gotKey, gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"name":"chicken breast","calories":165,"serving_size_g":100,"protein_g":31}]}`))
	})

	items, err := client.Fetch(context.Background(), "chicken breast")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want %q", gotKey, "test-key")
	}
	if gotQuery != "chicken breast" {
		t.Errorf("query param = %q, want %q", gotQuery, "chicken breast")
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Calories != 165 || items[0].ProteinG != 31 {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestClient_FetchEmptyItemsIsSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	})

	items, err := client.Fetch(context.Background(), "xyzzy")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want success with zero items", err)
	}
	if len(items) != 0 {
		t.Errorf("expected zero items, got %d", len(items))
	}
}

func TestClient_FetchClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantClass  ErrorClass
		wantStatus int
	}{
		{
			name:       "429 classified as quota",
			status:     http.StatusTooManyRequests,
			body:       `{"error":"rate limited"}`,
			wantClass:  ErrorClassQuota,
			wantStatus: 429,
		},
		{
			name:       "500 classified as server",
			status:     http.StatusInternalServerError,
			body:       "oops",
			wantClass:  ErrorClassServer,
			wantStatus: 500,
		},
		{
			name:       "503 classified as server",
			status:     http.StatusServiceUnavailable,
			body:       "down",
			wantClass:  ErrorClassServer,
			wantStatus: 503,
		},
		{
			name:       "400 classified as client",
			status:     http.StatusBadRequest,
			body:       `{"error":"bad query"}`,
			wantClass:  ErrorClassClient,
			wantStatus: 400,
		},
		{
			name:       "2xx missing items array is malformed",
			status:     http.StatusOK,
			body:       `{"unexpected":"shape"}`,
			wantClass:  ErrorClassClient,
			wantStatus: 200,
		},
		{
			name:       "2xx invalid json is malformed",
			status:     http.StatusOK,
			body:       `not json`,
			wantClass:  ErrorClassClient,
			wantStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Fetch(context.Background(), "chicken")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Fetch() error = %v, want *APIError", err)
			}
			if apiErr.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", apiErr.Class, tt.wantClass)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestClient_FetchNetworkError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Fetch(context.Background(), "chicken")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Fetch() error = %v, want *APIError", err)
	}
	if apiErr.Class != ErrorClassNetwork {
		t.Errorf("Class = %q, want %q", apiErr.Class, ErrorClassNetwork)
	}
}
