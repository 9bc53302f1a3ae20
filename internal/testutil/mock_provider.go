// Package testutil provides testing utilities for the nutrition lookup
// service.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines one canned provider response.
type MockResponse struct {
	StatusCode int
	Body       string
}

// MockProvider is a configurable mock nutrition provider for testing.
// Responses are served from a queue when one was enqueued, otherwise from
// the default response.
type MockProvider struct {
	server *httptest.Server

	mu           sync.Mutex
	defaultResp  MockResponse
	queue        []MockResponse
	requestCount int
	lastAPIKey   string
	lastQuery    string
}

// NewMockProvider creates a mock provider that answers every request with
// an empty item list until configured otherwise.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		defaultResp: MockResponse{StatusCode: http.StatusOK, Body: `{"items":[]}`},
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastAPIKey = r.Header.Get("X-Api-Key")
		mock.lastQuery = r.URL.Query().Get("query")

		resp := mock.defaultResp
		if len(mock.queue) > 0 {
			resp = mock.queue[0]
			mock.queue = mock.queue[1:]
		}
		mock.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	}))

	return mock
}

// URL returns the mock provider's base URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Respond sets the default response for all subsequent requests.
func (m *MockProvider) Respond(statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = MockResponse{StatusCode: statusCode, Body: body}
}

// Enqueue appends one-shot responses served before the default response.
func (m *MockProvider) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// RequestCount returns the number of requests received.
func (m *MockProvider) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastAPIKey returns the X-Api-Key header of the most recent request.
func (m *MockProvider) LastAPIKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAPIKey
}

// LastQuery returns the query parameter of the most recent request.
func (m *MockProvider) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}
