// Package testutil provides testing utilities for the listing API harvester.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock listing API response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock listing server for testing. Responses can
// be scripted per page so one page can fail several times before
// succeeding.
type MockAPI struct {
	server *httptest.Server
	mu     sync.Mutex

	// queued responses per page, served in order; the last one repeats
	queues map[int][]MockResponse

	// Tracking
	RequestCount int
	PageHits     map[int]int
}

// NewMockAPI creates a new mock listing server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		queues:   make(map[int][]MockResponse),
		PageHits: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		mock.mu.Lock()
		mock.RequestCount++
		mock.PageHits[page]++

		resp := MockResponse{StatusCode: http.StatusOK, Body: `{"data": []}`}
		if queue := mock.queues[page]; len(queue) > 0 {
			resp = queue[0]
			if len(queue) > 1 {
				mock.queues[page] = queue[1:]
			}
		}
		mock.mu.Unlock()

		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}))

	return mock
}

// URL returns the mock server URL (use it directly as the listing base URL).
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all queues and tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues = make(map[int][]MockResponse)
	m.PageHits = make(map[int]int)
	m.RequestCount = 0
}

// QueueResponses scripts the responses for one page. They are served in
// order; the final response repeats for any further requests.
func (m *MockAPI) QueueResponses(page int, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[page] = append(m.queues[page], resps...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// GetPageHits returns the number of requests made for one page.
func (m *MockAPI) GetPageHits(page int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PageHits[page]
}

// NewPageResponse creates a 200 OK response whose body holds count items
// with sequential titles ("Title 1", "Title 2", ...).
func NewPageResponse(count int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       PageBody(count),
	}
}

// PageBody builds a listing page body with count fully populated items.
func PageBody(count int) string {
	items := make([]string, count)
	for i := 0; i < count; i++ {
		items[i] = fmt.Sprintf(`{
			"titles": [{"type": "Default", "title": "Title %[1]d"}],
			"title": "Title %[1]d",
			"score": 7.5,
			"scored_by": 1000,
			"rank": %[1]d,
			"popularity": %[1]d,
			"members": 50000,
			"favorites": 100,
			"genres": [{"name": "Action"}, {"name": "Comedy"}]
		}`, i+1)
	}
	return `{"data": [` + strings.Join(items, ",") + `]}`
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "rate limit exceeded"}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "internal server error"}`,
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not valid
// JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": [`,
	}
}
