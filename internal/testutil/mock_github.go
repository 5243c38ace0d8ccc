// Package testutil provides a mock GitHub REST server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// SearchPath is the repository search endpoint served by MockGitHub.
const SearchPath = "/search/repositories"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is what the mock saw for one request.
type RecordedRequest struct {
	Path   string
	Query  url.Values
	Header http.Header
}

// MockGitHub is a configurable mock GitHub server. Unless a handler is set,
// SearchPath serves pages of a synthetic corpus of TotalCount repositories.
type MockGitHub struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
	total    int
	remain   int
}

// NewMockGitHub creates a new mock server with a corpus of total repositories.
func NewMockGitHub(total int) *MockGitHub {
	mock := &MockGitHub{
		handlers: make(map[string]http.HandlerFunc),
		total:    total,
		remain:   30,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		if r.URL.Path == SearchPath {
			mock.searchHandler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGitHub) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGitHub) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockGitHub) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGitHub) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockGitHub) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Requests returns a copy of everything recorded so far.
func (m *MockGitHub) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests made to the server.
func (m *MockGitHub) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// ConditionalCount returns the number of requests carrying validators.
func (m *MockGitHub) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requests {
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			n++
		}
	}
	return n
}

// searchHandler serves the synthetic corpus. Each page has a stable ETag so
// conditional requests are answered with 304.
func (m *MockGitHub) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	m.mu.Lock()
	if m.remain > 0 {
		m.remain--
	}
	remain := m.remain
	m.mu.Unlock()

	for key, value := range RateLimitHeaders(remain) {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	etag := fmt.Sprintf(`W/"search-%d-%d-%d"`, m.total, perPage, page)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=60, s-maxage=60")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(SearchPage(page, perPage, m.total)))
}

// RateLimitHeaders returns search rate limit headers with the given remaining
// count out of 30, resetting in a minute.
func RateLimitHeaders(remaining int) map[string]string {
	return map[string]string{
		"X-RateLimit-Limit":     "30",
		"X-RateLimit-Remaining": strconv.Itoa(remaining),
		"X-RateLimit-Used":      strconv.Itoa(30 - remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
		"X-RateLimit-Resource":  "search",
	}
}

// Repo returns a GitHub-shaped repository object for the n-th corpus entry.
func Repo(n int) map[string]any {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour)
	repo := map[string]any{
		"id":                n,
		"name":              fmt.Sprintf("repo-%d", n),
		"full_name":         fmt.Sprintf("owner%d/repo-%d", n%7, n),
		"owner":             map[string]any{"login": fmt.Sprintf("owner%d", n%7)},
		"stargazers_count":  10000 - n,
		"forks_count":       n % 100,
		"language":          "Go",
		"description":       fmt.Sprintf("Repository number %d", n),
		"html_url":          fmt.Sprintf("https://github.com/owner%d/repo-%d", n%7, n),
		"homepage":          "",
		"topics":            []string{"cli", "tools"},
		"created_at":        created.Format(time.RFC3339),
		"updated_at":        created.Add(24 * time.Hour).Format(time.RFC3339),
		"pushed_at":         created.Add(48 * time.Hour).Format(time.RFC3339),
		"archived":          false,
		"open_issues_count": n % 13,
		"watchers_count":    10000 - n,
		"license":           map[string]any{"key": "mit", "name": "MIT License"},
	}
	if n%5 == 0 {
		repo["language"] = nil
		repo["license"] = nil
	}
	return repo
}

// SearchPage renders page of a corpus of total repositories the way GitHub
// does: items are 1-based ranks, and nothing past the 1000-result window.
func SearchPage(page, perPage, total int) string {
	items := []map[string]any{}
	visible := min(total, 1000)
	for i := (page-1)*perPage + 1; i <= page*perPage && i <= visible; i++ {
		items = append(items, Repo(i))
	}
	body, _ := json.Marshal(map[string]any{
		"total_count":        total,
		"incomplete_results": false,
		"items":              items,
	})
	return string(body)
}

// NewSearchResponse creates a 200 response carrying body and search headers.
func NewSearchResponse(body string) MockResponse {
	headers := RateLimitHeaders(29)
	headers["ETag"] = `"test-etag-123"`
	headers["Content-Type"] = "application/json; charset=utf-8"
	return MockResponse{StatusCode: http.StatusOK, Body: body, Headers: headers}
}

// NewRateLimitedResponse creates GitHub's 403 for an exhausted search limit.
func NewRateLimitedResponse() MockResponse {
	headers := RateLimitHeaders(0)
	headers["Content-Type"] = "application/json; charset=utf-8"
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"message":"API rate limit exceeded for 127.0.0.1.","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#rate-limiting"}`,
		Headers:    headers,
	}
}

// NewUnauthorizedResponse creates a 401 Bad credentials response.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message":"Bad credentials","documentation_url":"https://docs.github.com/rest"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"Server Error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewValidationFailedResponse creates GitHub's 422 for a malformed query.
func NewValidationFailedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnprocessableEntity,
		Body:       `{"message":"Validation Failed","errors":[{"resource":"Search","field":"q","code":"invalid"}]}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}
