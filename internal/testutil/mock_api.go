// Package testutil provides testing utilities for the listpager client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// Record is one synthetic upstream item.
type Record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MockListAPI is a configurable mock list endpoint serving a synthetic
// offset-paginated dataset for testing.
type MockListAPI struct {
	server *httptest.Server
	mu     sync.Mutex

	datasetSize int
	itemsKey    string
	countKey    string

	failStatus int // status code to serve once failAfter is passed, 0 = off
	failAfter  int
	failUntil  int // when > 0, fail only requests 1..failUntil

	// Tracking
	RequestCount int
	Requests     []url.Values
}

// NewMockListAPI creates a mock server over a dataset of n records with ids
// 0..n-1, served as a bare JSON array.
func NewMockListAPI(n int) *MockListAPI {
	mock := &MockListAPI{datasetSize: n}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// UseEnvelope switches responses to `{itemsKey: [...], countKey: total}`.
// countKey may be empty to omit the total.
func (m *MockListAPI) UseEnvelope(itemsKey, countKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsKey = itemsKey
	m.countKey = countKey
}

// FailWith makes every request after the first afterRequests respond with
// the given status code. afterRequests of 0 fails immediately.
func (m *MockListAPI) FailWith(status, afterRequests int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
	m.failAfter = afterRequests
}

// FailTimes makes the first times requests respond with the given status code
// and every later request succeed normally.
func (m *MockListAPI) FailTimes(status, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
	m.failUntil = times
}

// URL returns the mock server URL.
func (m *MockListAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockListAPI) Close() {
	m.server.Close()
}

// Reset clears tracking state and failure injection.
func (m *MockListAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.failStatus = 0
	m.failAfter = 0
	m.failUntil = 0
}

func (m *MockListAPI) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.RequestCount++
	m.Requests = append(m.Requests, r.URL.Query())
	fail := m.failStatus != 0 && m.RequestCount > m.failAfter
	if m.failUntil > 0 {
		fail = m.failStatus != 0 && m.RequestCount <= m.failUntil
	}
	failStatus := m.failStatus
	itemsKey, countKey := m.itemsKey, m.countKey
	size := m.datasetSize
	m.mu.Unlock()

	if fail {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if limit < 0 || offset < 0 {
		http.Error(w, "bad pagination params", http.StatusBadRequest)
		return
	}

	end := offset + limit
	if end > size {
		end = size
	}
	items := make([]Record, 0)
	for i := offset; i < end; i++ {
		items = append(items, Record{ID: i, Name: fmt.Sprintf("item-%04d", i)})
	}

	w.Header().Set("Content-Type", "application/json")

	if itemsKey == "" {
		_ = json.NewEncoder(w).Encode(items)
		return
	}

	body := map[string]any{itemsKey: items}
	if countKey != "" {
		body[countKey] = size
	}
	_ = json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
