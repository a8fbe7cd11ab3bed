package testutil

import (
	"context"
	"sync"

	"marketfetch/internal/fetcher"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing.
// Every request it receives is recorded in order.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, req fetcher.Request) error

	mu    sync.Mutex
	calls []fetcher.Request
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, req fetcher.Request) fetcher.Outcome {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	outcome := fetcher.Outcome{Symbol: req.Symbol, Destination: req.Destination}
	if m.FetchFunc != nil {
		outcome.Err = m.FetchFunc(ctx, req)
	}
	return outcome
}

// Calls returns the requests received so far
func (m *MockFetcher) Calls() []fetcher.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetcher.Request(nil), m.calls...)
}

// Symbols returns the symbols of the requests received so far
func (m *MockFetcher) Symbols() []string {
	calls := m.Calls()
	symbols := make([]string, len(calls))
	for i, c := range calls {
		symbols[i] = c.Symbol
	}
	return symbols
}

// NewScriptedFetcher creates a mock fetcher that fails the listed symbols with
// the given errors and succeeds for every other symbol
func NewScriptedFetcher(failures map[string]error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, req fetcher.Request) error {
			return failures[req.Symbol]
		},
	}
}
