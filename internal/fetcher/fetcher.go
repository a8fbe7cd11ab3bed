package fetcher

import (
	"context"
	"log/slog"
)

// Fetcher is the capability the coordinator drives once per symbol.
// Implementations block until the fetch has finished and never return a
// partially filled Outcome: a failure is reported through Outcome.Err.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) Outcome
}

// Request describes one fetch: which symbol, with which credential, written where.
type Request struct {
	Symbol      string
	APIKey      string
	Destination string
}

// LogValue implements slog.LogValuer and leaves the credential out
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("symbol", r.Symbol),
		slog.String("destination", r.Destination),
	)
}
