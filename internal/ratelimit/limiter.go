package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// API represents the external APIs whose calls are paced
type API string

const (
	// APIAlphaVantage represents the AlphaVantage API reached by the fetch executable
	APIAlphaVantage API = "alphavantage"
)

// Limiter manages rate limits for different APIs
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a Limiter with no limits configured
func New() *Limiter {
	return &Limiter{
		limiters: make(map[API]*rate.Limiter),
	}
}

// SetInterval allows one event every interval for api, with no burst.
// A non-positive interval removes the limit.
func (l *Limiter) SetInterval(api API, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if interval <= 0 {
		l.limiters[api] = rate.NewLimiter(rate.Inf, 1)
		return
	}
	l.limiters[api] = rate.NewLimiter(rate.Every(interval), 1)
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, api API) error {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given API may happen now
func (l *Limiter) Allow(api API) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
