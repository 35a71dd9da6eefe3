// Package ratelimit paces outgoing catalog requests. The third-party book
// sites are fragile; the cascade waits a fixed interval between attempts
// instead of hammering them.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging/debugging.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a limiter allowing requestsPerSecond, with burst equal to the
// rate.
func New(name string, requestsPerSecond int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:    name,
	}
}

// NewInterval creates a limiter enforcing a fixed delay between events with
// no bursting. Used for the per-request delay between cascade attempts.
func NewInterval(name string, interval time.Duration) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		name:    name,
	}
}

// Wait blocks until the limiter allows the next request, or the context is
// cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Allow reports whether a request can proceed without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the name of this rate limiter.
func (l *Limiter) Name() string {
	return l.name
}
