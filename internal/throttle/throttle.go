// Package throttle wraps golang.org/x/time/rate with the small surface the
// engine needs to guard its expensive paths (archive export stages a zip on
// disk and reads it fully into memory, so unbounded callers can exhaust the
// staging volume).
package throttle

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token-bucket limiter. Tokens accrue at a sustained
// per-second rate up to a burst capacity; each guarded operation consumes
// one token. All methods are safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter allowing perSecond sustained operations with the
// given burst capacity. perSecond == 0 disables limiting entirely.
func New(perSecond, burst uint) *Limiter {
	if perSecond == 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = perSecond
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), int(burst))}
}

// Allow reports whether one operation may proceed right now, consuming a
// token if so.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done, returning the
// context error in the latter case.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Tokens returns the tokens currently available. Monitoring only; the value
// may change immediately after the call.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}
