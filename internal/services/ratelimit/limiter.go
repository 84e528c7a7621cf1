// Package ratelimit spaces outbound calls to an upstream that tolerates
// at most one request per interval.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval minimum spacing between price-source calls.
const DefaultInterval = 1500 * time.Millisecond

// Clock abstracts time so tests can run without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Limiter hands out call slots at least interval apart. It is a token bucket
// of size one driven by the injected clock; waiting happens outside the
// bucket's lock.
type Limiter struct {
	interval time.Duration
	bucket   *rate.Limiter
	clock    Clock
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// New creates a limiter; a non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, opts ...Option) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &Limiter{
		interval: interval,
		bucket:   rate.NewLimiter(rate.Every(interval), 1),
		clock:    realClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the configured spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire blocks until the caller may start its outbound call.
// A caller whose ctx ends while waiting gives its slot back.
func (l *Limiter) Acquire(ctx context.Context) error {
	slot, r := l.reserve()
	wait := slot.Sub(l.clock.Now())
	if wait <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, wait); err != nil {
		r.CancelAt(l.clock.Now())
		return err
	}
	return nil
}

// reserve books the earliest start instant that keeps the spacing.
func (l *Limiter) reserve() (time.Time, *rate.Reservation) {
	now := l.clock.Now()
	r := l.bucket.ReserveN(now, 1)
	// float token arithmetic leaves sub-nanosecond noise
	return now.Add(r.DelayFrom(now).Round(time.Microsecond)), r
}
