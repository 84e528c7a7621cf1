package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_Acquire(t *testing.T) {
	clock := newFakeClock()
	l := New(DefaultInterval, WithClock(clock))
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	assert.Empty(t, clock.slept, "first call must not wait")

	require.NoError(t, l.Acquire(ctx))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 1500*time.Millisecond, clock.slept[0])

	clock.Advance(2 * time.Second)
	require.NoError(t, l.Acquire(ctx))
	assert.Len(t, clock.slept, 1, "call after the interval must not wait")

	clock.Advance(500 * time.Millisecond)
	require.NoError(t, l.Acquire(ctx))
	require.Len(t, clock.slept, 2)
	assert.Equal(t, time.Second, clock.slept[1])
}

func TestLimiter_ConcurrentSlotsAreSpaced(t *testing.T) {
	for _, tc := range []struct{ callers, calls int }{{1, 5}, {4, 3}, {16, 8}} {
		clock := newFakeClock()
		l := New(DefaultInterval, WithClock(clock))

		var (
			mu    sync.Mutex
			slots []time.Time
			wg    sync.WaitGroup
		)
		for i := 0; i < tc.callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < tc.calls; j++ {
					slot, _ := l.reserve()
					mu.Lock()
					slots = append(slots, slot)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Len(t, slots, tc.callers*tc.calls)
		sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
		for i := 1; i < len(slots); i++ {
			assert.GreaterOrEqual(t, slots[i].Sub(slots[i-1]), DefaultInterval)
		}
	}
}

func TestLimiter_RealClockConcurrent(t *testing.T) {
	const interval = 20 * time.Millisecond
	l := New(interval)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2; j++ {
				assert.NoError(t, l.Acquire(context.Background()))
			}
		}()
	}
	wg.Wait()

	// six calls need at least five full intervals between the first and the last start
	assert.GreaterOrEqual(t, time.Since(start), 5*interval)
}

func TestLimiter_ContextCancelled(t *testing.T) {
	l := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Acquire(ctx))
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestLimiter_CancelledWaitReturnsSlot(t *testing.T) {
	clock := newFakeClock()
	l := New(DefaultInterval, WithClock(&cancellingClock{fakeClock: clock}))

	require.NoError(t, l.Acquire(context.Background()))
	require.ErrorIs(t, l.Acquire(context.Background()), context.Canceled)

	// the abandoned slot is free again, so the next caller waits one interval, not two
	slot, _ := l.reserve()
	assert.Equal(t, clock.Now().Add(DefaultInterval), slot)
}

// cancellingClock reports every wait as cancelled.
type cancellingClock struct {
	*fakeClock
}

func (c *cancellingClock) Sleep(context.Context, time.Duration) error {
	return context.Canceled
}

func TestNew_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(0).Interval())
}
