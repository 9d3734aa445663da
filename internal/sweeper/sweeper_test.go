package sweeper_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homesolutions/marketplace/internal/sweeper"
)

// fakeCanceller records every cutoff it is invoked with.
type fakeCanceller struct {
	mu      sync.Mutex
	cutoffs []time.Time
	done    chan struct{} // closed after the first call
	once    sync.Once
}

func newFakeCanceller() *fakeCanceller {
	return &fakeCanceller{done: make(chan struct{})}
}

func (f *fakeCanceller) CancelStale(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	f.cutoffs = append(f.cutoffs, cutoff)
	f.mu.Unlock()
	f.once.Do(func() { close(f.done) })
	return 0, nil
}

func (f *fakeCanceller) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.cutoffs))
	copy(out, f.cutoffs)
	return out
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	fake := newFakeCanceller()
	s := sweeper.New(fake, time.Hour, 30*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	select {
	case <-fake.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran its first sweep")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}

	// With an hour-long interval only the immediate sweep can have run.
	calls := fake.calls()
	require.Len(t, calls, 1)
	// Cutoff sits the unpaid timeout in the past.
	age := time.Since(calls[0])
	assert.InDelta(t, (30 * time.Minute).Seconds(), age.Seconds(), 5)
}

func TestRun_TicksRepeatedly(t *testing.T) {
	fake := newFakeCanceller()
	s := sweeper.New(fake, 10*time.Millisecond, 30*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	assert.Eventually(t, func() bool {
		return len(fake.calls()) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

// fakePurger counts purge invocations.
type fakePurger struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePurger) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 2, nil
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRun_PurgesTokensWhenConfigured(t *testing.T) {
	fake := newFakeCanceller()
	purger := &fakePurger{}
	s := sweeper.New(fake, time.Hour, 30*time.Minute).WithTokenPurge(purger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	assert.Eventually(t, func() bool {
		return purger.count() >= 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	assert.Panics(t, func() { sweeper.New(nil, time.Minute, time.Minute) })
	assert.Panics(t, func() { sweeper.New(newFakeCanceller(), 0, time.Minute) })
	assert.Panics(t, func() { sweeper.New(newFakeCanceller(), time.Minute, 0) })
}
