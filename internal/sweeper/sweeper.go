// Package sweeper runs the background job that cancels bookings whose
// payment never arrived.  It owns only the schedule; the cancellation
// itself goes through the lifecycle engine so it obeys the same
// compare-and-set rules as every other transition.
package sweeper

import (
	"context"
	"log"
	"time"
)

// Canceller is the slice of the lifecycle engine the sweeper needs.
type Canceller interface {
	CancelStale(ctx context.Context, cutoff time.Time) (int, error)
}

// TokenPurger deletes long-expired refresh tokens.  Optional extra
// housekeeping the sweeper runs on the same schedule.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// tokenRetention is how long an expired refresh token row is kept
// before the sweeper removes it.
const tokenRetention = 24 * time.Hour

// Sweeper periodically cancels bookings stuck in PENDING_PAYMENT.
type Sweeper struct {
	engine   Canceller
	tokens   TokenPurger   // optional, nil disables token purging
	interval time.Duration // how often a sweep runs
	timeout  time.Duration // how long an unpaid booking may live
}

// New builds a sweeper.  interval and timeout must both be positive.
func New(engine Canceller, interval, timeout time.Duration) *Sweeper {
	if engine == nil {
		panic("nil engine passed to sweeper.New")
	}
	if interval <= 0 || timeout <= 0 {
		panic("sweeper interval and timeout must be positive")
	}
	return &Sweeper{engine: engine, interval: interval, timeout: timeout}
}

// WithTokenPurge makes the sweeper also delete expired refresh tokens
// each pass.  Returns the sweeper for chaining.
func (s *Sweeper) WithTokenPurge(p TokenPurger) *Sweeper {
	s.tokens = p
	return s
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled.  It is meant to be started in its own goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("sweeper: started (every %s, unpaid timeout %s)", s.interval, s.timeout)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.timeout)
	n, err := s.engine.CancelStale(ctx, cutoff)
	if err != nil {
		log.Printf("sweeper: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweeper: cancelled %d unpaid booking(s)", n)
	}

	if s.tokens != nil {
		purged, err := s.tokens.PurgeExpired(ctx, time.Now().UTC().Add(-tokenRetention))
		if err != nil {
			log.Printf("sweeper: token purge failed: %v", err)
		} else if purged > 0 {
			log.Printf("sweeper: purged %d expired refresh token(s)", purged)
		}
	}
}
