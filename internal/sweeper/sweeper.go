package sweeper

import (
	"context"
	"log"
	"sync"
	"time"

	"lab-reservation-backend/internal/booking"
)

// Engine is the part of the booking engine the sweeper drives.
type Engine interface {
	RunExpirationSweep(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically expires approved bookings whose interval has
// elapsed. It owns nothing but the timer; the transition logic lives in
// the booking engine.
type Sweeper struct {
	engine   Engine
	clock    booking.Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a sweeper. A nil clock falls back to the system clock.
func New(engine Engine, clock booking.Clock, interval time.Duration) *Sweeper {
	if clock == nil {
		clock = booking.RealClock
	}
	return &Sweeper{engine: engine, clock: clock, interval: interval}
}

// Start launches the sweep loop. The first sweep runs immediately; later
// ones follow the configured interval. Calling Start on a running sweeper
// is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop halts the loop and waits for an in-flight sweep to finish. Safe to
// call on a sweeper that never started.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log.Printf("Sweeper running every %s", s.interval)

	s.sweep(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper shutting down.")
			return
		case <-timer.C:
			s.sweep(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.engine.RunExpirationSweep(ctx, s.clock.Now())
	if err != nil {
		log.Printf("Sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Sweep completed %d expired bookings", count)
	}
}
