package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	sweepFunc func(ctx context.Context, now time.Time) (int, error)
}

func (m *mockEngine) RunExpirationSweep(ctx context.Context, now time.Time) (int, error) {
	if m.sweepFunc != nil {
		return m.sweepFunc(ctx, now)
	}
	return 0, nil
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time { return f.now }

func TestSweeperRunsImmediatelyThenOnInterval(t *testing.T) {
	calls := make(chan time.Time, 8)
	engine := &mockEngine{
		sweepFunc: func(ctx context.Context, now time.Time) (int, error) {
			calls <- now
			return 1, nil
		},
	}
	fixed := time.Date(2024, 6, 10, 10, 1, 0, 0, time.UTC)

	s := New(engine, fakeClock{now: fixed}, 10*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case got := <-calls:
			assert.Equal(t, fixed, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("sweep %d did not run", i+1)
		}
	}
}

func TestSweeperStopHaltsLoop(t *testing.T) {
	calls := make(chan struct{}, 8)
	engine := &mockEngine{
		sweepFunc: func(ctx context.Context, now time.Time) (int, error) {
			calls <- struct{}{}
			return 0, nil
		},
	}

	s := New(engine, nil, 10*time.Millisecond)
	s.Start(context.Background())

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("initial sweep did not run")
	}

	s.Stop()

	// Drain anything that raced the shutdown, then confirm silence.
	for {
		select {
		case <-calls:
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}
	select {
	case <-calls:
		t.Fatal("sweep ran after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSweeperStopWithoutStart(t *testing.T) {
	s := New(&mockEngine{}, nil, time.Minute)
	assert.NotPanics(t, func() { s.Stop() })
}

func TestSweeperKeepsRunningAfterError(t *testing.T) {
	calls := make(chan struct{}, 8)
	engine := &mockEngine{
		sweepFunc: func(ctx context.Context, now time.Time) (int, error) {
			calls <- struct{}{}
			return 0, assert.AnError
		},
	}

	s := New(engine, nil, 10*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			require.Failf(t, "loop stalled", "sweep %d did not run after error", i+1)
		}
	}
}
