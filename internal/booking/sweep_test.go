package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-reservation-backend/internal/model"
)

func elapsedBooking(id string) model.Booking {
	b := approvedBooking()
	b.ID = id
	return *b
}

func TestRunExpirationSweep(t *testing.T) {
	due := []model.Booking{elapsedBooking("b-1"), elapsedBooking("b-2")}
	st := &mockStore{
		listDueFunc: func(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
			assert.Equal(t, time.Date(2024, 6, 10, 10, 1, 0, 0, time.UTC), cutoff)
			return due, nil
		},
		getBookingFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			for i := range due {
				if due[i].ID == id {
					copied := due[i]
					return &copied, nil
				}
			}
			return nil, errors.New("unexpected booking id")
		},
		getResourceFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			res := testResource()
			res.Status = model.ResourceBooked
			return res, nil
		},
	}
	rec := &recorderNotifier{}
	svc := newEngine(st, rec, testNow)

	now := time.Date(2024, 6, 10, 10, 1, 0, 0, time.UTC)
	count, err := svc.RunExpirationSweep(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, st.saved, 2)
	for _, b := range st.saved {
		assert.Equal(t, model.BookingCompleted, b.Status)
	}
	// Both bookings share r-1; with no active bookings left it is released.
	assert.Contains(t, st.statusWrites, statusWrite{resourceID: "r-1", status: model.ResourceAvailable})
	assert.ElementsMatch(t, []string{"b-1", "b-2"}, rec.expired)
}

func TestSweepRechecksUnderLock(t *testing.T) {
	st := &mockStore{
		listDueFunc: func(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
			return []model.Booking{elapsedBooking("b-1")}, nil
		},
		// A concurrent cancel won the race: the reloaded row is no longer
		// approved, so the sweep must leave it alone.
		getBookingFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := approvedBooking()
			b.Status = model.BookingCancelled
			return b, nil
		},
	}
	rec := &recorderNotifier{}
	svc := newEngine(st, rec, testNow)

	count, err := svc.RunExpirationSweep(context.Background(), time.Date(2024, 6, 10, 10, 1, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, st.saved)
	assert.True(t, rec.empty())
}

func TestSweepHonoursMinuteCutoff(t *testing.T) {
	st := &mockStore{
		listDueFunc: func(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
			return []model.Booking{elapsedBooking("b-1")}, nil
		},
		getBookingFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return approvedBooking(), nil
		},
	}
	rec := &recorderNotifier{}
	svc := newEngine(st, rec, testNow)

	// 10:00:30 truncates to 10:00, and the booking ends at 10:00 exactly:
	// not elapsed yet.
	count, err := svc.RunExpirationSweep(context.Background(), time.Date(2024, 6, 10, 10, 0, 30, 0, time.UTC))

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, st.saved)
	assert.True(t, rec.empty())
}

func TestSweepIsolatesFailures(t *testing.T) {
	due := []model.Booking{elapsedBooking("b-1"), elapsedBooking("b-2")}
	st := &mockStore{
		listDueFunc: func(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
			return due, nil
		},
		getBookingFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			for i := range due {
				if due[i].ID == id {
					copied := due[i]
					return &copied, nil
				}
			}
			return nil, errors.New("unexpected booking id")
		},
		getResourceFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return testResource(), nil
		},
		saveBookingFunc: func(ctx context.Context, b *model.Booking) error {
			if b.ID == "b-1" {
				return errors.New("disk full")
			}
			return nil
		},
	}
	rec := &recorderNotifier{}
	svc := newEngine(st, rec, testNow)

	count, err := svc.RunExpirationSweep(context.Background(), time.Date(2024, 6, 10, 10, 1, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"b-2"}, rec.expired)
}

func TestSweepScanError(t *testing.T) {
	st := &mockStore{
		listDueFunc: func(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newEngine(st, &recorderNotifier{}, testNow)

	count, err := svc.RunExpirationSweep(context.Background(), testNow)

	assert.Error(t, err)
	assert.Zero(t, count)
}
