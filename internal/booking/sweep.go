package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lab-reservation-backend/internal/interval"
	"lab-reservation-backend/internal/model"
	"lab-reservation-backend/internal/store"
)

// RunExpirationSweep expires every approved booking whose end has passed
// relative to now and returns the number processed. A failure on one
// booking is logged and does not abort the rest. Safe to re-run: expired
// bookings are already completed and no longer match.
func (s *Service) RunExpirationSweep(ctx context.Context, now time.Time) (int, error) {
	cutoff := interval.Cutoff(now)
	due, err := s.store.ListDueBookings(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to scan for due bookings: %w", err)
	}

	processed := 0
	for i := range due {
		expired, err := s.expireOne(ctx, due[i].ID, cutoff)
		if err != nil {
			log.Printf("sweep: failed to expire booking %s: %v", due[i].ID, err)
			continue
		}
		if expired {
			processed++
		}
	}
	if len(due) > 0 {
		log.Printf("sweep: expired %d of %d due bookings", processed, len(due))
	}
	return processed, nil
}

// expireOne performs the expire transition for a single booking. The due
// predicate is re-checked under the row lock so a concurrent manual
// transition makes this a no-op instead of a double transition.
func (s *Service) expireOne(ctx context.Context, bookingID string, cutoff time.Time) (bool, error) {
	var booking *model.Booking
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if b.Status != model.BookingApproved || !b.EndsAt.Before(cutoff) {
			return nil
		}

		b.Status = model.BookingCompleted
		if err := tx.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
		}
		if err := s.syncResource(ctx, tx, b.ResourceID, cutoff); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil || booking == nil {
		return false, err
	}

	s.notifier.BookingExpired(ctx, booking)
	return true, nil
}
