package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lab-reservation-backend/internal/interval"
	"lab-reservation-backend/internal/model"
	"lab-reservation-backend/internal/store"
)

// Notifier records notices for booking lifecycle events. Implementations
// resolve recipients themselves and must never fail the calling
// transition; recording problems are theirs to log.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingApproved(ctx context.Context, booking *model.Booking, actorID string)
	BookingRejected(ctx context.Context, booking *model.Booking, actorID string)
	BookingCancelled(ctx context.Context, booking *model.Booking, actorID string)
	BookingExpired(ctx context.Context, booking *model.Booking)
}

// Service drives the booking state machine. Every transition runs in one
// store transaction: load the booking under a row lock, re-check guards,
// update it, then recompute the resource's availability projection from
// the post-update snapshot. Notifications are recorded after commit.
type Service struct {
	store    store.Store
	notifier Notifier
	clock    Clock
	rules    interval.Rules
}

// NewService creates the booking engine. A nil clock falls back to the
// system clock.
func NewService(st store.Store, notifier Notifier, clock Clock, rules interval.Rules) *Service {
	if clock == nil {
		clock = RealClock
	}
	return &Service{store: st, notifier: notifier, clock: clock, rules: rules}
}

// CreateRequest carries a booking request as submitted by a user.
type CreateRequest struct {
	ResourceID string
	StartDate  string
	EndDate    string
	StartTime  string
	EndTime    string
	Reason     string
	Project    model.ProjectMeta
}

// RescheduleRequest carries the fields an admin may change on an approved
// booking. Empty fields keep their current value; the start date is
// immutable.
type RescheduleRequest struct {
	ResourceID string
	StartTime  string
	EndTime    string
	EndDate    string
}

// Create validates the requested interval, checks the resource exists and
// persists a pending booking. Every admin is notified of the new request.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*model.Booking, error) {
	iv, err := interval.Validate(req.StartDate, req.EndDate, req.StartTime, req.EndTime, s.rules)
	if err != nil {
		return nil, err
	}

	res, err := s.store.GetResource(ctx, req.ResourceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		ResourceID: res.ID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		StartsAt:   iv.StartsAt,
		EndsAt:     iv.EndsAt,
		Reason:     req.Reason,
		Status:     model.BookingPending,
		Project:    req.Project,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.notifier.BookingCreated(ctx, booking)
	return booking, nil
}

// SetStatus applies an admin decision: approve, reject or cancel.
// Completed is system-assigned by the sweep and never accepted as a
// target. Approving re-checks that no other approved booking overlaps the
// interval on the same resource.
func (s *Service) SetStatus(ctx context.Context, actor *model.User, bookingID string, target model.BookingStatus, rejectionReason string) (*model.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	switch target {
	case model.BookingApproved, model.BookingRejected, model.BookingCancelled:
	default:
		return nil, ErrInvalidStatus
	}
	if target == model.BookingRejected && strings.TrimSpace(rejectionReason) == "" {
		return nil, ErrMissingRejectionReason
	}

	var booking *model.Booking
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if !model.CanTransition(b.Status, target) {
			return ErrInvalidStatus
		}

		if target == model.BookingApproved {
			overlapping, err := tx.CountOverlappingBookings(ctx, b.ResourceID, b.ID, b.StartsAt, b.EndsAt)
			if err != nil {
				return err
			}
			if overlapping > 0 {
				return ErrBookingConflict
			}
		}

		b.Status = target
		if target == model.BookingRejected {
			b.RejectionReason = rejectionReason
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
		}
		if err := s.syncResource(ctx, tx, b.ResourceID, interval.Cutoff(s.clock.Now())); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch target {
	case model.BookingApproved:
		s.notifier.BookingApproved(ctx, booking, actor.ID)
	case model.BookingRejected:
		s.notifier.BookingRejected(ctx, booking, actor.ID)
	case model.BookingCancelled:
		s.notifier.BookingCancelled(ctx, booking, actor.ID)
	}
	return booking, nil
}

// Cancel withdraws a booking. Owners may cancel their own booking while it
// is still pending; admins may cancel any non-terminal booking.
func (s *Service) Cancel(ctx context.Context, actor *model.User, bookingID string) (*model.Booking, error) {
	var booking *model.Booking
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return ErrInvalidState
		}
		if !actor.IsAdmin() {
			if b.UserID != actor.ID {
				return ErrForbidden
			}
			if b.Status != model.BookingPending {
				return ErrForbidden
			}
		}

		b.Status = model.BookingCancelled
		if err := tx.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
		}
		if err := s.syncResource(ctx, tx, b.ResourceID, interval.Cutoff(s.clock.Now())); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCancelled(ctx, booking, actor.ID)
	return booking, nil
}

// Reschedule moves an approved booking to a new resource, time window or
// end date. Creation-time field rules are not re-applied; the instants are
// recomputed and overlap against other approved bookings is still refused.
func (s *Service) Reschedule(ctx context.Context, actor *model.User, bookingID string, req RescheduleRequest) (*model.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var booking *model.Booking
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if b.Status != model.BookingApproved {
			return ErrInvalidState
		}

		oldResourceID := b.ResourceID
		if req.ResourceID != "" && req.ResourceID != b.ResourceID {
			if _, err := tx.GetResource(ctx, req.ResourceID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrResourceNotFound
				}
				return err
			}
			b.ResourceID = req.ResourceID
		}
		if req.StartTime != "" {
			b.StartTime = req.StartTime
		}
		if req.EndTime != "" {
			b.EndTime = req.EndTime
		}
		if req.EndDate != "" {
			b.EndDate = req.EndDate
		}

		startsAt, err := interval.Combine(b.StartDate, b.StartTime, s.rules.Location)
		if err != nil {
			return interval.ErrMissingFields
		}
		endsAt, err := interval.Combine(b.EndDate, b.EndTime, s.rules.Location)
		if err != nil {
			return interval.ErrMissingFields
		}
		b.StartsAt, b.EndsAt = startsAt, endsAt

		overlapping, err := tx.CountOverlappingBookings(ctx, b.ResourceID, b.ID, b.StartsAt, b.EndsAt)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrBookingConflict
		}

		if err := tx.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
		}

		cutoff := interval.Cutoff(s.clock.Now())
		if err := s.syncResource(ctx, tx, b.ResourceID, cutoff); err != nil {
			return err
		}
		if oldResourceID != b.ResourceID {
			if err := s.syncResource(ctx, tx, oldResourceID, cutoff); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// SetMaintenance flips a resource into maintenance, or clears the flag and
// recomputes the availability projection. This is the only sanctioned
// manual write to resource status.
func (s *Service) SetMaintenance(ctx context.Context, actor *model.User, resourceID string, enabled bool) (*model.Resource, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var out *model.Resource
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		res, err := tx.GetResource(ctx, resourceID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrResourceNotFound
		}
		if err != nil {
			return err
		}

		target := model.ResourceMaintenance
		if !enabled {
			active, err := tx.CountActiveBookings(ctx, res.ID, "", interval.Cutoff(s.clock.Now()))
			if err != nil {
				return err
			}
			target = model.ResourceAvailable
			if active > 0 {
				target = model.ResourceBooked
			}
		}
		if res.Status != target {
			if err := tx.SetResourceStatus(ctx, res.ID, target); err != nil {
				return err
			}
			res.Status = target
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// syncResource recomputes the availability projection of a resource from
// the approved bookings that have not elapsed at the cutoff. A manually
// flagged maintenance status always wins and is left untouched.
func (s *Service) syncResource(ctx context.Context, tx store.Store, resourceID string, cutoff time.Time) error {
	res, err := tx.GetResource(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("failed to load resource %s for sync: %w", resourceID, err)
	}
	if res.Status == model.ResourceMaintenance {
		return nil
	}

	active, err := tx.CountActiveBookings(ctx, resourceID, "", cutoff)
	if err != nil {
		return err
	}
	target := model.ResourceAvailable
	if active > 0 {
		target = model.ResourceBooked
	}
	if res.Status == target {
		return nil
	}
	return tx.SetResourceStatus(ctx, resourceID, target)
}
