package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"lab-reservation-backend/internal/model"
)

// Store is the narrow persistence surface the emitter needs.
type Store interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListAdmins(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
}

// Service records booking lifecycle notifications. Recording is
// best-effort per recipient: one failure is logged and the remaining
// recipients still get theirs. Nothing here ever fails a transition.
type Service struct {
	store Store
}

// New creates a notification emitter backed by the given store.
func New(store Store) *Service {
	return &Service{store: store}
}

// BookingCreated notifies every admin of a new pending request.
func (s *Service) BookingCreated(ctx context.Context, booking *model.Booking) {
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		log.Printf("notifier: failed to list admins for booking %s: %v", booking.ID, err)
		return
	}

	res := s.lookupResource(ctx, booking.ResourceID)
	requester := s.lookupUserName(ctx, booking.UserID)
	message := fmt.Sprintf("%s requested %s %s.", requester, resourceLabel(res, booking), describeInterval(booking))
	data := s.payload(booking, res, "", "")

	for _, admin := range admins {
		s.record(ctx, admin.ID, model.NotifyInfo, "New booking request", message, data)
	}
}

// BookingApproved notifies the owner that an admin approved the booking.
func (s *Service) BookingApproved(ctx context.Context, booking *model.Booking, actorID string) {
	res := s.lookupResource(ctx, booking.ResourceID)
	message := fmt.Sprintf("Your booking for %s %s has been approved.", resourceLabel(res, booking), describeInterval(booking))
	s.record(ctx, booking.UserID, model.NotifySuccess, "Booking approved", message, s.payload(booking, res, actorID, ""))
}

// BookingRejected notifies the owner, including the rejection reason.
func (s *Service) BookingRejected(ctx context.Context, booking *model.Booking, actorID string) {
	res := s.lookupResource(ctx, booking.ResourceID)
	message := fmt.Sprintf("Your booking for %s %s was rejected: %s", resourceLabel(res, booking), describeInterval(booking), booking.RejectionReason)
	s.record(ctx, booking.UserID, model.NotifyError, "Booking rejected", message, s.payload(booking, res, actorID, booking.RejectionReason))
}

// BookingCancelled notifies the owner that the booking was withdrawn.
func (s *Service) BookingCancelled(ctx context.Context, booking *model.Booking, actorID string) {
	res := s.lookupResource(ctx, booking.ResourceID)
	message := fmt.Sprintf("Your booking for %s %s has been cancelled.", resourceLabel(res, booking), describeInterval(booking))
	s.record(ctx, booking.UserID, model.NotifyInfo, "Booking cancelled", message, s.payload(booking, res, actorID, ""))
}

// BookingExpired records the paired completion notices: the owner gets an
// informational one, every admin a success one.
func (s *Service) BookingExpired(ctx context.Context, booking *model.Booking) {
	res := s.lookupResource(ctx, booking.ResourceID)
	label := resourceLabel(res, booking)
	data := s.payload(booking, res, "", "")

	ownerMsg := fmt.Sprintf("Your booking for %s %s has ended and the resource was released.", label, describeInterval(booking))
	s.record(ctx, booking.UserID, model.NotifyInfo, "Booking completed", ownerMsg, data)

	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		log.Printf("notifier: failed to list admins for booking %s: %v", booking.ID, err)
		return
	}
	adminMsg := fmt.Sprintf("Booking on %s %s has completed.", label, describeInterval(booking))
	for _, admin := range admins {
		s.record(ctx, admin.ID, model.NotifySuccess, "Booking completed", adminMsg, data)
	}
}

// record persists one notification, logging instead of propagating errors.
func (s *Service) record(ctx context.Context, userID string, typ model.NotificationType, title, message string, data datatypes.JSON) {
	n := &model.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		log.Printf("notifier: failed to record %q for user %s: %v", title, userID, err)
	}
}

func (s *Service) payload(booking *model.Booking, res *model.Resource, actorID, reason string) datatypes.JSON {
	data := model.NotificationData{
		BookingID:  booking.ID,
		ResourceID: booking.ResourceID,
		ActorID:    actorID,
		Reason:     reason,
	}
	if res != nil {
		data.ResourceName = res.Name
		data.Specification = res.Specification
	}
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("notifier: failed to marshal payload for booking %s: %v", booking.ID, err)
		return nil
	}
	return datatypes.JSON(raw)
}

// lookupResource is best-effort; callers fall back to the resource id.
func (s *Service) lookupResource(ctx context.Context, id string) *model.Resource {
	res, err := s.store.GetResource(ctx, id)
	if err != nil {
		log.Printf("notifier: failed to load resource %s: %v", id, err)
		return nil
	}
	return res
}

// lookupUserName is best-effort; it falls back to the user id.
func (s *Service) lookupUserName(ctx context.Context, id string) string {
	user, err := s.store.GetUser(ctx, id)
	if err != nil || user.Name == "" {
		return id
	}
	return user.Name
}

func resourceLabel(res *model.Resource, booking *model.Booking) string {
	if res != nil && res.Name != "" {
		return res.Name
	}
	return booking.ResourceID
}

func describeInterval(b *model.Booking) string {
	if b.StartDate == b.EndDate {
		return fmt.Sprintf("on %s from %s to %s", b.StartDate, b.StartTime, b.EndTime)
	}
	return fmt.Sprintf("from %s %s to %s %s", b.StartDate, b.StartTime, b.EndDate, b.EndTime)
}
