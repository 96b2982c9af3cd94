package store

import "lab-reservation-backend/internal/model"

// ResourceAvailability pairs a resource with the approved booking covering
// the query instant (if any) and the next upcoming one.
type ResourceAvailability struct {
	Resource model.Resource `json:"resource"`
	Current  *model.Booking `json:"currentBooking,omitempty"`
	Next     *model.Booking `json:"nextBooking,omitempty"`
}
