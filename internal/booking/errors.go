package booking

import "errors"

var (
	ErrResourceNotFound       = errors.New("resource not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrForbidden              = errors.New("actor is not allowed to perform this action")
	ErrInvalidStatus          = errors.New("target status is not allowed")
	ErrInvalidState           = errors.New("booking state does not allow this operation")
	ErrMissingRejectionReason = errors.New("rejection reason is required")
	ErrBookingConflict        = errors.New("another approved booking overlaps this interval")
)
