package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-reservation-backend/internal/booking"
	"lab-reservation-backend/internal/interval"
	"lab-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	engine *booking.Service
	clock  booking.Clock
}

// NewHandler creates a new API handler. A nil clock falls back to the
// system clock.
func NewHandler(s store.Store, engine *booking.Service, clock booking.Clock) *Handler {
	if clock == nil {
		clock = booking.RealClock
	}
	return &Handler{store: s, engine: engine, clock: clock}
}

type errorMeta struct {
	status int
	code   string
}

var errorCodes = map[error]errorMeta{
	interval.ErrMissingFields:         {http.StatusBadRequest, "MISSING_FIELDS"},
	interval.ErrClosureDayStart:       {http.StatusBadRequest, "CLOSURE_DAY_START"},
	interval.ErrClosureDayEnd:         {http.StatusBadRequest, "CLOSURE_DAY_END"},
	interval.ErrEndBeforeStart:        {http.StatusBadRequest, "END_BEFORE_START"},
	interval.ErrDurationTooLong:       {http.StatusBadRequest, "DURATION_TOO_LONG"},
	interval.ErrEndBeforeStartInstant: {http.StatusBadRequest, "END_BEFORE_START_INSTANT"},
	interval.ErrDurationTooShort:      {http.StatusBadRequest, "DURATION_TOO_SHORT"},
	booking.ErrMissingRejectionReason: {http.StatusBadRequest, "MISSING_REJECTION_REASON"},
	booking.ErrResourceNotFound:       {http.StatusNotFound, "RESOURCE_NOT_FOUND"},
	booking.ErrBookingNotFound:        {http.StatusNotFound, "BOOKING_NOT_FOUND"},
	booking.ErrForbidden:              {http.StatusForbidden, "FORBIDDEN"},
	booking.ErrInvalidStatus:          {http.StatusConflict, "INVALID_STATUS"},
	booking.ErrInvalidState:           {http.StatusConflict, "INVALID_STATE"},
	booking.ErrBookingConflict:        {http.StatusConflict, "BOOKING_CONFLICT"},
}

// writeError renders the uniform error envelope. Known sentinels map to a
// stable code and status; anything else is a 500 and gets logged.
func writeError(c *gin.Context, err error) {
	for sentinel, meta := range errorCodes {
		if errors.Is(err, sentinel) {
			c.JSON(meta.status, gin.H{"error": sentinel.Error(), "code": meta.code})
			return
		}
	}
	log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
}
