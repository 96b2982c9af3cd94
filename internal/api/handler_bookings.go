package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-reservation-backend/internal/booking"
	"lab-reservation-backend/internal/interval"
	"lab-reservation-backend/internal/model"
	"lab-reservation-backend/internal/mw"
)

type createBookingRequest struct {
	ResourceID string            `json:"resourceId"`
	StartDate  string            `json:"startDate"`
	EndDate    string            `json:"endDate"`
	StartTime  string            `json:"startTime"`
	EndTime    string            `json:"endTime"`
	Reason     string            `json:"reason"`
	Project    model.ProjectMeta `json:"project"`
}

// CreateBooking handles POST /api/bookings. Field checks are left to the
// engine so their order of precedence holds; a body that does not decode
// is reported the same way as absent fields.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, interval.ErrMissingFields)
		return
	}

	user := mw.CurrentUser(c)
	b, err := h.engine.Create(c.Request.Context(), user.ID, booking.CreateRequest{
		ResourceID: req.ResourceID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
		Project:    req.Project,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListMyBookings handles GET /api/bookings.
func (h *Handler) ListMyBookings(c *gin.Context) {
	user := mw.CurrentUser(c)
	bookings, err := h.store.ListBookingsByUser(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.engine.Cancel(c.Request.Context(), mw.CurrentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListAllBookings handles GET /api/admin/bookings. Requester and resource
// are embedded so the review queue renders without extra lookups.
func (h *Handler) ListAllBookings(c *gin.Context) {
	bookings, err := h.store.ListBookings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

type setStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
}

// SetBookingStatus handles PATCH /api/admin/bookings/:id/status.
func (h *Handler) SetBookingStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	target, ok := model.ParseBookingStatus(req.Status)
	if !ok {
		writeError(c, booking.ErrInvalidStatus)
		return
	}

	b, err := h.engine.SetStatus(c.Request.Context(), mw.CurrentUser(c), c.Param("id"), target, req.RejectionReason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type rescheduleRequest struct {
	ResourceID string `json:"resourceId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	EndDate    string `json:"endDate"`
}

// RescheduleBooking handles PATCH /api/admin/bookings/:id. Omitted fields
// keep their current value; the start date cannot be moved.
func (h *Handler) RescheduleBooking(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.engine.Reschedule(c.Request.Context(), mw.CurrentUser(c), c.Param("id"), booking.RescheduleRequest{
		ResourceID: req.ResourceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		EndDate:    req.EndDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RunSweep handles POST /api/admin/sweep, a manual trigger for the same
// pass the background sweeper runs.
func (h *Handler) RunSweep(c *gin.Context) {
	count, err := h.engine.RunExpirationSweep(c.Request.Context(), h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}
