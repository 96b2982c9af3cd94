package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lab-reservation-backend/internal/booking"
	"lab-reservation-backend/internal/interval"
	"lab-reservation-backend/internal/model"
	"lab-reservation-backend/internal/mw"
	"lab-reservation-backend/internal/store"
)

// ListResources handles GET /api/resources. Each resource is annotated
// with the approved booking covering this instant and the next upcoming
// one.
func (h *Handler) ListResources(c *gin.Context) {
	cutoff := interval.Cutoff(h.clock.Now())
	resources, err := h.store.ListResourceAvailability(c.Request.Context(), cutoff)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

// GetResource handles GET /api/resources/:id.
func (h *Handler) GetResource(c *gin.Context) {
	res, err := h.store.GetResource(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, booking.ErrResourceNotFound)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type createResourceRequest struct {
	Name          string `json:"name" binding:"required"`
	Location      string `json:"location"`
	Specification string `json:"specification"`
}

// CreateResource handles POST /api/admin/resources.
func (h *Handler) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := &model.Resource{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Location:      req.Location,
		Specification: req.Specification,
		Status:        model.ResourceAvailable,
	}
	if err := h.store.CreateResource(c.Request.Context(), res); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type updateResourceRequest struct {
	Name          *string `json:"name"`
	Location      *string `json:"location"`
	Specification *string `json:"specification"`
	Maintenance   *bool   `json:"maintenance"`
}

// UpdateResource handles PATCH /api/admin/resources/:id. Descriptive
// fields are patched directly; the status can only be influenced through
// the maintenance flag, availability stays engine-owned.
func (h *Handler) UpdateResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	res, err := h.store.GetResource(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, booking.ErrResourceNotFound)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if req.Name != nil || req.Location != nil || req.Specification != nil {
		if req.Name != nil {
			res.Name = *req.Name
		}
		if req.Location != nil {
			res.Location = *req.Location
		}
		if req.Specification != nil {
			res.Specification = *req.Specification
		}
		if err := h.store.UpdateResourceInfo(ctx, res); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(c, booking.ErrResourceNotFound)
				return
			}
			writeError(c, err)
			return
		}
	}

	if req.Maintenance != nil {
		res, err = h.engine.SetMaintenance(ctx, mw.CurrentUser(c), res.ID, *req.Maintenance)
		if err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, res)
}

// DeleteResource handles DELETE /api/admin/resources/:id. Resources with
// booking history are kept so past bookings stay explainable.
func (h *Handler) DeleteResource(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	count, err := h.store.CountBookingsForResource(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "resource has bookings", "code": "RESOURCE_IN_USE"})
		return
	}

	if err := h.store.DeleteResource(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, booking.ErrResourceNotFound)
			return
		}
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
