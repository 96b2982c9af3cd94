package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-reservation-backend/internal/mw"
	"lab-reservation-backend/internal/store"
)

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	user := mw.CurrentUser(c)
	notifications, err := h.store.ListNotificationsByUser(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// DeleteNotification handles DELETE /api/notifications/:id. Users can only
// dismiss their own notices.
func (h *Handler) DeleteNotification(c *gin.Context) {
	user := mw.CurrentUser(c)
	err := h.store.DeleteNotification(c.Request.Context(), c.Param("id"), user.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found", "code": "NOTIFICATION_NOT_FOUND"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
