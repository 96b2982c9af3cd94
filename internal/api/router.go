package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"lab-reservation-backend/config"
	"lab-reservation-backend/internal/booking"
	"lab-reservation-backend/internal/mw"
	"lab-reservation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, engine *booking.Service, clock booking.Clock) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, clock)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)
	auth := mw.Auth(cfg.Auth.JWTSecret, s)

	// The resources listing is identical for every caller, so a short
	// cache soaks up dashboard polling. A non-positive TTL turns it off
	// (cache_ttl_seconds: -1 in the file).
	resourceRoutes := []gin.HandlerFunc{handler.ListResources}
	if cfg.Server.CacheTTLSeconds > 0 {
		cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
		caching := mw.Cache(cache.New(cacheTTL, 2*cacheTTL), cacheTTL)
		resourceRoutes = []gin.HandlerFunc{caching, handler.ListResources}
	}

	api := r.Group("/api")
	api.Use(rateLimiter, auth)
	{
		api.GET("/resources", resourceRoutes...)
		api.GET("/resources/:id", handler.GetResource)

		api.POST("/bookings", handler.CreateBooking)
		api.GET("/bookings", handler.ListMyBookings)
		api.POST("/bookings/:id/cancel", handler.CancelBooking)

		api.GET("/notifications", handler.ListNotifications)
		api.DELETE("/notifications/:id", handler.DeleteNotification)

		admin := api.Group("/admin")
		admin.Use(mw.AdminOnly())
		{
			admin.GET("/bookings", handler.ListAllBookings)
			admin.PATCH("/bookings/:id/status", handler.SetBookingStatus)
			admin.PATCH("/bookings/:id", handler.RescheduleBooking)
			admin.POST("/sweep", handler.RunSweep)

			admin.POST("/resources", handler.CreateResource)
			admin.PATCH("/resources/:id", handler.UpdateResource)
			admin.DELETE("/resources/:id", handler.DeleteResource)
		}
	}

	return r
}
