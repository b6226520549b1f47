package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-backend/internal/mw"
)

// NewRouter creates and configures the Gin router.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	if origins := h.cfg.Server.WebOrigins; len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Cache-Control"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	rateLimiter := mw.RateLimiter(rate.Limit(h.cfg.Server.RateLimitPerSec), h.cfg.Server.RateLimitBurst)
	cacheStore := cache.New(h.cfg.Server.CacheTTL, 2*h.cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, h.cfg.Server.CacheTTL)
	authMW := mw.AuthRequired(h.sessions)
	adminMW := mw.AdminOnly()

	api := r.Group("/api")
	api.Use(rateLimiter)

	// Public
	api.POST("/auth/login", h.Login)
	api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

	auth := api.Group("", authMW)
	{
		auth.POST("/auth/logout", h.Logout)
		auth.GET("/auth/whoami", h.WhoAmI)

		// Equipment registry
		auth.GET("/machine-types", h.ListMachineTypes)
		auth.GET("/equipment", h.ListEquipment)
		auth.GET("/equipment/:id", h.GetEquipment)
		auth.GET("/equipment/:id/state", h.GetEquipmentState)
		auth.GET("/fleet/state", caching, h.GetFleetState)

		// Sites and suppliers (reads)
		auth.GET("/sites", h.ListSites)
		auth.GET("/suppliers", h.ListSuppliers)

		// Allocation events
		auth.GET("/events", h.ListEvents)
		auth.GET("/events/eligible-equipment", h.EligibleEquipment)
		auth.POST("/events", h.CreateEvent)

		// Reports
		auth.GET("/reports/utilization", caching, h.UtilizationReport)
		auth.GET("/reports/downtime", caching, h.DowntimeReport)

		// Watch subscriptions
		auth.GET("/subscriptions", h.GetSubscription)
		auth.PUT("/subscriptions", h.PutSubscription)
		auth.DELETE("/subscriptions", h.DeleteSubscription)
	}

	admin := api.Group("", authMW, adminMW)
	{
		admin.POST("/machine-types", h.CreateMachineType)
		admin.POST("/equipment", h.CreateEquipment)
		admin.PUT("/equipment/:id", h.UpdateEquipment)
		admin.DELETE("/equipment/:id", h.RetireEquipment)

		admin.POST("/sites", h.CreateSite)
		admin.PUT("/sites/:id", h.UpdateSite)
		admin.DELETE("/sites/:id", h.ArchiveSite)

		admin.POST("/suppliers", h.CreateSupplier)
		admin.PUT("/suppliers/:id", h.UpdateSupplier)
		admin.DELETE("/suppliers/:id", h.ArchiveSupplier)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.DELETE("/users/:id", h.DeleteUser)

		admin.GET("/audit", h.ListAudit)
	}

	return r
}
