package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"fleet-backend/config"
	"fleet-backend/internal/notification"
	"fleet-backend/internal/session"
	"fleet-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	sessions *session.Store
	notifier *notification.WorkerPool
	webpush  *webpush.Options
	cfg      *config.Config
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, sessions *session.Store, notifier *notification.WorkerPool, webpushOptions *webpush.Options, cfg *config.Config) *Handler {
	return &Handler{
		store:    s,
		sessions: sessions,
		notifier: notifier,
		webpush:  webpushOptions,
		cfg:      cfg,
	}
}

// actor extracts the audit identity AuthRequired stored in the context.
func actor(c *gin.Context) store.Actor {
	return store.Actor{
		ID:       c.GetString("userID"),
		Username: c.GetString("username"),
	}
}
