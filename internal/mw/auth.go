package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-backend/internal/session"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "fleet_session"

// Context keys set by AuthRequired.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxIsAdmin  = "isAdmin"
)

// AuthRequired rejects requests without a valid session cookie and puts the
// session's identity into the gin context for downstream handlers.
func AuthRequired(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(SessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		sess, err := sessions.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxUsername, sess.Username)
		c.Set(CtxIsAdmin, sess.IsAdmin)
		c.Next()
	}
}

// AdminOnly blocks non-admin sessions. Must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if admin, ok := c.Get(CtxIsAdmin); !ok || admin != true {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
