package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fleet-backend/internal/mw"
	"fleet-backend/internal/session"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usuário e senha obrigatórios"})
		return
	}

	user, err := h.store.FindUserByUsername(c.Request.Context(), strings.ToLower(req.Username))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciais inválidas"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciais inválidas"})
		return
	}

	sessionID := uuid.NewString()
	err = h.sessions.Create(c.Request.Context(), sessionID, session.Session{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Login counters are best effort.
	_ = h.store.TouchUserLogin(c.Request.Context(), user.ID)

	h.setSessionCookie(c, sessionID, int(h.cfg.Session.TTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"displayName": user.DisplayName,
		"isAdmin":     user.IsAdmin,
	})
}

// Logout deletes the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(mw.SessionCookie); err == nil && ck.Value != "" {
		_ = h.sessions.Delete(c.Request.Context(), ck.Value)
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// WhoAmI returns the identity behind the current session.
func (h *Handler) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID":   c.GetString(mw.CtxUserID),
		"username": c.GetString(mw.CtxUsername),
		"isAdmin":  c.GetBool(mw.CtxIsAdmin),
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	secure := false
	for _, o := range h.cfg.Server.WebOrigins {
		if strings.HasPrefix(o, "https://") {
			secure = true
			break
		}
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
