package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fleet-backend/internal/model"
)

// ListUsers handles GET /api/users?q=&page=&size= (admin).
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	users, total, err := h.store.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	IsAdmin     bool   `json:"isAdmin"`
}

// CreateUser handles POST /api/users (admin).
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	user := model.User{
		ID:           uuid.NewString(),
		Username:     strings.ToLower(req.Username),
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// DeleteUser handles DELETE /api/users/:id (admin). Every session the user
// holds is revoked in the same request.
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	_ = h.sessions.RevokeAllForUser(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// ListAudit handles GET /api/audit (admin).
func (h *Handler) ListAudit(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	entries, total, err := h.store.ListAudit(c.Request.Context(), c.Query("entity"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}
