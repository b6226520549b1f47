package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// reportRange parses the from/to query params, defaulting to the last 30 days.
func reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp, use RFC3339"})
			return from, to, false
		}
		from = ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp, use RFC3339"})
			return from, to, false
		}
		to = ts
	}
	return from, to, true
}

// UtilizationReport handles GET /api/reports/utilization.
func (h *Handler) UtilizationReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	rows, err := h.store.UtilizationReport(c.Request.Context(), from, to)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build utilization report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "rows": rows})
}

// DowntimeReport handles GET /api/reports/downtime.
func (h *Handler) DowntimeReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	rows, err := h.store.DowntimeReport(c.Request.Context(), from, to)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to build downtime report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "rows": rows})
}
