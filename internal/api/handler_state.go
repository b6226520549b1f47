package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-backend/internal/alloc"
)

// GetEquipmentState re-derives one machine's projected state from its full
// event history. Integrity warnings ride along in the payload and are logged.
func (h *Handler) GetEquipmentState(c *gin.Context) {
	machineID := c.Param("id")
	if _, err := h.store.FindEquipmentByID(c.Request.Context(), machineID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "equipment not found"})
		return
	}

	projection, err := h.store.ProjectMachine(c.Request.Context(), machineID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to project machine state"})
		return
	}
	for _, w := range projection.Warnings {
		log.Printf("integrity warning for machine %s: %s", machineID, w.Message)
	}
	c.JSON(http.StatusOK, projection)
}

// fleetStateResponse flattens the hot tables for the dashboard.
type fleetStateResponse struct {
	ActiveAllocations []*alloc.ActiveAllocation `json:"activeAllocations"`
	ActiveDowntimes   []*alloc.ActiveDowntime   `json:"activeDowntimes"`
}

// GetFleetState returns every open allocation and downtime.
func (h *Handler) GetFleetState(c *gin.Context) {
	state, err := h.store.FleetState(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load fleet state"})
		return
	}

	resp := fleetStateResponse{
		ActiveAllocations: make([]*alloc.ActiveAllocation, 0, len(state.Allocations)),
		ActiveDowntimes:   make([]*alloc.ActiveDowntime, 0, len(state.Downtimes)),
	}
	for _, a := range state.Allocations {
		resp.ActiveAllocations = append(resp.ActiveAllocations, a)
	}
	for _, d := range state.Downtimes {
		resp.ActiveDowntimes = append(resp.ActiveDowntimes, d)
	}
	c.JSON(http.StatusOK, resp)
}
