package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleet-backend/internal/alloc"
	"fleet-backend/internal/model"
	"fleet-backend/internal/store"
)

// ListEvents returns the allocation event history, filterable by machine,
// type, site and date range.
func (h *Handler) ListEvents(c *gin.Context) {
	filter := store.EventFilter{
		MachineID: c.Query("machine_id"),
		SiteID:    c.Query("site_id"),
		Limit:     200,
	}
	if raw := c.Query("type"); raw != "" {
		t, err := alloc.ParseEventType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.EventType = t
	}
	for _, q := range []struct {
		key string
		dst **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		if raw := c.Query(q.key); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %q timestamp, use RFC3339", q.key)})
				return
			}
			*q.dst = &ts
		}
	}

	events, err := h.store.EventHistory(c.Request.Context(), filter)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// EligibleEquipment answers which equipment may receive an event of the given
// type, from the current fleet state. Recomputed on every call.
func (h *Handler) EligibleEquipment(c *gin.Context) {
	t, err := alloc.ParseEventType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equipment, err := h.store.ListEquipment(c.Request.Context(), true)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve equipment"})
		return
	}
	state, err := h.store.FleetState(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load fleet state"})
		return
	}

	infos := make([]alloc.EquipmentInfo, len(equipment))
	for i, eq := range equipment {
		infos[i] = alloc.EquipmentInfo{
			ID:           eq.ID,
			UnitNumber:   eq.UnitNumber,
			IsAttachment: eq.MachineType.IsAttachment,
		}
	}
	c.JSON(http.StatusOK, alloc.EligibleEquipment(t, infos, state))
}

// eventPayload is the JSON part of the multipart event submission. Field names
// match the event record's wire contract.
type eventPayload struct {
	EventType           string     `json:"event_type"`
	MachineID           string     `json:"machine_id"`
	MachineTypeID       string     `json:"machine_type_id"`
	SupplierID          string     `json:"supplier_id"`
	SiteID              string     `json:"site_id"`
	EventDate           time.Time  `json:"event_date"`
	EndDate             *time.Time `json:"end_date"`
	ConstructionType    string     `json:"construction_type"`
	LotBuildingNumber   string     `json:"lot_building_number"`
	DowntimeReason      string     `json:"downtime_reason"`
	DowntimeDescription string     `json:"downtime_description"`
	CorrectsEventID     string     `json:"corrects_event_id"`
	Notes               string     `json:"notes"`
}

// CreateEvent accepts a multipart form with a "payload" JSON field and zero or
// more "documents" files, validates the draft, and appends it atomically.
func (h *Handler) CreateEvent(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}
	payloads := form.Value["payload"]
	if len(payloads) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one payload field expected"})
		return
	}

	var p eventPayload
	if err := json.Unmarshal([]byte(payloads[0]), &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	eventType, err := alloc.ParseEventType(p.EventType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files := form.File["documents"]
	for _, f := range files {
		if f.Size > h.cfg.Documents.MaxSizeBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("documento %s excede o tamanho máximo", f.Filename)})
			return
		}
	}

	draft := alloc.Draft{
		Type:                eventType,
		MachineID:           p.MachineID,
		MachineTypeID:       p.MachineTypeID,
		SupplierID:          p.SupplierID,
		SiteID:              p.SiteID,
		EventDate:           p.EventDate,
		EndDate:             p.EndDate,
		Construction:        alloc.ConstructionType(p.ConstructionType),
		LotBuilding:         p.LotBuildingNumber,
		DowntimeReason:      p.DowntimeReason,
		DowntimeDescription: p.DowntimeDescription,
		CorrectsEventID:     p.CorrectsEventID,
		Notes:               p.Notes,
		DocumentCount:       len(files),
	}
	if verr := alloc.Validate(draft); verr != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}

	ev := model.AllocationEvent{
		ID:                  uuid.NewString(),
		EventType:           eventType,
		MachineID:           optional(p.MachineID),
		MachineTypeID:       optional(p.MachineTypeID),
		SupplierID:          optional(p.SupplierID),
		SiteID:              optional(p.SiteID),
		EventDate:           p.EventDate,
		EndDate:             p.EndDate,
		ConstructionType:    p.ConstructionType,
		LotBuilding:         p.LotBuildingNumber,
		DowntimeReason:      p.DowntimeReason,
		DowntimeDescription: p.DowntimeDescription,
		CorrectsEventID:     optional(p.CorrectsEventID),
		Status:              alloc.StatusApproved,
		Notes:               p.Notes,
		CreatedBy:           actor(c).ID,
	}

	docs, err := h.saveDocuments(ev.ID, files, c.SaveUploadedFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.AppendEvent(c.Request.Context(), &ev, docs, actor(c)); err != nil {
		h.discardDocuments(docs)
		switch {
		case errors.Is(err, store.ErrNotEligible),
			errors.Is(err, store.ErrAlreadyAllocated),
			errors.Is(err, store.ErrNoOpenDowntime),
			errors.Is(err, store.ErrEquipmentRetired):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// A freed machine is news for its watchers.
	if ev.EventType == alloc.EventEndAllocation && ev.MachineID != nil && h.notifier != nil {
		h.notifier.Dispatch(*ev.MachineID)
	}

	c.JSON(http.StatusCreated, ev)
}

// saveDocuments writes uploaded files under the configured documents dir,
// namespaced by event ID.
func (h *Handler) saveDocuments(eventID string, files []*multipart.FileHeader, save func(*multipart.FileHeader, string) error) ([]model.EventDocument, error) {
	if len(files) == 0 {
		return nil, nil
	}
	dir := filepath.Join(h.cfg.Documents.Dir, eventID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document dir: %w", err)
	}

	docs := make([]model.EventDocument, 0, len(files))
	for _, f := range files {
		docID := uuid.NewString()
		dst := filepath.Join(dir, docID+"_"+filepath.Base(f.Filename))
		if err := save(f, dst); err != nil {
			return nil, fmt.Errorf("failed to store document %s: %w", f.Filename, err)
		}
		docs = append(docs, model.EventDocument{
			ID:          docID,
			FileName:    f.Filename,
			ContentType: f.Header.Get("Content-Type"),
			SizeBytes:   f.Size,
			StoragePath: dst,
		})
	}
	return docs, nil
}

// discardDocuments removes stored files after a failed append.
func (h *Handler) discardDocuments(docs []model.EventDocument) {
	for _, d := range docs {
		_ = os.Remove(d.StoragePath)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
