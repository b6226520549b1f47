package model

import (
	"time"

	"fleet-backend/internal/alloc"
)

// AllocationEvent is one append-only fact in a machine's allocation history.
// Rows are never updated; later events supersede earlier ones, either through
// CorrectsEventID or by most-recent-wins projection.
//
// Seq is the integer primary key: it gives every event a creation sequence
// number, which breaks ties between events sharing the same EventDate. ID is
// the external identifier used on the wire.
type AllocationEvent struct {
	Seq           int64           `gorm:"primaryKey;autoIncrement" json:"seq"`
	ID            string          `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	EventType     alloc.EventType `gorm:"size:32;index;not null" json:"eventType"`
	MachineID     *string         `gorm:"type:uuid;index" json:"machineId,omitempty"`
	MachineTypeID *string         `gorm:"type:uuid" json:"machineTypeId,omitempty"`
	SupplierID    *string         `gorm:"type:uuid" json:"supplierId,omitempty"`
	SiteID        *string         `gorm:"type:uuid;index" json:"siteId,omitempty"`

	EventDate        time.Time  `gorm:"index;not null" json:"eventDate"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	ConstructionType string     `gorm:"size:16" json:"constructionType,omitempty"`
	LotBuilding      string     `gorm:"size:64" json:"lotBuildingNumber,omitempty"`

	DowntimeReason      string  `gorm:"size:256" json:"downtimeReason,omitempty"`
	DowntimeDescription string  `gorm:"size:1024" json:"downtimeDescription,omitempty"`
	CorrectsEventID     *string `gorm:"type:uuid;index" json:"correctsEventId,omitempty"`

	Status    alloc.EventStatus `gorm:"size:16;index;not null;default:'approved'" json:"status"`
	Notes     string            `gorm:"size:1024" json:"notes,omitempty"`
	CreatedBy string            `gorm:"type:uuid" json:"createdBy"`
	CreatedAt time.Time         `json:"createdAt"`

	// Associations
	Site      *Site           `json:"site,omitempty"`
	Documents []EventDocument `gorm:"foreignKey:EventID;references:ID" json:"documents,omitempty"`
}

// EventDocument is a file attached to an event at creation time. Certain event
// types require at least one.
type EventDocument struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     string    `gorm:"type:uuid;index;not null" json:"eventId"`
	FileName    string    `gorm:"size:256;not null" json:"fileName"`
	ContentType string    `gorm:"size:128" json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	StoragePath string    `gorm:"size:512;not null" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Core converts the persisted row into the projection core's event shape.
func (e AllocationEvent) Core() alloc.Event {
	ev := alloc.Event{
		ID:                  e.ID,
		Seq:                 e.Seq,
		Type:                e.EventType,
		EventDate:           e.EventDate,
		EndDate:             e.EndDate,
		Construction:        alloc.ConstructionType(e.ConstructionType),
		LotBuilding:         e.LotBuilding,
		DowntimeReason:      e.DowntimeReason,
		DowntimeDescription: e.DowntimeDescription,
		Status:              e.Status,
		Notes:               e.Notes,
	}
	if e.MachineID != nil {
		ev.MachineID = *e.MachineID
	}
	if e.MachineTypeID != nil {
		ev.MachineTypeID = *e.MachineTypeID
	}
	if e.SupplierID != nil {
		ev.SupplierID = *e.SupplierID
	}
	if e.SiteID != nil {
		ev.SiteID = *e.SiteID
	}
	if e.CorrectsEventID != nil {
		ev.CorrectsEventID = *e.CorrectsEventID
	}
	if e.Site != nil {
		ev.SiteTitle = e.Site.Title
	}
	return ev
}
