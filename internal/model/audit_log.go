package model

import "time"

// AuditLog records who did what to which entity. Written alongside every
// mutation, in the same transaction where one exists.
type AuditLog struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID       string    `gorm:"type:uuid;index" json:"actorId"`
	ActorUsername string    `gorm:"size:255" json:"actorUsername"`
	Action        string    `gorm:"size:64;index;not null" json:"action"` // create/update/delete/event
	Entity        string    `gorm:"size:64;not null" json:"entity"`
	EntityID      string    `gorm:"size:64;index" json:"entityId"`
	Detail        string    `gorm:"size:1024" json:"detail,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}
