package model

import "time"

// MachineType classifies equipment. IsAttachment distinguishes implements
// (buckets, forks, breakers) from primary machines.
type MachineType struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	IsAttachment bool      `gorm:"not null;default:false" json:"isAttachment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
