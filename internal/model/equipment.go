package model

import "time"

// Ownership values for equipment.
const (
	OwnershipOwned  = "owned"
	OwnershipRented = "rented"
)

// Equipment is a machine or an attachment in the fleet. Identity is immutable;
// rates and the active flag are administrative and may change over time.
type Equipment struct {
	ID            string  `gorm:"type:uuid;primaryKey" json:"id"`
	UnitNumber    string  `gorm:"uniqueIndex;size:64;not null" json:"unitNumber"`
	MachineTypeID string  `gorm:"type:uuid;index;not null" json:"machineTypeId"`
	OwnershipType string  `gorm:"size:16;not null;default:'owned'" json:"ownershipType"`
	SupplierID    *string `gorm:"type:uuid;index" json:"supplierId,omitempty"`
	HourlyRate    float64 `json:"hourlyRate"`
	Active        bool    `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	MachineType MachineType `json:"machineType"`
	Supplier    *Supplier   `json:"supplier,omitempty"`
}
