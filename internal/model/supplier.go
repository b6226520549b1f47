package model

import "time"

// Supplier is a rental company equipment can be sourced from.
type Supplier struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Document  string    `gorm:"size:32" json:"document"` // CNPJ
	Phone     string    `gorm:"size:32" json:"phone"`
	Email     string    `gorm:"size:256" json:"email"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
