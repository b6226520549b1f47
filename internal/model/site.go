package model

import "time"

// Site is a construction jobsite equipment gets allocated to.
type Site struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Address   string    `gorm:"size:512" json:"address"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
