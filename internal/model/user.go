package model

import "time"

// User is an operator of the fleet dashboard.
type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName  string `gorm:"size:255;not null" json:"displayName"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"isAdmin"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
