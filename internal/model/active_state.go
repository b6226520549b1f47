package model

import "time"

// ActiveAllocation is the hot-table row for a machine's open allocation. The
// machine ID is the primary key, so the database itself rejects a second open
// allocation for the same machine even when two clients race past the
// client-side eligibility filter. Rows are maintained transactionally next to
// the event append and removed when the allocation closes.
type ActiveAllocation struct {
	MachineID        string     `gorm:"type:uuid;primaryKey" json:"machineId"`
	EventID          string     `gorm:"type:uuid;not null" json:"eventId"`
	SiteID           string     `gorm:"type:uuid;index;not null" json:"siteId"`
	SiteTitle        string     `gorm:"size:256" json:"siteTitle"`
	ConstructionType string     `gorm:"size:16" json:"constructionType,omitempty"`
	LotBuilding      string     `gorm:"size:64" json:"lotBuildingNumber,omitempty"`
	AllocationStart  time.Time  `gorm:"not null" json:"allocationStart"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ActiveDowntime is the hot-table row for a machine's open downtime. Same
// primary-key construction as ActiveAllocation: at most one open downtime per
// machine. A row only exists while the machine also has an ActiveAllocation.
type ActiveDowntime struct {
	MachineID   string    `gorm:"type:uuid;primaryKey" json:"machineId"`
	EventID     string    `gorm:"type:uuid;not null" json:"eventId"`
	Reason      string    `gorm:"size:256;not null" json:"reason"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	StartedAt   time.Time `gorm:"not null" json:"startedAt"`
}
