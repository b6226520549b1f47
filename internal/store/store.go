package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fleet-backend/internal/alloc"
	"fleet-backend/internal/model"
)

// Sentinel errors surfaced to handlers. ErrAlreadyAllocated and
// ErrNoOpenDowntime are the persistence-level second line of defense behind
// the client-side eligibility filter.
var (
	ErrNotEligible      = errors.New("equipment is not eligible for this event type")
	ErrAlreadyAllocated = errors.New("equipment already has an open allocation")
	ErrNoOpenDowntime   = errors.New("no open downtime matches the referenced event")
	ErrEquipmentRetired = errors.New("equipment is inactive")
)

// Actor identifies who performs a mutation, for audit logging.
type Actor struct {
	ID       string
	Username string
}

// EventFilter narrows event history queries.
type EventFilter struct {
	MachineID string
	EventType alloc.EventType
	SiteID    string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// Store defines all database operations the API layer depends on.
type Store interface {
	DB() *gorm.DB

	// Equipment registry
	ListMachineTypes(ctx context.Context) ([]model.MachineType, error)
	CreateMachineType(ctx context.Context, mt *model.MachineType, actor Actor) error
	ListEquipment(ctx context.Context, onlyActive bool) ([]model.Equipment, error)
	FindEquipmentByID(ctx context.Context, id string) (*model.Equipment, error)
	CreateEquipment(ctx context.Context, eq *model.Equipment, actor Actor) error
	UpdateEquipment(ctx context.Context, eq *model.Equipment, actor Actor) error
	RetireEquipment(ctx context.Context, id string, actor Actor) error

	// Sites and suppliers
	ListSites(ctx context.Context, onlyActive bool) ([]model.Site, error)
	CreateSite(ctx context.Context, s *model.Site, actor Actor) error
	UpdateSite(ctx context.Context, s *model.Site, actor Actor) error
	ArchiveSite(ctx context.Context, id string, actor Actor) error
	ListSuppliers(ctx context.Context, onlyActive bool) ([]model.Supplier, error)
	CreateSupplier(ctx context.Context, s *model.Supplier, actor Actor) error
	UpdateSupplier(ctx context.Context, s *model.Supplier, actor Actor) error
	ArchiveSupplier(ctx context.Context, id string, actor Actor) error

	// Users
	CreateUser(ctx context.Context, u *model.User, actor Actor) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, q string, page, size int) ([]model.User, int64, error)
	DeleteUser(ctx context.Context, id string, actor Actor) error
	TouchUserLogin(ctx context.Context, userID string) error

	// Allocation events
	EventHistory(ctx context.Context, filter EventFilter) ([]model.AllocationEvent, error)
	AppendEvent(ctx context.Context, ev *model.AllocationEvent, docs []model.EventDocument, actor Actor) error
	FleetState(ctx context.Context) (alloc.FleetState, error)
	ProjectMachine(ctx context.Context, machineID string) (alloc.Projection, error)

	// Audit
	RecordAudit(ctx context.Context, entry model.AuditLog) error
	ListAudit(ctx context.Context, entity string, page, size int) ([]model.AuditLog, int64, error)

	// Reports
	UtilizationReport(ctx context.Context, from, to time.Time) ([]UtilizationRow, error)
	DowntimeReport(ctx context.Context, from, to time.Time) ([]DowntimeRow, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }
