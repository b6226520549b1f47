package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-backend/config"
	"fleet-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := applyEnforcementDDL(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.MachineType{},
		&model.Supplier{},
		&model.Site{},
		&model.Equipment{},
		&model.AllocationEvent{},
		&model.EventDocument{},
		&model.ActiveAllocation{},
		&model.ActiveDowntime{},
		&model.User{},
		&model.AuditLog{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// applyEnforcementDDL adds the constraints AutoMigrate cannot express. The hot
// tables already reject double allocation through their primary keys; these
// statements keep the hot tables and the event log consistent at the SQL level.
func applyEnforcementDDL(db *gorm.DB) error {
	ddls := []string{
		// An open downtime row must belong to an open allocation; closing the
		// allocation sweeps the downtime with it.
		`ALTER TABLE active_downtimes
		   ADD CONSTRAINT fk_active_downtime_allocation
		   FOREIGN KEY (machine_id) REFERENCES active_allocations (machine_id)
		   ON DELETE CASCADE`,
		// History lookups are always per machine, newest first.
		`CREATE INDEX IF NOT EXISTS idx_events_machine_date_seq
		   ON allocation_events (machine_id, event_date DESC, seq DESC)`,
		// A downtime_start may be closed by at most one downtime_end.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_corrects_once
		   ON allocation_events (corrects_event_id)
		   WHERE corrects_event_id IS NOT NULL AND event_type = 'downtime_end'`,
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			// The FK add is not idempotent across restarts; duplicate-object
			// errors are harmless.
			log.Printf("DDL warning (query: %q): %v", ddl, err)
		}
	}
	return nil
}
