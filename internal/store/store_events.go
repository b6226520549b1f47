package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-backend/internal/alloc"
	"fleet-backend/internal/model"
)

// EventHistory returns events matching the filter, newest first (event_date
// descending, creation sequence breaking ties).
func (s *gormStore) EventHistory(ctx context.Context, filter EventFilter) ([]model.AllocationEvent, error) {
	tx := s.db.WithContext(ctx).Model(&model.AllocationEvent{}).
		Preload("Site").Preload("Documents").
		Order("event_date DESC, seq DESC")

	if filter.MachineID != "" {
		tx = tx.Where("machine_id = ?", filter.MachineID)
	}
	if filter.EventType != "" {
		tx = tx.Where("event_type = ?", filter.EventType)
	}
	if filter.SiteID != "" {
		tx = tx.Where("site_id = ?", filter.SiteID)
	}
	if filter.From != nil {
		tx = tx.Where("event_date >= ?", *filter.From)
	}
	if filter.To != nil {
		tx = tx.Where("event_date <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var events []model.AllocationEvent
	err := tx.Find(&events).Error
	return events, err
}

// AppendEvent persists one event atomically: it locks the target equipment,
// re-checks eligibility against the hot tables (the client-side filter is
// advisory only), inserts the event and its documents, maintains the
// active_allocations / active_downtimes hot tables and writes the audit entry.
// The ActiveAllocation primary key makes a double allocation impossible even
// if two submissions race past the eligibility re-check.
func (s *gormStore) AppendEvent(ctx context.Context, ev *model.AllocationEvent, docs []model.EventDocument, actor Actor) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = alloc.StatusApproved
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ev.MachineID != nil {
			if err := s.checkEligibilityLocked(tx, ev); err != nil {
				return err
			}
		}

		if err := tx.Create(ev).Error; err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}

		for i := range docs {
			docs[i].EventID = ev.ID
			if docs[i].ID == "" {
				docs[i].ID = uuid.NewString()
			}
		}
		if len(docs) > 0 {
			if err := tx.Create(&docs).Error; err != nil {
				return fmt.Errorf("failed to attach documents: %w", err)
			}
		}

		// Pending and rejected events never touch the projected state.
		if ev.Status == alloc.StatusApproved && ev.MachineID != nil {
			if err := s.applyToHotTables(tx, ev); err != nil {
				return err
			}
		}

		return s.auditTx(tx, actor, "event", "allocation_event", ev.ID, string(ev.EventType))
	})
}

// checkEligibilityLocked takes a row lock on the equipment and re-runs the
// eligibility rules against the hot tables. This is the server-side defense
// the client-side filter cannot provide.
func (s *gormStore) checkEligibilityLocked(tx *gorm.DB, ev *model.AllocationEvent) error {
	machineID := *ev.MachineID

	var eq model.Equipment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&eq, "id = ?", machineID).Error; err != nil {
		return fmt.Errorf("equipment %s: %w", machineID, err)
	}
	if !eq.Active {
		return ErrEquipmentRetired
	}

	var mt model.MachineType
	if err := tx.First(&mt, "id = ?", eq.MachineTypeID).Error; err != nil {
		return fmt.Errorf("machine type of %s: %w", machineID, err)
	}

	state := alloc.FleetState{
		Allocations: map[string]*alloc.ActiveAllocation{},
		Downtimes:   map[string]*alloc.ActiveDowntime{},
	}
	var open model.ActiveAllocation
	err := tx.First(&open, "machine_id = ?", machineID).Error
	switch {
	case err == nil:
		state.Allocations[machineID] = &alloc.ActiveAllocation{MachineID: machineID, SiteID: open.SiteID}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	var down model.ActiveDowntime
	err = tx.First(&down, "machine_id = ?", machineID).Error
	switch {
	case err == nil:
		state.Downtimes[machineID] = &alloc.ActiveDowntime{MachineID: machineID, EventID: down.EventID}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	info := alloc.EquipmentInfo{ID: eq.ID, UnitNumber: eq.UnitNumber, IsAttachment: mt.IsAttachment}
	if !alloc.Eligible(ev.EventType, info, state) {
		return ErrNotEligible
	}
	return nil
}

// applyToHotTables keeps active_allocations and active_downtimes in sync with
// the event just appended.
func (s *gormStore) applyToHotTables(tx *gorm.DB, ev *model.AllocationEvent) error {
	machineID := *ev.MachineID

	switch {
	case ev.EventType.Opens():
		row := model.ActiveAllocation{
			MachineID:        machineID,
			EventID:          ev.ID,
			ConstructionType: ev.ConstructionType,
			LotBuilding:      ev.LotBuilding,
			AllocationStart:  ev.EventDate,
			DueDate:          ev.EndDate,
		}
		if ev.SiteID != nil {
			row.SiteID = *ev.SiteID
			var site model.Site
			if err := tx.First(&site, "id = ?", *ev.SiteID).Error; err != nil {
				return fmt.Errorf("site %s: %w", *ev.SiteID, err)
			}
			row.SiteTitle = site.Title
		}
		if ev.EventType == alloc.EventStartAllocation {
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyAllocated
				}
				return fmt.Errorf("failed to open allocation for machine %s: %w", machineID, err)
			}
			return nil
		}

		// extension_attach and transport_arrival may target an already
		// allocated machine: a reattach or an arrival relocates it. The new
		// allocation replaces the hot row and sweeps any downtime tied to the
		// superseded one.
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "machine_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"event_id", "site_id", "site_title", "construction_type",
				"lot_building", "allocation_start", "due_date", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to relocate allocation for machine %s: %w", machineID, err)
		}
		if err := tx.Delete(&model.ActiveDowntime{}, "machine_id = ?", machineID).Error; err != nil {
			return err
		}

	case ev.EventType.Closes():
		// Closing an allocation sweeps any open downtime with it.
		if err := tx.Delete(&model.ActiveDowntime{}, "machine_id = ?", machineID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ActiveAllocation{}, "machine_id = ?", machineID).Error; err != nil {
			return fmt.Errorf("failed to close allocation for machine %s: %w", machineID, err)
		}

	case ev.EventType == alloc.EventDowntimeStart:
		row := model.ActiveDowntime{
			MachineID:   machineID,
			EventID:     ev.ID,
			Reason:      ev.DowntimeReason,
			Description: ev.DowntimeDescription,
			StartedAt:   ev.EventDate,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrNotEligible
			}
			return fmt.Errorf("failed to open downtime for machine %s: %w", machineID, err)
		}

	case ev.EventType == alloc.EventDowntimeEnd:
		if ev.CorrectsEventID == nil {
			return ErrNoOpenDowntime
		}
		res := tx.Where("machine_id = ? AND event_id = ?", machineID, *ev.CorrectsEventID).
			Delete(&model.ActiveDowntime{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoOpenDowntime
		}
	}
	return nil
}

// isUniqueViolation matches duplicate-key errors from both postgres and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// FleetState loads the hot tables into the core's projected-state shape.
func (s *gormStore) FleetState(ctx context.Context) (alloc.FleetState, error) {
	state := alloc.FleetState{
		Allocations: map[string]*alloc.ActiveAllocation{},
		Downtimes:   map[string]*alloc.ActiveDowntime{},
	}

	var allocations []model.ActiveAllocation
	if err := s.db.WithContext(ctx).Find(&allocations).Error; err != nil {
		return state, fmt.Errorf("failed to load active allocations: %w", err)
	}
	for _, a := range allocations {
		state.Allocations[a.MachineID] = &alloc.ActiveAllocation{
			EventID:         a.EventID,
			MachineID:       a.MachineID,
			SiteID:          a.SiteID,
			SiteTitle:       a.SiteTitle,
			Construction:    alloc.ConstructionType(a.ConstructionType),
			LotBuilding:     a.LotBuilding,
			AllocationStart: a.AllocationStart,
			DueDate:         a.DueDate,
		}
	}

	var downtimes []model.ActiveDowntime
	if err := s.db.WithContext(ctx).Find(&downtimes).Error; err != nil {
		return state, fmt.Errorf("failed to load active downtimes: %w", err)
	}
	for _, d := range downtimes {
		state.Downtimes[d.MachineID] = &alloc.ActiveDowntime{
			EventID:   d.EventID,
			MachineID: d.MachineID,
			Reason:    d.Reason,
			StartedAt: d.StartedAt,
		}
		if a, ok := state.Allocations[d.MachineID]; ok {
			a.InDowntime = true
		}
	}
	return state, nil
}

// ProjectMachine re-derives one machine's state from its full event history
// with the pure projector. The hot tables are the enforcement mechanism; this
// is the source-of-truth derivation, and the place integrity warnings surface.
func (s *gormStore) ProjectMachine(ctx context.Context, machineID string) (alloc.Projection, error) {
	events, err := s.EventHistory(ctx, EventFilter{MachineID: machineID})
	if err != nil {
		return alloc.Projection{}, err
	}
	history := make([]alloc.Event, len(events))
	for i, e := range events {
		history[i] = e.Core()
	}
	return alloc.Project(machineID, history), nil
}
