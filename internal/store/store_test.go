package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fleet-backend/internal/alloc"
	"fleet-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func strPtr(s string) *string { return &s }

func TestGormStore_AppendEvent_EligibilityRejections(t *testing.T) {
	now := time.Now()
	machineID := "7f0c1a2e-0000-4000-8000-000000000001"
	typeID := "7f0c1a2e-0000-4000-8000-0000000000aa"

	equipmentCols := []string{"id", "unit_number", "machine_type_id", "ownership_type", "hourly_rate", "active"}

	testCases := []struct {
		name             string
		event            model.AllocationEvent
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
	}{
		{
			name: "retired equipment rejects every event",
			event: model.AllocationEvent{
				EventType: alloc.EventStartAllocation,
				MachineID: strPtr(machineID),
				EventDate: now,
			},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT .* FROM "equipment" WHERE id = \$1 .* FOR UPDATE`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows(equipmentCols).
						AddRow(machineID, "ESC-201", typeID, "owned", 0.0, false))
				mock.ExpectRollback()
			},
			expectedErr: ErrEquipmentRetired,
		},
		{
			name: "start on an allocated machine is not eligible",
			event: model.AllocationEvent{
				EventType: alloc.EventStartAllocation,
				MachineID: strPtr(machineID),
				EventDate: now,
			},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT .* FROM "equipment" WHERE id = \$1 .* FOR UPDATE`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows(equipmentCols).
						AddRow(machineID, "ESC-201", typeID, "owned", 0.0, true))
				mock.ExpectQuery(`SELECT .* FROM "machine_types" WHERE id = \$1`).
					WithArgs(typeID, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_attachment"}).
						AddRow(typeID, "Escavadeira", false))
				mock.ExpectQuery(`SELECT .* FROM "active_allocations" WHERE machine_id = \$1`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows([]string{"machine_id", "event_id", "site_id"}).
						AddRow(machineID, "ev-1", "site-1"))
				mock.ExpectQuery(`SELECT .* FROM "active_downtimes" WHERE machine_id = \$1`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows([]string{"machine_id", "event_id"}))
				mock.ExpectRollback()
			},
			expectedErr: ErrNotEligible,
		},
		{
			name: "downtime_end with no open downtime is not eligible",
			event: model.AllocationEvent{
				EventType: alloc.EventDowntimeEnd,
				MachineID: strPtr(machineID),
				EventDate: now,
			},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT .* FROM "equipment" WHERE id = \$1 .* FOR UPDATE`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows(equipmentCols).
						AddRow(machineID, "ESC-201", typeID, "owned", 0.0, true))
				mock.ExpectQuery(`SELECT .* FROM "machine_types" WHERE id = \$1`).
					WithArgs(typeID, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_attachment"}).
						AddRow(typeID, "Escavadeira", false))
				mock.ExpectQuery(`SELECT .* FROM "active_allocations" WHERE machine_id = \$1`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows([]string{"machine_id", "event_id", "site_id"}).
						AddRow(machineID, "ev-1", "site-1"))
				mock.ExpectQuery(`SELECT .* FROM "active_downtimes" WHERE machine_id = \$1`).
					WithArgs(machineID, 1).
					WillReturnRows(sqlmock.NewRows([]string{"machine_id", "event_id"}))
				mock.ExpectRollback()
			},
			expectedErr: ErrNotEligible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			ev := tc.event
			err := s.AppendEvent(context.Background(), &ev, nil, Actor{ID: "u-1", Username: "admin"})
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_EventHistory_Filters(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	machineID := "7f0c1a2e-0000-4000-8000-000000000002"
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "allocation_events" WHERE machine_id = \$1 AND event_type = \$2 ORDER BY event_date DESC, seq DESC`).
		WithArgs(machineID, "start_allocation").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "id", "event_type", "machine_id", "event_date", "status"}).
			AddRow(2, "ev-2", "start_allocation", machineID, now, "approved").
			AddRow(1, "ev-1", "start_allocation", machineID, now.Add(-time.Hour), "approved"))
	// Documents preload for the two returned events.
	mock.ExpectQuery(`SELECT .* FROM "event_documents" WHERE .*event_id.* IN \(\$1,\$2\)`).
		WithArgs("ev-2", "ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "file_name"}))

	events, err := s.EventHistory(context.Background(), EventFilter{
		MachineID: machineID,
		EventType: "start_allocation",
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-2", events[0].ID)
	assert.Equal(t, int64(2), events[0].Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FleetState(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "active_allocations"`)).
		WillReturnRows(sqlmock.NewRows([]string{"machine_id", "event_id", "site_id", "site_title", "allocation_start"}).
			AddRow("m-1", "ev-1", "s-1", "Residencial Aurora", now).
			AddRow("m-2", "ev-2", "s-2", "Condomínio Ipê", now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "active_downtimes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"machine_id", "event_id", "reason", "started_at"}).
			AddRow("m-2", "ev-3", "manutenção", now))

	state, err := s.FleetState(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Allocations, 2)
	require.Len(t, state.Downtimes, 1)
	assert.False(t, state.Allocations["m-1"].InDowntime)
	assert.True(t, state.Allocations["m-2"].InDowntime)
	assert.Equal(t, "manutenção", state.Downtimes["m-2"].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
