package store

import (
	"context"
	"fmt"
	"time"
)

// UtilizationRow aggregates one equipment item's activity over a period.
type UtilizationRow struct {
	MachineID   string `json:"machineId"`
	UnitNumber  string `json:"unitNumber"`
	MachineType string `json:"machineType"`
	Allocations int64  `json:"allocations"`
	Downtimes   int64  `json:"downtimes"`
	Allocated   bool   `json:"currentlyAllocated"`
}

// DowntimeRow is one downtime interval, closed or still open.
type DowntimeRow struct {
	MachineID  string     `json:"machineId"`
	UnitNumber string     `json:"unitNumber"`
	Reason     string     `json:"reason"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
}

// UtilizationReport counts allocations and downtimes per equipment item in the
// period, and flags which machines hold an open allocation right now.
func (s *gormStore) UtilizationReport(ctx context.Context, from, to time.Time) ([]UtilizationRow, error) {
	var rows []UtilizationRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT e.id                    AS machine_id,
		       e.unit_number           AS unit_number,
		       mt.name                 AS machine_type,
		       COUNT(ev.seq) FILTER (WHERE ev.event_type = 'start_allocation') AS allocations,
		       COUNT(ev.seq) FILTER (WHERE ev.event_type = 'downtime_start')   AS downtimes,
		       aa.machine_id IS NOT NULL AS allocated
		FROM equipment e
		JOIN machine_types mt ON mt.id = e.machine_type_id
		LEFT JOIN allocation_events ev
		       ON ev.machine_id = e.id
		      AND ev.status = 'approved'
		      AND ev.event_date BETWEEN ? AND ?
		LEFT JOIN active_allocations aa ON aa.machine_id = e.id
		WHERE e.active
		GROUP BY e.id, e.unit_number, mt.name, aa.machine_id
		ORDER BY e.unit_number`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("utilization report query failed: %w", err)
	}
	return rows, nil
}

// DowntimeReport pairs each downtime_start in the period with the downtime_end
// that closed it, if any. Open downtimes come back with a null end.
func (s *gormStore) DowntimeReport(ctx context.Context, from, to time.Time) ([]DowntimeRow, error) {
	var rows []DowntimeRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT start_ev.machine_id      AS machine_id,
		       e.unit_number            AS unit_number,
		       start_ev.downtime_reason AS reason,
		       start_ev.event_date      AS started_at,
		       end_ev.event_date        AS ended_at
		FROM allocation_events start_ev
		JOIN equipment e ON e.id = start_ev.machine_id
		LEFT JOIN allocation_events end_ev
		       ON end_ev.corrects_event_id = start_ev.id
		      AND end_ev.event_type = 'downtime_end'
		      AND end_ev.status = 'approved'
		WHERE start_ev.event_type = 'downtime_start'
		  AND start_ev.status = 'approved'
		  AND start_ev.event_date BETWEEN ? AND ?
		ORDER BY start_ev.event_date DESC`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("downtime report query failed: %w", err)
	}
	return rows, nil
}
