package alloc

import (
	"fmt"
	"sort"
	"time"
)

// ActiveAllocation is the open allocation derived for one machine: the most
// recent approved opening event (start_allocation, extension_attach or
// transport_arrival) not yet closed by an end_allocation or transport_start.
type ActiveAllocation struct {
	EventID         string           `json:"eventId"`
	MachineID       string           `json:"machineId"`
	SiteID          string           `json:"siteId"`
	SiteTitle       string           `json:"siteTitle"`
	Construction    ConstructionType `json:"constructionType,omitempty"`
	LotBuilding     string           `json:"lotBuildingNumber,omitempty"`
	AllocationStart time.Time        `json:"allocationStart"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	InDowntime      bool             `json:"isInDowntime"`
}

// ActiveDowntime is an open downtime nested inside an active allocation.
type ActiveDowntime struct {
	EventID     string    `json:"eventId"`
	MachineID   string    `json:"machineId"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
}

// Warning flags a data-integrity problem found while projecting. Warnings are
// advisory: the projector always returns a best-effort state.
type Warning struct {
	MachineID string `json:"machineId"`
	EventID   string `json:"eventId,omitempty"`
	Message   string `json:"message"`
}

// Projection is the derived current state of one machine.
type Projection struct {
	ActiveAllocation *ActiveAllocation `json:"activeAllocation"`
	ActiveDowntime   *ActiveDowntime   `json:"activeDowntime"`
	Warnings         []Warning         `json:"warnings,omitempty"`
}

// Project derives the current state of machineID from its full event history.
// Only approved events count. Ordering is event_date descending; events with
// the same event_date are ordered by creation sequence, most recently created
// first. The function is pure: same history in, same projection out.
func Project(machineID string, history []Event) Projection {
	events := make([]Event, 0, len(history))
	for _, e := range history {
		if e.MachineID == machineID && e.Status == StatusApproved {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].EventDate.Equal(events[j].EventDate) {
			return events[i].EventDate.After(events[j].EventDate)
		}
		return events[i].Seq > events[j].Seq
	})

	var p Projection

	// Walk backward in time. The first opening event seen before any closing
	// event defines the active allocation. An opening event also supersedes
	// any earlier allocation (a reattach or an arrival relocating the
	// machine), so downtime state is scoped to the segment of events newer
	// than it: downtimes of a superseded or closed allocation are gone.
	segment := events
	for i, e := range events {
		if e.Type.Closes() {
			segment = events[:i]
			break
		}
		if e.Type.Opens() {
			p.ActiveAllocation = &ActiveAllocation{
				EventID:         e.ID,
				MachineID:       machineID,
				SiteID:          e.SiteID,
				SiteTitle:       e.SiteTitle,
				Construction:    e.Construction,
				LotBuilding:     e.LotBuilding,
				AllocationStart: e.EventDate,
				DueDate:         e.EndDate,
			}
			segment = events[:i]
			break
		}
	}

	downtime, warnings := openDowntime(machineID, segment)
	p.Warnings = warnings
	if downtime != nil {
		if p.ActiveAllocation == nil {
			p.Warnings = append(p.Warnings, Warning{
				MachineID: machineID,
				EventID:   downtime.EventID,
				Message:   "open downtime without an active allocation",
			})
		} else {
			p.ActiveDowntime = downtime
			p.ActiveAllocation.InDowntime = true
		}
	}
	return p
}

// openDowntime finds the most recent downtime_start not closed by a later
// downtime_end referencing it. events must already be filtered to approved,
// sorted newest first, and cut to the current allocation's segment.
func openDowntime(machineID string, events []Event) (*ActiveDowntime, []Warning) {
	var warnings []Warning

	closed := make(map[string]bool)
	starts := make(map[string]bool)
	for _, e := range events {
		if e.Type == EventDowntimeStart {
			starts[e.ID] = true
		}
	}
	for _, e := range events {
		if e.Type != EventDowntimeEnd {
			continue
		}
		if e.CorrectsEventID == "" || !starts[e.CorrectsEventID] {
			warnings = append(warnings, Warning{
				MachineID: machineID,
				EventID:   e.ID,
				Message:   fmt.Sprintf("downtime_end %s references no open downtime", e.ID),
			})
			continue
		}
		closed[e.CorrectsEventID] = true
	}

	var open *ActiveDowntime
	for _, e := range events {
		if e.Type != EventDowntimeStart || closed[e.ID] {
			continue
		}
		if open == nil {
			// Newest unclosed start wins.
			open = &ActiveDowntime{
				EventID:     e.ID,
				MachineID:   machineID,
				Reason:      e.DowntimeReason,
				Description: e.DowntimeDescription,
				StartedAt:   e.EventDate,
			}
			continue
		}
		warnings = append(warnings, Warning{
			MachineID: machineID,
			EventID:   e.ID,
			Message:   fmt.Sprintf("overlapping open downtime %s superseded by %s", e.ID, open.EventID),
		})
	}
	return open, warnings
}
