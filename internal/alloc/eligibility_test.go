package alloc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fleetStateFixture() (equipment []EquipmentInfo, state FleetState) {
	equipment = []EquipmentInfo{
		{ID: "free", UnitNumber: "ESC-001"},
		{ID: "allocated", UnitNumber: "ESC-002"},
		{ID: "down", UnitNumber: "ESC-003"},
		{ID: "fork", UnitNumber: "IMP-001", IsAttachment: true},
	}
	state = FleetState{
		Allocations: map[string]*ActiveAllocation{
			"allocated": {MachineID: "allocated", SiteID: "s1"},
			"down":      {MachineID: "down", SiteID: "s1", InDowntime: true},
		},
		Downtimes: map[string]*ActiveDowntime{
			"down": {MachineID: "down", Reason: "quebra", StartedAt: time.Now()},
		},
	}
	return equipment, state
}

func ids(eqs []EquipmentInfo) []string {
	out := make([]string, len(eqs))
	for i, e := range eqs {
		out[i] = e.ID
	}
	return out
}

func TestEligibleEquipment(t *testing.T) {
	equipment, state := fleetStateFixture()

	testCases := []struct {
		eventType EventType
		expected  []string
	}{
		{EventStartAllocation, []string{"free", "fork"}},
		{EventRequestAllocation, []string{"free", "fork"}},
		{EventEndAllocation, []string{"allocated", "down"}},
		{EventExtensionAttach, []string{"fork"}},
		{EventExtensionDetach, []string{"free", "allocated", "down", "fork"}},
		{EventDowntimeStart, []string{"allocated"}},
		{EventDowntimeEnd, []string{"down"}},
		{EventTransportStart, []string{"free", "allocated", "down", "fork"}},
		{EventTransportArrival, []string{"free", "allocated", "down", "fork"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.eventType), func(t *testing.T) {
			got := EligibleEquipment(tc.eventType, equipment, state)
			assert.ElementsMatch(t, tc.expected, ids(got))
		})
	}
}

func TestStartAndEndSetsAreDisjointAndCover(t *testing.T) {
	equipment, state := fleetStateFixture()

	startSet := ids(EligibleEquipment(EventStartAllocation, equipment, state))
	endSet := ids(EligibleEquipment(EventEndAllocation, equipment, state))

	for _, id := range startSet {
		assert.NotContains(t, endSet, id, "start and end eligibility must be disjoint")
	}
	assert.Len(t, append(startSet, endSet...), len(equipment),
		"every equipment item is eligible for exactly one of start/end")
}

func TestEligibilityForNeverAllocatedEquipment(t *testing.T) {
	fresh := EquipmentInfo{ID: "new", UnitNumber: "ESC-099"}
	state := FleetState{
		Allocations: map[string]*ActiveAllocation{},
		Downtimes:   map[string]*ActiveDowntime{},
	}

	assert.True(t, Eligible(EventStartAllocation, fresh, state))
	assert.False(t, Eligible(EventEndAllocation, fresh, state))
	assert.False(t, Eligible(EventDowntimeStart, fresh, state))
	assert.False(t, Eligible(EventDowntimeEnd, fresh, state))
}
