package alloc

// EquipmentInfo is the core's view of one equipment item, enough to decide
// event eligibility.
type EquipmentInfo struct {
	ID           string `json:"id"`
	UnitNumber   string `json:"unitNumber"`
	IsAttachment bool   `json:"isAttachment"`
}

// FleetState holds the projected state of every machine, keyed by machine ID.
// Only machines with an open allocation or downtime need entries.
type FleetState struct {
	Allocations map[string]*ActiveAllocation
	Downtimes   map[string]*ActiveDowntime
}

// EligibleEquipment computes which equipment items are legal targets for an
// event of the given type, from the currently projected fleet state. The
// result must be recomputed after every state change; it is never cached.
func EligibleEquipment(t EventType, equipment []EquipmentInfo, state FleetState) []EquipmentInfo {
	eligible := make([]EquipmentInfo, 0, len(equipment))
	for _, eq := range equipment {
		if Eligible(t, eq, state) {
			eligible = append(eligible, eq)
		}
	}
	return eligible
}

// Eligible reports whether one equipment item is a legal target for an event
// of the given type.
func Eligible(t EventType, eq EquipmentInfo, state FleetState) bool {
	_, allocated := state.Allocations[eq.ID]
	_, inDowntime := state.Downtimes[eq.ID]

	switch t {
	case EventStartAllocation, EventRequestAllocation:
		return !allocated
	case EventEndAllocation:
		return allocated
	case EventExtensionAttach:
		// Attachments may be moved between machines at any time, so no
		// allocation-state restriction applies.
		return eq.IsAttachment
	case EventDowntimeStart:
		return allocated && !inDowntime
	case EventDowntimeEnd:
		return inDowntime
	case EventTransportArrival:
		// Arrival carries no in-transit precondition: the transport leg may
		// have been recorded outside this system, so any equipment qualifies.
		return true
	case EventExtensionDetach, EventTransportStart:
		return true
	}
	return true
}
