package alloc

import (
	"fmt"
	"time"
)

// EventType enumerates the allocation lifecycle events. The string values are
// part of the wire contract with the frontend and the persisted history and
// must not change.
type EventType string

const (
	EventRequestAllocation EventType = "request_allocation"
	EventStartAllocation   EventType = "start_allocation"
	EventEndAllocation     EventType = "end_allocation"
	EventExtensionAttach   EventType = "extension_attach"
	EventExtensionDetach   EventType = "extension_detach"
	EventTransportStart    EventType = "transport_start"
	EventTransportArrival  EventType = "transport_arrival"
	EventDowntimeStart     EventType = "downtime_start"
	EventDowntimeEnd       EventType = "downtime_end"
)

// EventTypes lists every known event type, in lifecycle order.
var EventTypes = []EventType{
	EventRequestAllocation,
	EventStartAllocation,
	EventEndAllocation,
	EventExtensionAttach,
	EventExtensionDetach,
	EventTransportStart,
	EventTransportArrival,
	EventDowntimeStart,
	EventDowntimeEnd,
}

// ParseEventType validates a raw string against the known event types.
func ParseEventType(raw string) (EventType, error) {
	for _, t := range EventTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q", raw)
}

// Label returns the user-facing name of the event type (pt-BR, the
// deployment's language).
func (t EventType) Label() string {
	switch t {
	case EventRequestAllocation:
		return "Solicitação de alocação"
	case EventStartAllocation:
		return "Início de alocação"
	case EventEndAllocation:
		return "Fim de alocação"
	case EventExtensionAttach:
		return "Acoplamento de implemento"
	case EventExtensionDetach:
		return "Desacoplamento de implemento"
	case EventTransportStart:
		return "Saída para transporte"
	case EventTransportArrival:
		return "Chegada de transporte"
	case EventDowntimeStart:
		return "Início de parada"
	case EventDowntimeEnd:
		return "Fim de parada"
	}
	return string(t)
}

// Opens reports whether the event type opens an allocation and assigns a site.
func (t EventType) Opens() bool {
	switch t {
	case EventStartAllocation, EventExtensionAttach, EventTransportArrival:
		return true
	}
	return false
}

// Closes reports whether the event type ends an open allocation.
func (t EventType) Closes() bool {
	switch t {
	case EventEndAllocation, EventTransportStart:
		return true
	}
	return false
}

// RequiresSite reports whether the event type must carry a jobsite. A
// transport_start leaves a known site rather than arriving at one, so it is
// exempt even though it belongs to the transport pair.
func (t EventType) RequiresSite() bool {
	switch t {
	case EventStartAllocation, EventRequestAllocation, EventExtensionAttach, EventTransportArrival:
		return true
	}
	return false
}

// RequiresDueDate reports whether the event type must carry a due date.
func (t EventType) RequiresDueDate() bool {
	switch t {
	case EventStartAllocation, EventRequestAllocation, EventExtensionAttach:
		return true
	}
	return false
}

// RequiresDocument reports whether at least one attached document is mandatory
// when an event of this type is created.
func (t EventType) RequiresDocument() bool {
	switch t {
	case EventStartAllocation, EventEndAllocation, EventExtensionAttach,
		EventDowntimeEnd, EventTransportArrival:
		return true
	}
	return false
}

// EventStatus is the approval state of an event. Only approved events affect
// projected fleet state; the approval workflow itself lives outside this
// service.
type EventStatus string

const (
	StatusApproved EventStatus = "approved"
	StatusPending  EventStatus = "pending"
	StatusRejected EventStatus = "rejected"
)

// ConstructionType qualifies the kind of jobsite unit an allocation serves.
type ConstructionType string

const (
	ConstructionLot      ConstructionType = "lot"
	ConstructionBuilding ConstructionType = "building"
)

// Event is the core's view of one allocation event. It mirrors the persisted
// record but carries no ORM or transport concerns, so the projector and
// validator stay testable in isolation.
type Event struct {
	ID                  string
	Seq                 int64 // creation sequence, breaks event_date ties
	Type                EventType
	MachineID           string // empty for request_allocation
	MachineTypeID       string // set for request_allocation only
	SupplierID          string
	SiteID              string
	SiteTitle           string
	EventDate           time.Time
	EndDate             *time.Time
	Construction        ConstructionType
	LotBuilding         string
	DowntimeReason      string
	DowntimeDescription string
	CorrectsEventID     string
	Status              EventStatus
	Notes               string
}
