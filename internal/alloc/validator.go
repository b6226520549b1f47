package alloc

import "time"

// Draft is a not-yet-persisted event as filled in by the user, plus the count
// of documents attached to the submission.
type Draft struct {
	Type                EventType
	MachineID           string
	MachineTypeID       string
	SupplierID          string
	SiteID              string
	EventDate           time.Time
	EndDate             *time.Time
	Construction        ConstructionType
	LotBuilding         string
	DowntimeReason      string
	DowntimeDescription string
	CorrectsEventID     string
	Notes               string
	DocumentCount       int
	IsEdit              bool
}

// ValidationError describes the first rule a draft violates. Message is
// user-facing (pt-BR); Field names the offending input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks field-level and cross-field requirements for a draft event.
// Rules run in a fixed order and the first failure wins; the UI surfaces one
// message at a time. A nil return means the draft may be submitted.
func Validate(d Draft) *ValidationError {
	if d.EventDate.IsZero() {
		return &ValidationError{Field: "event_date", Message: "data do evento obrigatória"}
	}

	if d.Type == EventRequestAllocation {
		if d.SupplierID == "" {
			return &ValidationError{Field: "supplier_id", Message: "fornecedor obrigatório"}
		}
		if d.MachineTypeID == "" {
			return &ValidationError{Field: "machine_type_id", Message: "tipo de máquina obrigatório"}
		}
	} else if d.MachineID == "" {
		// Label differs for user messaging only; behavior is identical.
		if d.Type == EventExtensionAttach || d.Type == EventExtensionDetach {
			return &ValidationError{Field: "machine_id", Message: "implemento obrigatório"}
		}
		return &ValidationError{Field: "machine_id", Message: "máquina obrigatória"}
	}

	if d.Type.RequiresSite() && d.SiteID == "" {
		return &ValidationError{Field: "site_id", Message: "obra obrigatória"}
	}

	if d.Type.RequiresDueDate() && d.EndDate == nil {
		return &ValidationError{Field: "end_date", Message: "data prevista de término obrigatória"}
	}

	if d.Construction != "" && d.LotBuilding == "" {
		return &ValidationError{Field: "lot_building_number", Message: "número do lote/bloco obrigatório"}
	}

	if d.Type == EventDowntimeStart && d.DowntimeReason == "" {
		return &ValidationError{Field: "downtime_reason", Message: "motivo da parada obrigatório"}
	}

	if d.Type.RequiresDocument() && !d.IsEdit && d.DocumentCount == 0 {
		return &ValidationError{Field: "documents", Message: "documento anexo obrigatório"}
	}

	return nil
}
