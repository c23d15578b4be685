package transport

import (
	"kpi_coach_backend/internal/coach/domain"

	"github.com/google/uuid"
)

// DispatchActionRequest turns one suggested action into an outbound job.
// At least one of LeadID and StudentID addresses the contact; To overrides
// the contact's stored phone number as the delivery destination; Variables
// override the dispatcher-seeded template variables.
type DispatchActionRequest struct {
	SuggestionID *uuid.UUID        `json:"suggestionId,omitempty"`
	Action       domain.Action     `json:"action" validate:"required"`
	LeadID       *uuid.UUID        `json:"leadId,omitempty"`
	StudentID    *uuid.UUID        `json:"studentId,omitempty"`
	To           *string           `json:"to,omitempty"`
	Priority     string            `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	Variables    map[string]string `json:"variables,omitempty"`
	Note         *string           `json:"note,omitempty"`
}

// DispatchActionResponse describes the queued job.
type DispatchActionResponse struct {
	JobID       uuid.UUID `json:"jobId"`
	Status      string    `json:"status"`
	Channel     string    `json:"channel"`
	Destination *string   `json:"destination,omitempty"`
	Priority    string    `json:"priority"`
	Preview     string    `json:"preview"`
}
