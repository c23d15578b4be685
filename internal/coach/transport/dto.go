package transport

import (
	"kpi_coach_backend/internal/coach/domain"

	"github.com/google/uuid"
)

// ListSuggestionsRequest bounds a suggestion listing. All filters are
// re-validated against the actor's resolved scope; a filter outside the
// scope fails Forbidden, never silently widens visibility.
type ListSuggestionsRequest struct {
	Date     string     `form:"date" validate:"omitempty,datekey"`
	Role     string     `form:"role" validate:"omitempty,max=40"`
	BranchID *uuid.UUID `form:"branchId"`
	OwnerID  *uuid.UUID `form:"ownerId"`
}

// CreateSuggestionRequest creates an operator-entered suggestion.
type CreateSuggestionRequest struct {
	DateKey  string                 `json:"dateKey" validate:"omitempty,datekey"`
	Role     string                 `json:"role" validate:"required,max=40"`
	BranchID *uuid.UUID             `json:"branchId,omitempty"`
	OwnerID  *uuid.UUID             `json:"ownerId,omitempty"`
	Title    string                 `json:"title" validate:"required,min=1,max=300"`
	Content  string                 `json:"content" validate:"required,min=1"`
	Severity string                 `json:"severity" validate:"required,max=10"`
	Actions  []domain.Action        `json:"actions,omitempty"`
	Evidence map[string]interface{} `json:"evidence,omitempty"`
}

// IngestRequest is the external rule-runner's batch submission. Source must
// equal the trusted literal exactly or the whole call is rejected.
type IngestRequest struct {
	Source      string                    `json:"source" validate:"required"`
	RunID       string                    `json:"runId" validate:"required,min=1"`
	Suggestions []CreateSuggestionRequest `json:"suggestions" validate:"required,min=1,dive"`
}

// IngestResponse reports how many rows were newly inserted after dedup.
type IngestResponse struct {
	Count int `json:"count"`
}

// SubmitFeedbackRequest records one user's response to a suggestion.
// Rating and applied are derived server-side, never caller-supplied.
type SubmitFeedbackRequest struct {
	FeedbackType string               `json:"feedbackType" validate:"required,max=20"`
	Reason       string               `json:"reason" validate:"required,max=40"`
	ReasonDetail *string              `json:"reasonDetail,omitempty" validate:"omitempty,max=500"`
	ActualResult *domain.ActualResult `json:"actualResult,omitempty"`
	Note         *string              `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// FeedbackResponse represents a feedback row in API responses.
type FeedbackResponse struct {
	ID           uuid.UUID            `json:"id"`
	SuggestionID uuid.UUID            `json:"suggestionId"`
	FeedbackType string               `json:"feedbackType"`
	Reason       string               `json:"reason"`
	ReasonDetail *string              `json:"reasonDetail,omitempty"`
	ActualResult *domain.ActualResult `json:"actualResult,omitempty"`
	Note         *string              `json:"note,omitempty"`
	Rating       int                  `json:"rating"`
	Applied      bool                 `json:"applied"`
	CreatedAt    string               `json:"createdAt"`
}

// FeedbackStatsResponse carries the exact aggregate counts per suggestion.
type FeedbackStatsResponse struct {
	Total      int `json:"total"`
	Helpful    int `json:"helpful"`
	NotHelpful int `json:"notHelpful"`
	Done       int `json:"done"`
}

// SuggestionResponse represents a suggestion in API responses, annotated
// with the requesting user's own feedback and the aggregate counts.
type SuggestionResponse struct {
	ID            uuid.UUID              `json:"id"`
	DateKey       string                 `json:"dateKey"`
	Role          string                 `json:"role"`
	BranchID      *uuid.UUID             `json:"branchId,omitempty"`
	OwnerID       *uuid.UUID             `json:"ownerId,omitempty"`
	Status        string                 `json:"status"`
	Title         string                 `json:"title"`
	Content       string                 `json:"content"`
	Severity      string                 `json:"severity"`
	Actions       []domain.Action        `json:"actions"`
	Evidence      map[string]interface{} `json:"evidence,omitempty"`
	EngineNotes   string                 `json:"engineNotes"`
	Source        string                 `json:"source"`
	RunID         string                 `json:"runId"`
	CreatedAt     string                 `json:"createdAt"`
	MyFeedback    *FeedbackResponse      `json:"myFeedback,omitempty"`
	FeedbackStats FeedbackStatsResponse  `json:"feedbackStats"`
}

// SuggestionListResponse wraps a scoped suggestion listing.
type SuggestionListResponse struct {
	Items []SuggestionResponse `json:"items"`
}

// TargetRowRequest is one KPI target row in a batch upsert.
type TargetRowRequest struct {
	BranchID    *uuid.UUID `json:"branchId,omitempty"`
	Role        string     `json:"role" validate:"required,max=40"`
	OwnerID     *uuid.UUID `json:"ownerId,omitempty"`
	MetricKey   string     `json:"metricKey" validate:"required,max=60"`
	TargetValue int        `json:"targetValue"`
	DayOfWeek   int        `json:"dayOfWeek"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

// UpsertTargetsRequest batch-upserts KPI targets. BranchID is the default
// branch for rows that do not carry their own.
type UpsertTargetsRequest struct {
	BranchID *uuid.UUID         `json:"branchId,omitempty"`
	Items    []TargetRowRequest `json:"items" validate:"required,min=1,dive"`
}

// TargetResponse represents a KPI target in API responses.
type TargetResponse struct {
	ID          uuid.UUID  `json:"id"`
	BranchID    uuid.UUID  `json:"branchId"`
	Role        string     `json:"role"`
	OwnerID     *uuid.UUID `json:"ownerId,omitempty"`
	MetricKey   string     `json:"metricKey"`
	TargetValue int        `json:"targetValue"`
	DayOfWeek   int        `json:"dayOfWeek"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

// TargetListResponse wraps the applied batch.
type TargetListResponse struct {
	Count int              `json:"count"`
	Items []TargetResponse `json:"items"`
}

// UpsertGoalRequest upserts a period goal. DateKey is required for DAILY,
// MonthKey for MONTHLY — exactly one of the two.
type UpsertGoalRequest struct {
	PeriodType    string     `json:"periodType" validate:"required,oneof=DAILY MONTHLY"`
	BranchID      *uuid.UUID `json:"branchId,omitempty"`
	DateKey       *string    `json:"dateKey,omitempty" validate:"omitempty,datekey"`
	MonthKey      *string    `json:"monthKey,omitempty" validate:"omitempty,monthkey"`
	RevenueTarget int64      `json:"revenueTarget"`
	DossierTarget int        `json:"dossierTarget"`
	CostTarget    int64      `json:"costTarget"`
	Note          *string    `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// GetGoalRequest retrieves the goal for one scope and period.
type GetGoalRequest struct {
	PeriodType string     `form:"periodType" validate:"required,oneof=DAILY MONTHLY"`
	BranchID   *uuid.UUID `form:"branchId"`
	DateKey    *string    `form:"dateKey" validate:"omitempty,datekey"`
	MonthKey   *string    `form:"monthKey" validate:"omitempty,monthkey"`
}

// GoalResponse represents a period goal in API responses.
type GoalResponse struct {
	ID            uuid.UUID  `json:"id"`
	PeriodType    string     `json:"periodType"`
	BranchID      *uuid.UUID `json:"branchId,omitempty"`
	DateKey       *string    `json:"dateKey,omitempty"`
	MonthKey      *string    `json:"monthKey,omitempty"`
	RevenueTarget int64      `json:"revenueTarget"`
	DossierTarget int        `json:"dossierTarget"`
	CostTarget    int64      `json:"costTarget"`
	Note          *string    `json:"note,omitempty"`
	CreatedByID   uuid.UUID  `json:"createdById"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}
