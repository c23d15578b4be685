// Package repository persists and queries the coach engine's records with
// PostgreSQL. Idempotence-critical writes (suggestion generation, feedback)
// rely on storage-level unique constraints, never on check-then-insert.
package repository

import (
	"encoding/json"
	"time"

	"kpi_coach_backend/internal/coach/domain"

	"github.com/google/uuid"
)

// Suggestion is a persisted coaching suggestion. Rows are immutable once
// created; archiving flips the status flag.
type Suggestion struct {
	ID          uuid.UUID
	DateKey     string
	Role        domain.Role
	BranchID    *uuid.UUID
	OwnerID     *uuid.UUID
	Status      domain.SuggestionStatus
	Title       string
	Content     string
	Severity    domain.Severity
	Actions     json.RawMessage
	Evidence    map[string]interface{}
	Source      string
	RunID       string
	ContentHash string
	CreatedAt   time.Time
}

// InsertSuggestionParams carries one row for insert-ignore persistence.
type InsertSuggestionParams struct {
	DateKey     string
	Role        domain.Role
	BranchID    *uuid.UUID
	OwnerID     *uuid.UUID
	Title       string
	Content     string
	Severity    domain.Severity
	Actions     []domain.Action
	Evidence    map[string]interface{}
	Source      string
	RunID       string
	ContentHash string
}

// ListSuggestionsFilter bounds a listing to a day and a resolved scope.
// The scope decides branch and owner visibility; Role and OwnerFilter are
// optional caller filters already validated against the scope.
type ListSuggestionsFilter struct {
	DateKey     string
	Scope       domain.Scope
	Role        domain.Role // optional; empty = all roles
	OwnerFilter *uuid.UUID  // optional; exact owner match
}

// Feedback is one user's immutable response to a suggestion.
type Feedback struct {
	ID           uuid.UUID
	SuggestionID uuid.UUID
	UserID       uuid.UUID
	Type         domain.FeedbackType
	Reason       domain.FeedbackReason
	ReasonDetail *string
	ActualResult *domain.ActualResult
	Note         *string
	Rating       int
	Applied      bool
	CreatedAt    time.Time
}

// InsertFeedbackParams carries a validated feedback row. Rating and Applied
// are derived by the service, not caller-supplied.
type InsertFeedbackParams struct {
	SuggestionID uuid.UUID
	UserID       uuid.UUID
	Type         domain.FeedbackType
	Reason       domain.FeedbackReason
	ReasonDetail *string
	ActualResult *domain.ActualResult
	Note         *string
	Rating       int
	Applied      bool
}

// FeedbackStats aggregates feedback counts for one suggestion. Counts are
// exact, computed by the database, never sampled.
type FeedbackStats struct {
	Total      int
	Helpful    int
	NotHelpful int
	Done       int
}

// KpiTarget is a percent-based KPI target row. An owner-specific row
// overrides the role-wide (nil owner) row for the same key; both coexist.
type KpiTarget struct {
	ID          uuid.UUID
	BranchID    uuid.UUID
	Role        domain.Role
	OwnerID     *uuid.UUID
	MetricKey   domain.MetricKey
	TargetValue int
	DayOfWeek   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpsertTargetParams carries one validated target row for upsert.
type UpsertTargetParams struct {
	BranchID    uuid.UUID
	Role        domain.Role
	OwnerID     *uuid.UUID
	MetricKey   domain.MetricKey
	TargetValue int
	DayOfWeek   int
	IsActive    bool
}

// GoalPeriod is the goal-setting period type.
type GoalPeriod string

const (
	GoalDaily   GoalPeriod = "DAILY"
	GoalMonthly GoalPeriod = "MONTHLY"
)

// GoalSetting is a revenue/dossier/cost goal for one scope and period.
type GoalSetting struct {
	ID            uuid.UUID
	PeriodType    GoalPeriod
	BranchID      *uuid.UUID
	DateKey       *string
	MonthKey      *string
	RevenueTarget int64
	DossierTarget int
	CostTarget    int64
	Note          *string
	CreatedByID   uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UpsertGoalParams carries a validated goal row for upsert.
type UpsertGoalParams struct {
	PeriodType    GoalPeriod
	BranchID      *uuid.UUID
	DateKey       *string
	MonthKey      *string
	RevenueTarget int64
	DossierTarget int
	CostTarget    int64
	Note          *string
	CreatedByID   uuid.UUID
}

// User is the read-only projection of a portal user needed for owner
// override validation.
type User struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Role     domain.Role
	IsActive bool
	FullName string
}
