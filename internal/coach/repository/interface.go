package repository

import (
	"context"

	"github.com/google/uuid"
)

// SuggestionRepository persists and queries suggestions.
type SuggestionRepository interface {
	// InsertIgnore inserts a suggestion, skipping silently when a row with
	// the same (date_key, content_hash, source) already exists. Returns the
	// new row's id and whether a row was actually inserted.
	InsertIgnore(ctx context.Context, params InsertSuggestionParams) (uuid.UUID, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (Suggestion, error)
	List(ctx context.Context, filter ListSuggestionsFilter) ([]Suggestion, error)
}

// FeedbackRepository persists and aggregates feedback.
type FeedbackRepository interface {
	// Insert stores one feedback row. A duplicate (suggestion, user) pair
	// fails with a Conflict error surfaced from the unique constraint.
	Insert(ctx context.Context, params InsertFeedbackParams) (Feedback, error)
	// ForSuggestions returns the requesting user's own feedback and the
	// exact aggregate counts for each listed suggestion.
	ForSuggestions(ctx context.Context, suggestionIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]Feedback, map[uuid.UUID]FeedbackStats, error)
}

// TargetRepository upserts KPI targets and period goals.
type TargetRepository interface {
	// UpsertBatch applies all rows inside one transaction; a failure on any
	// row leaves none applied.
	UpsertBatch(ctx context.Context, rows []UpsertTargetParams) ([]KpiTarget, error)
	UpsertGoal(ctx context.Context, params UpsertGoalParams) (GoalSetting, error)
	GetGoal(ctx context.Context, periodType GoalPeriod, branchID *uuid.UUID, dateKey, monthKey *string) (GoalSetting, error)
}

// UserReader looks up portal users for owner-override validation.
type UserReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
}
