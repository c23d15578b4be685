package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// FeedbackRepo implements FeedbackRepository with PostgreSQL.
type FeedbackRepo struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepo creates a feedback repository.
func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

// Compile-time check that FeedbackRepo implements FeedbackRepository.
var _ FeedbackRepository = (*FeedbackRepo)(nil)

// Insert stores one feedback row. The (suggestion_id, user_id) unique
// constraint makes the uniqueness check atomic with the insert; a concurrent
// duplicate surfaces as a Conflict error, never as a second row.
func (r *FeedbackRepo) Insert(ctx context.Context, params InsertFeedbackParams) (Feedback, error) {
	var actualJSON []byte
	if params.ActualResult != nil && !params.ActualResult.IsEmpty() {
		encoded, err := json.Marshal(params.ActualResult)
		if err != nil {
			return Feedback{}, fmt.Errorf("marshal actual result: %w", err)
		}
		actualJSON = encoded
	}

	query := `
		INSERT INTO coach_suggestion_feedback
			(suggestion_id, user_id, feedback_type, reason, reason_detail,
			 actual_result, note, rating, applied)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	f := Feedback{
		SuggestionID: params.SuggestionID,
		UserID:       params.UserID,
		Type:         params.Type,
		Reason:       params.Reason,
		ReasonDetail: params.ReasonDetail,
		ActualResult: params.ActualResult,
		Note:         params.Note,
		Rating:       params.Rating,
		Applied:      params.Applied,
	}

	err := r.pool.QueryRow(ctx, query,
		params.SuggestionID, params.UserID, string(params.Type), string(params.Reason),
		params.ReasonDetail, actualJSON, params.Note, params.Rating, params.Applied,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Feedback{}, apperr.Conflict("already responded to this suggestion")
		}
		return Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}

	return f, nil
}

// ForSuggestions returns the requesting user's own feedback per suggestion
// plus the exact aggregate counts for each.
func (r *FeedbackRepo) ForSuggestions(ctx context.Context, suggestionIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]Feedback, map[uuid.UUID]FeedbackStats, error) {
	mine := make(map[uuid.UUID]Feedback)
	stats := make(map[uuid.UUID]FeedbackStats)
	if len(suggestionIDs) == 0 {
		return mine, stats, nil
	}

	statsQuery := `
		SELECT suggestion_id,
			COUNT(*),
			COUNT(*) FILTER (WHERE feedback_type = 'HELPFUL'),
			COUNT(*) FILTER (WHERE feedback_type = 'NOT_HELPFUL'),
			COUNT(*) FILTER (WHERE feedback_type = 'DONE')
		FROM coach_suggestion_feedback
		WHERE suggestion_id = ANY($1::uuid[])
		GROUP BY suggestion_id`

	rows, err := r.pool.Query(ctx, statsQuery, suggestionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate feedback stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var st FeedbackStats
		if err := rows.Scan(&id, &st.Total, &st.Helpful, &st.NotHelpful, &st.Done); err != nil {
			return nil, nil, fmt.Errorf("scan feedback stats: %w", err)
		}
		stats[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate feedback stats: %w", err)
	}

	mineQuery := `
		SELECT id, suggestion_id, user_id, feedback_type, reason, reason_detail,
			actual_result, note, rating, applied, created_at
		FROM coach_suggestion_feedback
		WHERE suggestion_id = ANY($1::uuid[]) AND user_id = $2`

	mineRows, err := r.pool.Query(ctx, mineQuery, suggestionIDs, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load own feedback: %w", err)
	}
	defer mineRows.Close()

	for mineRows.Next() {
		var (
			f          Feedback
			fbType     string
			reason     string
			actualJSON []byte
		)
		if err := mineRows.Scan(
			&f.ID, &f.SuggestionID, &f.UserID, &fbType, &reason, &f.ReasonDetail,
			&actualJSON, &f.Note, &f.Rating, &f.Applied, &f.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("scan own feedback: %w", err)
		}
		f.Type = domain.FeedbackType(fbType)
		f.Reason = domain.FeedbackReason(reason)
		if len(actualJSON) > 0 {
			var actual domain.ActualResult
			if err := json.Unmarshal(actualJSON, &actual); err != nil {
				return nil, nil, fmt.Errorf("decode actual result: %w", err)
			}
			f.ActualResult = &actual
		}
		mine[f.SuggestionID] = f
	}
	if err := mineRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate own feedback: %w", err)
	}

	return mine, stats, nil
}
