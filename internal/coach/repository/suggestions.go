package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const suggestionNotFoundMessage = "suggestion not found"

const suggestionColumns = `id, date_key, role, branch_id, owner_id, status, title, content,
	severity, actions, evidence, source, run_id, content_hash, created_at`

// SuggestionRepo implements SuggestionRepository with PostgreSQL.
type SuggestionRepo struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepo creates a suggestion repository.
func NewSuggestionRepo(pool *pgxpool.Pool) *SuggestionRepo {
	return &SuggestionRepo{pool: pool}
}

// Compile-time check that SuggestionRepo implements SuggestionRepository.
var _ SuggestionRepository = (*SuggestionRepo)(nil)

// InsertIgnore inserts a suggestion, relying on the
// (date_key, content_hash, source) unique constraint to absorb duplicates
// atomically. Concurrent generation runs race safely: exactly one insert
// wins, the rest are no-ops.
func (r *SuggestionRepo) InsertIgnore(ctx context.Context, params InsertSuggestionParams) (uuid.UUID, bool, error) {
	actionsJSON, err := json.Marshal(params.Actions)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("marshal actions: %w", err)
	}
	evidenceJSON, err := json.Marshal(params.Evidence)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("marshal evidence: %w", err)
	}

	query := `
		INSERT INTO coach_suggestions
			(date_key, role, branch_id, owner_id, status, title, content, severity,
			 actions, evidence, source, run_id, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (date_key, content_hash, source) DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, query,
		params.DateKey, string(params.Role), params.BranchID, params.OwnerID,
		string(domain.StatusActive), params.Title, params.Content, string(params.Severity),
		actionsJSON, evidenceJSON, params.Source, params.RunID, params.ContentHash,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: the row already exists for this day and scope.
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("insert suggestion: %w", err)
	}

	return id, true, nil
}

// GetByID retrieves a suggestion by its ID.
func (r *SuggestionRepo) GetByID(ctx context.Context, id uuid.UUID) (Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM coach_suggestions WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	s, err := scanSuggestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Suggestion{}, apperr.NotFound(suggestionNotFoundMessage)
		}
		return Suggestion{}, fmt.Errorf("get suggestion by id: %w", err)
	}
	return s, nil
}

// List retrieves active suggestions for a day, bounded by the resolved scope.
// Visibility follows the scope mode: SYSTEM sees everything (optionally
// narrowed to one branch), BRANCH sees exactly its branch set, OWNER sees
// broadcast rows plus rows addressed to the owner within their branches.
func (r *SuggestionRepo) List(ctx context.Context, filter ListSuggestionsFilter) ([]Suggestion, error) {
	conditions := []string{"date_key = $1", "status = $2"}
	args := []interface{}{filter.DateKey, string(domain.StatusActive)}

	next := func(value interface{}) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	switch filter.Scope.Mode {
	case domain.ScopeSystem:
		if len(filter.Scope.BranchIDs) > 0 {
			conditions = append(conditions, fmt.Sprintf("branch_id = ANY(%s::uuid[])", next(filter.Scope.BranchIDs)))
		}
	case domain.ScopeBranch:
		conditions = append(conditions, fmt.Sprintf("branch_id = ANY(%s::uuid[])", next(filter.Scope.BranchIDs)))
	case domain.ScopeOwner:
		if len(filter.Scope.BranchIDs) > 0 {
			conditions = append(conditions, fmt.Sprintf("(branch_id IS NULL OR branch_id = ANY(%s::uuid[]))", next(filter.Scope.BranchIDs)))
		}
		conditions = append(conditions, fmt.Sprintf("(owner_id IS NULL OR owner_id = %s)", next(filter.Scope.OwnerID)))
	}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = %s", next(string(filter.Role))))
	}
	if filter.OwnerFilter != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = %s", next(*filter.OwnerFilter)))
	}

	query := `SELECT ` + suggestionColumns + `
		FROM coach_suggestions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY severity = 'red' DESC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var results []Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSuggestion(row rowScanner) (Suggestion, error) {
	var (
		s        Suggestion
		role     string
		status   string
		severity string
		evidence []byte
	)

	err := row.Scan(
		&s.ID, &s.DateKey, &role, &s.BranchID, &s.OwnerID, &status, &s.Title, &s.Content,
		&severity, &s.Actions, &evidence, &s.Source, &s.RunID, &s.ContentHash, &s.CreatedAt,
	)
	if err != nil {
		return Suggestion{}, err
	}

	s.Role = domain.Role(role)
	s.Status = domain.SuggestionStatus(status)
	s.Severity = domain.Severity(severity)

	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &s.Evidence); err != nil {
			return Suggestion{}, fmt.Errorf("decode evidence: %w", err)
		}
	}

	return s, nil
}
