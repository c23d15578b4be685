package repository

import (
	"context"
	"errors"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo reads portal users from the shared database. The users table is
// owned by the main portal service; this repository never writes to it.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a read-only user repository.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Compile-time check that UserRepo implements UserReader.
var _ UserReader = (*UserRepo)(nil)

// GetUser retrieves a user by ID.
func (r *UserRepo) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT id, branch_id, role, is_active, full_name FROM users WHERE id = $1`

	var u User
	var role string
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.BranchID, &role, &u.IsActive, &u.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}
