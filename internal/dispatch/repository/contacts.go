package repository

import (
	"context"
	"errors"
	"fmt"

	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepo reads leads and students from the shared CRM tables. Both are
// owned by the main portal service; this repository never writes to them.
type ContactRepo struct {
	pool *pgxpool.Pool
}

// NewContactRepo creates a read-only contact repository.
func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

// Compile-time check that ContactRepo implements ContactReader.
var _ ContactReader = (*ContactRepo)(nil)

// GetLead resolves a lead to a dispatch contact.
func (r *ContactRepo) GetLead(ctx context.Context, id uuid.UUID) (Contact, error) {
	query := `SELECT id, full_name, phone, branch_id, owner_id FROM leads WHERE id = $1`
	return r.getContact(ctx, query, id, "lead not found")
}

// GetStudent resolves a student to a dispatch contact.
func (r *ContactRepo) GetStudent(ctx context.Context, id uuid.UUID) (Contact, error) {
	query := `SELECT id, full_name, phone, branch_id, owner_id FROM students WHERE id = $1`
	return r.getContact(ctx, query, id, "student not found")
}

func (r *ContactRepo) getContact(ctx context.Context, query string, id uuid.UUID, notFound string) (Contact, error) {
	var c Contact
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.BranchID, &c.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(notFound)
		}
		return Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}
