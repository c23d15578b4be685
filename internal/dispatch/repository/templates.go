package repository

import (
	"context"
	"errors"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TemplateRepo reads the message-template catalog.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

// NewTemplateRepo creates a template reader.
func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

// Compile-time check that TemplateRepo implements TemplateReader.
var _ TemplateReader = (*TemplateRepo)(nil)

// GetActive returns the active template for the key. An inactive template
// is indistinguishable from a missing one: the caller only dispatches what
// the catalog currently allows.
func (r *TemplateRepo) GetActive(ctx context.Context, templateKey string) (Template, error) {
	query := `
		SELECT id, template_key, channel, title, body, is_active
		FROM coach_message_templates
		WHERE template_key = $1 AND is_active`

	var t Template
	var channel string
	err := r.pool.QueryRow(ctx, query, templateKey).Scan(
		&t.ID, &t.TemplateKey, &channel, &t.Title, &t.Body, &t.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, apperr.NotFound("template not found")
		}
		return Template{}, fmt.Errorf("get template: %w", err)
	}
	t.Channel = domain.Channel(channel)
	return t, nil
}
