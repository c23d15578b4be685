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

const targetColumns = `id, branch_id, role, owner_id, metric_key, target_value,
	day_of_week, is_active, created_at, updated_at`

const goalColumns = `id, period_type, branch_id, date_key, month_key,
	revenue_target, dossier_target, cost_target, note, created_by, created_at, updated_at`

// TargetRepo implements TargetRepository with PostgreSQL.
type TargetRepo struct {
	pool *pgxpool.Pool
}

// NewTargetRepo creates a KPI target repository.
func NewTargetRepo(pool *pgxpool.Pool) *TargetRepo {
	return &TargetRepo{pool: pool}
}

// Compile-time check that TargetRepo implements TargetRepository.
var _ TargetRepository = (*TargetRepo)(nil)

// UpsertBatch applies every row inside one transaction so a failure partway
// leaves no partial KPI state. The NULLS NOT DISTINCT unique key guarantees
// upserts never duplicate a (branch, role, metric, day, owner) row.
func (r *TargetRepo) UpsertBatch(ctx context.Context, rows []UpsertTargetParams) ([]KpiTarget, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin target upsert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO coach_kpi_targets
			(branch_id, role, owner_id, metric_key, target_value, day_of_week, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (branch_id, role, metric_key, day_of_week, owner_id)
		DO UPDATE SET target_value = EXCLUDED.target_value,
			is_active = EXCLUDED.is_active,
			updated_at = now()
		RETURNING ` + targetColumns

	results := make([]KpiTarget, 0, len(rows))
	for _, row := range rows {
		t, err := scanTarget(tx.QueryRow(ctx, query,
			row.BranchID, string(row.Role), row.OwnerID, string(row.MetricKey),
			row.TargetValue, row.DayOfWeek, row.IsActive,
		))
		if err != nil {
			return nil, fmt.Errorf("upsert target %s/%s: %w", row.Role, row.MetricKey, err)
		}
		results = append(results, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit target upsert: %w", err)
	}

	return results, nil
}

// UpsertGoal upserts a period goal by its compound scope/period key.
func (r *TargetRepo) UpsertGoal(ctx context.Context, params UpsertGoalParams) (GoalSetting, error) {
	query := `
		INSERT INTO coach_goal_settings
			(period_type, branch_id, date_key, month_key, revenue_target,
			 dossier_target, cost_target, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (branch_id, period_type, date_key, month_key)
		DO UPDATE SET revenue_target = EXCLUDED.revenue_target,
			dossier_target = EXCLUDED.dossier_target,
			cost_target = EXCLUDED.cost_target,
			note = EXCLUDED.note,
			updated_at = now()
		RETURNING ` + goalColumns

	g, err := scanGoal(r.pool.QueryRow(ctx, query,
		string(params.PeriodType), params.BranchID, params.DateKey, params.MonthKey,
		params.RevenueTarget, params.DossierTarget, params.CostTarget, params.Note, params.CreatedByID,
	))
	if err != nil {
		return GoalSetting{}, fmt.Errorf("upsert goal: %w", err)
	}
	return g, nil
}

// GetGoal retrieves the goal for one scope and period key.
func (r *TargetRepo) GetGoal(ctx context.Context, periodType GoalPeriod, branchID *uuid.UUID, dateKey, monthKey *string) (GoalSetting, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM coach_goal_settings
		WHERE period_type = $1
		  AND branch_id IS NOT DISTINCT FROM $2
		  AND date_key IS NOT DISTINCT FROM $3
		  AND month_key IS NOT DISTINCT FROM $4`

	g, err := scanGoal(r.pool.QueryRow(ctx, query, string(periodType), branchID, dateKey, monthKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GoalSetting{}, apperr.NotFound("goal not found")
		}
		return GoalSetting{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func scanTarget(row rowScanner) (KpiTarget, error) {
	var (
		t      KpiTarget
		role   string
		metric string
	)
	err := row.Scan(
		&t.ID, &t.BranchID, &role, &t.OwnerID, &metric, &t.TargetValue,
		&t.DayOfWeek, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return KpiTarget{}, err
	}
	t.Role = domain.Role(role)
	t.MetricKey = domain.MetricKey(metric)
	return t, nil
}

func scanGoal(row rowScanner) (GoalSetting, error) {
	var (
		g      GoalSetting
		period string
	)
	err := row.Scan(
		&g.ID, &period, &g.BranchID, &g.DateKey, &g.MonthKey,
		&g.RevenueTarget, &g.DossierTarget, &g.CostTarget, &g.Note,
		&g.CreatedByID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return GoalSetting{}, err
	}
	g.PeriodType = GoalPeriod(period)
	return g, nil
}
