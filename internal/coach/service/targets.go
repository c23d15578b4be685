package service

import (
	"context"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/repository"
	"kpi_coach_backend/internal/coach/transport"
	"kpi_coach_backend/platform/apperr"
	"kpi_coach_backend/platform/logger"

	"github.com/google/uuid"
)

// TargetService administers the KPI target registry and period goals.
// Owner-scoped roles cannot write here: targets and goals are management
// records set for salespeople, not by them.
type TargetService struct {
	targets repository.TargetRepository
	users   repository.UserReader
	log     *logger.Logger
}

// NewTargetService wires the target and goal use cases.
func NewTargetService(targets repository.TargetRepository, users repository.UserReader, log *logger.Logger) *TargetService {
	return &TargetService{targets: targets, users: users, log: log}
}

// UpsertTargets validates and applies a batch of KPI target rows in one
// transaction. Any invalid row rejects the whole batch before a single
// write happens.
func (s *TargetService) UpsertTargets(ctx context.Context, actor domain.Actor, req transport.UpsertTargetsRequest) (transport.TargetListResponse, error) {
	scope, err := s.writerScope(actor)
	if err != nil {
		return transport.TargetListResponse{}, err
	}

	params := make([]repository.UpsertTargetParams, 0, len(req.Items))
	for i, item := range req.Items {
		row, err := s.buildTargetParams(ctx, scope, req.BranchID, item)
		if err != nil {
			return transport.TargetListResponse{}, apperr.Wrap(apperr.GetKind(err), fmt.Sprintf("target item %d: %s", i, err), err)
		}
		params = append(params, row)
	}

	rows, err := s.targets.UpsertBatch(ctx, params)
	if err != nil {
		return transport.TargetListResponse{}, err
	}

	s.log.Info("kpi targets upserted", "count", len(rows))

	resp := transport.TargetListResponse{Count: len(rows), Items: make([]transport.TargetResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Items = append(resp.Items, toTargetResponse(row))
	}
	return resp, nil
}

func (s *TargetService) buildTargetParams(ctx context.Context, scope domain.Scope, defaultBranch *uuid.UUID, item transport.TargetRowRequest) (repository.UpsertTargetParams, error) {
	branch := item.BranchID
	if branch == nil {
		branch = defaultBranch
	}
	if branch == nil {
		return repository.UpsertTargetParams{}, apperr.Validation("branchId is required")
	}
	if !scope.CoversBranch(branch) {
		return repository.UpsertTargetParams{}, apperr.Forbidden("branch is outside your visibility")
	}

	role := domain.Role(item.Role)
	if !role.IsValid() {
		return repository.UpsertTargetParams{}, apperr.Validation("unknown role")
	}
	metric := domain.MetricKey(item.MetricKey)
	if !metric.IsValid() {
		return repository.UpsertTargetParams{}, apperr.Validation("unknown metric key")
	}
	if !metric.AppliesTo(role) {
		return repository.UpsertTargetParams{}, apperr.Validation("metric " + item.MetricKey + " does not apply to role " + item.Role)
	}
	if item.TargetValue < 0 || item.TargetValue > 100 {
		return repository.UpsertTargetParams{}, apperr.Validation("targetValue must be between 0 and 100")
	}
	// -1 means every day of the week; 0..6 Sunday through Saturday.
	if item.DayOfWeek < -1 || item.DayOfWeek > 6 {
		return repository.UpsertTargetParams{}, apperr.Validation("dayOfWeek must be -1 or 0..6")
	}

	if item.OwnerID != nil {
		if err := s.checkOwnerOverride(ctx, *item.OwnerID, *branch, role); err != nil {
			return repository.UpsertTargetParams{}, err
		}
	}

	active := true
	if item.IsActive != nil {
		active = *item.IsActive
	}

	return repository.UpsertTargetParams{
		BranchID:    *branch,
		Role:        role,
		OwnerID:     item.OwnerID,
		MetricKey:   metric,
		TargetValue: item.TargetValue,
		DayOfWeek:   item.DayOfWeek,
		IsActive:    active,
	}, nil
}

// checkOwnerOverride verifies that an owner-specific target addresses a real,
// active user at the same branch holding the same role as the row.
func (s *TargetService) checkOwnerOverride(ctx context.Context, ownerID, branchID uuid.UUID, role domain.Role) error {
	user, err := s.users.GetUser(ctx, ownerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("owner does not exist")
		}
		return err
	}
	if !user.IsActive {
		return apperr.Validation("owner is inactive")
	}
	if user.BranchID != branchID {
		return apperr.Validation("owner belongs to a different branch")
	}
	if user.Role != role {
		return apperr.Validation("owner holds a different role")
	}
	return nil
}

// UpsertGoal applies a daily or monthly revenue/dossier/cost goal. A nil
// branch is a system-wide goal only SYSTEM-scope actors may set.
func (s *TargetService) UpsertGoal(ctx context.Context, actor domain.Actor, req transport.UpsertGoalRequest) (transport.GoalResponse, error) {
	scope, err := s.writerScope(actor)
	if err != nil {
		return transport.GoalResponse{}, err
	}

	period, dateKey, monthKey, err := goalPeriodKeys(req.PeriodType, req.DateKey, req.MonthKey)
	if err != nil {
		return transport.GoalResponse{}, err
	}
	if req.RevenueTarget < 0 || req.CostTarget < 0 || req.DossierTarget < 0 {
		return transport.GoalResponse{}, apperr.Validation("goal amounts must be non-negative")
	}

	if err := checkGoalBranch(scope, req.BranchID); err != nil {
		return transport.GoalResponse{}, err
	}

	row, err := s.targets.UpsertGoal(ctx, repository.UpsertGoalParams{
		PeriodType:    period,
		BranchID:      req.BranchID,
		DateKey:       dateKey,
		MonthKey:      monthKey,
		RevenueTarget: req.RevenueTarget,
		DossierTarget: req.DossierTarget,
		CostTarget:    req.CostTarget,
		Note:          req.Note,
		CreatedByID:   actor.UserID,
	})
	if err != nil {
		return transport.GoalResponse{}, err
	}
	return toGoalResponse(row), nil
}

// GetGoal retrieves the goal for one scope and period key.
func (s *TargetService) GetGoal(ctx context.Context, actor domain.Actor, req transport.GetGoalRequest) (transport.GoalResponse, error) {
	scope, err := domain.ResolveScope(actor, nil)
	if err != nil {
		return transport.GoalResponse{}, err
	}

	period, dateKey, monthKey, err := goalPeriodKeys(req.PeriodType, req.DateKey, req.MonthKey)
	if err != nil {
		return transport.GoalResponse{}, err
	}
	if req.BranchID != nil && !scope.CoversBranch(req.BranchID) {
		return transport.GoalResponse{}, apperr.Forbidden("branch is outside your visibility")
	}

	row, err := s.targets.GetGoal(ctx, period, req.BranchID, dateKey, monthKey)
	if err != nil {
		return transport.GoalResponse{}, err
	}
	return toGoalResponse(row), nil
}

// writerScope resolves the actor's scope and rejects owner-scoped roles,
// which may read targets through reporting but never write them.
func (s *TargetService) writerScope(actor domain.Actor) (domain.Scope, error) {
	scope, err := domain.ResolveScope(actor, nil)
	if err != nil {
		return domain.Scope{}, err
	}
	if scope.Mode == domain.ScopeOwner {
		return domain.Scope{}, apperr.Forbidden("your role cannot manage targets")
	}
	return scope, nil
}

func goalPeriodKeys(periodType string, dateKey, monthKey *string) (repository.GoalPeriod, *string, *string, error) {
	switch repository.GoalPeriod(periodType) {
	case repository.GoalDaily:
		if dateKey == nil || monthKey != nil {
			return "", nil, nil, apperr.Validation("DAILY goals take dateKey and no monthKey")
		}
		return repository.GoalDaily, dateKey, nil, nil
	case repository.GoalMonthly:
		if monthKey == nil || dateKey != nil {
			return "", nil, nil, apperr.Validation("MONTHLY goals take monthKey and no dateKey")
		}
		return repository.GoalMonthly, nil, monthKey, nil
	default:
		return "", nil, nil, apperr.Validation("unknown period type")
	}
}

func checkGoalBranch(scope domain.Scope, branchID *uuid.UUID) error {
	if branchID == nil {
		if scope.Mode != domain.ScopeSystem {
			return apperr.Forbidden("system-wide goals require system visibility")
		}
		return nil
	}
	if !scope.CoversBranch(branchID) {
		return apperr.Forbidden("branch is outside your visibility")
	}
	return nil
}

func toTargetResponse(row repository.KpiTarget) transport.TargetResponse {
	return transport.TargetResponse{
		ID:          row.ID,
		BranchID:    row.BranchID,
		Role:        string(row.Role),
		OwnerID:     row.OwnerID,
		MetricKey:   string(row.MetricKey),
		TargetValue: row.TargetValue,
		DayOfWeek:   row.DayOfWeek,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   row.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toGoalResponse(row repository.GoalSetting) transport.GoalResponse {
	return transport.GoalResponse{
		ID:            row.ID,
		PeriodType:    string(row.PeriodType),
		BranchID:      row.BranchID,
		DateKey:       row.DateKey,
		MonthKey:      row.MonthKey,
		RevenueTarget: row.RevenueTarget,
		DossierTarget: row.DossierTarget,
		CostTarget:    row.CostTarget,
		Note:          row.Note,
		CreatedByID:   row.CreatedByID,
		CreatedAt:     row.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     row.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
