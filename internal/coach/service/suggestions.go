// Package service implements the coach engine's use cases on top of the
// domain rules and the repositories: scoped listing with on-demand
// generation, manual and external suggestion intake, feedback recording,
// and KPI target administration.
package service

import (
	"context"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/repository"
	"kpi_coach_backend/internal/coach/rules"
	"kpi_coach_backend/internal/coach/signals"
	"kpi_coach_backend/internal/coach/transport"
	"kpi_coach_backend/platform/apperr"
	"kpi_coach_backend/platform/logger"

	"github.com/google/uuid"
)

// SignalCollector gathers the scoped evidence battery for one window.
type SignalCollector interface {
	Collect(ctx context.Context, win signals.Window, scope domain.Scope) (signals.Signals, error)
}

// SuggestionService serves suggestion listing, generation, and intake.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	feedback    repository.FeedbackRepository
	collector   SignalCollector
	log         *logger.Logger
}

// NewSuggestionService wires the suggestion use cases.
func NewSuggestionService(
	suggestions repository.SuggestionRepository,
	feedback repository.FeedbackRepository,
	collector SignalCollector,
	log *logger.Logger,
) *SuggestionService {
	return &SuggestionService{
		suggestions: suggestions,
		feedback:    feedback,
		collector:   collector,
		log:         log,
	}
}

// List returns the day's suggestions visible to the actor, generating the
// rule-based ones first so a freshly opened dashboard is never empty when
// the evidence warrants a warning. Generation is idempotent: the content
// hash makes repeated calls no-ops.
func (s *SuggestionService) List(ctx context.Context, actor domain.Actor, req transport.ListSuggestionsRequest) (transport.SuggestionListResponse, error) {
	scope, err := domain.ResolveScope(actor, req.BranchID)
	if err != nil {
		return transport.SuggestionListResponse{}, err
	}

	dateKey := req.Date
	if dateKey == "" {
		dateKey = signals.Today()
	}

	var roleFilter domain.Role
	if req.Role != "" {
		roleFilter = domain.Role(req.Role)
		if !roleFilter.IsValid() {
			return transport.SuggestionListResponse{}, apperr.Validation("unknown role filter")
		}
	}

	// An owner-scoped actor can only ask for their own rows.
	if req.OwnerID != nil && scope.Mode == domain.ScopeOwner && *req.OwnerID != actor.UserID {
		return transport.SuggestionListResponse{}, apperr.Forbidden("owner filter is outside your visibility")
	}

	if err := s.EnsureGenerated(ctx, actor, scope, dateKey); err != nil {
		return transport.SuggestionListResponse{}, err
	}

	rows, err := s.suggestions.List(ctx, repository.ListSuggestionsFilter{
		DateKey:     dateKey,
		Scope:       scope,
		Role:        roleFilter,
		OwnerFilter: req.OwnerID,
	})
	if err != nil {
		return transport.SuggestionListResponse{}, err
	}

	items, err := s.annotate(ctx, rows, actor.UserID)
	if err != nil {
		return transport.SuggestionListResponse{}, err
	}
	return transport.SuggestionListResponse{Items: items}, nil
}

// EnsureGenerated runs the rule skeleton for the actor's scope and day and
// persists any triggered candidates. A multi-branch scope is evaluated one
// branch at a time so every generated row carries the branch its evidence
// came from and stays visible to the branch listing that triggered it.
// Already-persisted candidates are skipped by the storage-level dedup, so
// concurrent callers cannot double up a suggestion.
func (s *SuggestionService) EnsureGenerated(ctx context.Context, actor domain.Actor, scope domain.Scope, dateKey string) error {
	win, err := signals.ComputeWindow(dateKey)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	runID := uuid.NewString()
	inserted, evaluated := 0, 0
	for _, pass := range generationPasses(scope) {
		sig, err := s.collector.Collect(ctx, win, pass)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "collect signals", err)
		}

		target := rules.Target{
			DateKey: dateKey,
			Role:    actor.Role,
			OwnerID: pass.OwnerID,
		}
		if len(pass.BranchIDs) == 1 {
			branch := pass.BranchIDs[0]
			target.BranchID = &branch
		}

		candidates := rules.Evaluate(target, sig)
		evaluated += len(candidates)
		for _, cand := range candidates {
			hash := domain.ContentHash(dateKey, target.Role, target.BranchID, target.OwnerID, cand.Title, domain.SourceRules)
			_, ok, err := s.suggestions.InsertIgnore(ctx, repository.InsertSuggestionParams{
				DateKey:     dateKey,
				Role:        target.Role,
				BranchID:    target.BranchID,
				OwnerID:     target.OwnerID,
				Title:       cand.Title,
				Content:     cand.Content,
				Severity:    cand.Severity,
				Actions:     cand.Actions,
				Evidence:    cand.Evidence,
				Source:      domain.SourceRules,
				RunID:       runID,
				ContentHash: hash,
			})
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
	}

	if inserted > 0 {
		s.log.Info("rule suggestions generated",
			"date_key", dateKey,
			"role", string(actor.Role),
			"run_id", runID,
			"inserted", inserted,
			"evaluated", evaluated,
		)
	}
	return nil
}

// generationPasses splits a multi-branch scope into one single-branch pass
// per branch. Owner scopes stay whole: their rows are addressed by owner and
// the owner listing admits branchless rows, so one owner-filtered pass
// suffices regardless of branch assignment.
func generationPasses(scope domain.Scope) []domain.Scope {
	if scope.OwnerID != nil || len(scope.BranchIDs) <= 1 {
		return []domain.Scope{scope}
	}
	passes := make([]domain.Scope, 0, len(scope.BranchIDs))
	for _, branch := range scope.BranchIDs {
		passes = append(passes, domain.Scope{
			Mode:      scope.Mode,
			BranchIDs: []uuid.UUID{branch},
		})
	}
	return passes
}

// CreateManual persists an operator-entered suggestion. Duplicates of an
// existing row for the same day and scope are rejected with a conflict,
// unlike generated rows which skip silently.
func (s *SuggestionService) CreateManual(ctx context.Context, actor domain.Actor, req transport.CreateSuggestionRequest) (transport.SuggestionResponse, error) {
	params, err := s.buildInsertParams(req, domain.SourceManual, "")
	if err != nil {
		return transport.SuggestionResponse{}, err
	}

	scope, err := domain.ResolveScope(actor, nil)
	if err != nil {
		return transport.SuggestionResponse{}, err
	}
	if !scope.Covers(params.BranchID, params.OwnerID) {
		return transport.SuggestionResponse{}, apperr.Forbidden("suggestion target is outside your visibility")
	}

	id, ok, err := s.suggestions.InsertIgnore(ctx, params)
	if err != nil {
		return transport.SuggestionResponse{}, err
	}
	if !ok {
		return transport.SuggestionResponse{}, apperr.Conflict("an identical suggestion already exists for this day")
	}

	row, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		return transport.SuggestionResponse{}, err
	}
	return toSuggestionResponse(row, nil, repository.FeedbackStats{}), nil
}

// IngestExternal accepts a batch from the trusted external rule-runner.
// The source literal is part of the contract: anything else is rejected
// outright, so a misconfigured client cannot pollute another source's
// dedup space. Returns the count of newly inserted rows.
func (s *SuggestionService) IngestExternal(ctx context.Context, req transport.IngestRequest) (transport.IngestResponse, error) {
	if req.Source != domain.SourceN8N {
		return transport.IngestResponse{}, apperr.Validation("unsupported source")
	}

	inserted := 0
	for i, row := range req.Suggestions {
		params, err := s.buildInsertParams(row, domain.SourceN8N, req.RunID)
		if err != nil {
			return transport.IngestResponse{}, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("suggestion row %d: %s", i, err), err)
		}
		_, ok, err := s.suggestions.InsertIgnore(ctx, params)
		if err != nil {
			return transport.IngestResponse{}, err
		}
		if ok {
			inserted++
		}
	}

	s.log.Info("external suggestions ingested",
		"source", req.Source,
		"run_id", req.RunID,
		"received", len(req.Suggestions),
		"inserted", inserted,
	)
	return transport.IngestResponse{Count: inserted}, nil
}

func (s *SuggestionService) buildInsertParams(req transport.CreateSuggestionRequest, source, runID string) (repository.InsertSuggestionParams, error) {
	role := domain.Role(req.Role)
	if !role.IsValid() {
		return repository.InsertSuggestionParams{}, apperr.Validation("unknown role")
	}
	severity := domain.Severity(req.Severity)
	if !severity.IsValid() {
		return repository.InsertSuggestionParams{}, apperr.Validation("unknown severity")
	}
	if err := domain.ValidateActions(req.Actions); err != nil {
		return repository.InsertSuggestionParams{}, apperr.Validation(err.Error())
	}

	dateKey := req.DateKey
	if dateKey == "" {
		dateKey = signals.Today()
	}
	if _, err := signals.ComputeWindow(dateKey); err != nil {
		return repository.InsertSuggestionParams{}, apperr.Validation(err.Error())
	}

	return repository.InsertSuggestionParams{
		DateKey:     dateKey,
		Role:        role,
		BranchID:    req.BranchID,
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Content:     req.Content,
		Severity:    severity,
		Actions:     req.Actions,
		Evidence:    req.Evidence,
		Source:      source,
		RunID:       runID,
		ContentHash: domain.ContentHash(dateKey, role, req.BranchID, req.OwnerID, req.Title, source),
	}, nil
}

func (s *SuggestionService) annotate(ctx context.Context, rows []repository.Suggestion, userID uuid.UUID) ([]transport.SuggestionResponse, error) {
	items := make([]transport.SuggestionResponse, 0, len(rows))
	if len(rows) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	mine, stats, err := s.feedback.ForSuggestions(ctx, ids, userID)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		var own *repository.Feedback
		if fb, ok := mine[row.ID]; ok {
			own = &fb
		}
		items = append(items, toSuggestionResponse(row, own, stats[row.ID]))
	}
	return items, nil
}

func toSuggestionResponse(row repository.Suggestion, own *repository.Feedback, stats repository.FeedbackStats) transport.SuggestionResponse {
	actions, err := domain.DecodeActions(row.Actions)
	if err != nil {
		// Rows are validated on the way in; an undecodable blob means the
		// storage was tampered with. Degrade to an empty action list rather
		// than failing the whole listing.
		actions = nil
	}
	if actions == nil {
		actions = []domain.Action{}
	}

	resp := transport.SuggestionResponse{
		ID:       row.ID,
		DateKey:  row.DateKey,
		Role:     string(row.Role),
		BranchID: row.BranchID,
		OwnerID:  row.OwnerID,
		Status:   string(row.Status),
		Title:    row.Title,
		Content:  row.Content,
		Severity: string(row.Severity),
		Actions:  actions,
		Evidence: row.Evidence,
		Source:   row.Source,
		RunID:    row.RunID,
		CreatedAt: row.CreatedAt.In(signals.BusinessLocation()).
			Format("2006-01-02T15:04:05Z07:00"),
		FeedbackStats: transport.FeedbackStatsResponse{
			Total:      stats.Total,
			Helpful:    stats.Helpful,
			NotHelpful: stats.NotHelpful,
			Done:       stats.Done,
		},
	}

	if notes, ok := row.Evidence[domain.EngineNotesKey].(string); ok {
		resp.EngineNotes = notes
	}
	if own != nil {
		fb := toFeedbackResponse(*own)
		resp.MyFeedback = &fb
	}
	return resp
}

func toFeedbackResponse(fb repository.Feedback) transport.FeedbackResponse {
	return transport.FeedbackResponse{
		ID:           fb.ID,
		SuggestionID: fb.SuggestionID,
		FeedbackType: string(fb.Type),
		Reason:       string(fb.Reason),
		ReasonDetail: fb.ReasonDetail,
		ActualResult: fb.ActualResult,
		Note:         fb.Note,
		Rating:       fb.Rating,
		Applied:      fb.Applied,
		CreatedAt: fb.CreatedAt.In(signals.BusinessLocation()).
			Format("2006-01-02T15:04:05Z07:00"),
	}
}
