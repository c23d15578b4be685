package service

import (
	"context"
	"encoding/json"
	"time"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/repository"
	"kpi_coach_backend/internal/coach/signals"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeSuggestionRepo mirrors the storage dedup semantics in memory: the
// (date_key, content_hash, source) triple is the uniqueness key.
type fakeSuggestionRepo struct {
	rows    map[uuid.UUID]repository.Suggestion
	dedup   map[string]uuid.UUID
	inserts int
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{
		rows:  make(map[uuid.UUID]repository.Suggestion),
		dedup: make(map[string]uuid.UUID),
	}
}

func (f *fakeSuggestionRepo) InsertIgnore(_ context.Context, params repository.InsertSuggestionParams) (uuid.UUID, bool, error) {
	key := params.DateKey + "|" + params.ContentHash + "|" + params.Source
	if _, ok := f.dedup[key]; ok {
		return uuid.Nil, false, nil
	}

	actionsJSON, err := json.Marshal(params.Actions)
	if err != nil {
		return uuid.Nil, false, err
	}

	id := uuid.New()
	f.rows[id] = repository.Suggestion{
		ID:          id,
		DateKey:     params.DateKey,
		Role:        params.Role,
		BranchID:    params.BranchID,
		OwnerID:     params.OwnerID,
		Status:      domain.StatusActive,
		Title:       params.Title,
		Content:     params.Content,
		Severity:    params.Severity,
		Actions:     actionsJSON,
		Evidence:    params.Evidence,
		Source:      params.Source,
		RunID:       params.RunID,
		ContentHash: params.ContentHash,
		CreatedAt:   time.Now(),
	}
	f.dedup[key] = id
	f.inserts++
	return id, true, nil
}

func (f *fakeSuggestionRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Suggestion, error) {
	row, ok := f.rows[id]
	if !ok {
		return repository.Suggestion{}, apperr.NotFound("suggestion not found")
	}
	return row, nil
}

// List mirrors the SQL visibility rules exactly: BRANCH scope matches only
// rows at one of its branches (broadcast rows excluded), OWNER scope admits
// branchless rows plus the owner's own, SYSTEM sees everything unless
// narrowed.
func (f *fakeSuggestionRepo) List(_ context.Context, filter repository.ListSuggestionsFilter) ([]repository.Suggestion, error) {
	var out []repository.Suggestion
	for _, row := range f.rows {
		if row.DateKey != filter.DateKey || row.Status != domain.StatusActive {
			continue
		}
		switch filter.Scope.Mode {
		case domain.ScopeSystem:
			if len(filter.Scope.BranchIDs) > 0 && !branchMatches(filter.Scope.BranchIDs, row.BranchID) {
				continue
			}
		case domain.ScopeBranch:
			if !branchMatches(filter.Scope.BranchIDs, row.BranchID) {
				continue
			}
		case domain.ScopeOwner:
			if len(filter.Scope.BranchIDs) > 0 && row.BranchID != nil && !branchMatches(filter.Scope.BranchIDs, row.BranchID) {
				continue
			}
			if row.OwnerID != nil && (filter.Scope.OwnerID == nil || *row.OwnerID != *filter.Scope.OwnerID) {
				continue
			}
		}
		if filter.Role != "" && row.Role != filter.Role {
			continue
		}
		if filter.OwnerFilter != nil && (row.OwnerID == nil || *row.OwnerID != *filter.OwnerFilter) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func branchMatches(branches []uuid.UUID, branchID *uuid.UUID) bool {
	if branchID == nil {
		return false
	}
	for _, b := range branches {
		if b == *branchID {
			return true
		}
	}
	return false
}

type feedbackKey struct {
	suggestion uuid.UUID
	user       uuid.UUID
}

type fakeFeedbackRepo struct {
	rows map[feedbackKey]repository.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{rows: make(map[feedbackKey]repository.Feedback)}
}

func (f *fakeFeedbackRepo) Insert(_ context.Context, params repository.InsertFeedbackParams) (repository.Feedback, error) {
	key := feedbackKey{suggestion: params.SuggestionID, user: params.UserID}
	if _, ok := f.rows[key]; ok {
		return repository.Feedback{}, apperr.Conflict("already responded to this suggestion")
	}

	row := repository.Feedback{
		ID:           uuid.New(),
		SuggestionID: params.SuggestionID,
		UserID:       params.UserID,
		Type:         params.Type,
		Reason:       params.Reason,
		ReasonDetail: params.ReasonDetail,
		ActualResult: params.ActualResult,
		Note:         params.Note,
		Rating:       params.Rating,
		Applied:      params.Applied,
		CreatedAt:    time.Now(),
	}
	f.rows[key] = row
	return row, nil
}

func (f *fakeFeedbackRepo) ForSuggestions(_ context.Context, suggestionIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]repository.Feedback, map[uuid.UUID]repository.FeedbackStats, error) {
	mine := make(map[uuid.UUID]repository.Feedback)
	stats := make(map[uuid.UUID]repository.FeedbackStats)

	for _, id := range suggestionIDs {
		for key, row := range f.rows {
			if key.suggestion != id {
				continue
			}
			s := stats[id]
			s.Total++
			switch row.Type {
			case domain.FeedbackHelpful:
				s.Helpful++
			case domain.FeedbackNotHelpful:
				s.NotHelpful++
			case domain.FeedbackDone:
				s.Done++
			}
			stats[id] = s
			if key.user == userID {
				mine[id] = row
			}
		}
	}
	return mine, stats, nil
}

type fakeCollector struct {
	sig signals.Signals
	// perBranch overrides sig for single-branch collection passes.
	perBranch map[uuid.UUID]signals.Signals
	err       error
}

func (f *fakeCollector) Collect(_ context.Context, _ signals.Window, scope domain.Scope) (signals.Signals, error) {
	if f.err != nil {
		return signals.Signals{}, f.err
	}
	if len(scope.BranchIDs) == 1 {
		if sig, ok := f.perBranch[scope.BranchIDs[0]]; ok {
			return sig, nil
		}
	}
	return f.sig, nil
}

type fakeTargetRepo struct {
	targets []repository.KpiTarget
	goals   map[string]repository.GoalSetting
}

func newFakeTargetRepo() *fakeTargetRepo {
	return &fakeTargetRepo{goals: make(map[string]repository.GoalSetting)}
}

func (f *fakeTargetRepo) UpsertBatch(_ context.Context, rows []repository.UpsertTargetParams) ([]repository.KpiTarget, error) {
	out := make([]repository.KpiTarget, 0, len(rows))
	for _, row := range rows {
		t := repository.KpiTarget{
			ID:          uuid.New(),
			BranchID:    row.BranchID,
			Role:        row.Role,
			OwnerID:     row.OwnerID,
			MetricKey:   row.MetricKey,
			TargetValue: row.TargetValue,
			DayOfWeek:   row.DayOfWeek,
			IsActive:    row.IsActive,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		out = append(out, t)
	}
	f.targets = append(f.targets, out...)
	return out, nil
}

func goalKey(periodType repository.GoalPeriod, branchID *uuid.UUID, dateKey, monthKey *string) string {
	key := string(periodType) + "|"
	if branchID != nil {
		key += branchID.String()
	}
	key += "|"
	if dateKey != nil {
		key += *dateKey
	}
	key += "|"
	if monthKey != nil {
		key += *monthKey
	}
	return key
}

func (f *fakeTargetRepo) UpsertGoal(_ context.Context, params repository.UpsertGoalParams) (repository.GoalSetting, error) {
	key := goalKey(params.PeriodType, params.BranchID, params.DateKey, params.MonthKey)
	row, ok := f.goals[key]
	if !ok {
		row = repository.GoalSetting{ID: uuid.New(), CreatedAt: time.Now()}
	}
	row.PeriodType = params.PeriodType
	row.BranchID = params.BranchID
	row.DateKey = params.DateKey
	row.MonthKey = params.MonthKey
	row.RevenueTarget = params.RevenueTarget
	row.DossierTarget = params.DossierTarget
	row.CostTarget = params.CostTarget
	row.Note = params.Note
	row.CreatedByID = params.CreatedByID
	row.UpdatedAt = time.Now()
	f.goals[key] = row
	return row, nil
}

func (f *fakeTargetRepo) GetGoal(_ context.Context, periodType repository.GoalPeriod, branchID *uuid.UUID, dateKey, monthKey *string) (repository.GoalSetting, error) {
	row, ok := f.goals[goalKey(periodType, branchID, dateKey, monthKey)]
	if !ok {
		return repository.GoalSetting{}, apperr.NotFound("goal not found")
	}
	return row, nil
}

type fakeUserReader struct {
	users map[uuid.UUID]repository.User
}

func newFakeUserReader() *fakeUserReader {
	return &fakeUserReader{users: make(map[uuid.UUID]repository.User)}
}

func (f *fakeUserReader) GetUser(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}
