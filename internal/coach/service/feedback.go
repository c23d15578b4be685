package service

import (
	"context"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/repository"
	"kpi_coach_backend/internal/coach/transport"
	"kpi_coach_backend/platform/apperr"
	"kpi_coach_backend/platform/logger"

	"github.com/google/uuid"
)

// FeedbackService records user responses to suggestions.
type FeedbackService struct {
	suggestions repository.SuggestionRepository
	feedback    repository.FeedbackRepository
	log         *logger.Logger
}

// NewFeedbackService wires the feedback use case.
func NewFeedbackService(
	suggestions repository.SuggestionRepository,
	feedback repository.FeedbackRepository,
	log *logger.Logger,
) *FeedbackService {
	return &FeedbackService{suggestions: suggestions, feedback: feedback, log: log}
}

// Submit records one user's feedback on a suggestion. Each user gets exactly
// one response per suggestion; a second attempt surfaces the storage
// uniqueness as a conflict. Rating and applied are derived from the feedback
// type, never taken from the caller.
func (s *FeedbackService) Submit(ctx context.Context, actor domain.Actor, suggestionID uuid.UUID, req transport.SubmitFeedbackRequest) (transport.FeedbackResponse, error) {
	fbType := domain.FeedbackType(req.FeedbackType)
	if !fbType.IsValid() {
		return transport.FeedbackResponse{}, apperr.Validation("unknown feedback type")
	}
	reason := domain.FeedbackReason(req.Reason)
	if !reason.IsValid() {
		return transport.FeedbackResponse{}, apperr.Validation("unknown feedback reason")
	}
	if !domain.ValidateReasonDetail(reason, req.ReasonDetail) {
		return transport.FeedbackResponse{}, apperr.Validation("reason khac requires a reason detail")
	}
	if !req.ActualResult.Validate() {
		return transport.FeedbackResponse{}, apperr.Validation("actual result counters must be non-negative")
	}

	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		return transport.FeedbackResponse{}, err
	}

	scope, err := domain.ResolveScope(actor, nil)
	if err != nil {
		return transport.FeedbackResponse{}, err
	}
	if !scope.Covers(suggestion.BranchID, suggestion.OwnerID) {
		return transport.FeedbackResponse{}, apperr.Forbidden("suggestion is outside your visibility")
	}

	actual := req.ActualResult
	if actual.IsEmpty() {
		actual = nil
	}

	row, err := s.feedback.Insert(ctx, repository.InsertFeedbackParams{
		SuggestionID: suggestionID,
		UserID:       actor.UserID,
		Type:         fbType,
		Reason:       reason,
		ReasonDetail: req.ReasonDetail,
		ActualResult: actual,
		Note:         req.Note,
		Rating:       fbType.Rating(),
		Applied:      fbType.Applied(),
	})
	if err != nil {
		return transport.FeedbackResponse{}, err
	}

	s.log.Info("feedback recorded",
		"suggestion_id", suggestionID.String(),
		"feedback_type", string(fbType),
		"rating", row.Rating,
	)
	return toFeedbackResponse(row), nil
}
