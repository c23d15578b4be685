// Package handler exposes the coach engine over HTTP. Handlers stay thin:
// bind, validate shape, hand the actor and the request to the service, map
// the result.
package handler

import (
	"net/http"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/service"
	"kpi_coach_backend/internal/coach/transport"
	"kpi_coach_backend/platform/httpkit"
	"kpi_coach_backend/platform/logger"
	"kpi_coach_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler holds the coach endpoints.
type Handler struct {
	suggestions *service.SuggestionService
	feedback    *service.FeedbackService
	targets     *service.TargetService
	validate    *validator.Validator
	log         *logger.Logger
}

// New creates the coach handler.
func New(
	suggestions *service.SuggestionService,
	feedback *service.FeedbackService,
	targets *service.TargetService,
	validate *validator.Validator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		suggestions: suggestions,
		feedback:    feedback,
		targets:     targets,
		validate:    validate,
		log:         log,
	}
}

// ListSuggestions handles GET /suggestions.
func (h *Handler) ListSuggestions(c *gin.Context) {
	var req transport.ListSuggestionsRequest
	req.Date = c.Query("date")
	req.Role = c.Query("role")

	var err error
	if req.BranchID, err = parseUUIDQuery(c, "branchId"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid branchId", nil)
		return
	}
	if req.OwnerID, err = parseUUIDQuery(c, "ownerId"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid ownerId", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	resp, err := h.suggestions.List(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// CreateSuggestion handles POST /suggestions.
func (h *Handler) CreateSuggestion(c *gin.Context) {
	var req transport.CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.suggestions.CreateManual(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

// SubmitFeedback handles POST /suggestions/:id/feedback.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	suggestionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid suggestion id", nil)
		return
	}

	var req transport.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.feedback.Submit(c.Request.Context(), actorFrom(c), suggestionID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

// UpsertTargets handles PUT /targets.
func (h *Handler) UpsertTargets(c *gin.Context) {
	var req transport.UpsertTargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.targets.UpsertTargets(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpsertGoal handles PUT /goals.
func (h *Handler) UpsertGoal(c *gin.Context) {
	var req transport.UpsertGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.targets.UpsertGoal(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// GetGoal handles GET /goals.
func (h *Handler) GetGoal(c *gin.Context) {
	var req transport.GetGoalRequest
	req.PeriodType = c.Query("periodType")

	var err error
	if req.BranchID, err = parseUUIDQuery(c, "branchId"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid branchId", nil)
		return
	}
	if v := c.Query("dateKey"); v != "" {
		req.DateKey = &v
	}
	if v := c.Query("monthKey"); v != "" {
		req.MonthKey = &v
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	resp, err := h.targets.GetGoal(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Ingest handles POST /ingest/suggestions, guarded by the ingest-token
// middleware rather than user auth.
func (h *Handler) Ingest(c *gin.Context) {
	var req transport.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.suggestions.IngestExternal(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func actorFrom(c *gin.Context) domain.Actor {
	id := httpkit.MustGetIdentity(c)
	return domain.Actor{
		UserID:    id.UserID(),
		Role:      domain.Role(id.Role()),
		BranchIDs: id.BranchIDs(),
	}
}

func parseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
