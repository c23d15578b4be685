// Package handler exposes the action dispatcher over HTTP.
package handler

import (
	"net/http"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/dispatch/service"
	"kpi_coach_backend/internal/dispatch/transport"
	"kpi_coach_backend/platform/httpkit"
	"kpi_coach_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler holds the dispatch endpoints.
type Handler struct {
	dispatcher *service.Dispatcher
	validate   *validator.Validator
}

// New creates the dispatch handler.
func New(dispatcher *service.Dispatcher, validate *validator.Validator) *Handler {
	return &Handler{dispatcher: dispatcher, validate: validate}
}

// DispatchAction handles POST /dispatch/actions.
func (h *Handler) DispatchAction(c *gin.Context) {
	var req transport.DispatchActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	id := httpkit.MustGetIdentity(c)
	actor := domain.Actor{
		UserID:    id.UserID(),
		Role:      domain.Role(id.Role()),
		BranchIDs: id.BranchIDs(),
	}

	resp, err := h.dispatcher.Dispatch(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}
