// Package coach wires the suggestion engine's bounded context: signal
// collection, rule evaluation, suggestion storage, feedback, and the KPI
// target registry.
package coach

import (
	"kpi_coach_backend/internal/coach/handler"
	"kpi_coach_backend/internal/coach/repository"
	"kpi_coach_backend/internal/coach/service"
	"kpi_coach_backend/internal/coach/signals"
	"kpi_coach_backend/internal/server"
	"kpi_coach_backend/platform/logger"
	"kpi_coach_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the coach bounded context.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the coach context over the shared database pool.
func NewModule(pool *pgxpool.Pool, validate *validator.Validator, log *logger.Logger) *Module {
	suggestionRepo := repository.NewSuggestionRepo(pool)
	feedbackRepo := repository.NewFeedbackRepo(pool)
	targetRepo := repository.NewTargetRepo(pool)
	userReader := repository.NewUserRepo(pool)
	collector := signals.NewCollector(pool)

	suggestionSvc := service.NewSuggestionService(suggestionRepo, feedbackRepo, collector, log)
	feedbackSvc := service.NewFeedbackService(suggestionRepo, feedbackRepo, log)
	targetSvc := service.NewTargetService(targetRepo, userReader, log)

	return &Module{
		handler: handler.New(suggestionSvc, feedbackSvc, targetSvc, validate, log),
	}
}

// Name implements server.Module.
func (m *Module) Name() string { return "coach" }

// MountRoutes implements server.Module.
func (m *Module) MountRoutes(rc server.RouterContext) {
	g := rc.Protected.Group("/coach")
	g.GET("/suggestions", m.handler.ListSuggestions)
	g.POST("/suggestions", m.handler.CreateSuggestion)
	g.POST("/suggestions/:id/feedback", m.handler.SubmitFeedback)
	g.PUT("/targets", m.handler.UpsertTargets)
	g.PUT("/goals", m.handler.UpsertGoal)
	g.GET("/goals", m.handler.GetGoal)

	rc.Ingest.POST("/suggestions", m.handler.Ingest)
}
