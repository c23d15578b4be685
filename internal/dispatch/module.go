// Package dispatch wires the action-dispatch bounded context: template
// lookup, contact resolution, and the outbound-job queue.
package dispatch

import (
	"kpi_coach_backend/internal/dispatch/handler"
	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/internal/dispatch/service"
	"kpi_coach_backend/internal/server"
	"kpi_coach_backend/platform/logger"
	"kpi_coach_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dispatch bounded context.
type Module struct {
	handler *handler.Handler
	jobs    repository.JobRepository
}

// NewModule wires the dispatch context over the shared database pool.
func NewModule(pool *pgxpool.Pool, validate *validator.Validator, log *logger.Logger) *Module {
	templates := repository.NewTemplateRepo(pool)
	jobs := repository.NewJobRepo(pool)
	contacts := repository.NewContactRepo(pool)

	dispatcher := service.NewDispatcher(templates, jobs, contacts, log)

	return &Module{
		handler: handler.New(dispatcher, validate),
		jobs:    jobs,
	}
}

// Name implements server.Module.
func (m *Module) Name() string { return "dispatch" }

// MountRoutes implements server.Module.
func (m *Module) MountRoutes(rc server.RouterContext) {
	rc.Protected.POST("/dispatch/actions", m.handler.DispatchAction)
}

// Jobs exposes the job repository for the scheduler bridge and the delivery
// worker, which run outside the HTTP surface.
func (m *Module) Jobs() repository.JobRepository {
	return m.jobs
}
