package scheduler

import (
	"context"
	"fmt"

	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/platform/apperr"
	"kpi_coach_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Deliverer hands a rendered job to its channel's provider. Channel
// integrations (Zalo OA, SMS gateway) plug in here; the default logs the
// delivery and succeeds so the pipeline is observable end to end before a
// provider is wired.
type Deliverer interface {
	Deliver(ctx context.Context, job repository.OutboundJob) error
}

// LogDeliverer records deliveries without hitting any provider.
type LogDeliverer struct {
	log *logger.Logger
}

// NewLogDeliverer creates the logging deliverer.
func NewLogDeliverer(log *logger.Logger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

// Deliver implements Deliverer.
func (d *LogDeliverer) Deliver(_ context.Context, job repository.OutboundJob) error {
	destination := ""
	if job.Destination != nil {
		destination = *job.Destination
	}
	d.log.Info("outbound message delivered",
		"job_id", job.ID.String(),
		"channel", string(job.Channel),
		"destination", destination,
		"template_key", job.TemplateKey,
	)
	return nil
}

// DeliverHandler is the asynq handler for outbound.deliver tasks.
type DeliverHandler struct {
	jobs      repository.JobRepository
	deliverer Deliverer
	log       *logger.Logger
}

// NewDeliverHandler creates the delivery task handler.
func NewDeliverHandler(jobs repository.JobRepository, deliverer Deliverer, log *logger.Logger) *DeliverHandler {
	return &DeliverHandler{jobs: jobs, deliverer: deliverer, log: log}
}

// ProcessTask loads the job, delivers it, and records the outcome. A job
// that vanished from the database is not retried; a provider failure is,
// until asynq's retry budget runs out and the job is marked failed.
func (h *DeliverHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOutboundDeliverPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	job, err := h.jobs.GetByID(ctx, payload.JobID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			h.log.Error("deliver: job missing", "job_id", payload.JobID.String())
			return fmt.Errorf("job %s missing: %w", payload.JobID, asynq.SkipRetry)
		}
		return err
	}

	if job.Status == repository.JobSent {
		// Redelivery after a crashed ack; nothing to do.
		return nil
	}

	if err := h.deliverer.Deliver(ctx, job); err != nil {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if retried >= maxRetry {
			if markErr := h.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
				h.log.DatabaseError("mark job failed", markErr)
			}
		}
		return err
	}

	if err := h.jobs.MarkSent(ctx, job.ID); err != nil {
		h.log.DatabaseError("mark job sent", err)
		return err
	}
	return nil
}
