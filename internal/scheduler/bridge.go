package scheduler

import (
	"context"
	"time"

	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	bridgeInterval = 2 * time.Second
	claimBatchSize = 50
)

// Enqueuer is the slice of the asynq client the bridge needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Bridge moves queued outbound jobs from the database into the asynq queue.
// The claim is transactional, so several API instances can run the bridge
// concurrently without double-enqueueing a job.
type Bridge struct {
	jobs   repository.JobRepository
	client Enqueuer
	queue  string
	log    *logger.Logger
}

// NewBridge creates the outbound-job bridge.
func NewBridge(jobs repository.JobRepository, client Enqueuer, queue string, log *logger.Logger) *Bridge {
	return &Bridge{jobs: jobs, client: client, queue: queue, log: log}
}

// Run polls for queued jobs until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	ticker := time.NewTicker(bridgeInterval)
	defer ticker.Stop()

	b.log.Info("outbound bridge started", "interval", bridgeInterval.String(), "queue", b.queue)
	for {
		select {
		case <-ctx.Done():
			b.log.Info("outbound bridge stopped")
			return
		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

func (b *Bridge) tick(ctx context.Context) {
	claimed, err := b.jobs.ClaimQueued(ctx, claimBatchSize)
	if err != nil {
		b.log.DatabaseError("claim queued jobs", err)
		return
	}

	for _, job := range claimed {
		task, err := NewOutboundDeliverTask(job.ID)
		if err != nil {
			b.log.Error("build deliver task", "job_id", job.ID.String(), "error", err.Error())
			b.revert(ctx, job.ID, err.Error())
			continue
		}
		if _, err := b.client.EnqueueContext(ctx, task, asynq.Queue(b.queue)); err != nil {
			b.log.Error("enqueue deliver task", "job_id", job.ID.String(), "error", err.Error())
			b.revert(ctx, job.ID, err.Error())
			continue
		}
	}
}

// revert puts a claimed job back so the next tick retries. Losing the revert
// too leaves the job stuck in enqueued, so the failure is logged loudly.
func (b *Bridge) revert(ctx context.Context, id uuid.UUID, reason string) {
	if err := b.jobs.Requeue(ctx, id, reason); err != nil {
		b.log.Error("revert job failed", "job_id", id.String(), "error", err.Error())
	}
}
