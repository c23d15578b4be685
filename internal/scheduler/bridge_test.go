package scheduler

import (
	"context"
	"errors"
	"testing"

	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/platform/logger"
)

func TestBridgeTickEnqueuesClaimedJobs(t *testing.T) {
	jobs := newFakeJobRepo()
	queued := jobs.add(repository.JobQueued)
	sent := jobs.add(repository.JobSent)

	enqueuer := &fakeEnqueuer{}
	bridge := NewBridge(jobs, enqueuer, "coach", logger.New("development"))

	bridge.tick(context.Background())

	if len(enqueuer.enqueued) != 1 {
		t.Fatalf("enqueued = %d, want 1", len(enqueuer.enqueued))
	}
	if enqueuer.enqueued[0].Type() != TaskOutboundDeliver {
		t.Errorf("task type = %s", enqueuer.enqueued[0].Type())
	}
	if jobs.jobs[queued].Status != repository.JobEnqueued {
		t.Errorf("queued job status = %s", jobs.jobs[queued].Status)
	}
	if jobs.jobs[sent].Status != repository.JobSent {
		t.Errorf("sent job touched: %s", jobs.jobs[sent].Status)
	}
}

func TestBridgeTickRevertsOnEnqueueFailure(t *testing.T) {
	jobs := newFakeJobRepo()
	queued := jobs.add(repository.JobQueued)

	enqueuer := &fakeEnqueuer{err: errors.New("redis down")}
	bridge := NewBridge(jobs, enqueuer, "coach", logger.New("development"))

	bridge.tick(context.Background())

	job := jobs.jobs[queued]
	if job.Status != repository.JobQueued {
		t.Fatalf("status = %s, want queued again", job.Status)
	}
	if job.LastError == nil || *job.LastError != "redis down" {
		t.Errorf("lastError = %v", job.LastError)
	}
}

func TestBridgeTickSurvivesClaimFailure(t *testing.T) {
	jobs := newFakeJobRepo()
	jobs.claimErr = errors.New("connection reset")

	bridge := NewBridge(jobs, &fakeEnqueuer{}, "coach", logger.New("development"))
	// Must not panic; the next tick will retry.
	bridge.tick(context.Background())
}
