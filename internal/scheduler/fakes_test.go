package scheduler

import (
	"context"
	"errors"
	"time"

	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeJobRepo struct {
	jobs     map[uuid.UUID]repository.OutboundJob
	claimErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]repository.OutboundJob)}
}

func (f *fakeJobRepo) add(status repository.JobStatus) uuid.UUID {
	id := uuid.New()
	f.jobs[id] = repository.OutboundJob{
		ID:          id,
		Channel:     "zalo",
		TemplateKey: "giu_ket_noi_zalo",
		Payload:     "Chào bạn",
		Status:      status,
		CreatedAt:   time.Now(),
	}
	return id
}

func (f *fakeJobRepo) Insert(_ context.Context, _ repository.InsertJobParams) (repository.OutboundJob, error) {
	return repository.OutboundJob{}, errors.New("not used")
}

func (f *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (repository.OutboundJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.OutboundJob{}, apperr.NotFound("outbound job not found")
	}
	return job, nil
}

func (f *fakeJobRepo) ClaimQueued(_ context.Context, limit int) ([]repository.OutboundJob, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	var out []repository.OutboundJob
	for id, job := range f.jobs {
		if len(out) >= limit {
			break
		}
		if job.Status != repository.JobQueued {
			continue
		}
		job.Status = repository.JobEnqueued
		job.AttemptCount++
		f.jobs[id] = job
		out = append(out, job)
	}
	return out, nil
}

func (f *fakeJobRepo) Requeue(_ context.Context, id uuid.UUID, reason string) error {
	return f.setStatus(id, repository.JobQueued, &reason)
}

func (f *fakeJobRepo) MarkSent(_ context.Context, id uuid.UUID) error {
	return f.setStatus(id, repository.JobSent, nil)
}

func (f *fakeJobRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	return f.setStatus(id, repository.JobFailed, &reason)
}

func (f *fakeJobRepo) setStatus(id uuid.UUID, status repository.JobStatus, lastError *string) error {
	job, ok := f.jobs[id]
	if !ok {
		return apperr.NotFound("outbound job not found")
	}
	job.Status = status
	if lastError != nil {
		job.LastError = lastError
	}
	f.jobs[id] = job
	return nil
}

type fakeEnqueuer struct {
	enqueued []*asynq.Task
	err      error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{}, nil
}
