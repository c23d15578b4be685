package service

import (
	"context"
	"time"

	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeTemplateReader struct {
	templates map[string]repository.Template
}

func (f *fakeTemplateReader) GetActive(_ context.Context, key string) (repository.Template, error) {
	t, ok := f.templates[key]
	if !ok || !t.IsActive {
		return repository.Template{}, apperr.NotFound("template not found")
	}
	return t, nil
}

type fakeJobRepo struct {
	jobs map[uuid.UUID]repository.OutboundJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]repository.OutboundJob)}
}

func (f *fakeJobRepo) Insert(_ context.Context, params repository.InsertJobParams) (repository.OutboundJob, error) {
	job := repository.OutboundJob{
		ID:           uuid.New(),
		SuggestionID: params.SuggestionID,
		Channel:      params.Channel,
		TemplateKey:  params.TemplateKey,
		Destination:  params.Destination,
		Payload:      params.Payload,
		LeadID:       params.LeadID,
		StudentID:    params.StudentID,
		BranchID:     params.BranchID,
		Status:       repository.JobQueued,
		Priority:     params.Priority,
		Note:         params.Note,
		CreatedByID:  params.CreatedByID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (repository.OutboundJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.OutboundJob{}, apperr.NotFound("outbound job not found")
	}
	return job, nil
}

func (f *fakeJobRepo) ClaimQueued(_ context.Context, limit int) ([]repository.OutboundJob, error) {
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

type fakeContactReader struct {
	leads    map[uuid.UUID]repository.Contact
	students map[uuid.UUID]repository.Contact
}

func newFakeContactReader() *fakeContactReader {
	return &fakeContactReader{
		leads:    make(map[uuid.UUID]repository.Contact),
		students: make(map[uuid.UUID]repository.Contact),
	}
}

func (f *fakeContactReader) GetLead(_ context.Context, id uuid.UUID) (repository.Contact, error) {
	c, ok := f.leads[id]
	if !ok {
		return repository.Contact{}, apperr.NotFound("lead not found")
	}
	return c, nil
}

func (f *fakeContactReader) GetStudent(_ context.Context, id uuid.UUID) (repository.Contact, error) {
	c, ok := f.students[id]
	if !ok {
		return repository.Contact{}, apperr.NotFound("student not found")
	}
	return c, nil
}
