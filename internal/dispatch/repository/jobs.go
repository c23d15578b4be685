package repository

import (
	"context"
	"errors"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, suggestion_id, channel, template_key, destination, payload,
	lead_id, student_id, branch_id, status, priority, attempt_count, last_error,
	note, created_by, created_at, updated_at`

// JobRepo implements JobRepository with PostgreSQL.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo creates an outbound-job repository.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// Compile-time check that JobRepo implements JobRepository.
var _ JobRepository = (*JobRepo)(nil)

// Insert persists a new job in the queued state.
func (r *JobRepo) Insert(ctx context.Context, params InsertJobParams) (OutboundJob, error) {
	query := `
		INSERT INTO coach_outbound_jobs
			(suggestion_id, channel, template_key, destination, payload,
			 lead_id, student_id, branch_id, status, priority, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query,
		params.SuggestionID, string(params.Channel), params.TemplateKey,
		params.Destination, params.Payload, params.LeadID, params.StudentID,
		params.BranchID, string(JobQueued), string(params.Priority), params.Note,
		params.CreatedByID,
	)
	job, err := scanJob(row)
	if err != nil {
		return OutboundJob{}, fmt.Errorf("insert outbound job: %w", err)
	}
	return job, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (OutboundJob, error) {
	query := `SELECT ` + jobColumns + ` FROM coach_outbound_jobs WHERE id = $1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OutboundJob{}, apperr.NotFound("outbound job not found")
		}
		return OutboundJob{}, fmt.Errorf("get outbound job: %w", err)
	}
	return job, nil
}

// ClaimQueued flips up to limit queued jobs to enqueued and returns them.
// SKIP LOCKED keeps concurrent bridge instances off each other's rows, so a
// job is handed to the delivery queue exactly once.
func (r *JobRepo) ClaimQueued(ctx context.Context, limit int) ([]OutboundJob, error) {
	query := `
		UPDATE coach_outbound_jobs
		SET status = $1, attempt_count = attempt_count + 1, updated_at = now()
		WHERE id IN (
			SELECT id FROM coach_outbound_jobs
			WHERE status = $2
			ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END, created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	rows, err := r.pool.Query(ctx, query, string(JobEnqueued), string(JobQueued), limit)
	if err != nil {
		return nil, fmt.Errorf("claim queued jobs: %w", err)
	}
	defer rows.Close()

	var jobs []OutboundJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claimed job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim queued jobs: %w", err)
	}
	return jobs, nil
}

// Requeue reverts an enqueued job to queued after a failed queue handoff so
// the next bridge tick retries it.
func (r *JobRepo) Requeue(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, JobQueued, &reason)
}

// MarkSent records successful delivery.
func (r *JobRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, JobSent, nil)
}

// MarkFailed records terminal failure with the last error seen.
func (r *JobRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, JobFailed, &reason)
}

func (r *JobRepo) setStatus(ctx context.Context, id uuid.UUID, status JobStatus, lastError *string) error {
	query := `
		UPDATE coach_outbound_jobs
		SET status = $2, last_error = COALESCE($3, last_error), updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, string(status), lastError)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("outbound job not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (OutboundJob, error) {
	var job OutboundJob
	var channel, status, priority string
	err := row.Scan(
		&job.ID, &job.SuggestionID, &channel, &job.TemplateKey, &job.Destination,
		&job.Payload, &job.LeadID, &job.StudentID, &job.BranchID, &status, &priority,
		&job.AttemptCount, &job.LastError, &job.Note, &job.CreatedByID, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return OutboundJob{}, err
	}
	job.Channel = domain.Channel(channel)
	job.Status = JobStatus(status)
	job.Priority = JobPriority(priority)
	return job, nil
}
