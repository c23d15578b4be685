package repository

import (
	"context"

	"github.com/google/uuid"
)

// TemplateReader looks up active message templates.
type TemplateReader interface {
	// GetActive returns the active template for the key; NotFound when the
	// key is unknown or the template is switched off.
	GetActive(ctx context.Context, templateKey string) (Template, error)
}

// JobRepository persists outbound jobs and drives their lifecycle. Claiming
// uses row locks so several bridge instances never enqueue the same job.
type JobRepository interface {
	Insert(ctx context.Context, params InsertJobParams) (OutboundJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (OutboundJob, error)
	// ClaimQueued atomically moves up to limit queued jobs to enqueued and
	// returns them. Concurrent claimers skip each other's locked rows.
	ClaimQueued(ctx context.Context, limit int) ([]OutboundJob, error)
	// Requeue reverts an enqueued job to queued after a failed handoff,
	// recording the error.
	Requeue(ctx context.Context, id uuid.UUID, reason string) error
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// ContactReader resolves leads and students to dispatch contacts.
type ContactReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (Contact, error)
	GetStudent(ctx context.Context, id uuid.UUID) (Contact, error)
}
