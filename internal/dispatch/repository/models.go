// Package repository persists outbound jobs and reads the message-template
// catalog and contact records the dispatcher needs.
package repository

import (
	"time"

	"kpi_coach_backend/internal/coach/domain"

	"github.com/google/uuid"
)

// Template is one row of the message-template catalog. Bodies carry
// {{variable}} placeholders resolved at dispatch time.
type Template struct {
	ID          uuid.UUID
	TemplateKey string
	Channel     domain.Channel
	Title       string
	Body        string
	IsActive    bool
}

// JobStatus is the outbound-job lifecycle state.
type JobStatus string

const (
	// JobQueued is the initial state: persisted, waiting for the bridge.
	JobQueued JobStatus = "queued"
	// JobEnqueued means the bridge handed the job to the delivery queue.
	JobEnqueued JobStatus = "enqueued"
	// JobSent means the delivery worker completed the job.
	JobSent JobStatus = "sent"
	// JobFailed is terminal after the worker gave up.
	JobFailed JobStatus = "failed"
)

// JobPriority orders delivery within the queue.
type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
)

// IsValid reports whether the priority is one of the known levels.
func (p JobPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// OutboundJob is one rendered message waiting for, or past, delivery.
type OutboundJob struct {
	ID           uuid.UUID
	SuggestionID *uuid.UUID
	Channel      domain.Channel
	TemplateKey  string
	Destination  *string
	Payload      string
	LeadID       *uuid.UUID
	StudentID    *uuid.UUID
	BranchID     *uuid.UUID
	Status       JobStatus
	Priority     JobPriority
	AttemptCount int
	LastError    *string
	Note         *string
	CreatedByID  uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InsertJobParams carries a validated, fully rendered job for persistence.
type InsertJobParams struct {
	SuggestionID *uuid.UUID
	Channel      domain.Channel
	TemplateKey  string
	Destination  *string
	Payload      string
	LeadID       *uuid.UUID
	StudentID    *uuid.UUID
	BranchID     *uuid.UUID
	Priority     JobPriority
	Note         *string
	CreatedByID  uuid.UUID
}

// Contact is the read-only projection of a lead or student the dispatcher
// addresses: identity for variable seeding, branch and owner for scope
// re-validation.
type Contact struct {
	ID       uuid.UUID
	Name     string
	Phone    *string
	BranchID *uuid.UUID
	OwnerID  *uuid.UUID
}
