// Package service implements the action dispatcher: it turns a suggested
// action into a rendered, addressed outbound job, re-validating the actor's
// scope against the contact before anything is queued.
package service

import (
	"context"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/dispatch/render"
	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/internal/dispatch/transport"
	"kpi_coach_backend/platform/apperr"
	"kpi_coach_backend/platform/logger"
	"kpi_coach_backend/platform/phone"

	"github.com/google/uuid"
)

// Dispatcher turns suggested actions into outbound jobs.
type Dispatcher struct {
	templates repository.TemplateReader
	jobs      repository.JobRepository
	contacts  repository.ContactReader
	log       *logger.Logger
}

// NewDispatcher wires the dispatch use case.
func NewDispatcher(
	templates repository.TemplateReader,
	jobs repository.JobRepository,
	contacts repository.ContactReader,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{templates: templates, jobs: jobs, contacts: contacts, log: log}
}

// Dispatch validates the action, resolves the contact, re-checks scope,
// renders the template, and persists a queued job. Only messaging action
// kinds reach the queue; task-like kinds live in the main portal and are
// rejected here.
func (d *Dispatcher) Dispatch(ctx context.Context, actor domain.Actor, req transport.DispatchActionRequest) (transport.DispatchActionResponse, error) {
	action := req.Action
	if err := action.Validate(); err != nil {
		return transport.DispatchActionResponse{}, apperr.Validation(err.Error())
	}
	if action.Kind != domain.ActionSendMessage && action.Kind != domain.ActionCreateReminder {
		return transport.DispatchActionResponse{}, apperr.Validation("action kind cannot be dispatched as a message")
	}
	if action.TemplateKey == "" {
		return transport.DispatchActionResponse{}, apperr.Validation("templateKey is required")
	}

	contact, leadID, studentID, err := d.resolveContact(ctx, req, action)
	if err != nil {
		return transport.DispatchActionResponse{}, err
	}

	scope, err := domain.ResolveScope(actor, nil)
	if err != nil {
		return transport.DispatchActionResponse{}, err
	}
	if !scope.Covers(contact.BranchID, contact.OwnerID) {
		return transport.DispatchActionResponse{}, apperr.Forbidden("contact is outside your visibility")
	}

	tmpl, err := d.templates.GetActive(ctx, action.TemplateKey)
	if err != nil {
		return transport.DispatchActionResponse{}, err
	}
	if tmpl.Channel != action.Channel {
		return transport.DispatchActionResponse{}, apperr.Validation("template belongs to a different channel")
	}

	priority := repository.JobPriority(req.Priority)
	if priority == "" {
		priority = repository.PriorityNormal
	}
	if !priority.IsValid() {
		return transport.DispatchActionResponse{}, apperr.Validation("priority must be low, normal, or high")
	}

	destination, err := resolveDestination(action.Channel, req.To, contact)
	if err != nil {
		return transport.DispatchActionResponse{}, err
	}

	// Seed the contact variables first so caller overrides win.
	vars := map[string]string{
		"name": contact.Name,
	}
	if destination != nil {
		vars["phone"] = *destination
	}
	for k, v := range req.Variables {
		vars[k] = v
	}

	payload := render.Render(tmpl.Body, vars)

	job, err := d.jobs.Insert(ctx, repository.InsertJobParams{
		SuggestionID: req.SuggestionID,
		Channel:      action.Channel,
		TemplateKey:  action.TemplateKey,
		Destination:  destination,
		Payload:      payload,
		LeadID:       leadID,
		StudentID:    studentID,
		BranchID:     contact.BranchID,
		Priority:     priority,
		Note:         req.Note,
		CreatedByID:  actor.UserID,
	})
	if err != nil {
		return transport.DispatchActionResponse{}, err
	}

	d.log.Info("outbound job queued",
		"job_id", job.ID.String(),
		"channel", string(job.Channel),
		"template_key", job.TemplateKey,
	)

	return transport.DispatchActionResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		Channel:     string(job.Channel),
		Destination: job.Destination,
		Priority:    string(job.Priority),
		Preview:     job.Payload,
	}, nil
}

// resolveContact loads the addressed lead or student. The request may name
// the contact directly or fall back to the ids embedded in the action.
func (d *Dispatcher) resolveContact(ctx context.Context, req transport.DispatchActionRequest, action domain.Action) (repository.Contact, *uuid.UUID, *uuid.UUID, error) {
	leadID := req.LeadID
	if leadID == nil {
		leadID = action.LeadID
	}
	studentID := req.StudentID
	if studentID == nil {
		studentID = action.StudentID
	}

	switch {
	case leadID != nil:
		contact, err := d.contacts.GetLead(ctx, *leadID)
		return contact, leadID, nil, err
	case studentID != nil:
		contact, err := d.contacts.GetStudent(ctx, *studentID)
		return contact, nil, studentID, err
	default:
		return repository.Contact{}, nil, nil, apperr.Validation("a leadId or studentId is required")
	}
}

// resolveDestination picks and normalizes the delivery address for phone
// channels: an explicit caller-supplied number wins over the contact's stored
// one. App-channel jobs carry no destination.
func resolveDestination(channel domain.Channel, to *string, contact repository.Contact) (*string, error) {
	if !channel.RequiresDestination() {
		return nil, nil
	}
	if to != nil {
		if !phone.IsDialable(*to) {
			return nil, apperr.Validation("to is not a dialable phone number")
		}
		normalized := phone.NormalizeE164(*to)
		return &normalized, nil
	}
	if contact.Phone == nil || !phone.IsDialable(*contact.Phone) {
		return nil, apperr.Validation("no dialable destination: supply to or store a phone on the contact")
	}
	normalized := phone.NormalizeE164(*contact.Phone)
	return &normalized, nil
}
