package service

import (
	"context"
	"strings"
	"testing"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/internal/dispatch/transport"
	"kpi_coach_backend/platform/apperr"
	"kpi_coach_backend/platform/logger"

	"github.com/google/uuid"
)

type dispatcherFixture struct {
	svc      *Dispatcher
	jobs     *fakeJobRepo
	contacts *fakeContactReader
	branch   uuid.UUID
	owner    uuid.UUID
	leadID   uuid.UUID
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	templates := &fakeTemplateReader{templates: map[string]repository.Template{
		"giu_ket_noi_zalo": {
			ID: uuid.New(), TemplateKey: "giu_ket_noi_zalo", Channel: domain.ChannelZalo,
			Body: "Chào {{name}}, trung tâm giữ ưu đãi cho mình đến cuối tuần.", IsActive: true,
		},
		"nhac_hoc_phi_sms": {
			ID: uuid.New(), TemplateKey: "nhac_hoc_phi_sms", Channel: domain.ChannelSMS,
			Body: "Nhac hoc vien {{name}} dong hoc phi.", IsActive: true,
		},
		"mau_cu": {
			ID: uuid.New(), TemplateKey: "mau_cu", Channel: domain.ChannelZalo,
			Body: "x", IsActive: false,
		},
	}}

	f := &dispatcherFixture{
		jobs:     newFakeJobRepo(),
		contacts: newFakeContactReader(),
		branch:   uuid.New(),
		owner:    uuid.New(),
		leadID:   uuid.New(),
	}
	phone := "0912345678"
	f.contacts.leads[f.leadID] = repository.Contact{
		ID: f.leadID, Name: "Ngọc", Phone: &phone, BranchID: &f.branch, OwnerID: &f.owner,
	}
	f.svc = NewDispatcher(templates, f.jobs, f.contacts, logger.New("development"))
	return f
}

func (f *dispatcherFixture) ownerActor() domain.Actor {
	return domain.Actor{UserID: f.owner, Role: domain.RoleTelesales, BranchIDs: []uuid.UUID{f.branch}}
}

func zaloAction(leadID uuid.UUID) domain.Action {
	return domain.Action{
		Kind:        domain.ActionSendMessage,
		Channel:     domain.ChannelZalo,
		Label:       "Nhắn Zalo giữ kết nối",
		TemplateKey: "giu_ket_noi_zalo",
		LeadID:      &leadID,
	}
}

func TestDispatchQueuesRenderedJob(t *testing.T) {
	f := newDispatcherFixture(t)

	resp, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action: zaloAction(f.leadID),
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if resp.Status != string(repository.JobQueued) {
		t.Errorf("status = %s", resp.Status)
	}
	if !strings.Contains(resp.Preview, "Ngọc") {
		t.Errorf("preview not rendered: %q", resp.Preview)
	}
	if resp.Destination == nil || *resp.Destination != "+84912345678" {
		t.Errorf("destination = %v, want E.164 normalized", resp.Destination)
	}
	if resp.Priority != string(repository.PriorityNormal) {
		t.Errorf("priority = %s, want the normal default", resp.Priority)
	}

	job, err := f.jobs.GetByID(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if job.LeadID == nil || *job.LeadID != f.leadID {
		t.Errorf("leadId = %v", job.LeadID)
	}
}

func TestDispatchVariablesOverrideSeeded(t *testing.T) {
	f := newDispatcherFixture(t)

	resp, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action:    zaloAction(f.leadID),
		Variables: map[string]string{"name": "chị Ngọc"},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(resp.Preview, "chị Ngọc") {
		t.Errorf("override lost: %q", resp.Preview)
	}
}

func TestDispatchRejectsNonMessagingKinds(t *testing.T) {
	f := newDispatcherFixture(t)

	_, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action: domain.Action{Kind: domain.ActionCreateTask, Label: "Giao việc", LeadID: &f.leadID},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDispatchRequiresContact(t *testing.T) {
	f := newDispatcherFixture(t)

	action := zaloAction(f.leadID)
	action.LeadID = nil
	_, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{Action: action})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDispatchScopeRevalidation(t *testing.T) {
	f := newDispatcherFixture(t)

	// A different telesales user at the same branch does not own the lead.
	stranger := domain.Actor{UserID: uuid.New(), Role: domain.RoleTelesales, BranchIDs: []uuid.UUID{f.branch}}
	_, err := f.svc.Dispatch(context.Background(), stranger, transport.DispatchActionRequest{
		Action: zaloAction(f.leadID),
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// A branch manager of that branch may dispatch for it.
	manager := domain.Actor{UserID: uuid.New(), Role: domain.RoleBranchManager, BranchIDs: []uuid.UUID{f.branch}}
	if _, err := f.svc.Dispatch(context.Background(), manager, transport.DispatchActionRequest{
		Action: zaloAction(f.leadID),
	}); err != nil {
		t.Fatalf("manager dispatch: %v", err)
	}
}

func TestDispatchChannelMismatch(t *testing.T) {
	f := newDispatcherFixture(t)

	action := zaloAction(f.leadID)
	action.Channel = domain.ChannelSMS // template is a zalo template
	_, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{Action: action})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDispatchInactiveTemplate(t *testing.T) {
	f := newDispatcherFixture(t)

	action := zaloAction(f.leadID)
	action.TemplateKey = "mau_cu"
	_, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{Action: action})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDispatchExplicitDestination(t *testing.T) {
	f := newDispatcherFixture(t)

	// A lead captured without a phone number can still be messaged when the
	// caller supplies the destination.
	phoneless := uuid.New()
	f.contacts.leads[phoneless] = repository.Contact{
		ID: phoneless, Name: "Vô danh", BranchID: &f.branch, OwnerID: &f.owner,
	}

	to := "0987654321"
	resp, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action: zaloAction(phoneless),
		To:     &to,
	})
	if err != nil {
		t.Fatalf("dispatch with explicit to: %v", err)
	}
	if resp.Destination == nil || *resp.Destination != "+84987654321" {
		t.Errorf("destination = %v, want the supplied number normalized", resp.Destination)
	}
}

func TestDispatchExplicitDestinationOverridesContactPhone(t *testing.T) {
	f := newDispatcherFixture(t)

	to := "0987654321"
	resp, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action: zaloAction(f.leadID),
		To:     &to,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.Destination == nil || *resp.Destination != "+84987654321" {
		t.Errorf("destination = %v, explicit to should beat the stored phone", resp.Destination)
	}
}

func TestDispatchPriorityAndNotePersisted(t *testing.T) {
	f := newDispatcherFixture(t)

	note := "ưu tiên gọi trước 17h"
	resp, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action:   zaloAction(f.leadID),
		Priority: string(repository.PriorityHigh),
		Note:     &note,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.Priority != string(repository.PriorityHigh) {
		t.Errorf("priority = %s", resp.Priority)
	}

	job, err := f.jobs.GetByID(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if job.Priority != repository.PriorityHigh {
		t.Errorf("stored priority = %s", job.Priority)
	}
	if job.Note == nil || *job.Note != note {
		t.Errorf("stored note = %v", job.Note)
	}

	_, err = f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{
		Action:   zaloAction(f.leadID),
		Priority: "urgent",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown priority, got %v", err)
	}
}

func TestDispatchRequiresDialablePhone(t *testing.T) {
	f := newDispatcherFixture(t)

	phoneless := uuid.New()
	f.contacts.leads[phoneless] = repository.Contact{
		ID: phoneless, Name: "Vô danh", BranchID: &f.branch, OwnerID: &f.owner,
	}

	action := zaloAction(phoneless)
	action.LeadID = &phoneless
	_, err := f.svc.Dispatch(context.Background(), f.ownerActor(), transport.DispatchActionRequest{Action: action})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.jobs.jobs) != 0 {
		t.Error("no job should be queued without a destination")
	}
}
