package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Channel names an outbound communication channel.
type Channel string

const (
	ChannelZalo Channel = "zalo"
	ChannelSMS  Channel = "sms"
	ChannelCall Channel = "call"
	ChannelApp  Channel = "app"
)

// IsValid reports whether the channel is part of the closed set.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelZalo, ChannelSMS, ChannelCall, ChannelApp:
		return true
	}
	return false
}

// RequiresDestination reports whether the channel needs a phone-number
// destination to dispatch.
func (c Channel) RequiresDestination() bool {
	switch c {
	case ChannelZalo, ChannelSMS, ChannelCall:
		return true
	}
	return false
}

// ActionKind discriminates the suggestion action variants. The set is closed:
// decoding an unrecognized kind fails loudly instead of passing an untyped
// map downstream.
type ActionKind string

const (
	ActionCreateCallList   ActionKind = "create_call_list"
	ActionCreateTask       ActionKind = "create_task"
	ActionCreateReminder   ActionKind = "create_reminder"
	ActionSendMessage      ActionKind = "send_message"
	ActionUpdateLeadStatus ActionKind = "update_lead_status"
)

// Action is one suggested follow-up attached to a suggestion. The kind
// determines which of the optional fields are meaningful; Validate enforces
// the per-kind requirements.
type Action struct {
	Kind        ActionKind `json:"type"`
	Channel     Channel    `json:"channel,omitempty"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	TemplateKey string     `json:"templateKey,omitempty"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	StudentID   *uuid.UUID `json:"studentId,omitempty"`
	NewStatus   string     `json:"newStatus,omitempty"`
}

// Validate checks the action against its kind's requirements.
func (a Action) Validate() error {
	if a.Label == "" {
		return fmt.Errorf("action %q: label is required", a.Kind)
	}

	switch a.Kind {
	case ActionCreateTask:
		return nil
	case ActionCreateCallList:
		if a.Channel != "" && !a.Channel.IsValid() {
			return fmt.Errorf("action %q: unknown channel %q", a.Kind, a.Channel)
		}
		return nil
	case ActionCreateReminder, ActionSendMessage:
		if !a.Channel.IsValid() {
			return fmt.Errorf("action %q: a valid channel is required", a.Kind)
		}
		return nil
	case ActionUpdateLeadStatus:
		if a.NewStatus == "" {
			return fmt.Errorf("action %q: newStatus is required", a.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unrecognized action kind %q", a.Kind)
	}
}

// DecodeActions parses and validates a stored action list. Suggestions carry
// these as an opaque JSON blob at the storage layer; the application boundary
// decodes them into the closed variant set.
func DecodeActions(raw []byte) ([]Action, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var actions []Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}

	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
	}

	return actions, nil
}

// ValidateActions checks a caller-supplied action list.
func ValidateActions(actions []Action) error {
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}
