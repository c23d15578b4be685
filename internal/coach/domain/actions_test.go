package domain

import "testing"

func TestActionValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{
			name:   "task needs only a label",
			action: Action{Kind: ActionCreateTask, Label: "Soát lại chi phí"},
		},
		{
			name:    "missing label fails",
			action:  Action{Kind: ActionCreateTask},
			wantErr: true,
		},
		{
			name:   "call list channel is optional",
			action: Action{Kind: ActionCreateCallList, Label: "Tạo danh sách gọi"},
		},
		{
			name:    "call list rejects bad channel",
			action:  Action{Kind: ActionCreateCallList, Label: "Tạo danh sách gọi", Channel: Channel("fax")},
			wantErr: true,
		},
		{
			name:   "send message requires a channel",
			action: Action{Kind: ActionSendMessage, Label: "Gửi tin", Channel: ChannelZalo, TemplateKey: "giu_ket_noi_zalo"},
		},
		{
			name:    "send message without channel fails",
			action:  Action{Kind: ActionSendMessage, Label: "Gửi tin"},
			wantErr: true,
		},
		{
			name:   "reminder requires a channel",
			action: Action{Kind: ActionCreateReminder, Label: "Nhắc lịch", Channel: ChannelApp},
		},
		{
			name:   "status update requires new status",
			action: Action{Kind: ActionUpdateLeadStatus, Label: "Chuyển trạng thái", NewStatus: "appointment_set"},
		},
		{
			name:    "status update without status fails",
			action:  Action{Kind: ActionUpdateLeadStatus, Label: "Chuyển trạng thái"},
			wantErr: true,
		},
		{
			name:    "unrecognized kind fails",
			action:  Action{Kind: ActionKind("launch_rocket"), Label: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeActions(t *testing.T) {
	raw := []byte(`[{"type":"create_call_list","channel":"call","label":"Tạo danh sách gọi"}]`)
	actions, err := DecodeActions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 || actions[0].Kind != ActionCreateCallList {
		t.Fatalf("decoded %+v", actions)
	}

	if _, err := DecodeActions([]byte(`[{"type":"teleport","label":"x"}]`)); err == nil {
		t.Error("unknown kind should fail decoding")
	}
	if _, err := DecodeActions([]byte(`{not json`)); err == nil {
		t.Error("malformed json should fail decoding")
	}
	if actions, err := DecodeActions(nil); err != nil || actions != nil {
		t.Errorf("empty blob should decode to nil, got %v, %v", actions, err)
	}
}

func TestChannelRequiresDestination(t *testing.T) {
	for _, c := range []Channel{ChannelZalo, ChannelSMS, ChannelCall} {
		if !c.RequiresDestination() {
			t.Errorf("%s should require a destination", c)
		}
	}
	if ChannelApp.RequiresDestination() {
		t.Error("app channel should not require a destination")
	}
}
