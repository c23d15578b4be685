package domain

import "testing"

func TestMetricApplicability(t *testing.T) {
	tests := []struct {
		metric MetricKey
		role   Role
		want   bool
	}{
		{MetricSignedRate, RoleTelesales, true},
		{MetricSignedRate, RoleDirectPage, false},
		{MetricSignedRate, RoleBranchManager, false},
		{MetricAppointmentRate, RoleTelesales, true},
		{MetricAppointmentRate, RoleDirectPage, true},
		{MetricShowRate, RoleBranchManager, true},
		{MetricShowRate, RoleTelesales, false},
		{MetricCollectionRate, RoleBranchManager, true},
		{MetricMessageReplyRate, RoleDirectPage, true},
		{MetricMessageReplyRate, RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric)+"/"+string(tt.role), func(t *testing.T) {
			if got := tt.metric.AppliesTo(tt.role); got != tt.want {
				t.Errorf("AppliesTo() = %v, want %v", got, tt.want)
			}
		})
	}

	if MetricKey("conversion_rate_pct").IsValid() {
		t.Error("unknown metric should be invalid")
	}
	if len(MetricKeys()) != 7 {
		t.Errorf("catalog size = %d, want 7", len(MetricKeys()))
	}
}
