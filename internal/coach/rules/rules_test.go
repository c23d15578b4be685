package rules

import (
	"strings"
	"testing"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/signals"

	"github.com/google/uuid"
)

func branchTarget() Target {
	branch := uuid.New()
	return Target{DateKey: "2026-08-31", Role: domain.RoleBranchManager, BranchID: &branch}
}

func TestEvaluateQuietSignals(t *testing.T) {
	if got := Evaluate(branchTarget(), signals.Signals{}); len(got) != 0 {
		t.Fatalf("quiet signals should produce no candidates, got %d", len(got))
	}
}

func TestStuckLeadsSeverity(t *testing.T) {
	tests := []struct {
		count int
		want  domain.Severity
	}{
		{1, domain.SeverityYellow},
		{9, domain.SeverityYellow},
		{10, domain.SeverityRed},
		{25, domain.SeverityRed},
	}

	for _, tt := range tests {
		sig := signals.Signals{LeadsNoAppointment: tt.count}
		got := Evaluate(branchTarget(), sig)
		if len(got) != 1 {
			t.Fatalf("count %d: expected 1 candidate, got %d", tt.count, len(got))
		}
		if got[0].Severity != tt.want {
			t.Errorf("count %d: severity = %s, want %s", tt.count, got[0].Severity, tt.want)
		}
		if !strings.Contains(got[0].Title, "lead") {
			t.Errorf("count %d: title %q", tt.count, got[0].Title)
		}
	}
}

func TestOverdueReceiptsSeverity(t *testing.T) {
	yellow := Evaluate(branchTarget(), signals.Signals{StudentsNoRecentReceipt: 4})
	if len(yellow) != 1 || yellow[0].Severity != domain.SeverityYellow {
		t.Fatalf("4 overdue receipts: %+v", yellow)
	}
	red := Evaluate(branchTarget(), signals.Signals{StudentsNoRecentReceipt: 5})
	if len(red) != 1 || red[0].Severity != domain.SeverityRed {
		t.Fatalf("5 overdue receipts: %+v", red)
	}
}

func TestExpenseThresholds(t *testing.T) {
	tests := []struct {
		name  string
		sig   signals.Signals
		count int
		want  domain.Severity
	}{
		{"daily below watch level", signals.Signals{DailyExpenseTotal: 9_999_999}, 0, ""},
		{"daily yellow at 10M", signals.Signals{DailyExpenseTotal: 10_000_000}, 1, domain.SeverityYellow},
		{"daily red at 20M", signals.Signals{DailyExpenseTotal: 20_000_000}, 1, domain.SeverityRed},
		{"monthly yellow at 200M", signals.Signals{MonthlyExpenseTotal: 200_000_000}, 1, domain.SeverityYellow},
		{"monthly red at 300M", signals.Signals{MonthlyExpenseTotal: 300_000_000}, 1, domain.SeverityRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(branchTarget(), tt.sig)
			if len(got) != tt.count {
				t.Fatalf("candidates = %d, want %d", len(got), tt.count)
			}
			if tt.count == 1 && got[0].Severity != tt.want {
				t.Errorf("severity = %s, want %s", got[0].Severity, tt.want)
			}
		})
	}
}

func TestExpenseRulesSkippedForOwnerTargets(t *testing.T) {
	owner := uuid.New()
	target := Target{DateKey: "2026-08-31", Role: domain.RoleTelesales, OwnerID: &owner}
	sig := signals.Signals{
		DailyExpenseTotal:   50_000_000,
		MonthlyExpenseTotal: 500_000_000,
		LeadsNoAppointment:  3,
	}

	got := Evaluate(target, sig)
	if len(got) != 1 {
		t.Fatalf("expected only the lead rule, got %d candidates", len(got))
	}
	if _, ok := got[0].Evidence["leads_no_appointment"]; !ok {
		t.Errorf("unexpected candidate: %+v", got[0])
	}
}

func TestExamRiskRule(t *testing.T) {
	got := Evaluate(branchTarget(), signals.Signals{ExamSoonUnderScheduled: 3})
	if len(got) != 1 || got[0].Severity != domain.SeverityRed {
		t.Fatalf("3 at-risk students: %+v", got)
	}
	if len(got[0].Actions) == 0 {
		t.Error("exam risk candidate should suggest actions")
	}
}

func TestExamRiskImminentEscalatesToRed(t *testing.T) {
	got := Evaluate(branchTarget(), signals.Signals{ExamSoonUnderScheduled: 1})
	if len(got) != 1 || got[0].Severity != domain.SeverityYellow {
		t.Fatalf("1 at-risk student two weeks out: %+v", got)
	}

	got = Evaluate(branchTarget(), signals.Signals{ExamSoonUnderScheduled: 1, ExamImminentUnderScheduled: 1})
	if len(got) != 1 || got[0].Severity != domain.SeverityRed {
		t.Fatalf("a gap with the exam inside 7 days should be red: %+v", got)
	}
}

func TestCandidatesCarryValidActions(t *testing.T) {
	sig := signals.Signals{
		LeadsNoAppointment:      12,
		LeadsNoFollowUp:         12,
		StudentsNoRecentReceipt: 6,
		DailyExpenseTotal:       25_000_000,
		MonthlyExpenseTotal:     320_000_000,
		ExamSoonUnderScheduled:  4,
	}

	got := Evaluate(branchTarget(), sig)
	if len(got) != 6 {
		t.Fatalf("expected all 6 rules to fire, got %d", len(got))
	}
	for _, cand := range got {
		if err := domain.ValidateActions(cand.Actions); err != nil {
			t.Errorf("candidate %q has invalid actions: %v", cand.Title, err)
		}
		if cand.Title == "" || cand.Content == "" {
			t.Errorf("candidate missing copy: %+v", cand)
		}
	}
}

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{10_000_000, "10.000.000"},
		{123_456_789, "123.456.789"},
	}
	for _, tt := range tests {
		if got := formatVND(tt.in); got != tt.want {
			t.Errorf("formatVND(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
