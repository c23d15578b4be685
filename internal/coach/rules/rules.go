// Package rules derives suggestion candidates from collected signals. Every
// rule is independent: it compares one or more signals against static
// thresholds and, when triggered, emits exactly one candidate. The package is
// pure — same target and signals in, same candidates out — which is what
// makes generation idempotent once the store dedups by content hash.
package rules

import (
	"fmt"

	"kpi_coach_backend/internal/coach/domain"
	"kpi_coach_backend/internal/coach/signals"

	"github.com/google/uuid"
)

// Static rule thresholds. RED at the high bound, YELLOW above zero.
const (
	stuckLeadsRed      = 10
	noFollowUpRed      = 10
	overdueReceiptsRed = 5
	examRiskRed        = 3

	// VND expense bounds.
	dailyExpenseYellow   = 10_000_000
	dailyExpenseRed      = 20_000_000
	monthlyExpenseYellow = 200_000_000
	monthlyExpenseRed    = 300_000_000
)

// Target addresses the candidates a generation run produces: the actor's
// role, the branch the evidence was scoped to (nil when the scope spans
// several branches or the whole system), and the owner for individual scopes.
type Target struct {
	DateKey  string
	Role     domain.Role
	BranchID *uuid.UUID
	OwnerID  *uuid.UUID
}

// Candidate is a suggestion the rule engine wants persisted. The store
// attaches identity, source, run id, and the dedup hash.
type Candidate struct {
	Title    string
	Content  string
	Severity domain.Severity
	Actions  []domain.Action
	Evidence map[string]interface{}
}

// Evaluate runs every rule against the signals and returns the triggered
// candidates. Expense rules are skipped for owner-addressed targets: expense
// entries are branch-level records an individual salesperson is not
// accountable for.
func Evaluate(target Target, sig signals.Signals) []Candidate {
	var out []Candidate

	if c := stuckLeadsRule(sig); c != nil {
		out = append(out, *c)
	}
	if c := noFollowUpRule(sig); c != nil {
		out = append(out, *c)
	}
	if c := overdueReceiptsRule(sig); c != nil {
		out = append(out, *c)
	}
	if target.OwnerID == nil {
		if c := dailyExpenseRule(sig); c != nil {
			out = append(out, *c)
		}
		if c := monthlyExpenseRule(sig); c != nil {
			out = append(out, *c)
		}
	}
	if c := examRiskRule(sig); c != nil {
		out = append(out, *c)
	}

	return out
}

func stuckLeadsRule(sig signals.Signals) *Candidate {
	n := sig.LeadsNoAppointment
	if n <= 0 {
		return nil
	}
	return &Candidate{
		Title:    fmt.Sprintf("%d lead có SĐT nhưng chưa đặt lịch hẹn", n),
		Content:  "Các lead này đã để lại số điện thoại nhưng chưa được chốt lịch hẹn. Ưu tiên gọi lại trong hôm nay trước khi lead nguội.",
		Severity: countSeverity(n, stuckLeadsRed),
		Actions: []domain.Action{
			{Kind: domain.ActionCreateCallList, Channel: domain.ChannelCall, Label: "Tạo danh sách gọi lại"},
			{Kind: domain.ActionCreateTask, Label: "Giao việc chốt lịch hẹn"},
		},
		Evidence: map[string]interface{}{
			"leads_no_appointment": n,
		},
	}
}

func noFollowUpRule(sig signals.Signals) *Candidate {
	n := sig.LeadsNoFollowUp
	if n <= 0 {
		return nil
	}
	return &Candidate{
		Title:    fmt.Sprintf("%d lead đã liên hệ nhưng 14 ngày chưa chăm sóc lại", n),
		Content:  "Các lead này từng được liên hệ nhưng không có lần chăm sóc nào trong 14 ngày gần nhất. Lên lịch gọi lại hoặc nhắn tin giữ kết nối.",
		Severity: countSeverity(n, noFollowUpRed),
		Actions: []domain.Action{
			{Kind: domain.ActionCreateCallList, Channel: domain.ChannelCall, Label: "Tạo danh sách chăm sóc lại"},
			{Kind: domain.ActionCreateReminder, Channel: domain.ChannelZalo, Label: "Nhắn Zalo giữ kết nối", TemplateKey: "giu_ket_noi_zalo"},
		},
		Evidence: map[string]interface{}{
			"leads_no_follow_up": n,
		},
	}
}

func overdueReceiptsRule(sig signals.Signals) *Candidate {
	n := sig.StudentsNoRecentReceipt
	if n <= 0 {
		return nil
	}
	return &Candidate{
		Title:    fmt.Sprintf("%d học viên chưa có biên lai thu tiền trong 14 ngày", n),
		Content:  "Học viên đang học nhưng không phát sinh biên lai thu tiền nào trong 14 ngày. Kiểm tra công nợ và nhắc đóng học phí.",
		Severity: countSeverity(n, overdueReceiptsRed),
		Actions: []domain.Action{
			{Kind: domain.ActionCreateReminder, Channel: domain.ChannelZalo, Label: "Nhắc học phí qua Zalo", TemplateKey: "nhac_hoc_phi_zalo"},
			{Kind: domain.ActionSendMessage, Channel: domain.ChannelSMS, Label: "Gửi SMS nhắc học phí", TemplateKey: "nhac_hoc_phi_sms"},
		},
		Evidence: map[string]interface{}{
			"students_no_recent_receipt": n,
		},
	}
}

func dailyExpenseRule(sig signals.Signals) *Candidate {
	total := sig.DailyExpenseTotal
	if total < dailyExpenseYellow {
		return nil
	}
	severity := domain.SeverityYellow
	if total >= dailyExpenseRed {
		severity = domain.SeverityRed
	}
	return &Candidate{
		Title:    fmt.Sprintf("Chi phí vận hành trong ngày đã chạm %s đồng", formatVND(total)),
		Content:  "Tổng chi trong ngày vượt ngưỡng theo dõi. Soát lại các khoản chi lớn và phê duyệt trước khi chi thêm.",
		Severity: severity,
		Actions: []domain.Action{
			{Kind: domain.ActionCreateTask, Label: "Soát lại các khoản chi trong ngày"},
		},
		Evidence: map[string]interface{}{
			"daily_expense_total": total,
			domain.EngineNotesKey: fmt.Sprintf("ngưỡng cảnh báo %s / %s đồng", formatVND(dailyExpenseYellow), formatVND(dailyExpenseRed)),
		},
	}
}

func monthlyExpenseRule(sig signals.Signals) *Candidate {
	total := sig.MonthlyExpenseTotal
	if total < monthlyExpenseYellow {
		return nil
	}
	severity := domain.SeverityYellow
	if total >= monthlyExpenseRed {
		severity = domain.SeverityRed
	}
	return &Candidate{
		Title:    fmt.Sprintf("Chi phí vận hành trong tháng đã chạm %s đồng", formatVND(total)),
		Content:  "Chi phí luỹ kế trong tháng tiệm cận ngân sách. Rà soát định mức các hạng mục trước khi duyệt chi mới.",
		Severity: severity,
		Actions: []domain.Action{
			{Kind: domain.ActionCreateTask, Label: "Rà soát ngân sách tháng"},
		},
		Evidence: map[string]interface{}{
			"monthly_expense_total": total,
		},
	}
}

func examRiskRule(sig signals.Signals) *Candidate {
	n := sig.ExamSoonUnderScheduled
	if n <= 0 {
		return nil
	}
	severity := countSeverity(n, examRiskRed)
	// Any gap with the exam inside 7 days is red regardless of the 14-day
	// count: there is no time left to catch up.
	if sig.ExamImminentUnderScheduled > 0 {
		severity = domain.SeverityRed
	}
	return &Candidate{
		Title:    fmt.Sprintf("%d học viên sắp thi nhưng lịch học chưa đủ", n),
		Content:  "Học viên có lịch thi trong 14 ngày tới nhưng chưa đủ buổi học bổ trợ. Xếp thêm lịch hoặc gọi điện xác nhận với học viên.",
		Severity: severity,
		Actions: []domain.Action{
			{Kind: domain.ActionCreateReminder, Channel: domain.ChannelZalo, Label: "Nhắc lịch thi qua Zalo", TemplateKey: "nhac_lich_thi_zalo"},
			{Kind: domain.ActionCreateCallList, Channel: domain.ChannelCall, Label: "Gọi xác nhận lịch học"},
		},
		Evidence: map[string]interface{}{
			"exam_soon_under_scheduled":     n,
			"exam_imminent_under_scheduled": sig.ExamImminentUnderScheduled,
		},
	}
}

func countSeverity(n, redAt int) domain.Severity {
	if n >= redAt {
		return domain.SeverityRed
	}
	return domain.SeverityYellow
}

// formatVND groups digits in thousands the way the product displays amounts.
func formatVND(amount int64) string {
	text := fmt.Sprintf("%d", amount)
	if len(text) <= 3 {
		return text
	}
	var out []byte
	for i, digit := range []byte(text) {
		if i > 0 && (len(text)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digit)
	}
	return string(out)
}
