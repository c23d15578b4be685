package signals

import (
	"context"
	"fmt"

	"kpi_coach_backend/internal/coach/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Signals is the evidence battery for one (day, scope) pair. Plain counts and
// sums only; severity decisions belong to the rules package.
type Signals struct {
	// LeadsNoAppointment counts leads with a captured phone number that have
	// not reached the appointment stage.
	LeadsNoAppointment int
	// LeadsNoFollowUp counts contacted leads with no touch in the 14-day
	// lookback.
	LeadsNoFollowUp int
	// StudentsNoRecentReceipt counts active students without a payment
	// receipt in the 14-day lookback.
	StudentsNoRecentReceipt int
	// DailyExpenseTotal and MonthlyExpenseTotal sum operating-expense entries
	// in VND for the day and calendar month.
	DailyExpenseTotal   int64
	MonthlyExpenseTotal int64
	// ExamSoonUnderScheduled counts students whose exam falls inside the
	// 14-day lookahead with fewer than three sessions scheduled before it.
	ExamSoonUnderScheduled int
	// ExamImminentUnderScheduled is the 7-day tier of the same gap; its
	// students are a subset of ExamSoonUnderScheduled.
	ExamImminentUnderScheduled int
}

// Collector runs the fixed battery of scoped aggregate queries against the
// shared CRM database. Every query is bounded by the resolved scope's branch
// and owner filters; none looks outside them. A failing query fails the whole
// collection — partial signal sets would silently mask operational risk.
type Collector struct {
	pool *pgxpool.Pool
}

// NewCollector creates a collector over the shared database pool.
func NewCollector(pool *pgxpool.Pool) *Collector {
	return &Collector{pool: pool}
}

// Collect runs all signal queries for the window, limited to the scope.
func (c *Collector) Collect(ctx context.Context, win Window, scope domain.Scope) (Signals, error) {
	branches := scopeBranches(scope)
	owner := scope.OwnerID

	var out Signals
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		const q = `
			SELECT COUNT(*)
			FROM leads
			WHERE phone IS NOT NULL
			  AND pipeline_stage = 'has_phone'
			  AND created_at < $1
			  AND (cardinality($2::uuid[]) = 0 OR branch_id = ANY($2::uuid[]))
			  AND ($3::uuid IS NULL OR owner_id = $3)`
		if err := c.pool.QueryRow(ctx, q, win.DayEnd, branches, owner).Scan(&out.LeadsNoAppointment); err != nil {
			return fmt.Errorf("signal leads_no_appointment: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		const q = `
			SELECT COUNT(*)
			FROM leads
			WHERE pipeline_stage IN ('contacted', 'appointment_set')
			  AND (last_contact_at IS NULL OR last_contact_at < $1)
			  AND (cardinality($2::uuid[]) = 0 OR branch_id = ANY($2::uuid[]))
			  AND ($3::uuid IS NULL OR owner_id = $3)`
		if err := c.pool.QueryRow(ctx, q, win.LookbackStart, branches, owner).Scan(&out.LeadsNoFollowUp); err != nil {
			return fmt.Errorf("signal leads_no_follow_up: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		const q = `
			SELECT COUNT(*)
			FROM students s
			WHERE s.status = 'active'
			  AND NOT EXISTS (
				SELECT 1 FROM payments p
				WHERE p.student_id = s.id AND p.paid_at >= $1
			  )
			  AND (cardinality($2::uuid[]) = 0 OR s.branch_id = ANY($2::uuid[]))
			  AND ($3::uuid IS NULL OR s.owner_id = $3)`
		if err := c.pool.QueryRow(ctx, q, win.LookbackStart, branches, owner).Scan(&out.StudentsNoRecentReceipt); err != nil {
			return fmt.Errorf("signal students_no_recent_receipt: %w", err)
		}
		return nil
	})

	// Expense entries are branch-level records with no owner; the owner filter
	// does not apply. The generator only evaluates expense rules for
	// branch-or-wider scopes.
	g.Go(func() error {
		const q = `
			SELECT COALESCE(SUM(amount), 0)
			FROM expense_entries
			WHERE spent_on >= $1 AND spent_on < $2
			  AND (cardinality($3::uuid[]) = 0 OR branch_id = ANY($3::uuid[]))`
		if err := c.pool.QueryRow(ctx, q, win.DayStart, win.DayEnd, branches).Scan(&out.DailyExpenseTotal); err != nil {
			return fmt.Errorf("signal daily_expense_total: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		const q = `
			SELECT COALESCE(SUM(amount), 0)
			FROM expense_entries
			WHERE spent_on >= $1 AND spent_on < $2
			  AND (cardinality($3::uuid[]) = 0 OR branch_id = ANY($3::uuid[]))`
		if err := c.pool.QueryRow(ctx, q, win.MonthStart, win.MonthEnd, branches).Scan(&out.MonthlyExpenseTotal); err != nil {
			return fmt.Errorf("signal monthly_expense_total: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		const q = `
			SELECT COUNT(*)
			FROM students s
			WHERE s.status = 'active'
			  AND s.exam_date >= $1 AND s.exam_date < $2
			  AND (
				SELECT COUNT(*) FROM schedule_sessions ss
				WHERE ss.student_id = s.id
				  AND ss.starts_at >= $1 AND ss.starts_at < $2
			  ) < 3
			  AND (cardinality($3::uuid[]) = 0 OR s.branch_id = ANY($3::uuid[]))
			  AND ($4::uuid IS NULL OR s.owner_id = $4)`
		if err := c.pool.QueryRow(ctx, q, win.DayStart, win.Lookahead14End, branches, owner).Scan(&out.ExamSoonUnderScheduled); err != nil {
			return fmt.Errorf("signal exam_soon_under_scheduled: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		const q = `
			SELECT COUNT(*)
			FROM students s
			WHERE s.status = 'active'
			  AND s.exam_date >= $1 AND s.exam_date < $2
			  AND (
				SELECT COUNT(*) FROM schedule_sessions ss
				WHERE ss.student_id = s.id
				  AND ss.starts_at >= $1 AND ss.starts_at < $2
			  ) < 3
			  AND (cardinality($3::uuid[]) = 0 OR s.branch_id = ANY($3::uuid[]))
			  AND ($4::uuid IS NULL OR s.owner_id = $4)`
		if err := c.pool.QueryRow(ctx, q, win.DayStart, win.Lookahead7End, branches, owner).Scan(&out.ExamImminentUnderScheduled); err != nil {
			return fmt.Errorf("signal exam_imminent_under_scheduled: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Signals{}, err
	}

	return out, nil
}

func scopeBranches(scope domain.Scope) []uuid.UUID {
	if len(scope.BranchIDs) == 0 {
		// Empty array means unfiltered (SYSTEM scope over all branches).
		return []uuid.UUID{}
	}
	return scope.BranchIDs
}
