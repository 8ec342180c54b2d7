/*
payroll.go - One-shot payroll compilation

PURPOSE:
  Orchestrates the aggregation engine's totals into a persisted payroll row
  once per period. The effect must happen at most once despite duplicate
  triggers: two admins clicking "run payroll" concurrently must still yield
  exactly one payroll row.

HOW AT-MOST-ONCE IS ENFORCED:
  1. MarkPayrollProcessed is a compare-and-set on payroll_processed, executed
     inside WithTx together with the payroll insert. The loser of the CAS gets
     ErrPayrollAlreadyProcessed and the transaction never writes.
  2. The unique index on payrolls(attendance_period_id) backs the CAS up at
     the storage level.

  Totals are computed before the transaction; only the state transitions and
  the insert run inside it. Compilation also closes the period in the same
  transaction, so a processed period can never keep accepting submissions
  that the frozen payroll would not pay.

SEE ALSO:
  - summary.go: Totals
  - store.go: MarkPayrollProcessed, WithTx contracts
*/
package engine

import (
	"context"

	"github.com/google/uuid"
)

// =============================================================================
// PAYROLL COMPILER
// =============================================================================

type PayrollCompiler struct {
	store     TxStore
	clock     Clock
	summaries *Summaries
}

func NewPayrollCompiler(store TxStore, clock Clock, summaries *Summaries) *PayrollCompiler {
	return &PayrollCompiler{store: store, clock: clock, summaries: summaries}
}

// Compile aggregates a period's approved records into one persisted payroll,
// marks the period processed and closes it. Admin-only. Fails with
// ErrPayrollAlreadyProcessed on any attempt after the first, including
// concurrent ones.
func (pc *PayrollCompiler) Compile(ctx context.Context, auth AuthContext, periodID string) (*Payroll, error) {
	if !auth.IsAdmin() {
		return nil, ErrInsufficientPermissions
	}

	period, err := pc.store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.PayrollProcessed {
		return nil, ErrPayrollAlreadyProcessed
	}

	totals, err := pc.summaries.Totals(ctx, periodID)
	if err != nil {
		return nil, err
	}

	payroll := Payroll{
		ID:                       uuid.NewString(),
		PeriodID:                 periodID,
		TotalEmployees:           totals.TotalEmployees,
		TotalBaseSalary:          totals.TotalBaseSalary,
		TotalOvertimeAmount:      totals.TotalOvertimeAmount,
		TotalReimbursementAmount: totals.TotalReimbursementAmount,
		TotalAmount:              totals.TotalAmount,
		ProcessedBy:              auth.UserID,
		CreatedAt:                pc.clock.Now(),
	}

	err = pc.store.WithTx(ctx, func(tx Store) error {
		won, err := tx.MarkPayrollProcessed(ctx, periodID)
		if err != nil {
			return err
		}
		if !won {
			return ErrPayrollAlreadyProcessed
		}
		if err := tx.DeactivatePeriod(ctx, periodID); err != nil {
			return err
		}
		return tx.CreatePayroll(ctx, payroll)
	})
	if err != nil {
		return nil, err
	}
	return &payroll, nil
}

// Get returns the compiled payroll for a period, or ErrPayrollNotFound.
func (pc *PayrollCompiler) Get(ctx context.Context, auth AuthContext, periodID string) (*Payroll, error) {
	if !auth.IsAdmin() {
		return nil, ErrInsufficientPermissions
	}
	if _, err := pc.store.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	return pc.store.PayrollByPeriod(ctx, periodID)
}
