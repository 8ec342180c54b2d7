/*
store.go - Persistence interfaces for periods, records and payroll

PURPOSE:
  Defines the contract between the rule engine and the database. The engine
  invokes these methods; correctness under concurrency depends on the
  implementation honoring the uniqueness contracts below.

UNIQUENESS CONTRACT:
  Create methods are atomic insert-if-absent. A concurrent duplicate insert
  must fail with the matching sentinel error, never silently create two rows:

    CreateAttendance    -> ErrAttendanceAlreadyExists on (user_id, date)
    CreateOvertime      -> ErrDuplicateOvertime       on (user_id, date)
    CreatePeriod        -> ErrActivePeriodExists      on a second active period
    CreatePayroll       -> ErrPayrollAlreadyProcessed on (period_id)

  Implementations push these invariants into storage (unique indexes, a
  partial unique index on is_active) rather than check-then-act.

SINGLE-SHOT PAYROLL:
  MarkPayrollProcessed is a compare-and-set on payroll_processed. Combined
  with the unique payroll-per-period index and WithTx, compilation is
  idempotent under concurrent retries.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite (same patterns apply to Postgres)
  - engine/store/memory.go: in-memory for tests and dev

SEE ALSO:
  - period.go, attendance.go, claims.go, payroll.go: callers
*/
package engine

import "context"

// =============================================================================
// PER-ENTITY STORES
// =============================================================================

// PeriodStore persists attendance periods.
type PeriodStore interface {
	// CreatePeriod inserts a new period. When the period is active and
	// another active period exists, fails with ErrActivePeriodExists.
	CreatePeriod(ctx context.Context, p AttendancePeriod) error

	// GetPeriod returns the period, or ErrPeriodNotFound.
	GetPeriod(ctx context.Context, id string) (*AttendancePeriod, error)

	// ActivePeriod returns the single active period, or ErrNoActivePeriod.
	ActivePeriod(ctx context.Context) (*AttendancePeriod, error)

	// ListPeriods returns all periods in insertion order.
	ListPeriods(ctx context.Context) ([]AttendancePeriod, error)

	// DeactivatePeriod clears is_active. No-op if already inactive;
	// ErrPeriodNotFound if missing.
	DeactivatePeriod(ctx context.Context, id string) error

	// MarkPayrollProcessed is a compare-and-set: it flips payroll_processed
	// from false to true and reports whether this call won the transition.
	// (false, nil) means another caller already processed it.
	MarkPayrollProcessed(ctx context.Context, id string) (bool, error)
}

// AttendanceStore persists attendance records. Records are append-only:
// no update, no delete.
type AttendanceStore interface {
	// CreateAttendance inserts a record; ErrAttendanceAlreadyExists when the
	// (user, date) pair is taken.
	CreateAttendance(ctx context.Context, rec AttendanceRecord) error

	// AttendanceByUser returns a user's records within a period, ordered by date.
	AttendanceByUser(ctx context.Context, userID, periodID string) ([]AttendanceRecord, error)

	// AttendanceByPeriod returns all records in a period, ordered by insertion.
	AttendanceByPeriod(ctx context.Context, periodID string) ([]AttendanceRecord, error)
}

// ClaimStore persists overtime and reimbursement claims.
type ClaimStore interface {
	// CreateOvertime inserts a claim; ErrDuplicateOvertime when the
	// (user, date) pair is taken.
	CreateOvertime(ctx context.Context, rec OvertimeRecord) error
	OvertimeByUser(ctx context.Context, userID, periodID string) ([]OvertimeRecord, error)
	OvertimeByPeriod(ctx context.Context, periodID string) ([]OvertimeRecord, error)

	// SetOvertimeStatus updates the approval status. ErrEmployeeNotFound is
	// never returned here; a missing record yields ErrValidation.
	SetOvertimeStatus(ctx context.Context, id string, status ClaimStatus) error

	CreateReimbursement(ctx context.Context, rec Reimbursement) error
	ReimbursementsByUser(ctx context.Context, userID, periodID string) ([]Reimbursement, error)
	ReimbursementsByPeriod(ctx context.Context, periodID string) ([]Reimbursement, error)
	SetReimbursementStatus(ctx context.Context, id string, status ClaimStatus) error
}

// EmployeeStore persists employees.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns the employee, or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// GetEmployeeByEmail returns the employee, or ErrEmployeeNotFound.
	// Used by the authentication collaborator for login.
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)

	// ActiveEmployees returns active employees with the given role,
	// in insertion order.
	ActiveEmployees(ctx context.Context, role Role) ([]Employee, error)
}

// PayrollStore persists compiled payrolls.
type PayrollStore interface {
	// CreatePayroll inserts the payroll row; ErrPayrollAlreadyProcessed when
	// one already exists for the period.
	CreatePayroll(ctx context.Context, p Payroll) error

	// PayrollByPeriod returns the payroll for a period, or ErrPayrollNotFound.
	PayrollByPeriod(ctx context.Context, periodID string) (*Payroll, error)
}

// =============================================================================
// COMBINED & TRANSACTIONAL STORES
// =============================================================================

// Store combines everything the engine needs.
type Store interface {
	PeriodStore
	AttendanceStore
	ClaimStore
	EmployeeStore
	PayrollStore
}

// TxStore wraps Store with transaction support. WithTx executes fn against a
// transactional view; an error from fn rolls back, nil commits. Payroll
// compilation requires it.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
