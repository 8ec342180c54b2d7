/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.TxStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INVARIANTS LIVE IN THE SCHEMA:
  Correctness under concurrent submission depends on these indexes, not on
  application-level check-then-act:

  idx_periods_single_active   partial unique index: at most one row with
                              is_active = 1 across all periods
  idx_attendance_user_date    one attendance record per (user, day)
  idx_overtime_user_date      one overtime record per (user, day)
  idx_payrolls_period         one payroll per period

  Unique-constraint failures are mapped back to the engine's sentinel errors
  by matching the violated columns, so a concurrent duplicate insert surfaces
  as ErrAttendanceAlreadyExists (etc.), never as a generic failure.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  eng := engine.New(store, engine.SystemClock{}, nil)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/engine"
)

// Store implements engine.TxStore using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY under concurrent
	// submissions; readers still proceed through WAL.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		role TEXT NOT NULL,
		monthly_salary TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_role_active
		ON employees(role, is_active);

	CREATE TABLE IF NOT EXISTS attendance_periods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		payroll_processed BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one active period across the whole system.
	-- The partial index contains only active rows, so a second active
	-- insert violates uniqueness instead of racing a check-then-act.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_periods_single_active
		ON attendance_periods(is_active) WHERE is_active = 1;

	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		attendance_period_id TEXT NOT NULL,
		attendance_date TEXT NOT NULL,
		check_in_time TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- One attendance record per employee per calendar day.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_user_date
		ON attendance_records(user_id, attendance_date);
	CREATE INDEX IF NOT EXISTS idx_attendance_period
		ON attendance_records(attendance_period_id);

	CREATE TABLE IF NOT EXISTS overtime_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		attendance_period_id TEXT NOT NULL,
		overtime_date TEXT NOT NULL,
		hours_worked TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	-- One overtime record per employee per calendar day.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_overtime_user_date
		ON overtime_records(user_id, overtime_date);
	CREATE INDEX IF NOT EXISTS idx_overtime_period
		ON overtime_records(attendance_period_id);

	CREATE TABLE IF NOT EXISTS reimbursements (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		attendance_period_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reimbursements_period
		ON reimbursements(attendance_period_id);
	CREATE INDEX IF NOT EXISTS idx_reimbursements_user
		ON reimbursements(user_id, attendance_period_id);

	CREATE TABLE IF NOT EXISTS payrolls (
		id TEXT PRIMARY KEY,
		attendance_period_id TEXT NOT NULL,
		total_employees INTEGER NOT NULL,
		total_base_salary TEXT NOT NULL,
		total_overtime_amount TEXT NOT NULL,
		total_reimbursement_amount TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		processed_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- One payroll per period, even under concurrent compilation.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payrolls_period
		ON payrolls(attendance_period_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same query helpers run
// inside or outside a transaction unchanged.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// PERIOD STORE
// =============================================================================

func (s *Store) CreatePeriod(ctx context.Context, p engine.AttendancePeriod) error {
	return createPeriod(ctx, s.db, p)
}

func createPeriod(ctx context.Context, q dbtx, p engine.AttendancePeriod) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO attendance_periods
		(id, name, start_date, end_date, is_active, payroll_processed, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name,
		p.StartDate.String(), p.EndDate.String(),
		p.IsActive, p.PayrollProcessed,
		p.CreatedBy, p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "idx_periods_single_active") {
			return engine.ErrActivePeriodExists
		}
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

func (s *Store) GetPeriod(ctx context.Context, id string) (*engine.AttendancePeriod, error) {
	return getPeriod(ctx, s.db, id)
}

func getPeriod(ctx context.Context, q dbtx, id string) (*engine.AttendancePeriod, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date, is_active, payroll_processed, created_by, created_at
		FROM attendance_periods WHERE id = ?`, id)
	p, err := scanPeriod(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ActivePeriod(ctx context.Context) (*engine.AttendancePeriod, error) {
	return activePeriod(ctx, s.db)
}

func activePeriod(ctx context.Context, q dbtx) (*engine.AttendancePeriod, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date, is_active, payroll_processed, created_by, created_at
		FROM attendance_periods WHERE is_active = 1`)
	p, err := scanPeriod(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrNoActivePeriod
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPeriods(ctx context.Context) ([]engine.AttendancePeriod, error) {
	return listPeriods(ctx, s.db)
}

func listPeriods(ctx context.Context, q dbtx) ([]engine.AttendancePeriod, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, is_active, payroll_processed, created_by, created_at
		FROM attendance_periods ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []engine.AttendancePeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

func (s *Store) DeactivatePeriod(ctx context.Context, id string) error {
	return deactivatePeriod(ctx, s.db, id)
}

func deactivatePeriod(ctx context.Context, q dbtx, id string) error {
	res, err := q.ExecContext(ctx,
		"UPDATE attendance_periods SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrPeriodNotFound
	}
	return nil
}

func (s *Store) MarkPayrollProcessed(ctx context.Context, id string) (bool, error) {
	return markPayrollProcessed(ctx, s.db, id)
}

func markPayrollProcessed(ctx context.Context, q dbtx, id string) (bool, error) {
	// Compare-and-set: only the first caller flips the flag.
	res, err := q.ExecContext(ctx,
		"UPDATE attendance_periods SET payroll_processed = 1 WHERE id = ? AND payroll_processed = 0", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	// Zero rows: either already processed or the period is missing.
	if _, err := getPeriod(ctx, q, id); err != nil {
		return false, err
	}
	return false, nil
}

func scanPeriod(row rowScanner) (*engine.AttendancePeriod, error) {
	var (
		p                  engine.AttendancePeriod
		startDate, endDate string
		createdAt          string
	)
	err := row.Scan(&p.ID, &p.Name, &startDate, &endDate,
		&p.IsActive, &p.PayrollProcessed, &p.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	p.StartDate, _ = engine.ParseDate(startDate)
	p.EndDate, _ = engine.ParseDate(endDate)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

func (s *Store) CreateAttendance(ctx context.Context, rec engine.AttendanceRecord) error {
	return createAttendance(ctx, s.db, rec)
}

func createAttendance(ctx context.Context, q dbtx, rec engine.AttendanceRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO attendance_records
		(id, user_id, attendance_period_id, attendance_date, check_in_time, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.PeriodID,
		rec.Date.String(),
		rec.CheckInTime.UTC().Format(time.RFC3339),
		nullString(rec.Notes),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "idx_attendance_user_date") {
			return engine.ErrAttendanceAlreadyExists
		}
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

func (s *Store) AttendanceByUser(ctx context.Context, userID, periodID string) ([]engine.AttendanceRecord, error) {
	return attendanceByUser(ctx, s.db, userID, periodID)
}

func attendanceByUser(ctx context.Context, q dbtx, userID, periodID string) ([]engine.AttendanceRecord, error) {
	return queryAttendance(ctx, q, `
		SELECT id, user_id, attendance_period_id, attendance_date, check_in_time, notes, created_at
		FROM attendance_records
		WHERE user_id = ? AND attendance_period_id = ?
		ORDER BY attendance_date ASC`, userID, periodID)
}

func (s *Store) AttendanceByPeriod(ctx context.Context, periodID string) ([]engine.AttendanceRecord, error) {
	return attendanceByPeriod(ctx, s.db, periodID)
}

func attendanceByPeriod(ctx context.Context, q dbtx, periodID string) ([]engine.AttendanceRecord, error) {
	return queryAttendance(ctx, q, `
		SELECT id, user_id, attendance_period_id, attendance_date, check_in_time, notes, created_at
		FROM attendance_records
		WHERE attendance_period_id = ?
		ORDER BY rowid ASC`, periodID)
}

func queryAttendance(ctx context.Context, q dbtx, query string, args ...any) ([]engine.AttendanceRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.AttendanceRecord
	for rows.Next() {
		var (
			rec           engine.AttendanceRecord
			date, checkIn string
			notes         sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PeriodID,
			&date, &checkIn, &notes, &createdAt); err != nil {
			return nil, err
		}
		rec.Date, _ = engine.ParseDate(date)
		rec.CheckInTime, _ = time.Parse(time.RFC3339, checkIn)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if notes.Valid {
			n := notes.String
			rec.Notes = &n
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// CLAIM STORE
// =============================================================================

func (s *Store) CreateOvertime(ctx context.Context, rec engine.OvertimeRecord) error {
	return createOvertime(ctx, s.db, rec)
}

func createOvertime(ctx context.Context, q dbtx, rec engine.OvertimeRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO overtime_records
		(id, user_id, attendance_period_id, overtime_date, hours_worked, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.PeriodID,
		rec.Date.String(),
		rec.Hours.String(),
		rec.Description, rec.Status,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "idx_overtime_user_date") {
			return engine.ErrDuplicateOvertime
		}
		return fmt.Errorf("failed to create overtime record: %w", err)
	}
	return nil
}

func (s *Store) OvertimeByUser(ctx context.Context, userID, periodID string) ([]engine.OvertimeRecord, error) {
	return overtimeByUser(ctx, s.db, userID, periodID)
}

func overtimeByUser(ctx context.Context, q dbtx, userID, periodID string) ([]engine.OvertimeRecord, error) {
	return queryOvertime(ctx, q, `
		SELECT id, user_id, attendance_period_id, overtime_date, hours_worked, description, status, created_at
		FROM overtime_records
		WHERE user_id = ? AND attendance_period_id = ?
		ORDER BY overtime_date ASC`, userID, periodID)
}

func (s *Store) OvertimeByPeriod(ctx context.Context, periodID string) ([]engine.OvertimeRecord, error) {
	return overtimeByPeriod(ctx, s.db, periodID)
}

func overtimeByPeriod(ctx context.Context, q dbtx, periodID string) ([]engine.OvertimeRecord, error) {
	return queryOvertime(ctx, q, `
		SELECT id, user_id, attendance_period_id, overtime_date, hours_worked, description, status, created_at
		FROM overtime_records
		WHERE attendance_period_id = ?
		ORDER BY rowid ASC`, periodID)
}

func queryOvertime(ctx context.Context, q dbtx, query string, args ...any) ([]engine.OvertimeRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.OvertimeRecord
	for rows.Next() {
		var (
			rec         engine.OvertimeRecord
			date, hours string
			desc        sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PeriodID,
			&date, &hours, &desc, &rec.Status, &createdAt); err != nil {
			return nil, err
		}
		rec.Date, _ = engine.ParseDate(date)
		rec.Hours = engine.MustParseDecimal(hours)
		rec.Description = desc.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) SetOvertimeStatus(ctx context.Context, id string, status engine.ClaimStatus) error {
	return setOvertimeStatus(ctx, s.db, id, status)
}

func setOvertimeStatus(ctx context.Context, q dbtx, id string, status engine.ClaimStatus) error {
	res, err := q.ExecContext(ctx,
		"UPDATE overtime_records SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("overtime record %s: %w", id, engine.ErrValidation)
	}
	return nil
}

func (s *Store) CreateReimbursement(ctx context.Context, rec engine.Reimbursement) error {
	return createReimbursement(ctx, s.db, rec)
}

func createReimbursement(ctx context.Context, q dbtx, rec engine.Reimbursement) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO reimbursements
		(id, user_id, attendance_period_id, amount, description, category, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.PeriodID,
		rec.Amount.String(),
		rec.Description, rec.Category, rec.Status,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create reimbursement: %w", err)
	}
	return nil
}

func (s *Store) ReimbursementsByUser(ctx context.Context, userID, periodID string) ([]engine.Reimbursement, error) {
	return reimbursementsByUser(ctx, s.db, userID, periodID)
}

func reimbursementsByUser(ctx context.Context, q dbtx, userID, periodID string) ([]engine.Reimbursement, error) {
	return queryReimbursements(ctx, q, `
		SELECT id, user_id, attendance_period_id, amount, description, category, status, created_at
		FROM reimbursements
		WHERE user_id = ? AND attendance_period_id = ?
		ORDER BY rowid ASC`, userID, periodID)
}

func (s *Store) ReimbursementsByPeriod(ctx context.Context, periodID string) ([]engine.Reimbursement, error) {
	return reimbursementsByPeriod(ctx, s.db, periodID)
}

func reimbursementsByPeriod(ctx context.Context, q dbtx, periodID string) ([]engine.Reimbursement, error) {
	return queryReimbursements(ctx, q, `
		SELECT id, user_id, attendance_period_id, amount, description, category, status, created_at
		FROM reimbursements
		WHERE attendance_period_id = ?
		ORDER BY rowid ASC`, periodID)
}

func queryReimbursements(ctx context.Context, q dbtx, query string, args ...any) ([]engine.Reimbursement, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.Reimbursement
	for rows.Next() {
		var (
			rec       engine.Reimbursement
			amount    string
			desc      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PeriodID,
			&amount, &desc, &rec.Category, &rec.Status, &createdAt); err != nil {
			return nil, err
		}
		rec.Amount = engine.MustParseDecimal(amount)
		rec.Description = desc.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) SetReimbursementStatus(ctx context.Context, id string, status engine.ClaimStatus) error {
	return setReimbursementStatus(ctx, s.db, id, status)
}

func setReimbursementStatus(ctx context.Context, q dbtx, id string, status engine.ClaimStatus) error {
	res, err := q.ExecContext(ctx,
		"UPDATE reimbursements SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reimbursement %s: %w", id, engine.ErrValidation)
	}
	return nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp engine.Employee) error {
	return saveEmployee(ctx, s.db, emp)
}

func saveEmployee(ctx context.Context, q dbtx, emp engine.Employee) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO employees
		(id, name, email, role, monthly_salary, is_active, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			monthly_salary = excluded.monthly_salary,
			is_active = excluded.is_active,
			password_hash = excluded.password_hash`,
		emp.ID, emp.Name, emp.Email, emp.Role,
		emp.MonthlySalary.String(),
		emp.IsActive, emp.PasswordHash,
		emp.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*engine.Employee, error) {
	return getEmployee(ctx, s.db, "id = ?", id)
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*engine.Employee, error) {
	return getEmployee(ctx, s.db, "email = ?", email)
}

func getEmployee(ctx context.Context, q dbtx, where string, arg any) (*engine.Employee, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, email, role, monthly_salary, is_active, password_hash, created_at
		FROM employees WHERE `+where, arg)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *Store) ActiveEmployees(ctx context.Context, role engine.Role) ([]engine.Employee, error) {
	return activeEmployees(ctx, s.db, role)
}

func activeEmployees(ctx context.Context, q dbtx, role engine.Role) ([]engine.Employee, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, role, monthly_salary, is_active, password_hash, created_at
		FROM employees
		WHERE role = ? AND is_active = 1
		ORDER BY rowid ASC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []engine.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

func scanEmployee(row rowScanner) (*engine.Employee, error) {
	var (
		emp       engine.Employee
		email     sql.NullString
		salary    string
		createdAt string
	)
	err := row.Scan(&emp.ID, &emp.Name, &email, &emp.Role,
		&salary, &emp.IsActive, &emp.PasswordHash, &createdAt)
	if err != nil {
		return nil, err
	}
	emp.Email = email.String
	emp.MonthlySalary = engine.MustParseDecimal(salary)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// =============================================================================
// PAYROLL STORE
// =============================================================================

func (s *Store) CreatePayroll(ctx context.Context, p engine.Payroll) error {
	return createPayroll(ctx, s.db, p)
}

func createPayroll(ctx context.Context, q dbtx, p engine.Payroll) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO payrolls
		(id, attendance_period_id, total_employees, total_base_salary,
		 total_overtime_amount, total_reimbursement_amount, total_amount,
		 processed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PeriodID, p.TotalEmployees,
		p.TotalBaseSalary.String(),
		p.TotalOvertimeAmount.String(),
		p.TotalReimbursementAmount.String(),
		p.TotalAmount.String(),
		p.ProcessedBy,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "idx_payrolls_period") {
			return engine.ErrPayrollAlreadyProcessed
		}
		return fmt.Errorf("failed to create payroll: %w", err)
	}
	return nil
}

func (s *Store) PayrollByPeriod(ctx context.Context, periodID string) (*engine.Payroll, error) {
	return payrollByPeriod(ctx, s.db, periodID)
}

func payrollByPeriod(ctx context.Context, q dbtx, periodID string) (*engine.Payroll, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, attendance_period_id, total_employees, total_base_salary,
		       total_overtime_amount, total_reimbursement_amount, total_amount,
		       processed_by, created_at
		FROM payrolls WHERE attendance_period_id = ?`, periodID)

	var (
		p                            engine.Payroll
		base, overtime, reimb, total string
		createdAt                    string
	)
	err := row.Scan(&p.ID, &p.PeriodID, &p.TotalEmployees,
		&base, &overtime, &reimb, &total, &p.ProcessedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, engine.ErrPayrollNotFound
	}
	if err != nil {
		return nil, err
	}
	p.TotalBaseSalary = engine.MustParseDecimal(base)
	p.TotalOvertimeAmount = engine.MustParseDecimal(overtime)
	p.TotalReimbursementAmount = engine.MustParseDecimal(reimb)
	p.TotalAmount = engine.MustParseDecimal(total)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. An error from fn rolls
// back; nil commits.
func (s *Store) WithTx(ctx context.Context, fn func(engine.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every call through the open transaction. The pool is capped
// at one connection, so touching the parent connection from inside a
// transaction would deadlock; nothing here does.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreatePeriod(ctx context.Context, p engine.AttendancePeriod) error {
	return createPeriod(ctx, ts.tx, p)
}

func (ts *txStore) GetPeriod(ctx context.Context, id string) (*engine.AttendancePeriod, error) {
	return getPeriod(ctx, ts.tx, id)
}

func (ts *txStore) ActivePeriod(ctx context.Context) (*engine.AttendancePeriod, error) {
	return activePeriod(ctx, ts.tx)
}

func (ts *txStore) ListPeriods(ctx context.Context) ([]engine.AttendancePeriod, error) {
	return listPeriods(ctx, ts.tx)
}

func (ts *txStore) DeactivatePeriod(ctx context.Context, id string) error {
	return deactivatePeriod(ctx, ts.tx, id)
}

func (ts *txStore) MarkPayrollProcessed(ctx context.Context, id string) (bool, error) {
	return markPayrollProcessed(ctx, ts.tx, id)
}

func (ts *txStore) CreateAttendance(ctx context.Context, rec engine.AttendanceRecord) error {
	return createAttendance(ctx, ts.tx, rec)
}

func (ts *txStore) AttendanceByUser(ctx context.Context, userID, periodID string) ([]engine.AttendanceRecord, error) {
	return attendanceByUser(ctx, ts.tx, userID, periodID)
}

func (ts *txStore) AttendanceByPeriod(ctx context.Context, periodID string) ([]engine.AttendanceRecord, error) {
	return attendanceByPeriod(ctx, ts.tx, periodID)
}

func (ts *txStore) CreateOvertime(ctx context.Context, rec engine.OvertimeRecord) error {
	return createOvertime(ctx, ts.tx, rec)
}

func (ts *txStore) OvertimeByUser(ctx context.Context, userID, periodID string) ([]engine.OvertimeRecord, error) {
	return overtimeByUser(ctx, ts.tx, userID, periodID)
}

func (ts *txStore) OvertimeByPeriod(ctx context.Context, periodID string) ([]engine.OvertimeRecord, error) {
	return overtimeByPeriod(ctx, ts.tx, periodID)
}

func (ts *txStore) SetOvertimeStatus(ctx context.Context, id string, status engine.ClaimStatus) error {
	return setOvertimeStatus(ctx, ts.tx, id, status)
}

func (ts *txStore) CreateReimbursement(ctx context.Context, rec engine.Reimbursement) error {
	return createReimbursement(ctx, ts.tx, rec)
}

func (ts *txStore) ReimbursementsByUser(ctx context.Context, userID, periodID string) ([]engine.Reimbursement, error) {
	return reimbursementsByUser(ctx, ts.tx, userID, periodID)
}

func (ts *txStore) ReimbursementsByPeriod(ctx context.Context, periodID string) ([]engine.Reimbursement, error) {
	return reimbursementsByPeriod(ctx, ts.tx, periodID)
}

func (ts *txStore) SetReimbursementStatus(ctx context.Context, id string, status engine.ClaimStatus) error {
	return setReimbursementStatus(ctx, ts.tx, id, status)
}

func (ts *txStore) SaveEmployee(ctx context.Context, emp engine.Employee) error {
	return saveEmployee(ctx, ts.tx, emp)
}

func (ts *txStore) GetEmployee(ctx context.Context, id string) (*engine.Employee, error) {
	return getEmployee(ctx, ts.tx, "id = ?", id)
}

func (ts *txStore) GetEmployeeByEmail(ctx context.Context, email string) (*engine.Employee, error) {
	return getEmployee(ctx, ts.tx, "email = ?", email)
}

func (ts *txStore) ActiveEmployees(ctx context.Context, role engine.Role) ([]engine.Employee, error) {
	return activeEmployees(ctx, ts.tx, role)
}

func (ts *txStore) CreatePayroll(ctx context.Context, p engine.Payroll) error {
	return createPayroll(ctx, ts.tx, p)
}

func (ts *txStore) PayrollByPeriod(ctx context.Context, periodID string) (*engine.Payroll, error) {
	return payrollByPeriod(ctx, ts.tx, periodID)
}

var _ engine.TxStore = (*Store)(nil)
var _ engine.Store = (*txStore)(nil)

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on the
// columns covered by the named index. SQLite reports the columns, not the
// index name, so the mapping goes through indexColumns.
func isUniqueViolation(err error, index string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, indexColumns(index))
}

func indexColumns(index string) string {
	switch index {
	case "idx_periods_single_active":
		return "attendance_periods.is_active"
	case "idx_attendance_user_date":
		return "attendance_records.user_id, attendance_records.attendance_date"
	case "idx_overtime_user_date":
		return "overtime_records.user_id, overtime_records.overtime_date"
	case "idx_payrolls_period":
		return "payrolls.attendance_period_id"
	default:
		return index
	}
}
