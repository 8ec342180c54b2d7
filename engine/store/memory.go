// Package store provides an in-memory Store implementation for tests and dev.
package store

import (
	"context"
	"sync"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds everything in slices guarded by one RWMutex. It enforces the
// same uniqueness contracts as the SQLite store so engine behavior is
// identical across stores.
//
// Each exported method takes the lock and delegates to an unexported
// *Locked method; transactions hold the lock across the whole callback and
// call the locked methods directly through txView.
type Memory struct {
	mu sync.RWMutex

	periods        []engine.AttendancePeriod
	attendance     []engine.AttendanceRecord
	overtime       []engine.OvertimeRecord
	reimbursements []engine.Reimbursement
	employees      []engine.Employee
	payrolls       []engine.Payroll
}

func NewMemory() *Memory {
	return &Memory{}
}

// =============================================================================
// PERIODS
// =============================================================================

func (m *Memory) CreatePeriod(_ context.Context, p engine.AttendancePeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPeriodLocked(p)
}

func (m *Memory) createPeriodLocked(p engine.AttendancePeriod) error {
	if p.IsActive {
		for _, existing := range m.periods {
			if existing.IsActive {
				return engine.ErrActivePeriodExists
			}
		}
	}
	m.periods = append(m.periods, p)
	return nil
}

func (m *Memory) GetPeriod(_ context.Context, id string) (*engine.AttendancePeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPeriodLocked(id)
}

func (m *Memory) getPeriodLocked(id string) (*engine.AttendancePeriod, error) {
	for i := range m.periods {
		if m.periods[i].ID == id {
			p := m.periods[i]
			return &p, nil
		}
	}
	return nil, engine.ErrPeriodNotFound
}

func (m *Memory) ActivePeriod(_ context.Context) (*engine.AttendancePeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activePeriodLocked()
}

func (m *Memory) activePeriodLocked() (*engine.AttendancePeriod, error) {
	for i := range m.periods {
		if m.periods[i].IsActive {
			p := m.periods[i]
			return &p, nil
		}
	}
	return nil, engine.ErrNoActivePeriod
}

func (m *Memory) ListPeriods(_ context.Context) ([]engine.AttendancePeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPeriodsLocked()
}

func (m *Memory) listPeriodsLocked() ([]engine.AttendancePeriod, error) {
	out := make([]engine.AttendancePeriod, len(m.periods))
	copy(out, m.periods)
	return out, nil
}

func (m *Memory) DeactivatePeriod(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deactivatePeriodLocked(id)
}

func (m *Memory) deactivatePeriodLocked(id string) error {
	for i := range m.periods {
		if m.periods[i].ID == id {
			m.periods[i].IsActive = false
			return nil
		}
	}
	return engine.ErrPeriodNotFound
}

func (m *Memory) MarkPayrollProcessed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markPayrollProcessedLocked(id)
}

func (m *Memory) markPayrollProcessedLocked(id string) (bool, error) {
	for i := range m.periods {
		if m.periods[i].ID == id {
			if m.periods[i].PayrollProcessed {
				return false, nil
			}
			m.periods[i].PayrollProcessed = true
			return true, nil
		}
	}
	return false, engine.ErrPeriodNotFound
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) CreateAttendance(_ context.Context, rec engine.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAttendanceLocked(rec)
}

func (m *Memory) createAttendanceLocked(rec engine.AttendanceRecord) error {
	for _, existing := range m.attendance {
		if existing.UserID == rec.UserID && existing.Date.Equal(rec.Date) {
			return engine.ErrAttendanceAlreadyExists
		}
	}
	m.attendance = append(m.attendance, rec)
	return nil
}

func (m *Memory) AttendanceByUser(_ context.Context, userID, periodID string) ([]engine.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attendanceByUserLocked(userID, periodID)
}

func (m *Memory) attendanceByUserLocked(userID, periodID string) ([]engine.AttendanceRecord, error) {
	var out []engine.AttendanceRecord
	for _, rec := range m.attendance {
		if rec.UserID == userID && rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) AttendanceByPeriod(_ context.Context, periodID string) ([]engine.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attendanceByPeriodLocked(periodID)
}

func (m *Memory) attendanceByPeriodLocked(periodID string) ([]engine.AttendanceRecord, error) {
	var out []engine.AttendanceRecord
	for _, rec := range m.attendance {
		if rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// =============================================================================
// OVERTIME & REIMBURSEMENTS
// =============================================================================

func (m *Memory) CreateOvertime(_ context.Context, rec engine.OvertimeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOvertimeLocked(rec)
}

func (m *Memory) createOvertimeLocked(rec engine.OvertimeRecord) error {
	for _, existing := range m.overtime {
		if existing.UserID == rec.UserID && existing.Date.Equal(rec.Date) {
			return engine.ErrDuplicateOvertime
		}
	}
	m.overtime = append(m.overtime, rec)
	return nil
}

func (m *Memory) OvertimeByUser(_ context.Context, userID, periodID string) ([]engine.OvertimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overtimeByUserLocked(userID, periodID)
}

func (m *Memory) overtimeByUserLocked(userID, periodID string) ([]engine.OvertimeRecord, error) {
	var out []engine.OvertimeRecord
	for _, rec := range m.overtime {
		if rec.UserID == userID && rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) OvertimeByPeriod(_ context.Context, periodID string) ([]engine.OvertimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overtimeByPeriodLocked(periodID)
}

func (m *Memory) overtimeByPeriodLocked(periodID string) ([]engine.OvertimeRecord, error) {
	var out []engine.OvertimeRecord
	for _, rec := range m.overtime {
		if rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) SetOvertimeStatus(_ context.Context, id string, status engine.ClaimStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setOvertimeStatusLocked(id, status)
}

func (m *Memory) setOvertimeStatusLocked(id string, status engine.ClaimStatus) error {
	for i := range m.overtime {
		if m.overtime[i].ID == id {
			m.overtime[i].Status = status
			return nil
		}
	}
	return engine.ErrValidation
}

func (m *Memory) CreateReimbursement(_ context.Context, rec engine.Reimbursement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createReimbursementLocked(rec)
}

func (m *Memory) createReimbursementLocked(rec engine.Reimbursement) error {
	m.reimbursements = append(m.reimbursements, rec)
	return nil
}

func (m *Memory) ReimbursementsByUser(_ context.Context, userID, periodID string) ([]engine.Reimbursement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reimbursementsByUserLocked(userID, periodID)
}

func (m *Memory) reimbursementsByUserLocked(userID, periodID string) ([]engine.Reimbursement, error) {
	var out []engine.Reimbursement
	for _, rec := range m.reimbursements {
		if rec.UserID == userID && rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) ReimbursementsByPeriod(_ context.Context, periodID string) ([]engine.Reimbursement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reimbursementsByPeriodLocked(periodID)
}

func (m *Memory) reimbursementsByPeriodLocked(periodID string) ([]engine.Reimbursement, error) {
	var out []engine.Reimbursement
	for _, rec := range m.reimbursements {
		if rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) SetReimbursementStatus(_ context.Context, id string, status engine.ClaimStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setReimbursementStatusLocked(id, status)
}

func (m *Memory) setReimbursementStatusLocked(id string, status engine.ClaimStatus) error {
	for i := range m.reimbursements {
		if m.reimbursements[i].ID == id {
			m.reimbursements[i].Status = status
			return nil
		}
	}
	return engine.ErrValidation
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveEmployeeLocked(emp)
}

func (m *Memory) saveEmployeeLocked(emp engine.Employee) error {
	for i := range m.employees {
		if m.employees[i].ID == emp.ID {
			m.employees[i] = emp
			return nil
		}
	}
	m.employees = append(m.employees, emp)
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEmployeeLocked(id)
}

func (m *Memory) getEmployeeLocked(id string) (*engine.Employee, error) {
	for i := range m.employees {
		if m.employees[i].ID == id {
			emp := m.employees[i]
			return &emp, nil
		}
	}
	return nil, engine.ErrEmployeeNotFound
}

func (m *Memory) GetEmployeeByEmail(_ context.Context, email string) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEmployeeByEmailLocked(email)
}

func (m *Memory) getEmployeeByEmailLocked(email string) (*engine.Employee, error) {
	for i := range m.employees {
		if m.employees[i].Email == email {
			emp := m.employees[i]
			return &emp, nil
		}
	}
	return nil, engine.ErrEmployeeNotFound
}

func (m *Memory) ActiveEmployees(_ context.Context, role engine.Role) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeEmployeesLocked(role)
}

func (m *Memory) activeEmployeesLocked(role engine.Role) ([]engine.Employee, error) {
	var out []engine.Employee
	for _, emp := range m.employees {
		if emp.IsActive && emp.Role == role {
			out = append(out, emp)
		}
	}
	return out, nil
}

// =============================================================================
// PAYROLLS
// =============================================================================

func (m *Memory) CreatePayroll(_ context.Context, p engine.Payroll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPayrollLocked(p)
}

func (m *Memory) createPayrollLocked(p engine.Payroll) error {
	for _, existing := range m.payrolls {
		if existing.PeriodID == p.PeriodID {
			return engine.ErrPayrollAlreadyProcessed
		}
	}
	m.payrolls = append(m.payrolls, p)
	return nil
}

func (m *Memory) PayrollByPeriod(_ context.Context, periodID string) (*engine.Payroll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payrollByPeriodLocked(periodID)
}

func (m *Memory) payrollByPeriodLocked(periodID string) (*engine.Payroll, error) {
	for i := range m.payrolls {
		if m.payrolls[i].PeriodID == periodID {
			p := m.payrolls[i]
			return &p, nil
		}
	}
	return nil, engine.ErrPayrollNotFound
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support. WithTx holds the store
// lock for the whole callback, so a transaction sees and mutates a frozen
// store; rollback restores the pre-transaction snapshot. Writers outside the
// transaction block until it finishes, so a rollback can never erase a
// commit that raced in between.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn against a locked view; on error the pre-transaction
// snapshot is restored. Transactions are serialized with all other access.
// fn must use the Store it is handed, not the TxMemory itself.
func (tm *TxMemory) WithTx(_ context.Context, fn func(engine.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshotLocked()
	if err := fn(&txView{mem: tm.Memory}); err != nil {
		tm.restoreLocked(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	periods        []engine.AttendancePeriod
	attendance     []engine.AttendanceRecord
	overtime       []engine.OvertimeRecord
	reimbursements []engine.Reimbursement
	employees      []engine.Employee
	payrolls       []engine.Payroll
}

func (tm *TxMemory) snapshotLocked() memorySnapshot {
	return memorySnapshot{
		periods:        append([]engine.AttendancePeriod(nil), tm.periods...),
		attendance:     append([]engine.AttendanceRecord(nil), tm.attendance...),
		overtime:       append([]engine.OvertimeRecord(nil), tm.overtime...),
		reimbursements: append([]engine.Reimbursement(nil), tm.reimbursements...),
		employees:      append([]engine.Employee(nil), tm.employees...),
		payrolls:       append([]engine.Payroll(nil), tm.payrolls...),
	}
}

func (tm *TxMemory) restoreLocked(s memorySnapshot) {
	tm.periods = s.periods
	tm.attendance = s.attendance
	tm.overtime = s.overtime
	tm.reimbursements = s.reimbursements
	tm.employees = s.employees
	tm.payrolls = s.payrolls
}

// txView is the Store handed to WithTx callbacks. The lock is already held,
// so every method goes straight to the locked implementation.
type txView struct {
	mem *Memory
}

func (v *txView) CreatePeriod(_ context.Context, p engine.AttendancePeriod) error {
	return v.mem.createPeriodLocked(p)
}

func (v *txView) GetPeriod(_ context.Context, id string) (*engine.AttendancePeriod, error) {
	return v.mem.getPeriodLocked(id)
}

func (v *txView) ActivePeriod(_ context.Context) (*engine.AttendancePeriod, error) {
	return v.mem.activePeriodLocked()
}

func (v *txView) ListPeriods(_ context.Context) ([]engine.AttendancePeriod, error) {
	return v.mem.listPeriodsLocked()
}

func (v *txView) DeactivatePeriod(_ context.Context, id string) error {
	return v.mem.deactivatePeriodLocked(id)
}

func (v *txView) MarkPayrollProcessed(_ context.Context, id string) (bool, error) {
	return v.mem.markPayrollProcessedLocked(id)
}

func (v *txView) CreateAttendance(_ context.Context, rec engine.AttendanceRecord) error {
	return v.mem.createAttendanceLocked(rec)
}

func (v *txView) AttendanceByUser(_ context.Context, userID, periodID string) ([]engine.AttendanceRecord, error) {
	return v.mem.attendanceByUserLocked(userID, periodID)
}

func (v *txView) AttendanceByPeriod(_ context.Context, periodID string) ([]engine.AttendanceRecord, error) {
	return v.mem.attendanceByPeriodLocked(periodID)
}

func (v *txView) CreateOvertime(_ context.Context, rec engine.OvertimeRecord) error {
	return v.mem.createOvertimeLocked(rec)
}

func (v *txView) OvertimeByUser(_ context.Context, userID, periodID string) ([]engine.OvertimeRecord, error) {
	return v.mem.overtimeByUserLocked(userID, periodID)
}

func (v *txView) OvertimeByPeriod(_ context.Context, periodID string) ([]engine.OvertimeRecord, error) {
	return v.mem.overtimeByPeriodLocked(periodID)
}

func (v *txView) SetOvertimeStatus(_ context.Context, id string, status engine.ClaimStatus) error {
	return v.mem.setOvertimeStatusLocked(id, status)
}

func (v *txView) CreateReimbursement(_ context.Context, rec engine.Reimbursement) error {
	return v.mem.createReimbursementLocked(rec)
}

func (v *txView) ReimbursementsByUser(_ context.Context, userID, periodID string) ([]engine.Reimbursement, error) {
	return v.mem.reimbursementsByUserLocked(userID, periodID)
}

func (v *txView) ReimbursementsByPeriod(_ context.Context, periodID string) ([]engine.Reimbursement, error) {
	return v.mem.reimbursementsByPeriodLocked(periodID)
}

func (v *txView) SetReimbursementStatus(_ context.Context, id string, status engine.ClaimStatus) error {
	return v.mem.setReimbursementStatusLocked(id, status)
}

func (v *txView) SaveEmployee(_ context.Context, emp engine.Employee) error {
	return v.mem.saveEmployeeLocked(emp)
}

func (v *txView) GetEmployee(_ context.Context, id string) (*engine.Employee, error) {
	return v.mem.getEmployeeLocked(id)
}

func (v *txView) GetEmployeeByEmail(_ context.Context, email string) (*engine.Employee, error) {
	return v.mem.getEmployeeByEmailLocked(email)
}

func (v *txView) ActiveEmployees(_ context.Context, role engine.Role) ([]engine.Employee, error) {
	return v.mem.activeEmployeesLocked(role)
}

func (v *txView) CreatePayroll(_ context.Context, p engine.Payroll) error {
	return v.mem.createPayrollLocked(p)
}

func (v *txView) PayrollByPeriod(_ context.Context, periodID string) (*engine.Payroll, error) {
	return v.mem.payrollByPeriodLocked(periodID)
}

var _ engine.Store = (*Memory)(nil)
var _ engine.Store = (*txView)(nil)
var _ engine.TxStore = (*TxMemory)(nil)
