/*
summary.go - Aggregation over persisted records

PURPOSE:
  Computes per-employee and per-period summaries from persisted records, and
  the monetary totals the payroll compiler persists. Aggregation is always
  derived on demand by replaying what the stores hold - there is no cached
  total that can drift.

MONETARY RULES:
  - Base salary is the employee's flat monthly figure, not pro-rated by
    attendance.
  - Overtime counts only approved records, priced by the injected RatePolicy.
  - Reimbursements count only approved records.
  - Pending and rejected records are excluded from every monetary total.

SEE ALSO:
  - rate.go: overtime pricing
  - payroll.go: persists PayrollTotals once per period
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// AttendanceSummary is one employee's attendance standing in a period.
// TotalWorkingDays depends only on the period's date range, not on what was
// submitted.
type AttendanceSummary struct {
	UserID           string
	PeriodID         string
	AttendanceDays   int
	TotalWorkingDays int
}

// EmployeeBreakdown is one row of the admin summary.
type EmployeeBreakdown struct {
	UserID              string
	Name                string
	AttendanceDays      int
	OvertimeCount       int
	OvertimeHours       decimal.Decimal // approved hours only
	ReimbursementCount  int
	ReimbursementAmount decimal.Decimal // approved amounts only
}

// AdminSummary is the per-period roll-up for admins.
type AdminSummary struct {
	PeriodID                string
	TotalEmployees          int
	EmployeesWithAttendance int
	TotalWorkingDays        int
	Breakdown               []EmployeeBreakdown
}

// PayrollTotals are the figures the compiler persists.
type PayrollTotals struct {
	TotalEmployees           int
	TotalBaseSalary          decimal.Decimal
	TotalOvertimeAmount      decimal.Decimal
	TotalReimbursementAmount decimal.Decimal
	TotalAmount              decimal.Decimal
}

// =============================================================================
// AGGREGATION ENGINE
// =============================================================================

type Summaries struct {
	store Store
	rate  RatePolicy
}

func NewSummaries(store Store, rate RatePolicy) *Summaries {
	return &Summaries{store: store, rate: rate}
}

// EmployeeAttendance returns one employee's attendance count against the
// period's working-day total.
func (s *Summaries) EmployeeAttendance(ctx context.Context, userID, periodID string) (*AttendanceSummary, error) {
	period, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	workingDays, err := period.Range().WorkingDays()
	if err != nil {
		return nil, err
	}
	records, err := s.store.AttendanceByUser(ctx, userID, periodID)
	if err != nil {
		return nil, err
	}
	return &AttendanceSummary{
		UserID:           userID,
		PeriodID:         periodID,
		AttendanceDays:   len(records),
		TotalWorkingDays: workingDays,
	}, nil
}

// PeriodAdmin returns the per-period roll-up: active employee count, how many
// of them submitted at least one record, and a per-employee breakdown.
func (s *Summaries) PeriodAdmin(ctx context.Context, periodID string) (*AdminSummary, error) {
	period, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	workingDays, err := period.Range().WorkingDays()
	if err != nil {
		return nil, err
	}

	employees, err := s.store.ActiveEmployees(ctx, RoleEmployee)
	if err != nil {
		return nil, err
	}
	attendance, err := s.store.AttendanceByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	overtime, err := s.store.OvertimeByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	reimbursements, err := s.store.ReimbursementsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	attendanceDays := make(map[string]int)
	for _, rec := range attendance {
		attendanceDays[rec.UserID]++
	}
	overtimeCount := make(map[string]int)
	overtimeHours := make(map[string]decimal.Decimal)
	for _, rec := range overtime {
		overtimeCount[rec.UserID]++
		if rec.Status == StatusApproved {
			overtimeHours[rec.UserID] = overtimeHours[rec.UserID].Add(rec.Hours)
		}
	}
	reimbCount := make(map[string]int)
	reimbAmount := make(map[string]decimal.Decimal)
	for _, rec := range reimbursements {
		reimbCount[rec.UserID]++
		if rec.Status == StatusApproved {
			reimbAmount[rec.UserID] = reimbAmount[rec.UserID].Add(rec.Amount)
		}
	}

	summary := &AdminSummary{
		PeriodID:                periodID,
		TotalEmployees:          len(employees),
		EmployeesWithAttendance: len(attendanceDays),
		TotalWorkingDays:        workingDays,
		Breakdown:               make([]EmployeeBreakdown, 0, len(employees)),
	}
	for _, emp := range employees {
		summary.Breakdown = append(summary.Breakdown, EmployeeBreakdown{
			UserID:              emp.ID,
			Name:                emp.Name,
			AttendanceDays:      attendanceDays[emp.ID],
			OvertimeCount:       overtimeCount[emp.ID],
			OvertimeHours:       overtimeHours[emp.ID],
			ReimbursementCount:  reimbCount[emp.ID],
			ReimbursementAmount: reimbAmount[emp.ID],
		})
	}
	return summary, nil
}

// Totals computes the payroll figures for a period. Pending and rejected
// claims contribute nothing.
func (s *Summaries) Totals(ctx context.Context, periodID string) (*PayrollTotals, error) {
	if _, err := s.store.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}

	employees, err := s.store.ActiveEmployees(ctx, RoleEmployee)
	if err != nil {
		return nil, err
	}
	salaries := make(map[string]decimal.Decimal, len(employees))
	totalBase := decimal.Zero
	for _, emp := range employees {
		salaries[emp.ID] = emp.MonthlySalary
		totalBase = totalBase.Add(emp.MonthlySalary)
	}

	overtime, err := s.store.OvertimeByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	totalOvertime := decimal.Zero
	for _, rec := range overtime {
		if rec.Status != StatusApproved {
			continue
		}
		salary, ok := salaries[rec.UserID]
		if !ok {
			// Claims by since-deactivated or non-employee users carry no pay.
			continue
		}
		totalOvertime = totalOvertime.Add(s.rate.OvertimePay(salary, rec.Hours))
	}

	reimbursements, err := s.store.ReimbursementsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	totalReimb := decimal.Zero
	for _, rec := range reimbursements {
		if rec.Status == StatusApproved {
			totalReimb = totalReimb.Add(rec.Amount)
		}
	}

	return &PayrollTotals{
		TotalEmployees:           len(employees),
		TotalBaseSalary:          totalBase,
		TotalOvertimeAmount:      totalOvertime,
		TotalReimbursementAmount: totalReimb,
		TotalAmount:              totalBase.Add(totalOvertime).Add(totalReimb),
	}, nil
}
