/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY AND HOURS:
  Decimal amounts travel as JSON strings ("8000000.00") to keep exactness
  end to end. Hours are small enough that clients send them as numbers;
  they are converted to decimal at the handler boundary.

VALIDATION:
  Validation is done in the engine, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: Domain model these project
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the authenticated employee.
type LoginResponse struct {
	Token    string      `json:"token"`
	Employee EmployeeDTO `json:"employee"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses. The password hash
// never leaves the server.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	MonthlySalary string `json:"monthly_salary"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	MonthlySalary string `json:"monthly_salary"`
	Password      string `json:"password"`
}

// =============================================================================
// PERIODS
// =============================================================================

// PeriodDTO represents an attendance period in API responses.
type PeriodDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	IsActive         bool   `json:"is_active"`
	PayrollProcessed bool   `json:"payroll_processed"`
	CreatedBy        string `json:"created_by"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// CreatePeriodRequest is the request to open a new period.
type CreatePeriodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceDTO represents one attendance record.
type AttendanceDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	PeriodID    string  `json:"attendance_period_id"`
	Date        string  `json:"attendance_date"`
	CheckInTime string  `json:"check_in_time"`
	Notes       *string `json:"notes,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// SubmitAttendanceRequest is the request to record attendance. Date defaults
// to today when omitted.
type SubmitAttendanceRequest struct {
	Date  string  `json:"date,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// =============================================================================
// CLAIMS
// =============================================================================

// OvertimeDTO represents one overtime claim.
type OvertimeDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	PeriodID    string `json:"attendance_period_id"`
	Date        string `json:"overtime_date"`
	Hours       string `json:"hours_worked"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// SubmitOvertimeRequest is the request to submit an overtime claim. Status
// may be set to "approved" by admin callers; everyone else gets "pending".
type SubmitOvertimeRequest struct {
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// ReimbursementDTO represents one reimbursement claim.
type ReimbursementDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	PeriodID    string `json:"attendance_period_id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// SubmitReimbursementRequest is the request to submit a reimbursement claim.
type SubmitReimbursementRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// ReviewRequest carries an approve/reject decision for a pending claim.
type ReviewRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// SUMMARIES AND PAYROLL
// =============================================================================

// AttendanceSummaryDTO is the per-employee view of a period.
type AttendanceSummaryDTO struct {
	UserID           string `json:"user_id"`
	PeriodID         string `json:"attendance_period_id"`
	AttendanceDays   int    `json:"attendance_days"`
	TotalWorkingDays int    `json:"total_working_days"`
}

// EmployeeBreakdownDTO is one row of the admin period summary.
type EmployeeBreakdownDTO struct {
	UserID              string `json:"user_id"`
	Name                string `json:"name"`
	AttendanceDays      int    `json:"attendance_days"`
	OvertimeCount       int    `json:"overtime_count"`
	OvertimeHours       string `json:"overtime_hours"`
	ReimbursementCount  int    `json:"reimbursement_count"`
	ReimbursementAmount string `json:"reimbursement_amount"`
}

// AdminSummaryDTO is the admin view of a period.
type AdminSummaryDTO struct {
	PeriodID                string                 `json:"attendance_period_id"`
	TotalEmployees          int                    `json:"total_employees"`
	EmployeesWithAttendance int                    `json:"employees_with_attendance"`
	TotalWorkingDays        int                    `json:"total_working_days"`
	Breakdown               []EmployeeBreakdownDTO `json:"breakdown"`
}

// PayrollDTO represents a compiled payroll.
type PayrollDTO struct {
	ID                       string `json:"id"`
	PeriodID                 string `json:"attendance_period_id"`
	TotalEmployees           int    `json:"total_employees"`
	TotalBaseSalary          string `json:"total_base_salary"`
	TotalOvertimeAmount      string `json:"total_overtime_amount"`
	TotalReimbursementAmount string `json:"total_reimbursement_amount"`
	TotalAmount              string `json:"total_amount"`
	ProcessedBy              string `json:"processed_by"`
	CreatedAt                string `json:"created_at,omitempty"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEmployeeDTO(e *engine.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		Role:          string(e.Role),
		MonthlySalary: e.MonthlySalary.StringFixed(2),
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func toPeriodDTO(p *engine.AttendancePeriod) PeriodDTO {
	return PeriodDTO{
		ID:               p.ID,
		Name:             p.Name,
		StartDate:        p.StartDate.String(),
		EndDate:          p.EndDate.String(),
		IsActive:         p.IsActive,
		PayrollProcessed: p.PayrollProcessed,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceDTO(rec *engine.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		ID:          rec.ID,
		UserID:      rec.UserID,
		PeriodID:    rec.PeriodID,
		Date:        rec.Date.String(),
		CheckInTime: rec.CheckInTime.Format(time.RFC3339),
		Notes:       rec.Notes,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func toOvertimeDTO(rec *engine.OvertimeRecord) OvertimeDTO {
	return OvertimeDTO{
		ID:          rec.ID,
		UserID:      rec.UserID,
		PeriodID:    rec.PeriodID,
		Date:        rec.Date.String(),
		Hours:       rec.Hours.String(),
		Description: rec.Description,
		Status:      string(rec.Status),
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func toReimbursementDTO(rec *engine.Reimbursement) ReimbursementDTO {
	return ReimbursementDTO{
		ID:          rec.ID,
		UserID:      rec.UserID,
		PeriodID:    rec.PeriodID,
		Amount:      rec.Amount.StringFixed(2),
		Description: rec.Description,
		Category:    string(rec.Category),
		Status:      string(rec.Status),
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func toPayrollDTO(p *engine.Payroll) PayrollDTO {
	return PayrollDTO{
		ID:                       p.ID,
		PeriodID:                 p.PeriodID,
		TotalEmployees:           p.TotalEmployees,
		TotalBaseSalary:          p.TotalBaseSalary.StringFixed(2),
		TotalOvertimeAmount:      p.TotalOvertimeAmount.StringFixed(2),
		TotalReimbursementAmount: p.TotalReimbursementAmount.StringFixed(2),
		TotalAmount:              p.TotalAmount.StringFixed(2),
		ProcessedBy:              p.ProcessedBy,
		CreatedAt:                p.CreatedAt.Format(time.RFC3339),
	}
}

func toAdminSummaryDTO(s *engine.AdminSummary) AdminSummaryDTO {
	breakdown := make([]EmployeeBreakdownDTO, len(s.Breakdown))
	for i, b := range s.Breakdown {
		breakdown[i] = EmployeeBreakdownDTO{
			UserID:              b.UserID,
			Name:                b.Name,
			AttendanceDays:      b.AttendanceDays,
			OvertimeCount:       b.OvertimeCount,
			OvertimeHours:       b.OvertimeHours.String(),
			ReimbursementCount:  b.ReimbursementCount,
			ReimbursementAmount: b.ReimbursementAmount.StringFixed(2),
		}
	}
	return AdminSummaryDTO{
		PeriodID:                s.PeriodID,
		TotalEmployees:          s.TotalEmployees,
		EmployeesWithAttendance: s.EmployeesWithAttendance,
		TotalWorkingDays:        s.TotalWorkingDays,
		Breakdown:               breakdown,
	}
}
