/*
Package engine provides the core attendance and payroll rule engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking employee
  attendance against time-bounded periods, validating overtime and reimbursement
  claims, and deriving payroll totals from the approved records.

KEY CONCEPTS IN THIS FILE (types.go):
  - AttendancePeriod: A bounded date range accepting submissions
  - AttendanceRecord: One employee, one calendar day, immutable once written
  - OvertimeRecord / Reimbursement: Claims with an approval status
  - Payroll: The one-time aggregation over a period
  - AuthContext: The authenticated caller, supplied by the transport layer

DESIGN PRINCIPLES:
  1. Immutability: Attendance records are never updated or deleted
  2. Precision: Uses decimal.Decimal for all monetary arithmetic
  3. Trust boundary: The engine trusts AuthContext and never re-derives identity
  4. Derivation: Payroll is computed from records, never edited independently

SEE ALSO:
  - calendar.go: Date, Clock, working-day arithmetic
  - errors.go: Error taxonomy
  - store.go: Persistence interfaces
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES & AUTH CONTEXT
// =============================================================================

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// AuthContext identifies the authenticated caller. It is supplied by the
// external authentication collaborator on every call; the engine trusts it.
type AuthContext struct {
	UserID   string
	Role     Role
	IsActive bool
}

func (a AuthContext) IsAdmin() bool { return a.Role == RoleAdmin }

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee carries the fields the aggregation engine needs: a flat monthly
// salary and an active flag. Identity and credentials live with the
// authentication collaborator.
type Employee struct {
	ID            string
	Name          string
	Email         string
	Role          Role
	MonthlySalary decimal.Decimal
	IsActive      bool

	// PasswordHash is written and verified by the authentication collaborator
	// (api layer). The engine carries it but never reads it.
	PasswordHash string

	CreatedAt time.Time
}

// =============================================================================
// ATTENDANCE PERIOD
// =============================================================================

// AttendancePeriod is a bounded date range ([StartDate, EndDate], inclusive)
// against which attendance, overtime and reimbursements are recorded.
//
// INVARIANT: at most one period has IsActive = true at any instant.
// PayrollProcessed flips to true exactly once and is never reset.
type AttendancePeriod struct {
	ID               string
	Name             string
	StartDate        Date
	EndDate          Date
	IsActive         bool
	PayrollProcessed bool
	CreatedBy        string
	CreatedAt        time.Time
}

// Range returns the period bounds as a DateRange.
func (p *AttendancePeriod) Range() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}

// =============================================================================
// ATTENDANCE RECORD
// =============================================================================

// AttendanceRecord is one employee's presence on one calendar day.
//
// INVARIANT: unique (UserID, Date). Immutable once created.
// Notes is nil when the employee submitted none; absent notes persist as
// NULL, not empty string.
type AttendanceRecord struct {
	ID          string
	UserID      string
	PeriodID    string
	Date        Date
	CheckInTime time.Time
	Notes       *string
	CreatedAt   time.Time
}

// =============================================================================
// OVERTIME & REIMBURSEMENT CLAIMS
// =============================================================================

type ClaimStatus string

const (
	StatusPending  ClaimStatus = "pending"
	StatusApproved ClaimStatus = "approved"
	StatusRejected ClaimStatus = "rejected"
)

func (s ClaimStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// MaxOvertimeHours caps a single overtime claim.
var MaxOvertimeHours = decimal.NewFromFloat(3.0)

// OvertimeRecord is a claim for extra hours on a specific date.
//
// INVARIANT: unique (UserID, Date); 0 < Hours <= MaxOvertimeHours.
// Only approved records feed payroll totals.
type OvertimeRecord struct {
	ID          string
	UserID      string
	PeriodID    string
	Date        Date
	Hours       decimal.Decimal
	Description string
	Status      ClaimStatus
	CreatedAt   time.Time
}

type ReimbursementCategory string

const (
	CategoryTravel        ReimbursementCategory = "travel"
	CategoryMeals         ReimbursementCategory = "meals"
	CategoryAccommodation ReimbursementCategory = "accommodation"
	CategoryEquipment     ReimbursementCategory = "equipment"
	CategoryTraining      ReimbursementCategory = "training"
	CategoryCommunication ReimbursementCategory = "communication"
	CategoryOther         ReimbursementCategory = "other"
)

var reimbursementCategories = map[ReimbursementCategory]bool{
	CategoryTravel:        true,
	CategoryMeals:         true,
	CategoryAccommodation: true,
	CategoryEquipment:     true,
	CategoryTraining:      true,
	CategoryCommunication: true,
	CategoryOther:         true,
}

func (c ReimbursementCategory) Valid() bool { return reimbursementCategories[c] }

// Reimbursement is an expense claim. Multiple reimbursements per day are
// allowed; there is no date-uniqueness constraint.
//
// INVARIANT: Amount > 0; Category is one of the enumerated set.
type Reimbursement struct {
	ID          string
	UserID      string
	PeriodID    string
	Amount      decimal.Decimal
	Description string
	Category    ReimbursementCategory
	Status      ClaimStatus
	CreatedAt   time.Time
}

// =============================================================================
// PAYROLL
// =============================================================================

// Payroll is the persisted aggregation over exactly one period.
//
// INVARIANT: one payroll per period. Created once by the compiler when the
// period's books close; never mutated thereafter.
type Payroll struct {
	ID                       string
	PeriodID                 string
	TotalEmployees           int
	TotalBaseSalary          decimal.Decimal
	TotalOvertimeAmount      decimal.Decimal
	TotalReimbursementAmount decimal.Decimal
	TotalAmount              decimal.Decimal
	ProcessedBy              string
	CreatedAt                time.Time
}

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
