/*
errors.go - Centralized error taxonomy for the rule engine

PURPOSE:
  All expected failure conditions in one place. Every validator and engine
  call returns either a success payload or one of these errors; the transport
  layer maps Code(err) to an HTTP status. Only persistence transport failures
  propagate as opaque internal errors.

ERROR CATEGORIES:
  1. Permission errors   - caller role lacks rights
  2. State conflicts     - second active period, duplicate records, payroll rerun
  3. Temporal violations - weekend, future date, outside period bounds
  4. Validation errors   - malformed input, bad ordering, bad amounts

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, engine.ErrAttendanceAlreadyExists) { ... }

  The transport layer uses Code(err) for a stable machine-readable code.

SEE ALSO:
  - store.go: Create methods surface uniqueness violations as these errors
  - api/handlers.go: HTTP status mapping
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or missing input: bad date
	// ordering, non-positive amounts, unsupported category or status.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientPermissions is returned when the caller's role lacks
	// rights for the operation.
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// ErrActivePeriodExists is returned when creating a period while another
	// is still active. The existing period is never silently deactivated.
	ErrActivePeriodExists = errors.New("an active attendance period already exists")

	// ErrNoActivePeriod is returned when a submission finds no period
	// currently accepting records.
	ErrNoActivePeriod = errors.New("no active attendance period")

	// ErrPeriodNotFound is returned when a referenced period doesn't exist.
	ErrPeriodNotFound = errors.New("attendance period not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPayrollNotFound is returned when no payroll has been compiled for
	// the requested period.
	ErrPayrollNotFound = errors.New("payroll not found")

	// ErrAttendanceAlreadyExists is returned when the employee already has an
	// attendance record for that calendar day.
	ErrAttendanceAlreadyExists = errors.New("attendance already submitted for this date")

	// ErrDuplicateOvertime is returned when the employee already has an
	// overtime record for that calendar day.
	ErrDuplicateOvertime = errors.New("overtime already submitted for this date")

	// ErrPayrollAlreadyProcessed is returned when compiling payroll for a
	// period whose payroll has already run.
	ErrPayrollAlreadyProcessed = errors.New("payroll already processed for this period")

	// ErrDateOutsidePeriod is returned when a submission date falls outside
	// the active period's bounds.
	ErrDateOutsidePeriod = errors.New("date outside the active period")

	// ErrWeekendNotAllowed is returned for attendance on Saturday/Sunday.
	ErrWeekendNotAllowed = errors.New("attendance not allowed on weekends")

	// ErrFutureDateNotAllowed is returned for attendance dated after today.
	ErrFutureDateNotAllowed = errors.New("attendance date cannot be in the future")

	// ErrInvalidRange is returned by calendar arithmetic when end < start.
	ErrInvalidRange = errors.New("invalid range: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR CODES - Stable machine-readable codes for the transport layer
// =============================================================================

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrValidation, "VALIDATION_ERROR"},
	{ErrInsufficientPermissions, "INSUFFICIENT_PERMISSIONS"},
	{ErrActivePeriodExists, "ACTIVE_PERIOD_EXISTS"},
	{ErrNoActivePeriod, "NO_ACTIVE_PERIOD"},
	{ErrPeriodNotFound, "PERIOD_NOT_FOUND"},
	{ErrEmployeeNotFound, "EMPLOYEE_NOT_FOUND"},
	{ErrPayrollNotFound, "PAYROLL_NOT_FOUND"},
	{ErrAttendanceAlreadyExists, "ATTENDANCE_ALREADY_EXISTS"},
	{ErrDuplicateOvertime, "DUPLICATE_OVERTIME"},
	{ErrPayrollAlreadyProcessed, "PAYROLL_ALREADY_PROCESSED"},
	{ErrDateOutsidePeriod, "DATE_OUTSIDE_PERIOD"},
	{ErrWeekendNotAllowed, "WEEKEND_NOT_ALLOWED"},
	{ErrFutureDateNotAllowed, "FUTURE_DATE_NOT_ALLOWED"},
	{ErrInvalidRange, "INVALID_RANGE"},
}

// Code returns the stable machine-readable code for an engine error, or
// "INTERNAL" for anything outside the taxonomy.
func Code(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "INTERNAL"
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is caused by the caller's input or
// role, as opposed to system state conflicts or internal failures.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrWeekendNotAllowed) ||
		errors.Is(err, ErrFutureDateNotAllowed) ||
		errors.Is(err, ErrDateOutsidePeriod) ||
		errors.Is(err, ErrNoActivePeriod)
}

// IsConflict reports whether the error is an entity/state conflict
// (409 semantics).
func IsConflict(err error) bool {
	return errors.Is(err, ErrActivePeriodExists) ||
		errors.Is(err, ErrAttendanceAlreadyExists) ||
		errors.Is(err, ErrDuplicateOvertime) ||
		errors.Is(err, ErrPayrollAlreadyProcessed)
}

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPayrollNotFound)
}
