/*
attendance.go - Attendance submission validation

PURPOSE:
  Validates a single attendance submission against the active period and
  existing records, then persists exactly one record. No partial writes on
  any failure path.

VALIDATION PIPELINE (ordered, short-circuit on first failure):
  1. Resolve the active period          -> ErrNoActivePeriod
  2. Date after today                   -> ErrFutureDateNotAllowed
  3. Date outside [start, end]          -> ErrDateOutsidePeriod
  4. Date on Saturday/Sunday            -> ErrWeekendNotAllowed
  5. (user, date) already recorded      -> ErrAttendanceAlreadyExists

  Range checks run before the duplicate check on purpose: the duplicate check
  is the only one that costs a storage read, and its ordering is load-bearing
  for the error a caller sees.

DUPLICATES UNDER CONCURRENCY:
  Step 5 reads existing records, which is race-prone on its own. The store's
  unique (user_id, attendance_date) index catches the race; CreateAttendance
  surfaces it as the same ErrAttendanceAlreadyExists.

SEE ALSO:
  - calendar.go: the temporal predicates
  - store.go: the uniqueness contract
*/
package engine

import (
	"context"

	"github.com/google/uuid"
)

// =============================================================================
// ATTENDANCE VALIDATOR
// =============================================================================

type Attendance struct {
	store Store
	clock Clock
}

func NewAttendance(store Store, clock Clock) *Attendance {
	return &Attendance{store: store, clock: clock}
}

// Submit validates and persists one attendance record for the caller.
// CheckInTime is the clock's time-of-day at submission. Notes may be nil and
// stays nil; absent notes are persisted as NULL, not empty string.
func (a *Attendance) Submit(ctx context.Context, auth AuthContext, date Date, notes *string) (*AttendanceRecord, error) {
	if date.IsZero() {
		return nil, invalidf("attendance_date", "is required")
	}

	period, err := a.store.ActivePeriod(ctx)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	if date.IsFuture(now) {
		return nil, ErrFutureDateNotAllowed
	}
	if !period.Range().Contains(date) {
		return nil, ErrDateOutsidePeriod
	}
	if date.IsWeekend() {
		return nil, ErrWeekendNotAllowed
	}

	existing, err := a.store.AttendanceByUser(ctx, auth.UserID, period.ID)
	if err != nil {
		return nil, err
	}
	for _, rec := range existing {
		if rec.Date.Equal(date) {
			return nil, ErrAttendanceAlreadyExists
		}
	}

	rec := AttendanceRecord{
		ID:          uuid.NewString(),
		UserID:      auth.UserID,
		PeriodID:    period.ID,
		Date:        date,
		CheckInTime: now,
		Notes:       notes,
		CreatedAt:   now,
	}
	if err := a.store.CreateAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListOwn returns the caller's attendance records in the given period.
func (a *Attendance) ListOwn(ctx context.Context, auth AuthContext, periodID string) ([]AttendanceRecord, error) {
	if _, err := a.store.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	return a.store.AttendanceByUser(ctx, auth.UserID, periodID)
}
