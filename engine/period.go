/*
period.go - Attendance period lifecycle

PURPOSE:
  Manages the strict lifecycle of attendance periods:

    Draft -> Active -> Closed, with a terminal PayrollProcessed flag
    reachable only from Closed state handling in payroll.go.

  A period is created active by an admin. It stops accepting submissions when
  it is superseded or explicitly closed. Periods are otherwise read-only once
  created: no renaming, no date edits.

THE SINGLE-ACTIVE-PERIOD INVARIANT:
  At most one period is active across the whole system. Creating a second
  active period fails with ErrActivePeriodExists; the existing period is never
  silently deactivated. The application-level check here is advisory; the
  store's partial unique index is what makes the invariant hold under
  concurrent admins (see store/sqlite).

SEE ALSO:
  - attendance.go, claims.go: resolve the active period on every submission
  - payroll.go: flips PayrollProcessed
*/
package engine

import (
	"context"

	"github.com/google/uuid"
)

// =============================================================================
// PERIOD LIFECYCLE MANAGER
// =============================================================================

type Periods struct {
	store Store
	clock Clock
}

func NewPeriods(store Store, clock Clock) *Periods {
	return &Periods{store: store, clock: clock}
}

// CreatePeriodInput carries the admin-supplied fields for a new period.
type CreatePeriodInput struct {
	Name      string
	StartDate Date
	EndDate   Date
}

// Create opens a new active period. Admin-only. Fails with
// ErrActivePeriodExists while another period is active.
func (p *Periods) Create(ctx context.Context, auth AuthContext, in CreatePeriodInput) (*AttendancePeriod, error) {
	if !auth.IsAdmin() {
		return nil, ErrInsufficientPermissions
	}
	if in.Name == "" {
		return nil, invalidf("name", "must not be empty")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, invalidf("start_date", "start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, invalidf("end_date", "must not be before start_date")
	}

	// Advisory check for a friendly error before hitting the constraint.
	// The partial unique index remains the last line of defense.
	if _, err := p.store.ActivePeriod(ctx); err == nil {
		return nil, ErrActivePeriodExists
	}

	period := AttendancePeriod{
		ID:        uuid.NewString(),
		Name:      in.Name,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		IsActive:  true,
		CreatedBy: auth.UserID,
		CreatedAt: p.clock.Now(),
	}
	if err := p.store.CreatePeriod(ctx, period); err != nil {
		return nil, err
	}
	return &period, nil
}

// Active returns the period currently accepting submissions, or
// ErrNoActivePeriod.
func (p *Periods) Active(ctx context.Context) (*AttendancePeriod, error) {
	return p.store.ActivePeriod(ctx)
}

// Get returns a period by id, or ErrPeriodNotFound.
func (p *Periods) Get(ctx context.Context, id string) (*AttendancePeriod, error) {
	return p.store.GetPeriod(ctx, id)
}

// List returns all periods in insertion order.
func (p *Periods) List(ctx context.Context) ([]AttendancePeriod, error) {
	return p.store.ListPeriods(ctx)
}

// Close stops a period from accepting submissions. Admin-only. Safe to call
// on an already-inactive period; ErrPeriodNotFound if the period is missing.
func (p *Periods) Close(ctx context.Context, auth AuthContext, id string) (*AttendancePeriod, error) {
	if !auth.IsAdmin() {
		return nil, ErrInsufficientPermissions
	}
	if err := p.store.DeactivatePeriod(ctx, id); err != nil {
		return nil, err
	}
	return p.store.GetPeriod(ctx, id)
}
