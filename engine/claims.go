/*
claims.go - Overtime and reimbursement claim validation

PURPOSE:
  Validates overtime and reimbursement submissions against the active period
  and per-record rules, and handles the admin approval transitions that decide
  which claims feed payroll totals.

OVERTIME RULES:
  - Date within the active period's bounds (weekends allowed - overtime is
    exactly the work that happens outside normal schedules)
  - 0 < hours <= MaxOvertimeHours
  - Unique (user, date); the store's index catches concurrent duplicates
  - New records default to pending. Pre-approved status is an allowed explicit
    input only for admin callers (seed/admin paths).

REIMBURSEMENT RULES:
  - Amount > 0, category from the enumerated set
  - No date-uniqueness: multiple reimbursements per day are fine

Both claim kinds are scoped to the active period at creation time and never
move between periods.
*/
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CLAIM VALIDATOR
// =============================================================================

type Claims struct {
	store Store
	clock Clock
}

func NewClaims(store Store, clock Clock) *Claims {
	return &Claims{store: store, clock: clock}
}

// OvertimeInput carries an overtime submission. Status is honored only for
// admin callers; everyone else gets pending.
type OvertimeInput struct {
	Date        Date
	Hours       decimal.Decimal
	Description string
	Status      ClaimStatus
}

// SubmitOvertime validates and persists one overtime claim for the caller.
func (c *Claims) SubmitOvertime(ctx context.Context, auth AuthContext, in OvertimeInput) (*OvertimeRecord, error) {
	if in.Date.IsZero() {
		return nil, invalidf("overtime_date", "is required")
	}
	if !in.Hours.IsPositive() {
		return nil, invalidf("hours_worked", "must be greater than zero")
	}
	if in.Hours.GreaterThan(MaxOvertimeHours) {
		return nil, invalidf("hours_worked", "must not exceed %s", MaxOvertimeHours)
	}

	period, err := c.store.ActivePeriod(ctx)
	if err != nil {
		return nil, err
	}
	if !period.Range().Contains(in.Date) {
		return nil, ErrDateOutsidePeriod
	}

	status := StatusPending
	if in.Status != "" && in.Status != StatusPending {
		if !auth.IsAdmin() {
			return nil, ErrInsufficientPermissions
		}
		if !in.Status.Valid() {
			return nil, invalidf("status", "unknown status %q", in.Status)
		}
		status = in.Status
	}

	existing, err := c.store.OvertimeByUser(ctx, auth.UserID, period.ID)
	if err != nil {
		return nil, err
	}
	for _, rec := range existing {
		if rec.Date.Equal(in.Date) {
			return nil, ErrDuplicateOvertime
		}
	}

	rec := OvertimeRecord{
		ID:          uuid.NewString(),
		UserID:      auth.UserID,
		PeriodID:    period.ID,
		Date:        in.Date,
		Hours:       in.Hours,
		Description: in.Description,
		Status:      status,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.store.CreateOvertime(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReimbursementInput carries a reimbursement submission.
type ReimbursementInput struct {
	Amount      decimal.Decimal
	Description string
	Category    ReimbursementCategory
}

// SubmitReimbursement validates and persists one reimbursement claim for the
// caller. Always created pending.
func (c *Claims) SubmitReimbursement(ctx context.Context, auth AuthContext, in ReimbursementInput) (*Reimbursement, error) {
	if !in.Amount.IsPositive() {
		return nil, invalidf("amount", "must be greater than zero")
	}
	if !in.Category.Valid() {
		return nil, invalidf("category", "unknown category %q", in.Category)
	}

	period, err := c.store.ActivePeriod(ctx)
	if err != nil {
		return nil, err
	}

	rec := Reimbursement{
		ID:          uuid.NewString(),
		UserID:      auth.UserID,
		PeriodID:    period.ID,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Status:      StatusPending,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.store.CreateReimbursement(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// =============================================================================
// APPROVAL TRANSITIONS (admin-only)
// =============================================================================

// ReviewOvertime sets an overtime claim's status to approved or rejected.
func (c *Claims) ReviewOvertime(ctx context.Context, auth AuthContext, id string, status ClaimStatus) error {
	if !auth.IsAdmin() {
		return ErrInsufficientPermissions
	}
	if status != StatusApproved && status != StatusRejected {
		return invalidf("status", "must be approved or rejected")
	}
	return c.store.SetOvertimeStatus(ctx, id, status)
}

// ReviewReimbursement sets a reimbursement's status to approved or rejected.
func (c *Claims) ReviewReimbursement(ctx context.Context, auth AuthContext, id string, status ClaimStatus) error {
	if !auth.IsAdmin() {
		return ErrInsufficientPermissions
	}
	if status != StatusApproved && status != StatusRejected {
		return invalidf("status", "must be approved or rejected")
	}
	return c.store.SetReimbursementStatus(ctx, id, status)
}

// ListOwnOvertime returns the caller's overtime claims in a period.
func (c *Claims) ListOwnOvertime(ctx context.Context, auth AuthContext, periodID string) ([]OvertimeRecord, error) {
	if _, err := c.store.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	return c.store.OvertimeByUser(ctx, auth.UserID, periodID)
}

// ListOwnReimbursements returns the caller's reimbursements in a period.
func (c *Claims) ListOwnReimbursements(ctx context.Context, auth AuthContext, periodID string) ([]Reimbursement, error) {
	if _, err := c.store.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	return c.store.ReimbursementsByUser(ctx, auth.UserID, periodID)
}
