package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE MANAGEMENT
// =============================================================================

type Employees struct {
	store Store
	clock Clock
}

func NewEmployees(store Store, clock Clock) *Employees {
	return &Employees{store: store, clock: clock}
}

// CreateEmployeeInput carries the admin-supplied fields for a new employee.
// PasswordHash is produced by the caller; it is stored opaque here.
type CreateEmployeeInput struct {
	Name          string
	Email         string
	Role          Role
	MonthlySalary decimal.Decimal
	PasswordHash  string
}

// Create registers a new employee. Admin-only.
func (e *Employees) Create(ctx context.Context, auth AuthContext, in CreateEmployeeInput) (*Employee, error) {
	if !auth.IsAdmin() {
		return nil, ErrInsufficientPermissions
	}
	if in.Name == "" {
		return nil, invalidf("name", "must not be empty")
	}
	if in.Role != RoleAdmin && in.Role != RoleEmployee {
		return nil, invalidf("role", "unknown role %q", in.Role)
	}
	if in.MonthlySalary.IsNegative() {
		return nil, invalidf("monthly_salary", "must not be negative")
	}

	emp := Employee{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Email:         in.Email,
		Role:          in.Role,
		MonthlySalary: in.MonthlySalary,
		IsActive:      true,
		PasswordHash:  in.PasswordHash,
		CreatedAt:     e.clock.Now(),
	}
	if err := e.store.SaveEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Get returns an employee by id, or ErrEmployeeNotFound.
func (e *Employees) Get(ctx context.Context, id string) (*Employee, error) {
	return e.store.GetEmployee(ctx, id)
}

// ListActive returns active employees with the given role. Admin-only.
func (e *Employees) ListActive(ctx context.Context, auth AuthContext, role Role) ([]Employee, error) {
	if !auth.IsAdmin() {
		return nil, ErrInsufficientPermissions
	}
	return e.store.ActiveEmployees(ctx, role)
}
