/*
seed.go - Demo data loader for development and demonstrations

PURPOSE:

	Populates an empty database with a realistic month of activity: an
	admin, a handful of employees with known passwords, an active period,
	attendance, overtime (including an admin-entered pre-approved one),
	and reimbursements in several review states.

ACCOUNTS:

	admin@acme.test / admin123        (admin)
	dina@acme.test  / password123     (employee)
	eko@acme.test   / password123     (employee)
	fitri@acme.test / password123     (employee)

NOTE:

	Only use on a fresh database in development/demo environments. Seeding
	twice trips the uniqueness constraints and fails.

SEE ALSO:
  - cmd/server/main.go: -seed flag
*/
package api

import (
	"context"
	"fmt"

	"github.com/warp/attendance-engine/engine"
)

// Seed loads the demo dataset through the engine so every record passes the
// same validation as API traffic.
func Seed(ctx context.Context, eng *engine.Engine, clock engine.Clock) error {
	// Bootstrap: the first admin is written directly, there is nobody to
	// authorize the call yet.
	adminHash, err := HashPassword("admin123")
	if err != nil {
		return err
	}
	root := engine.AuthContext{UserID: "seed", Role: engine.RoleAdmin, IsActive: true}

	admin, err := eng.Employees.Create(ctx, root, engine.CreateEmployeeInput{
		Name:          "Ayu Lestari",
		Email:         "admin@acme.test",
		Role:          engine.RoleAdmin,
		MonthlySalary: engine.MustParseDecimal("20000000"),
		PasswordHash:  adminHash,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	adminAuth := engine.AuthContext{UserID: admin.ID, Role: engine.RoleAdmin, IsActive: true}

	staffHash, err := HashPassword("password123")
	if err != nil {
		return err
	}

	type staff struct {
		name, email, salary string
	}
	var employees []engine.Employee
	for _, s := range []staff{
		{"Dina Paramita", "dina@acme.test", "8000000"},
		{"Eko Santoso", "eko@acme.test", "9500000"},
		{"Fitri Handayani", "fitri@acme.test", "7200000"},
	} {
		emp, err := eng.Employees.Create(ctx, adminAuth, engine.CreateEmployeeInput{
			Name:          s.name,
			Email:         s.email,
			Role:          engine.RoleEmployee,
			MonthlySalary: engine.MustParseDecimal(s.salary),
			PasswordHash:  staffHash,
		})
		if err != nil {
			return fmt.Errorf("failed to seed employee %s: %w", s.email, err)
		}
		employees = append(employees, *emp)
	}

	// One period around the current month so submissions made through the
	// API land inside it.
	today := engine.DateOf(clock.Now())
	start := engine.NewDate(today.Time.Year(), today.Time.Month(), 1)
	end := start.AddDays(27)
	for end.Time.Month() == today.Time.Month() {
		end = end.AddDays(1)
	}
	end = end.AddDays(-1)

	if _, err := eng.Periods.Create(ctx, adminAuth, engine.CreatePeriodInput{
		Name:      today.Time.Format("January 2006"),
		StartDate: start,
		EndDate:   end,
	}); err != nil {
		return fmt.Errorf("failed to seed period: %w", err)
	}

	// A week of attendance per employee, skipping weekends. Stop before
	// today so nothing trips the future-date rule.
	for _, emp := range employees {
		auth := engine.AuthContext{UserID: emp.ID, Role: engine.RoleEmployee, IsActive: true}
		days := 0
		for d := start; days < 5 && d.BeforeOrEqual(today); d = d.AddDays(1) {
			if d.IsWeekend() {
				continue
			}
			if _, err := eng.Attendance.Submit(ctx, auth, d, nil); err != nil {
				return fmt.Errorf("failed to seed attendance for %s: %w", emp.Email, err)
			}
			days++
		}
	}

	// Overtime: one claim from Dina that goes through review, and one the
	// admin enters for themselves already approved.
	dina := engine.AuthContext{UserID: employees[0].ID, Role: engine.RoleEmployee, IsActive: true}
	otDate := firstWorkday(start)
	pending, err := eng.Claims.SubmitOvertime(ctx, dina, engine.OvertimeInput{
		Date:        otDate,
		Hours:       engine.MustParseDecimal("2.5"),
		Description: "Month-end report preparation",
	})
	if err != nil {
		return fmt.Errorf("failed to seed overtime: %w", err)
	}

	if _, err := eng.Claims.SubmitOvertime(ctx, adminAuth, engine.OvertimeInput{
		Date:        otDate,
		Hours:       engine.MustParseDecimal("1.5"),
		Description: "Production incident follow-up",
		Status:      engine.StatusApproved,
	}); err != nil {
		return fmt.Errorf("failed to seed approved overtime: %w", err)
	}

	// Approve Dina's claim so payroll has something to price.
	if err := eng.Claims.ReviewOvertime(ctx, adminAuth, pending.ID, engine.StatusApproved); err != nil {
		return fmt.Errorf("failed to approve seeded overtime: %w", err)
	}

	// Reimbursements: one approved, one rejected, one left pending.
	eko := engine.AuthContext{UserID: employees[1].ID, Role: engine.RoleEmployee, IsActive: true}
	approved, err := eng.Claims.SubmitReimbursement(ctx, eko, engine.ReimbursementInput{
		Amount:      engine.MustParseDecimal("150000"),
		Description: "Client visit taxi fare",
		Category:    engine.CategoryTravel,
	})
	if err != nil {
		return fmt.Errorf("failed to seed reimbursement: %w", err)
	}
	if err := eng.Claims.ReviewReimbursement(ctx, adminAuth, approved.ID, engine.StatusApproved); err != nil {
		return err
	}

	rejected, err := eng.Claims.SubmitReimbursement(ctx, eko, engine.ReimbursementInput{
		Amount:      engine.MustParseDecimal("890000"),
		Description: "Mechanical keyboard",
		Category:    engine.CategoryEquipment,
	})
	if err != nil {
		return err
	}
	if err := eng.Claims.ReviewReimbursement(ctx, adminAuth, rejected.ID, engine.StatusRejected); err != nil {
		return err
	}

	fitri := engine.AuthContext{UserID: employees[2].ID, Role: engine.RoleEmployee, IsActive: true}
	if _, err := eng.Claims.SubmitReimbursement(ctx, fitri, engine.ReimbursementInput{
		Amount:      engine.MustParseDecimal("320000"),
		Description: "Team lunch",
		Category:    engine.CategoryMeals,
	}); err != nil {
		return err
	}

	return nil
}

func firstWorkday(d engine.Date) engine.Date {
	for d.IsWeekend() {
		d = d.AddDays(1)
	}
	return d
}
