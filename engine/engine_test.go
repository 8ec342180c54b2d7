package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	adminAuth = engine.AuthContext{UserID: "admin-1", Role: engine.RoleAdmin, IsActive: true}
	empAuth   = engine.AuthContext{UserID: "emp-1", Role: engine.RoleEmployee, IsActive: true}
)

// newTestEngine builds an engine over the in-memory store with time frozen
// at the given instant.
func newTestEngine(t *testing.T, now time.Time) (*engine.Engine, *store.TxMemory) {
	t.Helper()
	st := store.NewTxMemory()
	return engine.New(st, engine.FixedClock{Instant: now}, nil), st
}

// june2025 freezes time mid-month: Tuesday, June 10, 2025.
func june2025() time.Time {
	return time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)
}

func d(year int, month time.Month, day int) engine.Date {
	return engine.NewDate(year, month, day)
}

// openJunePeriod creates the June 2025 period as admin and returns it.
func openJunePeriod(t *testing.T, eng *engine.Engine) *engine.AttendancePeriod {
	t.Helper()
	period, err := eng.Periods.Create(context.Background(), adminAuth, engine.CreatePeriodInput{
		Name:      "June 2025",
		StartDate: d(2025, time.June, 1),
		EndDate:   d(2025, time.June, 30),
	})
	require.NoError(t, err)
	return period
}

// addEmployee stores an employee record directly, bypassing the admin-only
// Create path, for tests that need salaries in place.
func addEmployee(t *testing.T, st *store.TxMemory, id, name, salary string) {
	t.Helper()
	err := st.SaveEmployee(context.Background(), engine.Employee{
		ID:            id,
		Name:          name,
		Email:         id + "@test.local",
		Role:          engine.RoleEmployee,
		MonthlySalary: engine.MustParseDecimal(salary),
		IsActive:      true,
		CreatedAt:     june2025(),
	})
	require.NoError(t, err)
}
