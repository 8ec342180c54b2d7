package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// PAYROLL COMPILATION TESTS
// =============================================================================

func TestPayroll_Compile_PersistsTotals(t *testing.T) {
	// GIVEN: One employee with salary and an approved reimbursement
	// WHEN: Compiling payroll
	// THEN: The persisted payroll matches the totals and marks the period

	eng, st := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	addEmployee(t, st, "emp-1", "Dina", "8000000")

	reimb, err := eng.Claims.SubmitReimbursement(ctx, empAuth, engine.ReimbursementInput{
		Amount:   engine.MustParseDecimal("150000"),
		Category: engine.CategoryTravel,
	})
	require.NoError(t, err)
	require.NoError(t, eng.Claims.ReviewReimbursement(ctx, adminAuth, reimb.ID, engine.StatusApproved))

	payroll, err := eng.Payroll.Compile(ctx, adminAuth, period.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, payroll.TotalEmployees)
	assert.True(t, payroll.TotalAmount.Equal(engine.MustParseDecimal("8150000")))
	assert.Equal(t, adminAuth.UserID, payroll.ProcessedBy)

	stored, err := eng.Payroll.Get(ctx, adminAuth, period.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.ID, stored.ID)

	processed, err := eng.Periods.Get(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, processed.PayrollProcessed)
}

func TestPayroll_Compile_AdminOnly(t *testing.T) {
	eng, _ := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)

	_, err := eng.Payroll.Compile(context.Background(), empAuth, period.ID)
	assert.ErrorIs(t, err, engine.ErrInsufficientPermissions)
}

func TestPayroll_Compile_SecondRunRejected(t *testing.T) {
	// GIVEN: A period already compiled
	// WHEN: Compiling again
	// THEN: ErrPayrollAlreadyProcessed; the stored payroll is unchanged

	eng, st := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	addEmployee(t, st, "emp-1", "Dina", "8000000")

	first, err := eng.Payroll.Compile(ctx, adminAuth, period.ID)
	require.NoError(t, err)

	_, err = eng.Payroll.Compile(ctx, adminAuth, period.ID)
	assert.ErrorIs(t, err, engine.ErrPayrollAlreadyProcessed)

	stored, err := eng.Payroll.Get(ctx, adminAuth, period.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
}

func TestPayroll_Compile_ConcurrentRuns_ExactlyOneWins(t *testing.T) {
	// GIVEN: Ten admins compiling the same period at once
	// WHEN: All calls race through the transactional compare-and-set
	// THEN: Exactly one succeeds; the rest see ErrPayrollAlreadyProcessed

	eng, st := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	addEmployee(t, st, "emp-1", "Dina", "8000000")

	const runs = 10
	var wg sync.WaitGroup
	errs := make([]error, runs)

	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Payroll.Compile(ctx, adminAuth, period.ID)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, engine.ErrPayrollAlreadyProcessed):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, runs-1, conflicts)
}

func TestPayroll_Compile_LateClaimsExcluded(t *testing.T) {
	// GIVEN: A reimbursement still pending when payroll is compiled
	// WHEN: An admin approves it afterwards and the payroll is read back
	// THEN: The persisted totals are frozen at compile time

	eng, st := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	addEmployee(t, st, "emp-1", "Dina", "8000000")

	late, err := eng.Claims.SubmitReimbursement(ctx, empAuth, engine.ReimbursementInput{
		Amount:   engine.MustParseDecimal("999999"),
		Category: engine.CategoryOther,
	})
	require.NoError(t, err)

	payroll, err := eng.Payroll.Compile(ctx, adminAuth, period.ID)
	require.NoError(t, err)

	require.NoError(t, eng.Claims.ReviewReimbursement(ctx, adminAuth, late.ID, engine.StatusApproved))

	stored, err := eng.Payroll.Get(ctx, adminAuth, period.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(payroll.TotalAmount))
}

func TestPayroll_Compile_ClosesPeriod(t *testing.T) {
	// GIVEN: An active period compiled into a payroll
	// WHEN: Reading the period back and submitting new attendance
	// THEN: The period is closed and the submission is rejected

	eng, st := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	addEmployee(t, st, "emp-1", "Dina", "8000000")

	_, err := eng.Payroll.Compile(ctx, adminAuth, period.ID)
	require.NoError(t, err)

	processed, err := eng.Periods.Get(ctx, period.ID)
	require.NoError(t, err)
	assert.False(t, processed.IsActive)

	_, err = eng.Periods.Active(ctx)
	assert.ErrorIs(t, err, engine.ErrNoActivePeriod)

	_, err = eng.Attendance.Submit(ctx, empAuth, d(2025, 6, 11), nil)
	assert.ErrorIs(t, err, engine.ErrNoActivePeriod)
}

func TestPayroll_Get_BeforeCompile(t *testing.T) {
	eng, _ := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)

	_, err := eng.Payroll.Get(context.Background(), adminAuth, period.ID)
	assert.ErrorIs(t, err, engine.ErrPayrollNotFound)
}

func TestPayroll_Compile_UnknownPeriod(t *testing.T) {
	eng, _ := newTestEngine(t, june2025())

	_, err := eng.Payroll.Compile(context.Background(), adminAuth, "missing")
	assert.ErrorIs(t, err, engine.ErrPeriodNotFound)
}

func TestPayroll_Compile_OnClosedPeriod(t *testing.T) {
	// GIVEN: A closed period
	// WHEN: Compiling payroll for it
	// THEN: Succeeds; processing requires single-shot, not an open period

	eng, st := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	addEmployee(t, st, "emp-1", "Dina", "8000000")

	_, err := eng.Periods.Close(ctx, adminAuth, period.ID)
	require.NoError(t, err)

	_, err = eng.Payroll.Compile(ctx, adminAuth, period.ID)
	assert.NoError(t, err)
}
