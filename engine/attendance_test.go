package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// SUBMISSION PIPELINE TESTS
// =============================================================================

func TestAttendance_Submit_Succeeds(t *testing.T) {
	// GIVEN: An active June period, today is Tuesday June 10
	// WHEN: Submitting attendance for today with a note
	// THEN: One record persisted with check-in at the clock's instant

	eng, _ := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	notes := "on-site client work"
	rec, err := eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 10), &notes)
	require.NoError(t, err)

	assert.Equal(t, empAuth.UserID, rec.UserID)
	assert.Equal(t, period.ID, rec.PeriodID)
	assert.Equal(t, "2025-06-10", rec.Date.String())
	assert.Equal(t, june2025(), rec.CheckInTime)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "on-site client work", *rec.Notes)
}

func TestAttendance_Submit_NilNotesStayNil(t *testing.T) {
	// GIVEN: A submission with no notes
	// WHEN: Reading the record back
	// THEN: Notes is nil, not an empty string

	eng, _ := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	_, err := eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 10), nil)
	require.NoError(t, err)

	records, err := eng.Attendance.ListOwn(ctx, empAuth, period.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Notes)
}

func TestAttendance_Submit_NoActivePeriod(t *testing.T) {
	eng, _ := newTestEngine(t, june2025())

	_, err := eng.Attendance.Submit(context.Background(), empAuth, d(2025, time.June, 10), nil)
	assert.ErrorIs(t, err, engine.ErrNoActivePeriod)
}

func TestAttendance_Submit_FutureDateRejected(t *testing.T) {
	// GIVEN: Today is June 10
	// WHEN: Submitting for June 11
	// THEN: Rejected even though the date is inside the period

	eng, _ := newTestEngine(t, june2025())
	openJunePeriod(t, eng)

	_, err := eng.Attendance.Submit(context.Background(), empAuth, d(2025, time.June, 11), nil)
	assert.ErrorIs(t, err, engine.ErrFutureDateNotAllowed)
}

func TestAttendance_Submit_OutsidePeriodRejected(t *testing.T) {
	// GIVEN: Active period covers June only
	// WHEN: Submitting for May 30 (a past workday)
	// THEN: Rejected with ErrDateOutsidePeriod

	eng, _ := newTestEngine(t, june2025())
	openJunePeriod(t, eng)

	_, err := eng.Attendance.Submit(context.Background(), empAuth, d(2025, time.May, 30), nil)
	assert.ErrorIs(t, err, engine.ErrDateOutsidePeriod)
}

func TestAttendance_Submit_WeekendRejected(t *testing.T) {
	// GIVEN: June 7 2025 is a Saturday inside the period
	// WHEN: Submitting attendance for it
	// THEN: Rejected with ErrWeekendNotAllowed

	eng, _ := newTestEngine(t, june2025())
	openJunePeriod(t, eng)

	_, err := eng.Attendance.Submit(context.Background(), empAuth, d(2025, time.June, 7), nil)
	assert.ErrorIs(t, err, engine.ErrWeekendNotAllowed)
}

func TestAttendance_Submit_PeriodBoundariesInclusive(t *testing.T) {
	// GIVEN: A period covering a past week, Mon June 2 through Fri June 6
	// WHEN: Submitting on both boundary dates
	// THEN: Both succeed

	eng, _ := newTestEngine(t, june2025())
	ctx := context.Background()

	_, err := eng.Periods.Create(ctx, adminAuth, engine.CreatePeriodInput{
		Name:      "first week",
		StartDate: d(2025, time.June, 2),
		EndDate:   d(2025, time.June, 6),
	})
	require.NoError(t, err)

	_, err = eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 2), nil)
	assert.NoError(t, err)
	_, err = eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 6), nil)
	assert.NoError(t, err)
}

func TestAttendance_Submit_DuplicateDayRejected(t *testing.T) {
	// GIVEN: Attendance already recorded for June 10
	// WHEN: Submitting June 10 again
	// THEN: Rejected, and exactly one record exists

	eng, _ := newTestEngine(t, june2025())
	period := openJunePeriod(t, eng)
	ctx := context.Background()

	_, err := eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 10), nil)
	require.NoError(t, err)

	_, err = eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 10), nil)
	assert.ErrorIs(t, err, engine.ErrAttendanceAlreadyExists)

	records, err := eng.Attendance.ListOwn(ctx, empAuth, period.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendance_Submit_SameDayDifferentUsers(t *testing.T) {
	// GIVEN: One employee recorded June 10
	// WHEN: Another employee records the same day
	// THEN: Both succeed; uniqueness is per user

	eng, _ := newTestEngine(t, june2025())
	openJunePeriod(t, eng)
	ctx := context.Background()

	other := engine.AuthContext{UserID: "emp-2", Role: engine.RoleEmployee, IsActive: true}

	_, err := eng.Attendance.Submit(ctx, empAuth, d(2025, time.June, 10), nil)
	require.NoError(t, err)
	_, err = eng.Attendance.Submit(ctx, other, d(2025, time.June, 10), nil)
	assert.NoError(t, err)
}

func TestAttendance_Submit_ZeroDateRejected(t *testing.T) {
	eng, _ := newTestEngine(t, june2025())
	openJunePeriod(t, eng)

	_, err := eng.Attendance.Submit(context.Background(), empAuth, engine.Date{}, nil)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestAttendance_ListOwn_UnknownPeriod(t *testing.T) {
	eng, _ := newTestEngine(t, june2025())

	_, err := eng.Attendance.ListOwn(context.Background(), empAuth, "nope")
	assert.ErrorIs(t, err, engine.ErrPeriodNotFound)
}
