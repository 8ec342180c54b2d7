package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// WORKING DAY TESTS
// =============================================================================

func TestDateRange_WorkingDays_FullMonth(t *testing.T) {
	// GIVEN: January 2024 (starts on a Monday, 31 days, 8 weekend days)
	// WHEN: Counting working days
	// THEN: 23

	r := engine.DateRange{
		Start: engine.NewDate(2024, time.January, 1),
		End:   engine.NewDate(2024, time.January, 31),
	}

	days, err := r.WorkingDays()
	require.NoError(t, err)
	assert.Equal(t, 23, days)
}

func TestDateRange_WorkingDays_SingleWorkday(t *testing.T) {
	// GIVEN: A range of exactly one weekday
	// WHEN: Counting working days
	// THEN: 1

	wed := engine.NewDate(2025, time.June, 11)
	r := engine.DateRange{Start: wed, End: wed}

	days, err := r.WorkingDays()
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestDateRange_WorkingDays_WeekendOnly(t *testing.T) {
	// GIVEN: A Saturday-Sunday range
	// WHEN: Counting working days
	// THEN: 0

	r := engine.DateRange{
		Start: engine.NewDate(2025, time.June, 14),
		End:   engine.NewDate(2025, time.June, 15),
	}

	days, err := r.WorkingDays()
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestDateRange_WorkingDays_InvertedRange(t *testing.T) {
	// GIVEN: End before start
	// WHEN: Counting working days
	// THEN: ErrInvalidRange

	r := engine.DateRange{
		Start: engine.NewDate(2025, time.June, 30),
		End:   engine.NewDate(2025, time.June, 1),
	}

	_, err := r.WorkingDays()
	assert.ErrorIs(t, err, engine.ErrInvalidRange)
}

// =============================================================================
// DATE SEMANTICS
// =============================================================================

func TestDate_IsWeekend(t *testing.T) {
	assert.True(t, engine.NewDate(2025, time.June, 14).IsWeekend())  // Saturday
	assert.True(t, engine.NewDate(2025, time.June, 15).IsWeekend())  // Sunday
	assert.False(t, engine.NewDate(2025, time.June, 16).IsWeekend()) // Monday
}

func TestDate_IsFuture_DayGranularity(t *testing.T) {
	// GIVEN: now is mid-day June 10
	// WHEN: Checking the same calendar day at a later wall-clock time
	// THEN: Not future; only June 11 onward is

	now := time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)

	assert.False(t, engine.NewDate(2025, time.June, 10).IsFuture(now))
	assert.False(t, engine.NewDate(2025, time.June, 9).IsFuture(now))
	assert.True(t, engine.NewDate(2025, time.June, 11).IsFuture(now))
}

func TestDateRange_Contains_Boundaries(t *testing.T) {
	r := engine.DateRange{
		Start: engine.NewDate(2025, time.June, 1),
		End:   engine.NewDate(2025, time.June, 30),
	}

	assert.True(t, r.Contains(engine.NewDate(2025, time.June, 1)))
	assert.True(t, r.Contains(engine.NewDate(2025, time.June, 30)))
	assert.False(t, r.Contains(engine.NewDate(2025, time.May, 31)))
	assert.False(t, r.Contains(engine.NewDate(2025, time.July, 1)))
}

func TestParseDate(t *testing.T) {
	date, err := engine.ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", date.String())

	_, err = engine.ParseDate("10/06/2025")
	assert.Error(t, err)
}
