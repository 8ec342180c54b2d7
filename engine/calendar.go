package engine

import (
	"time"
)

// =============================================================================
// DATE - Calendar-day abstraction (timezone-naive, day granularity)
// =============================================================================

// Date is a calendar day. All attendance rules compare calendar dates, never
// instants; the wrapper normalizes to midnight UTC so comparisons stay
// timezone-naive.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic & properties
func (d Date) AddDays(n int) Date       { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Weekday() time.Weekday    { return d.Time.Weekday() }
func (d Date) IsZero() bool             { return d.Time.IsZero() }
func (d Date) String() string           { return d.Time.Format("2006-01-02") }

// IsWeekend reports Saturday/Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkday is a weekday (Mon-Fri), independent of holidays.
func (d Date) IsWorkday() bool { return !d.IsWeekend() }

// IsFuture reports whether d falls strictly after now's calendar day.
func (d Date) IsFuture(now time.Time) bool {
	return d.After(DateOf(now))
}

// =============================================================================
// DATE RANGE - Inclusive [Start, End]
// =============================================================================

type DateRange struct {
	Start Date
	End   Date
}

// Contains reports whether d is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// WorkingDays counts the non-weekend days in [Start, End], inclusive.
// Fails with ErrInvalidRange if End < Start. A single weekday range counts 1;
// an all-weekend range counts 0.
func (r DateRange) WorkingDays() (int, error) {
	if r.End.Before(r.Start) {
		return 0, ErrInvalidRange
	}
	count := 0
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		if d.IsWorkday() {
			count++
		}
	}
	return count, nil
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// =============================================================================
// CLOCK - Injectable current time
// =============================================================================

// Clock supplies the current time. Injected so future-date and period-range
// rules are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }
