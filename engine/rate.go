package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RATE POLICY - Injected overtime pricing
// =============================================================================

// RatePolicy derives the monetary value of approved overtime hours from an
// employee's monthly salary. The formula is configured, not computed by the
// aggregation engine.
type RatePolicy interface {
	// OvertimePay prices hours of overtime for an employee with the given
	// flat monthly salary.
	OvertimePay(monthlySalary, hours decimal.Decimal) decimal.Decimal
}

// MonthlyDivisorRate derives an hourly rate by dividing the monthly salary by
// a fixed number of working hours, then pays overtime at that rate times a
// multiplier.
type MonthlyDivisorRate struct {
	// HoursPerMonth is the divisor turning a monthly salary into an hourly
	// rate. 173 is the usual figure (40 h/week x 52 weeks / 12 months).
	HoursPerMonth decimal.Decimal

	// Multiplier scales the hourly rate for overtime. 1 means straight time.
	Multiplier decimal.Decimal
}

func (r MonthlyDivisorRate) OvertimePay(monthlySalary, hours decimal.Decimal) decimal.Decimal {
	if r.HoursPerMonth.IsZero() {
		return decimal.Zero
	}
	hourly := monthlySalary.Div(r.HoursPerMonth)
	return hourly.Mul(r.Multiplier).Mul(hours)
}

// StandardRate is the default policy: salary/173 per hour, straight time.
func StandardRate() RatePolicy {
	return MonthlyDivisorRate{
		HoursPerMonth: decimal.NewFromInt(173),
		Multiplier:    decimal.NewFromInt(1),
	}
}
