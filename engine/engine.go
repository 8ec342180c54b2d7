package engine

// Engine bundles the rule-engine components over one store and one clock.
// The transport layer holds an Engine and nothing else.
type Engine struct {
	Periods    *Periods
	Attendance *Attendance
	Claims     *Claims
	Employees  *Employees
	Summaries  *Summaries
	Payroll    *PayrollCompiler
}

// New wires the components. Rate defaults to StandardRate when nil.
func New(store TxStore, clock Clock, rate RatePolicy) *Engine {
	if rate == nil {
		rate = StandardRate()
	}
	summaries := NewSummaries(store, rate)
	return &Engine{
		Periods:    NewPeriods(store, clock),
		Attendance: NewAttendance(store, clock),
		Claims:     NewClaims(store, clock),
		Employees:  NewEmployees(store, clock),
		Summaries:  summaries,
		Payroll:    NewPayrollCompiler(store, clock, summaries),
	}
}
