/*
handlers.go - HTTP API handlers for the attendance and payroll system

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login              Exchange credentials for a token

  Attendance (any authenticated employee):
    POST   /api/attendance              Submit today's (or a given day's) attendance
    GET    /api/attendance              Own attendance for a period
    POST   /api/overtime                Submit overtime claim
    GET    /api/overtime                Own overtime for a period
    POST   /api/reimbursements          Submit reimbursement claim
    GET    /api/reimbursements          Own reimbursements for a period
    GET    /api/summary                 Own attendance summary for a period

  Periods:
    GET    /api/periods                 List periods
    GET    /api/periods/active          Current active period
    POST   /api/periods                 Open a period (admin)
    POST   /api/periods/{id}/close      Close a period (admin)
    GET    /api/periods/{id}/summary    Admin period summary (admin)
    POST   /api/periods/{id}/payroll    Compile payroll (admin)
    GET    /api/periods/{id}/payroll    Compiled payroll (admin)

  Admin:
    GET    /api/employees               List active employees (admin)
    POST   /api/employees               Create employee (admin)
    GET    /api/employees/{id}          Get employee (admin)
    POST   /api/overtime/{id}/review    Approve/reject overtime (admin)
    POST   /api/reimbursements/{id}/review  Approve/reject reimbursement (admin)

REQUEST FLOW:
  1. Parse HTTP request
  2. Resolve AuthContext (middleware)
  3. Call domain logic (engine)
  4. Serialize response
  5. Map engine errors to status codes

ERROR HANDLING:
  Engine errors carry stable codes (engine.Code) and map to HTTP status:
  - 400: Validation, date-rule violations, no active period
  - 401: Missing/invalid token
  - 403: Insufficient role
  - 404: Missing entity
  - 409: Conflicts (duplicate day, second active period, payroll rerun)
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token middleware
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *engine.Engine
	Auth   *Authenticator
	Clock  engine.Clock
}

// NewHandler creates a new handler over the engine.
func NewHandler(eng *engine.Engine, auth *Authenticator, clock engine.Clock) *Handler {
	return &Handler{Engine: eng, Auth: auth, Clock: clock}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges email+password for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	token, emp, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		Employee: toEmployeeDTO(emp),
	})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns active employees, filtered by role.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	role := engine.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = engine.RoleEmployee
	}

	employees, err := h.Engine.Employees.ListActive(r.Context(), auth, role)
	if err != nil {
		writeEngineError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = toEmployeeDTO(&employees[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Engine.Employees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee registers a new employee with login credentials.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	salary, err := decimal.NewFromString(req.MonthlySalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid monthly_salary", err)
		return
	}

	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password must not be empty", nil)
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	emp, err := h.Engine.Employees.Create(r.Context(), auth, engine.CreateEmployeeInput{
		Name:          req.Name,
		Email:         req.Email,
		Role:          engine.Role(req.Role),
		MonthlySalary: salary,
		PasswordHash:  hash,
	})
	if err != nil {
		writeEngineError(w, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns all periods.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Engine.Periods.List(r.Context())
	if err != nil {
		writeEngineError(w, "Failed to list periods", err)
		return
	}

	dtos := make([]PeriodDTO, len(periods))
	for i := range periods {
		dtos[i] = toPeriodDTO(&periods[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetActivePeriod returns the currently active period.
func (h *Handler) GetActivePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Engine.Periods.Active(r.Context())
	if err != nil {
		if errors.Is(err, engine.ErrNoActivePeriod) {
			writeError(w, http.StatusNotFound, "No active period", nil)
			return
		}
		writeEngineError(w, "Failed to get active period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// CreatePeriod opens a new active period.
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := engine.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := engine.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	period, err := h.Engine.Periods.Create(r.Context(), auth, engine.CreatePeriodInput{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeEngineError(w, "Failed to create period", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPeriodDTO(period))
}

// ClosePeriod deactivates a period.
func (h *Handler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	period, err := h.Engine.Periods.Close(r.Context(), auth, chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "Failed to close period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// SubmitAttendance records attendance for the caller.
func (h *Handler) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	// An empty body is fine: date defaults to today.
	var req SubmitAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date := engine.DateOf(h.Clock.Now())
	if req.Date != "" {
		var err error
		date, err = engine.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
	}

	rec, err := h.Engine.Attendance.Submit(r.Context(), auth, date, req.Notes)
	if err != nil {
		writeEngineError(w, "Failed to submit attendance", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttendanceDTO(rec))
}

// ListOwnAttendance returns the caller's attendance for a period.
func (h *Handler) ListOwnAttendance(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	periodID, err := h.resolvePeriodID(r)
	if err != nil {
		writeEngineError(w, "Failed to resolve period", err)
		return
	}

	records, err := h.Engine.Attendance.ListOwn(r.Context(), auth, periodID)
	if err != nil {
		writeEngineError(w, "Failed to list attendance", err)
		return
	}

	dtos := make([]AttendanceDTO, len(records))
	for i := range records {
		dtos[i] = toAttendanceDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CLAIM HANDLERS
// =============================================================================

// SubmitOvertime records an overtime claim for the caller.
func (h *Handler) SubmitOvertime(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	var req SubmitOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	rec, err := h.Engine.Claims.SubmitOvertime(r.Context(), auth, engine.OvertimeInput{
		Date:        date,
		Hours:       decimal.NewFromFloat(req.Hours),
		Description: req.Description,
		Status:      engine.ClaimStatus(req.Status),
	})
	if err != nil {
		writeEngineError(w, "Failed to submit overtime", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOvertimeDTO(rec))
}

// ListOwnOvertime returns the caller's overtime claims for a period.
func (h *Handler) ListOwnOvertime(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	periodID, err := h.resolvePeriodID(r)
	if err != nil {
		writeEngineError(w, "Failed to resolve period", err)
		return
	}

	records, err := h.Engine.Claims.ListOwnOvertime(r.Context(), auth, periodID)
	if err != nil {
		writeEngineError(w, "Failed to list overtime", err)
		return
	}

	dtos := make([]OvertimeDTO, len(records))
	for i := range records {
		dtos[i] = toOvertimeDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReviewOvertime approves or rejects a pending overtime claim.
func (h *Handler) ReviewOvertime(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Engine.Claims.ReviewOvertime(r.Context(), auth,
		chi.URLParam(r, "id"), engine.ClaimStatus(req.Status))
	if err != nil {
		writeEngineError(w, "Failed to review overtime", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// SubmitReimbursement records a reimbursement claim for the caller.
func (h *Handler) SubmitReimbursement(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	var req SubmitReimbursementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	rec, err := h.Engine.Claims.SubmitReimbursement(r.Context(), auth, engine.ReimbursementInput{
		Amount:      amount,
		Description: req.Description,
		Category:    engine.ReimbursementCategory(req.Category),
	})
	if err != nil {
		writeEngineError(w, "Failed to submit reimbursement", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReimbursementDTO(rec))
}

// ListOwnReimbursements returns the caller's reimbursement claims for a period.
func (h *Handler) ListOwnReimbursements(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	periodID, err := h.resolvePeriodID(r)
	if err != nil {
		writeEngineError(w, "Failed to resolve period", err)
		return
	}

	records, err := h.Engine.Claims.ListOwnReimbursements(r.Context(), auth, periodID)
	if err != nil {
		writeEngineError(w, "Failed to list reimbursements", err)
		return
	}

	dtos := make([]ReimbursementDTO, len(records))
	for i := range records {
		dtos[i] = toReimbursementDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReviewReimbursement approves or rejects a pending reimbursement claim.
func (h *Handler) ReviewReimbursement(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Engine.Claims.ReviewReimbursement(r.Context(), auth,
		chi.URLParam(r, "id"), engine.ClaimStatus(req.Status))
	if err != nil {
		writeEngineError(w, "Failed to review reimbursement", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// =============================================================================
// SUMMARY AND PAYROLL HANDLERS
// =============================================================================

// GetOwnSummary returns the caller's attendance summary for a period.
func (h *Handler) GetOwnSummary(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	periodID, err := h.resolvePeriodID(r)
	if err != nil {
		writeEngineError(w, "Failed to resolve period", err)
		return
	}

	summary, err := h.Engine.Summaries.EmployeeAttendance(r.Context(), auth.UserID, periodID)
	if err != nil {
		writeEngineError(w, "Failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, AttendanceSummaryDTO{
		UserID:           summary.UserID,
		PeriodID:         summary.PeriodID,
		AttendanceDays:   summary.AttendanceDays,
		TotalWorkingDays: summary.TotalWorkingDays,
	})
}

// GetPeriodSummary returns the admin summary for a period.
func (h *Handler) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Engine.Summaries.PeriodAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "Failed to build period summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdminSummaryDTO(summary))
}

// CompilePayroll runs payroll for a period. Single-shot: a second call
// returns 409.
func (h *Handler) CompilePayroll(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	payroll, err := h.Engine.Payroll.Compile(r.Context(), auth, chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "Failed to compile payroll", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayrollDTO(payroll))
}

// GetPayroll returns the compiled payroll for a period.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())

	payroll, err := h.Engine.Payroll.Get(r.Context(), auth, chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "Failed to get payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTO(payroll))
}

// =============================================================================
// HELPERS
// =============================================================================

// resolvePeriodID reads ?period_id= and falls back to the active period.
func (h *Handler) resolvePeriodID(r *http.Request) (string, error) {
	if id := r.URL.Query().Get("period_id"); id != "" {
		return id, nil
	}
	period, err := h.Engine.Periods.Active(r.Context())
	if err != nil {
		return "", err
	}
	return period.ID, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps an engine error to HTTP status and the stable code.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInsufficientPermissions):
		status = http.StatusForbidden
	case engine.IsNotFound(err):
		status = http.StatusNotFound
	case engine.IsConflict(err):
		status = http.StatusConflict
	case engine.IsClientError(err):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    engine.Code(err),
		Details: err.Error(),
	})
}
