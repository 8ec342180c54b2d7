/*
handlers_test.go - HTTP-level tests through the real router

Tests for:
- Login and token verification
- Role gates on admin routes
- Attendance submission and conflict mapping
- Period lifecycle and single-shot payroll over HTTP
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// testNow freezes the server clock at Tuesday, June 10, 2025.
var testNow = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := engine.FixedClock{Instant: testNow}
	eng := engine.New(store, clock, nil)
	auth := NewAuthenticator(store, []byte("test-secret"), clock)
	handler := NewHandler(eng, auth, clock)

	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)

	// Two known accounts.
	seedAccount(t, store, "admin-1", "Ayu", "admin@test.local", engine.RoleAdmin, "admin-pass")
	seedAccount(t, store, "emp-1", "Dina", "dina@test.local", engine.RoleEmployee, "emp-pass")

	return server, eng
}

func seedAccount(t *testing.T, store *sqlite.Store, id, name, email string, role engine.Role, password string) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, store.SaveEmployee(context.Background(), engine.Employee{
		ID:            id,
		Name:          name,
		Email:         email,
		Role:          role,
		MonthlySalary: engine.MustParseDecimal("8000000"),
		IsActive:      true,
		PasswordHash:  hash,
		CreatedAt:     testNow,
	}))
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	status, body := doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, "login failed: %s", body)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req, err := http.NewRequest(method, server.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

func openPeriod(t *testing.T, server *httptest.Server, adminToken string) PeriodDTO {
	t.Helper()
	status, body := doJSON(t, server, http.MethodPost, "/api/periods", adminToken, CreatePeriodRequest{
		Name:      "June 2025",
		StartDate: "2025-06-01",
		EndDate:   "2025-06-30",
	})
	require.Equal(t, http.StatusCreated, status, "create period failed: %s", body)

	var dto PeriodDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	return dto
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Code
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestLogin_WrongPassword(t *testing.T) {
	server, _ := newTestServer(t)

	status, _ := doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Email: "dina@test.local", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogin_UnknownEmail(t *testing.T) {
	server, _ := newTestServer(t)

	status, _ := doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Email: "ghost@test.local", Password: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuth_MissingToken(t *testing.T) {
	server, _ := newTestServer(t)

	status, _ := doJSON(t, server, http.MethodGet, "/api/periods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuth_GarbageToken(t *testing.T) {
	server, _ := newTestServer(t)

	status, _ := doJSON(t, server, http.MethodGet, "/api/periods", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuth_EmployeeHittingAdminRoute(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, "dina@test.local", "emp-pass")

	status, _ := doJSON(t, server, http.MethodPost, "/api/periods", token, CreatePeriodRequest{
		Name:      "June 2025",
		StartDate: "2025-06-01",
		EndDate:   "2025-06-30",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

// =============================================================================
// ATTENDANCE OVER HTTP
// =============================================================================

func TestAttendanceFlow(t *testing.T) {
	// GIVEN: An open period and a logged-in employee
	// WHEN: Submitting attendance twice for the same day
	// THEN: 201 then 409 with the stable conflict code

	server, _ := newTestServer(t)
	admin := login(t, server, "admin@test.local", "admin-pass")
	emp := login(t, server, "dina@test.local", "emp-pass")

	openPeriod(t, server, admin)

	status, body := doJSON(t, server, http.MethodPost, "/api/attendance", emp,
		SubmitAttendanceRequest{Date: "2025-06-10"})
	require.Equal(t, http.StatusCreated, status, "submit failed: %s", body)

	var rec AttendanceDTO
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, "emp-1", rec.UserID)
	assert.Equal(t, "2025-06-10", rec.Date)

	status, body = doJSON(t, server, http.MethodPost, "/api/attendance", emp,
		SubmitAttendanceRequest{Date: "2025-06-10"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ATTENDANCE_ALREADY_EXISTS", errorCode(t, body))
}

func TestAttendance_DefaultsToToday(t *testing.T) {
	// GIVEN: No date in the request body
	// WHEN: Submitting
	// THEN: The record lands on the frozen clock's day

	server, _ := newTestServer(t)
	admin := login(t, server, "admin@test.local", "admin-pass")
	emp := login(t, server, "dina@test.local", "emp-pass")

	openPeriod(t, server, admin)

	status, body := doJSON(t, server, http.MethodPost, "/api/attendance", emp,
		SubmitAttendanceRequest{})
	require.Equal(t, http.StatusCreated, status, "submit failed: %s", body)

	var rec AttendanceDTO
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, "2025-06-10", rec.Date)
}

func TestAttendance_WeekendMapsToBadRequest(t *testing.T) {
	server, _ := newTestServer(t)
	admin := login(t, server, "admin@test.local", "admin-pass")
	emp := login(t, server, "dina@test.local", "emp-pass")

	openPeriod(t, server, admin)

	status, body := doJSON(t, server, http.MethodPost, "/api/attendance", emp,
		SubmitAttendanceRequest{Date: "2025-06-07"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "WEEKEND_NOT_ALLOWED", errorCode(t, body))
}

// =============================================================================
// PERIOD AND PAYROLL OVER HTTP
// =============================================================================

func TestPeriod_SecondActiveConflicts(t *testing.T) {
	server, _ := newTestServer(t)
	admin := login(t, server, "admin@test.local", "admin-pass")

	openPeriod(t, server, admin)

	status, body := doJSON(t, server, http.MethodPost, "/api/periods", admin, CreatePeriodRequest{
		Name:      "July 2025",
		StartDate: "2025-07-01",
		EndDate:   "2025-07-31",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ACTIVE_PERIOD_EXISTS", errorCode(t, body))
}

func TestPayroll_SingleShotOverHTTP(t *testing.T) {
	// GIVEN: An open period with an approved overtime claim
	// WHEN: Compiling payroll twice
	// THEN: 201 then 409; GET returns the first compilation

	server, _ := newTestServer(t)
	admin := login(t, server, "admin@test.local", "admin-pass")
	emp := login(t, server, "dina@test.local", "emp-pass")

	period := openPeriod(t, server, admin)

	status, body := doJSON(t, server, http.MethodPost, "/api/overtime", emp,
		SubmitOvertimeRequest{Date: "2025-06-09", Hours: 2, Description: "release"})
	require.Equal(t, http.StatusCreated, status, "overtime failed: %s", body)

	var ot OvertimeDTO
	require.NoError(t, json.Unmarshal(body, &ot))

	status, _ = doJSON(t, server, http.MethodPost,
		fmt.Sprintf("/api/overtime/%s/review", ot.ID), admin, ReviewRequest{Status: "approved"})
	require.Equal(t, http.StatusOK, status)

	path := fmt.Sprintf("/api/periods/%s/payroll", period.ID)

	status, body = doJSON(t, server, http.MethodPost, path, admin, nil)
	require.Equal(t, http.StatusCreated, status, "compile failed: %s", body)

	var first PayrollDTO
	require.NoError(t, json.Unmarshal(body, &first))
	assert.Equal(t, 1, first.TotalEmployees)

	status, body = doJSON(t, server, http.MethodPost, path, admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PAYROLL_ALREADY_PROCESSED", errorCode(t, body))

	status, body = doJSON(t, server, http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, status)

	var stored PayrollDTO
	require.NoError(t, json.Unmarshal(body, &stored))
	assert.Equal(t, first.ID, stored.ID)
}

// =============================================================================
// SEED TEST
// =============================================================================

func TestSeed_LoadsCoherentDataset(t *testing.T) {
	// GIVEN: A fresh store
	// WHEN: Seeding demo data
	// THEN: Accounts log in and the active period carries records

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := engine.FixedClock{Instant: testNow}
	eng := engine.New(store, clock, nil)
	require.NoError(t, Seed(context.Background(), eng, clock))

	auth := NewAuthenticator(store, []byte("test-secret"), clock)
	_, admin, err := auth.Login(context.Background(), "admin@acme.test", "admin123")
	require.NoError(t, err)
	assert.Equal(t, engine.RoleAdmin, admin.Role)

	period, err := eng.Periods.Active(context.Background())
	require.NoError(t, err)

	summary, err := eng.Summaries.PeriodAdmin(context.Background(), period.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalEmployees)
	assert.Equal(t, 3, summary.EmployeesWithAttendance)

	totals, err := eng.Summaries.Totals(context.Background(), period.ID)
	require.NoError(t, err)
	assert.True(t, totals.TotalOvertimeAmount.IsPositive(),
		"approved seeded overtime should be priced")
}
