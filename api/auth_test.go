/*
auth_test.go - Token issuance and verification

Tests for:
- Login against stored bcrypt hashes
- Inactive accounts locked out at login and at verification
- Token expiry under a controlled clock
*/
package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/engine/store"
)

func newTestAuth(t *testing.T, now time.Time) (*Authenticator, *store.TxMemory) {
	t.Helper()
	st := store.NewTxMemory()
	auth := NewAuthenticator(st, []byte("test-secret"), engine.FixedClock{Instant: now})
	return auth, st
}

func saveAccount(t *testing.T, st *store.TxMemory, id, email, password string, active bool) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, st.SaveEmployee(context.Background(), engine.Employee{
		ID:            id,
		Name:          "Test",
		Email:         email,
		Role:          engine.RoleEmployee,
		MonthlySalary: engine.MustParseDecimal("1"),
		IsActive:      active,
		PasswordHash:  hash,
		CreatedAt:     time.Now().UTC(),
	}))
}

func TestLoginAndVerify_RoundTrip(t *testing.T) {
	// GIVEN: A stored account
	// WHEN: Logging in and verifying the issued token
	// THEN: The AuthContext carries the account's id and role

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	auth, st := newTestAuth(t, now)
	saveAccount(t, st, "emp-1", "dina@test.local", "secret", true)

	token, emp, err := auth.Login(context.Background(), "dina@test.local", "secret")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", emp.ID)

	got, err := auth.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.UserID)
	assert.Equal(t, engine.RoleEmployee, got.Role)
	assert.False(t, got.IsAdmin())
}

func TestLogin_InactiveAccount(t *testing.T) {
	auth, st := newTestAuth(t, time.Now().UTC())
	saveAccount(t, st, "emp-1", "dina@test.local", "secret", false)

	_, _, err := auth.Login(context.Background(), "dina@test.local", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_DeactivatedAfterIssuance(t *testing.T) {
	// GIVEN: A valid token for an account deactivated afterwards
	// WHEN: Verifying the still-unexpired token
	// THEN: Rejected; deactivation does not wait for expiry

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	auth, st := newTestAuth(t, now)
	saveAccount(t, st, "emp-1", "dina@test.local", "secret", true)

	token, _, err := auth.Login(context.Background(), "dina@test.local", "secret")
	require.NoError(t, err)

	emp, err := st.GetEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	emp.IsActive = false
	require.NoError(t, st.SaveEmployee(context.Background(), *emp))

	_, err = auth.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	// GIVEN: A token issued at t0 with a 24h TTL
	// WHEN: Verifying 25 hours later
	// THEN: Rejected as expired

	issued := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	st := store.NewTxMemory()
	saveAccount(t, st, "emp-1", "dina@test.local", "secret", true)

	issuer := NewAuthenticator(st, []byte("test-secret"), engine.FixedClock{Instant: issued})
	token, _, err := issuer.Login(context.Background(), "dina@test.local", "secret")
	require.NoError(t, err)

	later := NewAuthenticator(st, []byte("test-secret"),
		engine.FixedClock{Instant: issued.Add(25 * time.Hour)})
	_, err = later.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now().UTC()
	auth, st := newTestAuth(t, now)
	saveAccount(t, st, "emp-1", "dina@test.local", "secret", true)

	token, _, err := auth.Login(context.Background(), "dina@test.local", "secret")
	require.NoError(t, err)

	forged := NewAuthenticator(st, []byte("different-secret"), engine.FixedClock{Instant: now})
	_, err = forged.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
