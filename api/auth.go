/*
auth.go - JWT authentication and role middleware

PURPOSE:
  Issues and verifies bearer tokens, and resolves every request to an
  engine.AuthContext before any handler runs. The engine trusts the
  AuthContext it is handed; this file is where that trust is earned.

FLOW:
  POST /api/auth/login  email + password -> bcrypt compare -> signed JWT
  All other /api routes: Authorization: Bearer <token> -> parsed claims ->
  AuthContext injected into the request context.

CLAIMS:
  sub   employee id
  role  admin | employee
  exp   issued-at + TokenTTL

SECURITY NOTE:
  The signing secret comes from configuration (cmd/server). Tokens are
  HMAC-SHA256; rotate the secret to revoke everything at once.

SEE ALSO:
  - handlers.go: Login handler and per-route admin checks
  - engine/types.go: AuthContext, Role
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/attendance-engine/engine"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Authenticator issues and verifies tokens against the employee store.
type Authenticator struct {
	store    engine.EmployeeStore
	secret   []byte
	tokenTTL time.Duration
	clock    engine.Clock
}

// NewAuthenticator creates an Authenticator with the given signing secret.
func NewAuthenticator(store engine.EmployeeStore, secret []byte, clock engine.Clock) *Authenticator {
	return &Authenticator{
		store:    store,
		secret:   secret,
		tokenTTL: DefaultTokenTTL,
		clock:    clock,
	}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies credentials and returns a signed token plus the employee.
// Inactive employees cannot log in.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *engine.Employee, error) {
	emp, err := a.store.GetEmployeeByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, engine.ErrEmployeeNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !emp.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := a.clock.Now()
	claims := tokenClaims{
		Role: string(emp.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, emp, nil
}

// Verify parses a bearer token and resolves it to an AuthContext. The
// employee record is re-read so deactivation takes effect immediately,
// not at token expiry.
func (a *Authenticator) Verify(ctx context.Context, tokenString string) (engine.AuthContext, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock.Now))
	if err != nil || !token.Valid {
		return engine.AuthContext{}, ErrInvalidToken
	}

	emp, err := a.store.GetEmployee(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, engine.ErrEmployeeNotFound) {
			return engine.AuthContext{}, ErrInvalidToken
		}
		return engine.AuthContext{}, err
	}
	if !emp.IsActive {
		return engine.AuthContext{}, ErrInvalidToken
	}

	return engine.AuthContext{
		UserID:   emp.ID,
		Role:     emp.Role,
		IsActive: emp.IsActive,
	}, nil
}

// HashPassword returns a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// AuthFromContext returns the AuthContext injected by RequireAuth.
func AuthFromContext(ctx context.Context) (engine.AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey).(engine.AuthContext)
	return auth, ok
}

// RequireAuth rejects requests without a valid bearer token and injects the
// resolved AuthContext for downstream handlers.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		auth, err := a.Verify(r.Context(), tokenString)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to verify token", err)
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey, auth)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin callers. Must run after RequireAuth.
// The engine re-checks roles on every operation; this just fails fast with
// a clean 403 before any work happens.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, ok := AuthFromContext(r.Context())
		if !ok || !auth.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
