/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for frontend
  5. RequireAuth: Bearer token -> AuthContext (all routes except login)
  6. RequireAdmin: Role gate on admin route groups

ROUTE GROUPS:
  /api/auth/login       Public
  /api/attendance/*     Authenticated employees
  /api/overtime/*       Authenticated employees (review: admin)
  /api/reimbursements/* Authenticated employees (review: admin)
  /api/periods/*        Reads authenticated; writes admin
  /api/employees/*      Admin

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			// Attendance
			r.Route("/attendance", func(r chi.Router) {
				r.Post("/", h.SubmitAttendance)
				r.Get("/", h.ListOwnAttendance)
			})

			// Overtime claims
			r.Route("/overtime", func(r chi.Router) {
				r.Post("/", h.SubmitOvertime)
				r.Get("/", h.ListOwnOvertime)
				r.With(RequireAdmin).Post("/{id}/review", h.ReviewOvertime)
			})

			// Reimbursement claims
			r.Route("/reimbursements", func(r chi.Router) {
				r.Post("/", h.SubmitReimbursement)
				r.Get("/", h.ListOwnReimbursements)
				r.With(RequireAdmin).Post("/{id}/review", h.ReviewReimbursement)
			})

			// Own summary
			r.Get("/summary", h.GetOwnSummary)

			// Periods: reads for everyone, writes for admins
			r.Route("/periods", func(r chi.Router) {
				r.Get("/", h.ListPeriods)
				r.Get("/active", h.GetActivePeriod)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Post("/", h.CreatePeriod)
					r.Post("/{id}/close", h.ClosePeriod)
					r.Get("/{id}/summary", h.GetPeriodSummary)
					r.Post("/{id}/payroll", h.CompilePayroll)
					r.Get("/{id}/payroll", h.GetPayroll)
				})
			})

			// Employee management
			r.Route("/employees", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
			})
		})
	})

	return r
}
