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
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/clients/*        Client management
  /api/policies/*       Policy management and renewals
  /api/claims/*         Claim lifecycle
  /api/reminders/*      Follow-up reminders
  /api/targets/*        Agent sales targets
  /api/reports/*        Reports and the dashboard
  /api/users/profile    Current user profile
  /api/health           Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. corsOrigin
// is the allowed frontend origin; empty means localhost defaults.
func NewRouter(h *Handler, corsOrigin string) *chi.Mux {
	r := chi.NewRouter()

	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if corsOrigin != "" {
		origins = []string{corsOrigin}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/stats/overview", h.GetClientStats)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
			r.Get("/{id}/policies", h.GetClientPolicies)
		})

		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Get("/stats/overview", h.GetPolicyStats)
			r.Get("/renewal/upcoming", h.GetUpcomingRenewals)
			r.Get("/maturity/list", h.GetMaturedPolicies)
			r.Get("/{id}", h.GetPolicy)
			r.Put("/{id}", h.UpdatePolicy)
			r.Delete("/{id}", h.DeletePolicy)
		})

		// Claim routes
		r.Route("/claims", func(r chi.Router) {
			r.Get("/", h.ListClaims)
			r.Post("/", h.CreateClaim)
			r.Get("/stats/overview", h.GetClaimStats)
			r.Get("/pending/list", h.GetPendingClaims)
			r.Get("/{id}", h.GetClaim)
			r.Put("/{id}", h.UpdateClaim)
			r.Patch("/{id}/status", h.UpdateClaimStatus)
			r.Delete("/{id}", h.DeleteClaim)
		})

		// Reminder routes
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.ListReminders)
			r.Post("/", h.CreateReminder)
			r.Get("/stats/overview", h.GetReminderStats)
			r.Get("/upcoming/{days}", h.GetUpcomingReminders)
			r.Get("/overdue/list", h.GetOverdueReminders)
			r.Get("/{id}", h.GetReminder)
			r.Put("/{id}", h.UpdateReminder)
			r.Patch("/{id}/complete", h.CompleteReminder)
			r.Patch("/{id}/snooze", h.SnoozeReminder)
			r.Delete("/{id}", h.DeleteReminder)
		})

		// Target routes
		r.Route("/targets", func(r chi.Router) {
			r.Get("/", h.ListTargets)
			r.Post("/", h.CreateTarget)
			r.Get("/stats/overview", h.GetTargetStats)
			r.Get("/agent/{agentID}/active", h.GetAgentActiveTargets)
			r.Get("/agent/{agentID}/performance", h.GetAgentPerformance)
			r.Get("/{id}", h.GetTarget)
			r.Put("/{id}", h.UpdateTarget)
			r.Delete("/{id}", h.DeleteTarget)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/policies", h.GetPolicyReport)
			r.Get("/claims", h.GetClaimReport)
			r.Get("/renewals", h.GetRenewalReport)
			r.Get("/targets", h.GetTargetReport)
		})

		// Profile routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})
	})

	return r
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Insurance CRM API is running", nil)
}
