package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/shoptrack/internal/api/middleware"
	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/internal/metrics"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateJobHandler    http.HandlerFunc
	ListJobsHandler     http.HandlerFunc
	GetJobHandler       http.HandlerFunc
	UpdateJobHandler    http.HandlerFunc
	ChangeStatusHandler http.HandlerFunc
	JobHistoryHandler   http.HandlerFunc
	ImportOrdersHandler http.HandlerFunc

	ListTechniciansHandler  http.HandlerFunc
	CreateTechnicianHandler http.HandlerFunc
	DeleteTechnicianHandler http.HandlerFunc

	DashboardHandler http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public endpoints
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))
		r.Get("/api/v1/jobs/{jobID}/history", orNotImplemented(deps.JobHistoryHandler))

		// Mutating job routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("write"))

			r.Post("/api/v1/jobs", orNotImplemented(deps.CreateJobHandler))
			r.Post("/api/v1/jobs/import", orNotImplemented(deps.ImportOrdersHandler))
			r.Patch("/api/v1/jobs/{jobID}", orNotImplemented(deps.UpdateJobHandler))
			r.Patch("/api/v1/jobs/{jobID}/status", orNotImplemented(deps.ChangeStatusHandler))
		})

		r.Get("/api/v1/technicians", orNotImplemented(deps.ListTechniciansHandler))

		r.Get("/api/v1/dashboard/stats", orNotImplemented(deps.DashboardHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/technicians", orNotImplemented(deps.CreateTechnicianHandler))
			r.Delete("/api/v1/technicians/{techID}", orNotImplemented(deps.DeleteTechnicianHandler))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
