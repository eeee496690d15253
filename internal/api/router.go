package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/bins", func(r chi.Router) {
			r.Get("/", s.handleListBins)
			r.Post("/", s.handleCreateBin)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBin)
				r.Patch("/config", s.handleUpdateBinConfig)
				r.Post("/command", s.handleBinCommand)
				r.Get("/events", s.handleListBinEvents)
			})
		})

		r.Route("/credentials", func(r chi.Router) {
			r.Get("/", s.handleListCredentials)
			r.Post("/", s.handleCreateCredential)
			r.Patch("/{uid}", s.handleUpdateCredential)
		})

		r.Get("/events", s.handleListEvents)
	})

	return r
}

// handleHealth reports server liveness plus the reachability of the
// record store and broker.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if s.database != nil {
		if err := s.database.HealthCheck(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.broker != nil {
		if err := s.broker.HealthCheck(ctx); err != nil {
			checks["mqtt"] = err.Error()
			healthy = false
		} else {
			checks["mqtt"] = "ok"
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
