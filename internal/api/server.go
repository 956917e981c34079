// Package api provides the HTTP server for the sheep daemon.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sleepsheep/sheep/internal/app/account"
	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/health"
	"github.com/sleepsheep/sheep/internal/logging"
	"github.com/sleepsheep/sheep/internal/validation"
)

// Version is reported by /api/version. Set at build time.
var Version = "dev"

// Server is the sheep HTTP API server.
type Server struct {
	svc            *account.Service
	log            logging.Logger
	policy         engagement.Policy
	health         *health.Checker
	corsOrigins    []string
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(svc *account.Service, log logging.Logger) *Server {
	return &Server{
		svc:         svc,
		log:         log,
		policy:      engagement.DefaultPolicy(),
		corsOrigins: []string{"*"},
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetPolicy sets the scoring policy used by the /score preview.
func (s *Server) SetPolicy(p engagement.Policy) { s.policy = p }

// SetHealth attaches the health checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigins restricts cross-origin requests. "*" allows any origin.
func (s *Server) SetCORSOrigins(origins []string) {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stages", s.handleStages)
		r.Get("/achievements", s.handleAchievementCatalog)
		r.Post("/score", s.handleScore)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleAccount)
			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handlePutSettings)
			r.Post("/points", s.handleAddPoints)
			r.Get("/sessions", s.handleSessions)
			r.Get("/achievements", s.handleUserAchievements)

			r.Route("/sleep", func(r chi.Router) {
				r.Post("/start", s.handleSleepStart)
				r.Post("/checkin", s.handleSleepCheckIn)
				r.Post("/miss", s.handleSleepMiss)
				r.Post("/snooze", s.handleSleepSnooze)
				r.Post("/end", s.handleSleepEnd)
			})
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoOpenSession), errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSessionOpen), errors.Is(err, domain.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidSettings),
		errors.Is(err, domain.ErrInvalidTimeFormat),
		errors.Is(err, domain.ErrInvalidDateFormat),
		errors.Is(err, domain.ErrUnknownStage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a JSON body into v and validates it. An empty body
// leaves v at its zero value.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	return validation.Struct(v)
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
