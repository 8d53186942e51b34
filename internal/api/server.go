// Package api exposes the campaign persistence and reconciliation
// operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"curvefund/internal/domain"
	"curvefund/internal/ledger"
	"curvefund/internal/observability"
	"curvefund/internal/reconcile"
	"curvefund/internal/storage"
)

// Handler contains dependencies and routes. It holds the stores for plain
// persistence endpoints and the reconciliation service for derived reads.
type Handler struct {
	campaigns storage.CampaignStore
	users     storage.UserStore
	svc       *reconcile.Service
	logger    *log.Logger
	router    chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(campaigns storage.CampaignStore, users storage.UserStore, svc *reconcile.Service, logger *log.Logger) *Handler {
	h := &Handler{campaigns: campaigns, users: users, svc: svc, logger: logger}
	r := chi.NewRouter()
	r.Use(metricsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Get("/", h.handleListCampaigns)
			r.Get("/live", h.handleLiveCampaigns)
			r.Get("/{id}", h.handleGetCampaign)
			r.Patch("/{id}", h.handleUpdateCampaign)
			r.Delete("/{id}", h.handleDeleteCampaign)
			r.Get("/{id}/history", h.handleCampaignHistory)
		})
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.handleCreateUser)
			r.Get("/{id}", h.handleGetUser)
		})
	})

	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// writeJSON encodes v with the given status. Encode failures are logged;
// the status line is already on the wire by then.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("api: encode response: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrDuplicateKey):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		http.Error(w, "fee data unavailable", http.StatusBadGateway)
	default:
		h.logger.Printf("api: internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// metricsMiddleware records request counts and latency per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		observability.DefaultMetrics.HTTPRequestsTotal.
			WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		observability.DefaultMetrics.HTTPDuration.
			WithLabelValues(route).Observe(time.Since(started).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// parseTimeRange reads optional from/to RFC3339 query parameters,
// defaulting to the trailing 24 hours.
func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, errors.New("invalid 'from' timestamp")
		}
		from = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, errors.New("invalid 'to' timestamp")
		}
		to = t
	}
	return from, to, nil
}

// statusFilter validates an optional status query parameter.
func statusFilter(raw string) (domain.CampaignStatus, error) {
	if raw == "" {
		return "", nil
	}
	s := domain.CampaignStatus(raw)
	if !s.Valid() {
		return "", errors.New("invalid status")
	}
	return s, nil
}
