// Package server exposes the ledger and group services as a JSON HTTP
// API. Translation of service errors to status codes lives here and
// nowhere else.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/service"
)

// Server routes HTTP requests onto the core services.
type Server struct {
	ledger  *service.LedgerService
	groups  *service.GroupService
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// New creates a Server with all routes registered.
func New(ledger *service.LedgerService, groups *service.GroupService, m *metrics.Metrics) *Server {
	s := &Server{ledger: ledger, groups: groups, metrics: m, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /users", s.handleCreateUser)
	s.mux.HandleFunc("POST /groups", s.handleCreateGroup)
	s.mux.HandleFunc("GET /groups/{groupID}", s.handleGetGroup)
	s.mux.HandleFunc("POST /groups/{groupID}/members", s.handleAddMember)

	s.mux.HandleFunc("POST /groups/{groupID}/expenses", s.handleCreateExpense)
	s.mux.HandleFunc("GET /groups/{groupID}/expenses", s.handleListExpenses)
	s.mux.HandleFunc("GET /groups/{groupID}/expenses/balances", s.handleGetBalances)
	s.mux.HandleFunc("POST /groups/{groupID}/settle", s.handleSettle)
	s.mux.HandleFunc("POST /groups/{groupID}/simplify", s.handleSimplify)
	s.mux.HandleFunc("GET /groups/{groupID}/settlements", s.handleListSettlements)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", m.Handler())

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(s.metricsMiddleware(s.mux))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs all incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// metricsMiddleware records request latency by route pattern and
// status.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the core error taxonomy onto status codes:
// validation 400, not found 404, repository 503, anything else 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	var nerr *service.NotFoundError
	var rerr *service.RepositoryError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		writeError(w, http.StatusNotFound, nerr.Error())
	case errors.As(err, &rerr):
		slog.Error("repository failure", "error", rerr)
		writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		slog.Error("unexpected failure", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
