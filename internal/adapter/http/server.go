package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessor runs a single fire-risk assessment.
type Assessor interface {
	Assess(ctx context.Context, query string) (domain.Report, error)
}

// Server exposes the assessment API alongside health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/v1 routes plus /healthz,
// /readyz, and /metrics.
func NewServer(addr string, assessor Assessor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// WriteTimeout covers an assessment waiting on the upstream and
	// narrative timeouts.
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 45 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		logger:   logger,
	}

	mux.HandleFunc("GET /api/v1/assessments", s.handleAssessment)
	mux.HandleFunc("GET /api/v1/reports", s.handleReport)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleAssessment returns the caller-facing assessment contract.
func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	report, ok := s.assess(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report.Assessment.Response())
}

// handleReport returns the full report, including the inputs that were scored.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.assess(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) assess(w http.ResponseWriter, r *http.Request) (domain.Report, bool) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("location query parameter is required"))
		return domain.Report{}, false
	}

	report, err := s.assessor.Assess(r.Context(), location)
	if err != nil {
		status, msg := classify(err)
		s.logger.Warn("assessment failed",
			"location", location,
			"status", status,
			"error", err,
		)
		sharedobs.WriteJSON(w, status, errorBody(msg))
		return domain.Report{}, false
	}
	return report, true
}

// classify maps an assessment error to a status code and a message that
// names the error class without exposing upstream detail. Timeouts are
// wrapped in ErrUpstreamUnavailable, so they are checked first.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "assessment timed out"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadGateway, domain.ErrValidation.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, domain.ErrUpstreamUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
