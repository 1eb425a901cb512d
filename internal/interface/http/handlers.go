package http

import (
	"net/http"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/application/query"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth runs all registered health checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// handleReady reports readiness; unlike liveness it consults the checks.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", status.Message)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// handleLive always succeeds while the process is up.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"alive": true})
}

// handleRoot describes the service.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "compita-metrics-hub",
		"uptime":  s.Uptime().Round(time.Second).String(),
		"endpoints": []string{
			"GET /health",
			"GET /api/v1/runs/latest",
			"GET /api/v1/metrics",
			"GET /api/v1/metrics/rankings",
			"GET /api/v1/students/{name}",
			"GET /api/v1/students/{name}/report",
			"GET /api/v1/reports/class",
		},
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS API HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLatestRun returns the header of the most recent archived run.
func (s *Server) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLatestRunHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "archive_disabled", "Run archive is not configured")
		return
	}

	result, err := s.deps.GetLatestRunHandler.Handle(r.Context(), query.GetLatestRunQuery{})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetClassMetrics returns all records of the latest run.
func (s *Server) handleGetClassMetrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetClassMetricsHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "archive_disabled", "Run archive is not configured")
		return
	}

	result, err := s.deps.GetClassMetricsHandler.Handle(r.Context(), query.GetClassMetricsQuery{})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetRankings returns the latest run's top students by overall score.
func (s *Server) handleGetRankings(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetRankingsHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "archive_disabled", "Run archive is not configured")
		return
	}

	q := query.GetRankingsQuery{Limit: getQueryParamInt(r, "limit", 0)}

	result, err := s.deps.GetRankingsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetStudent returns one student's full record from the latest run.
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentMetricsHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "archive_disabled", "Run archive is not configured")
		return
	}

	q := query.GetStudentMetricsQuery{Name: r.PathValue("name")}

	result, err := s.deps.GetStudentMetricsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetStudentReport renders one student's progress report as Markdown.
func (s *Server) handleGetStudentReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentMetricsHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "archive_disabled", "Run archive is not configured")
		return
	}

	q := query.GetStudentMetricsQuery{Name: r.PathValue("name")}

	result, err := s.deps.GetStudentMetricsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	report := s.deps.Markdown.StudentReport(&result.Record)
	writeMarkdown(w, report)
}

// handleGetClassReport renders the class summary report as Markdown.
func (s *Server) handleGetClassReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetClassMetricsHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "archive_disabled", "Run archive is not configured")
		return
	}

	result, err := s.deps.GetClassMetricsHandler.Handle(r.Context(), query.GetClassMetricsQuery{})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	report := s.deps.Markdown.ClassSummary(result.Records)
	writeMarkdown(w, report)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeQueryError maps domain errors onto HTTP status codes.
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("query failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}

// writeMarkdown writes a Markdown document response.
func writeMarkdown(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
