// package http implements the HTTP transport layer for the service. The
// external presentation layer triggers scans here and consumes the result
// table as JSON or CSV.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mkravets/mr-insight-service/internal/apperrors"
	"github.com/mkravets/mr-insight-service/internal/config"
	"github.com/mkravets/mr-insight-service/internal/domain"
	"github.com/mkravets/mr-insight-service/internal/export"
	"github.com/mkravets/mr-insight-service/internal/service"
	"github.com/mkravets/mr-insight-service/internal/validation"
	"github.com/mkravets/mr-insight-service/pkg/logger/sl"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const exportFilename = "gitlab_jira_scores.csv"

// ScanRunner is the orchestrator surface the transport depends on.
type ScanRunner interface {
	Scan(ctx context.Context, settings service.Settings) (*domain.ScanReport, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	log     *slog.Logger
	cfg     *config.Config
	scanner ScanRunner
}

// NewServer creates a new instance of the HTTP server.
func NewServer(log *slog.Logger, cfg *config.Config, scanner ScanRunner) *Server {
	return &Server{
		log:     log,
		cfg:     cfg,
		scanner: scanner,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", s.postScan)
		r.Post("/scan/export", s.postScanExport)
	})

	return mux
}

// postScan runs the pipeline and responds with the full report. A run that
// succeeds with zero rows is a 200 with an empty table, not an error.
func (s *Server) postScan(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.postScan"

	report, err := s.runScan(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, report)
}

// postScanExport runs the same pipeline and responds with the CSV rendition
// of the row table. Warnings are not part of the persisted format.
func (s *Server) postScanExport(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.postScanExport"

	report, err := s.runScan(r)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))

	if err := export.WriteCSV(w, report.Rows); err != nil {
		s.log.Error("failed to write csv response", sl.Err(err))
	}
}

func (s *Server) runScan(r *http.Request) (*domain.ScanReport, error) {
	var req scanRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		scansTotal.WithLabelValues(scanOutcomeValidationError).Inc()
		return nil, err
	}

	settings := s.settingsFromConfig(req.Assignees)

	start := time.Now()
	report, err := s.scanner.Scan(r.Context(), settings)
	scanDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		scansTotal.WithLabelValues(scanOutcome(err)).Inc()
		return nil, err
	}

	scansTotal.WithLabelValues(scanOutcomeOK).Inc()
	scanRowsTotal.Add(float64(len(report.Rows)))
	scanWarningsTotal.Add(float64(len(report.Warnings)))

	return report, nil
}

// scanOutcome maps a scan failure to its metric label: settings problems are
// validation errors, everything else counts as a run error.
func scanOutcome(err error) string {
	var validationErr *validation.ValidationError

	if errors.Is(err, apperrors.ErrMissingConfig) || errors.As(err, &validationErr) {
		return scanOutcomeValidationError
	}

	return scanOutcomeError
}

// settingsFromConfig assembles per-run connection settings: credentials and
// endpoints come from configuration, the assignee list may be overridden by
// the request body.
func (s *Server) settingsFromConfig(assignees []string) service.Settings {
	if len(assignees) == 0 {
		assignees = s.cfg.Scan.Assignees
	}

	return service.Settings{
		GitLabBaseURL: s.cfg.GitLab.BaseURL,
		GitLabProject: s.cfg.GitLab.Project,
		GitLabToken:   s.cfg.GitLab.Token,
		JiraBaseURL:   s.cfg.Jira.BaseURL,
		JiraUser:      s.cfg.Jira.User,
		JiraToken:     s.cfg.Jira.Token,
		Assignees:     assignees,
	}
}

// respond is a helper function to encode data to JSON and write it to the response.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// decodeAndValidate deserializes a JSON request body into a struct and runs
// validation checks on it. An empty body is accepted as an empty request.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var validationErr *validation.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrMissingConfig):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "invalid request body")
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
