package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockcast/app"
	"stockcast/domain/core"
	"stockcast/internal/errors"
	"stockcast/ports"
)

// Server is the JSON API over the shortage alert service.
type Server struct {
	router  *chi.Mux
	service *app.ShortageAlertService
	log     ports.Logger
}

// NewServer creates the API server
func NewServer(service *app.ShortageAlertService, log ports.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/forecasts", s.handleCreateForecast)
		r.Post("/forecasts/{id}/validate", s.handleValidateForecast)
		r.Get("/forecasts/accuracy-report", s.handleAccuracyReport)
		r.Post("/forecasts/project/{projectID}/batch", s.handleBatchForecast)

		r.Post("/alerts/scan", s.handleScan)
		r.Get("/alerts", s.handleListAlerts)
		r.Get("/alerts/{id}", s.handleGetAlert)
		r.Get("/alerts/{id}/plans", s.handleGetPlans)
		r.Post("/alerts/{id}/resolve", s.handleResolveAlert)

		r.Get("/analytics/trend", s.handleTrend)
		r.Get("/analytics/root-causes", s.handleRootCauses)
		r.Get("/analytics/project-impact", s.handleProjectImpact)
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// writeJSON writes a success payload
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

// errorResponse is the JSON error envelope
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps domain and application errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.CodeInternalError

	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
		code = errors.CodeNotFound
	case core.IsConflictError(err):
		status = http.StatusConflict
		code = errors.CodeConflict
	case core.IsForecastInputError(err):
		status = http.StatusBadRequest
		code = errors.CodeInvalidInput
	case core.IsValidationError(err):
		status = http.StatusBadRequest
		code = errors.CodeValidationError
	default:
		if appCode := errors.GetCode(err); appCode != "UNKNOWN" {
			code = appCode
			if appCode == errors.CodeInvalidInput || appCode == errors.CodeValidationError {
				status = http.StatusBadRequest
			}
		}
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
