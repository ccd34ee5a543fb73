package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stockcast/app"
	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/domain/forecast"
	"stockcast/ports"
)

// createForecastRequest is the POST /forecasts payload.
type createForecastRequest struct {
	MaterialID      string  `json:"material_id"`
	ProjectID       string  `json:"project_id,omitempty"`
	HorizonDays     int     `json:"horizon_days,omitempty"`
	HistoryDays     int     `json:"history_days,omitempty"`
	Algorithm       string  `json:"algorithm,omitempty"`
	ConfidenceLevel float64 `json:"confidence_level,omitempty"`
}

func (s *Server) handleCreateForecast(w http.ResponseWriter, r *http.Request) {
	var req createForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.NewValidationError("body", "invalid JSON"))
		return
	}

	materialID, err := core.ParseMaterialID(req.MaterialID)
	if err != nil {
		s.writeError(w, core.NewValidationError("material_id", err.Error()))
		return
	}

	engineReq := app.ForecastRequest{
		MaterialID:      materialID,
		HorizonDays:     req.HorizonDays,
		HistoryDays:     req.HistoryDays,
		Algorithm:       forecast.Algorithm(req.Algorithm),
		ConfidenceLevel: req.ConfidenceLevel,
	}
	if req.ProjectID != "" {
		projectID, err := core.ParseProjectID(req.ProjectID)
		if err != nil {
			s.writeError(w, core.NewValidationError("project_id", err.Error()))
			return
		}
		engineReq.ProjectID = &projectID
	}

	f, err := s.service.ForecastEngine().ForecastMaterialDemand(r.Context(), engineReq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, f)
}

// validateForecastRequest is the POST /forecasts/{id}/validate payload.
type validateForecastRequest struct {
	ActualDemand float64 `json:"actual_demand"`
}

func (s *Server) handleValidateForecast(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseForecastID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, core.NewValidationError("id", err.Error()))
		return
	}

	var req validateForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.NewValidationError("body", "invalid JSON"))
		return
	}
	if req.ActualDemand < 0 {
		s.writeError(w, core.NewValidationError("actual_demand", "must not be negative"))
		return
	}

	report, err := s.service.ForecastEngine().ValidateForecastAccuracy(r.Context(), id, req.ActualDemand)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAccuracyReport(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 0)

	var materialID *core.MaterialID
	if raw := r.URL.Query().Get("material_id"); raw != "" {
		id, err := core.ParseMaterialID(raw)
		if err != nil {
			s.writeError(w, core.NewValidationError("material_id", err.Error()))
			return
		}
		materialID = &id
	}

	summary, err := s.service.ForecastEngine().AccuracySummary(r.Context(), materialID, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// batchForecastRequest is the POST /forecasts/project/{projectID}/batch payload.
type batchForecastRequest struct {
	HorizonDays int `json:"horizon_days,omitempty"`
}

func (s *Server) handleBatchForecast(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, core.NewValidationError("projectID", err.Error()))
		return
	}

	var req batchForecastRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, core.NewValidationError("body", "invalid JSON"))
			return
		}
	}

	result, err := s.service.ForecastEngine().BatchForecastForProject(r.Context(), projectID, req.HorizonDays)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// scanRequest is the POST /alerts/scan payload.
type scanRequest struct {
	ProjectID  string `json:"project_id,omitempty"`
	MaterialID string `json:"material_id,omitempty"`
	DaysAhead  int    `json:"days_ahead,omitempty"`
}

// scanResponse wraps the scan output with a count for quick inspection.
type scanResponse struct {
	AlertsCreated int                   `json:"alerts_created"`
	Alerts        []alert.ShortageAlert `json:"alerts"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, core.NewValidationError("body", "invalid JSON"))
			return
		}
	}

	engineReq := app.ScanRequest{DaysAhead: req.DaysAhead}
	if req.ProjectID != "" {
		projectID, err := core.ParseProjectID(req.ProjectID)
		if err != nil {
			s.writeError(w, core.NewValidationError("project_id", err.Error()))
			return
		}
		engineReq.ProjectID = &projectID
	}
	if req.MaterialID != "" {
		materialID, err := core.ParseMaterialID(req.MaterialID)
		if err != nil {
			s.writeError(w, core.NewValidationError("material_id", err.Error()))
			return
		}
		engineReq.MaterialID = &materialID
	}

	alerts, err := s.service.TriggerScan(r.Context(), engineReq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scanResponse{AlertsCreated: len(alerts), Alerts: alerts})
}

// listAlertsResponse carries one page of alerts plus the unpaginated total.
type listAlertsResponse struct {
	Total  int                   `json:"total"`
	Alerts []alert.ShortageAlert `json:"alerts"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAlertFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	alerts, total, err := s.service.ListAlerts(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if alerts == nil {
		alerts = []alert.ShortageAlert{}
	}
	s.writeJSON(w, http.StatusOK, listAlertsResponse{Total: total, Alerts: alerts})
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, core.NewValidationError("id", err.Error()))
		return
	}

	a, err := s.service.GetAlert(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetPlans(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, core.NewValidationError("id", err.Error()))
		return
	}

	plans, err := s.service.GetHandlingPlans(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if plans == nil {
		plans = []alert.HandlingPlan{}
	}
	s.writeJSON(w, http.StatusOK, plans)
}

// resolveAlertRequest is the POST /alerts/{id}/resolve payload.
type resolveAlertRequest struct {
	ResolutionType string   `json:"resolution_type"`
	Note           string   `json:"note,omitempty"`
	Handler        string   `json:"handler"`
	ActualCost     *float64 `json:"actual_cost,omitempty"`
	ActualDelay    *int     `json:"actual_delay_days,omitempty"`
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, core.NewValidationError("id", err.Error()))
		return
	}

	var req resolveAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.NewValidationError("body", "invalid JSON"))
		return
	}
	if strings.TrimSpace(req.ResolutionType) == "" {
		s.writeError(w, core.NewValidationError("resolution_type", "is required"))
		return
	}
	if strings.TrimSpace(req.Handler) == "" {
		s.writeError(w, core.NewValidationError("handler", "is required"))
		return
	}

	resolved, err := s.service.ResolveAlert(r.Context(), id, alert.Resolution{
		Type:        req.ResolutionType,
		Note:        req.Note,
		Handler:     req.Handler,
		ActualCost:  req.ActualCost,
		ActualDelay: req.ActualDelay,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resolved)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.AlertTrend(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRootCauses(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.RootCauses(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleProjectImpact(w http.ResponseWriter, r *http.Request) {
	impacts, err := s.service.ProjectImpacts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if impacts == nil {
		impacts = []app.ProjectImpact{}
	}
	s.writeJSON(w, http.StatusOK, impacts)
}

// parseAlertFilter builds an AlertFilter from list query parameters.
func parseAlertFilter(r *http.Request) (ports.AlertFilter, error) {
	q := r.URL.Query()
	filter := ports.AlertFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}

	if raw := q.Get("project_id"); raw != "" {
		id, err := core.ParseProjectID(raw)
		if err != nil {
			return filter, core.NewValidationError("project_id", err.Error())
		}
		filter.ProjectID = &id
	}
	if raw := q.Get("material_id"); raw != "" {
		id, err := core.ParseMaterialID(raw)
		if err != nil {
			return filter, core.NewValidationError("material_id", err.Error())
		}
		filter.MaterialID = &id
	}
	if raw := q.Get("severity"); raw != "" {
		sev := alert.Severity(strings.ToUpper(raw))
		if !sev.IsValid() {
			return filter, core.NewValidationError("severity", "unknown severity "+raw)
		}
		filter.Severity = &sev
	}
	if raw := q.Get("status"); raw != "" {
		status := alert.Status(strings.ToUpper(raw))
		filter.Status = &status
	}
	if raw := q.Get("date_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, core.NewValidationError("date_from", "expected YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}
	if raw := q.Get("date_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, core.NewValidationError("date_to", "expected YYYY-MM-DD")
		}
		filter.DateTo = &t
	}

	return filter, nil
}

// queryInt reads an integer query parameter, falling back on absence or junk.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
