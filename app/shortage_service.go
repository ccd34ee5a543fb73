package app

import (
	"context"
	"sort"
	"time"

	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/ports"
)

// Root-cause categories. The classifier's precedence makes the last two
// unreachable: "demand forecast inaccuracy" catches everything not matched
// above it. They stay declared so the taxonomy remains visible; reordering
// the rules would silently change report output.
const (
	CauseSupplierDelay           = "supplier lead-time delay"
	CauseInventoryMismanagement  = "inventory mismanagement"
	CauseProcurementProcessDelay = "procurement process delay"
	CauseForecastInaccuracy      = "demand forecast inaccuracy"
	CauseFrequentPlanChanges     = "frequent plan changes"
	CauseOther                   = "other"
)

var causeRecommendations = map[string][]string{
	CauseSupplierDelay: {
		"review supplier delivery performance and renegotiate lead times",
		"add buffer stock for materials with volatile supplier lead times",
		"track open purchase orders earlier in the demand window",
	},
	CauseInventoryMismanagement: {
		"tighten cycle counting on frequently short materials",
		"set reorder points from forecasted rather than historical demand",
		"audit stock reservations against open work orders",
	},
	CauseProcurementProcessDelay: {
		"shorten purchase approval chains for critical-path materials",
		"pre-approve framework contracts for recurring materials",
	},
	CauseForecastInaccuracy: {
		"validate forecasts against realized demand every cycle",
		"widen history windows for materials with erratic demand",
		"review seasonality assumptions for recently shifted demand",
	},
}

// ShortageAlertService is the facade the API layer talks to: alert listing
// and resolution, scan triggering, plan retrieval and the analytics reports.
type ShortageAlertService struct {
	alerts    ports.AlertRepository
	plans     ports.PlanRepository
	alertEng  *AlertEngine
	forecasts *ForecastEngine
	log       ports.Logger
	now       func() time.Time
}

// NewShortageAlertService creates the service facade
func NewShortageAlertService(alerts ports.AlertRepository, plans ports.PlanRepository, alertEng *AlertEngine, forecasts *ForecastEngine, log ports.Logger) *ShortageAlertService {
	return &ShortageAlertService{
		alerts:    alerts,
		plans:     plans,
		alertEng:  alertEng,
		forecasts: forecasts,
		log:       log,
		now:       time.Now,
	}
}

// ForecastEngine exposes the demand forecast engine to the API layer.
func (s *ShortageAlertService) ForecastEngine() *ForecastEngine {
	return s.forecasts
}

// AlertEngine exposes the smart alert engine to the API layer.
func (s *ShortageAlertService) AlertEngine() *AlertEngine {
	return s.alertEng
}

// ListAlerts returns alerts matching the filter plus the unpaginated total.
func (s *ShortageAlertService) ListAlerts(ctx context.Context, filter ports.AlertFilter) ([]alert.ShortageAlert, int, error) {
	return s.alerts.List(ctx, filter)
}

// GetAlert retrieves one alert by ID.
func (s *ShortageAlertService) GetAlert(ctx context.Context, id core.AlertID) (*alert.ShortageAlert, error) {
	return s.alerts.GetByID(ctx, id)
}

// TriggerScan runs a shortage scan.
func (s *ShortageAlertService) TriggerScan(ctx context.Context, req ScanRequest) ([]alert.ShortageAlert, error) {
	return s.alertEng.ScanAndAlert(ctx, req)
}

// GetHandlingPlans returns the plans for an alert, generating them on the
// fly when none exist yet (INFO/WARNING alerts skip generation at scan time).
func (s *ShortageAlertService) GetHandlingPlans(ctx context.Context, alertID core.AlertID) ([]alert.HandlingPlan, error) {
	plans, err := s.plans.ListByAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		return plans, nil
	}

	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	return s.alertEng.GenerateSolutions(ctx, a)
}

// ResolveAlert transitions an open alert to RESOLVED, recording handler and
// resolution metadata. Resolving a terminal alert is rejected.
func (s *ShortageAlertService) ResolveAlert(ctx context.Context, id core.AlertID, res alert.Resolution) (*alert.ShortageAlert, error) {
	a, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.Open() {
		if a.Status == alert.StatusResolved {
			return nil, core.ErrAlertResolved
		}
		return nil, core.NewValidationError("status", "alert is "+string(a.Status))
	}

	resolved := a.WithResolution(res, s.now())
	if err := s.alerts.Update(ctx, &resolved); err != nil {
		return nil, err
	}

	s.log.Info("alert %s resolved by %s (%s)", a.AlertNumber, res.Handler, res.Type)
	return &resolved, nil
}

// DailyTrend is one day of the trend report.
type DailyTrend struct {
	Date    time.Time              `json:"date"`
	Count   int                    `json:"count"`
	ByLevel map[alert.Severity]int `json:"by_level"`
}

// TrendReport summarizes alert activity over a trailing window.
type TrendReport struct {
	WindowDays          int                    `json:"window_days"`
	TotalAlerts         int                    `json:"total_alerts"`
	ByLevel             map[alert.Severity]int `json:"by_level"`
	ByStatus            map[alert.Status]int   `json:"by_status"`
	MeanResolutionHours float64                `json:"mean_resolution_hours"`
	TotalCostImpact     float64                `json:"total_cost_impact"`
	Daily               []DailyTrend           `json:"daily"`
}

// AlertTrend scans in-window alerts and breaks them down by level, status
// and day, including mean time-to-resolution over resolved alerts.
func (s *ShortageAlertService) AlertTrend(ctx context.Context, days int) (*TrendReport, error) {
	if days <= 0 {
		days = DefaultScanDaysAhead
	}

	today := core.DateOnly(s.now())
	since := today.AddDate(0, 0, -days)

	alerts, err := s.alerts.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &TrendReport{
		WindowDays: days,
		ByLevel:    make(map[alert.Severity]int),
		ByStatus:   make(map[alert.Status]int),
	}

	daily := make(map[string]*DailyTrend)
	for d := 0; d <= days; d++ {
		day := since.AddDate(0, 0, d)
		daily[day.Format("2006-01-02")] = &DailyTrend{
			Date:    day,
			ByLevel: make(map[alert.Severity]int),
		}
	}

	var resolutionHours float64
	resolvedCount := 0

	for _, a := range alerts {
		report.TotalAlerts++
		report.ByLevel[a.Severity]++
		report.ByStatus[a.Status]++
		report.TotalCostImpact += a.EstimatedCost

		if a.ResolvedAt != nil {
			resolutionHours += a.ResolvedAt.Sub(a.CreatedAt).Hours()
			resolvedCount++
		}

		if dt, ok := daily[core.DateOnly(a.AlertDate).Format("2006-01-02")]; ok {
			dt.Count++
			dt.ByLevel[a.Severity]++
		}
	}

	if resolvedCount > 0 {
		report.MeanResolutionHours = resolutionHours / float64(resolvedCount)
	}

	for _, dt := range daily {
		report.Daily = append(report.Daily, *dt)
	}
	sort.Slice(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date.Before(report.Daily[j].Date)
	})

	return report, nil
}

// RootCause is one ranked cause bucket in the root-cause report.
type RootCause struct {
	Cause          string   `json:"cause"`
	Count          int      `json:"count"`
	Percentage     float64  `json:"percentage"`
	MeanCostImpact float64  `json:"mean_cost_impact"`
	ExampleAlerts  []string `json:"example_alerts"`
}

// RootCauseReport ranks shortage causes over a trailing window and maps the
// top cause to improvement recommendations.
type RootCauseReport struct {
	WindowDays      int         `json:"window_days"`
	TotalAlerts     int         `json:"total_alerts"`
	Causes          []RootCause `json:"causes"`
	Recommendations []string    `json:"recommendations"`
}

// classifyRootCause buckets one alert by simple precedence. First match
// wins, which leaves CauseFrequentPlanChanges and CauseOther unreachable.
func classifyRootCause(a *alert.ShortageAlert) string {
	switch {
	case a.InTransitQty > 0:
		return CauseSupplierDelay
	case a.AvailableQty == 0:
		return CauseInventoryMismanagement
	case a.EstimatedDelay > 7:
		return CauseProcurementProcessDelay
	default:
		return CauseForecastInaccuracy
	}
}

// RootCauses classifies in-window alerts into cause buckets.
func (s *ShortageAlertService) RootCauses(ctx context.Context, days int) (*RootCauseReport, error) {
	if days <= 0 {
		days = DefaultScanDaysAhead
	}

	since := core.DateOnly(s.now()).AddDate(0, 0, -days)
	alerts, err := s.alerts.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &RootCauseReport{WindowDays: days, TotalAlerts: len(alerts)}
	if len(alerts) == 0 {
		return report, nil
	}

	type bucket struct {
		count    int
		cost     float64
		examples []string
	}
	buckets := make(map[string]*bucket)

	for i := range alerts {
		a := &alerts[i]
		cause := classifyRootCause(a)
		b := buckets[cause]
		if b == nil {
			b = &bucket{}
			buckets[cause] = b
		}
		b.count++
		b.cost += a.EstimatedCost
		if len(b.examples) < 3 {
			b.examples = append(b.examples, a.AlertNumber)
		}
	}

	for cause, b := range buckets {
		report.Causes = append(report.Causes, RootCause{
			Cause:          cause,
			Count:          b.count,
			Percentage:     float64(b.count) / float64(len(alerts)) * 100,
			MeanCostImpact: b.cost / float64(b.count),
			ExampleAlerts:  b.examples,
		})
	}
	sort.Slice(report.Causes, func(i, j int) bool {
		if report.Causes[i].Count != report.Causes[j].Count {
			return report.Causes[i].Count > report.Causes[j].Count
		}
		return report.Causes[i].Cause < report.Causes[j].Cause
	})

	report.Recommendations = causeRecommendations[report.Causes[0].Cause]
	return report, nil
}

// ProjectImpact aggregates open alerts for one project.
type ProjectImpact struct {
	ProjectID         core.ProjectID `json:"project_id"`
	AlertCount        int            `json:"alert_count"`
	TotalShortageQty  float64        `json:"total_shortage_qty"`
	MaxDelayDays      int            `json:"max_delay_days"`
	TotalCostImpact   float64        `json:"total_cost_impact"`
	CriticalMaterials []string       `json:"critical_materials"`
}

// ProjectImpacts aggregates PENDING/PROCESSING alerts per project, sorted
// by descending cost impact.
func (s *ShortageAlertService) ProjectImpacts(ctx context.Context) ([]ProjectImpact, error) {
	open, err := s.alerts.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	byProject := make(map[core.ProjectID]*ProjectImpact)
	for i := range open {
		a := &open[i]
		impact := byProject[a.ProjectID]
		if impact == nil {
			impact = &ProjectImpact{ProjectID: a.ProjectID}
			byProject[a.ProjectID] = impact
		}
		impact.AlertCount++
		impact.TotalShortageQty += a.ShortageQty
		impact.TotalCostImpact += a.EstimatedCost
		if a.EstimatedDelay > impact.MaxDelayDays {
			impact.MaxDelayDays = a.EstimatedDelay
		}
		if len(impact.CriticalMaterials) < 5 && a.Severity.AtLeast(alert.SeverityCritical) {
			impact.CriticalMaterials = append(impact.CriticalMaterials, a.MaterialName)
		}
	}

	impacts := make([]ProjectImpact, 0, len(byProject))
	for _, impact := range byProject {
		impacts = append(impacts, *impact)
	}
	sort.Slice(impacts, func(i, j int) bool {
		if impacts[i].TotalCostImpact != impacts[j].TotalCostImpact {
			return impacts[i].TotalCostImpact > impacts[j].TotalCostImpact
		}
		return impacts[i].ProjectID < impacts[j].ProjectID
	})

	return impacts, nil
}
