package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/ports"
)

const (
	// DefaultScanDaysAhead bounds how far into the future a scan looks for
	// open demand.
	DefaultScanDaysAhead = 30

	// DefaultSupplierLeadTimeDays is assumed when a material has no
	// delivered purchase orders to average over.
	DefaultSupplierLeadTimeDays = 15

	// rushOrderPremium models the markup paid when a shortage forces an
	// expedited purchase.
	rushOrderPremium = 1.5

	urgentPurchaseLeadTimeDays = 7
	urgentPurchaseCostFactor   = 1.2

	scanWorkers = 4
)

// AlertEngine detects material shortfalls against open demand, classifies
// them and generates remediation plans for the severe ones.
type AlertEngine struct {
	alerts  ports.AlertRepository
	plans   ports.PlanRepository
	supply  ports.SupplyReader
	scorer  *SolutionScorer
	log     ports.Logger
	workers int
	now     func() time.Time
}

// NewAlertEngine creates an alert engine. workers bounds scan concurrency;
// values <= 0 fall back to the package default.
func NewAlertEngine(alerts ports.AlertRepository, plans ports.PlanRepository, supply ports.SupplyReader, scorer *SolutionScorer, log ports.Logger, workers int) *AlertEngine {
	if workers <= 0 {
		workers = scanWorkers
	}
	return &AlertEngine{
		alerts:  alerts,
		plans:   plans,
		supply:  supply,
		scorer:  scorer,
		log:     log,
		workers: workers,
		now:     time.Now,
	}
}

// ScanRequest narrows a shortage scan. Nil fields scan everything.
type ScanRequest struct {
	ProjectID  *core.ProjectID
	MaterialID *core.MaterialID
	DaysAhead  int
}

// ScanAndAlert walks open demand due within the window, creates an alert
// for every positive shortfall, and auto-generates handling plans for
// CRITICAL and URGENT alerts. Returns the newly created alerts.
func (e *AlertEngine) ScanAndAlert(ctx context.Context, req ScanRequest) ([]alert.ShortageAlert, error) {
	if req.DaysAhead <= 0 {
		req.DaysAhead = DefaultScanDaysAhead
	}

	demand, err := e.supply.OpenDemand(ctx, req.ProjectID, req.MaterialID, req.DaysAhead)
	if err != nil {
		return nil, err
	}

	var created []alert.ShortageAlert
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, item := range demand {
		item := item
		g.Go(func() error {
			a, aerr := e.evaluateDemandItem(gctx, item)
			if aerr != nil {
				return aerr
			}
			if a == nil {
				return nil
			}
			mu.Lock()
			created = append(created, *a)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(created, func(i, j int) bool {
		if created[i].Severity.Rank() != created[j].Severity.Rank() {
			return created[i].Severity.Rank() > created[j].Severity.Rank()
		}
		return created[i].AlertNumber < created[j].AlertNumber
	})

	e.log.Info("shortage scan finished: %d demand items, %d alerts created", len(demand), len(created))
	return created, nil
}

// evaluateDemandItem checks one demand line for a shortfall and persists an
// alert when one exists. Returns nil when supply covers the demand.
func (e *AlertEngine) evaluateDemandItem(ctx context.Context, item ports.DemandItem) (*alert.ShortageAlert, error) {
	available, err := e.supply.AvailableStockQty(ctx, item.MaterialID)
	if err != nil {
		return nil, err
	}
	inTransit, err := e.supply.InTransitQty(ctx, item.MaterialID)
	if err != nil {
		return nil, err
	}

	shortage := item.RequiredQty - available - inTransit
	if shortage <= 0 {
		return nil, nil
	}

	today := core.DateOnly(e.now())
	daysToShortage := core.DaysBetween(today, item.RequiredDate)
	severity := CalculateAlertLevel(shortage, item.RequiredQty, daysToShortage, item.IsCriticalPath)

	impact, err := e.PredictImpact(ctx, item.MaterialID, shortage, item.RequiredDate, nil)
	if err != nil {
		return nil, err
	}

	now := e.now()
	a := &alert.ShortageAlert{
		ID:               core.AlertID(core.NewID()),
		MaterialID:       item.MaterialID,
		ProjectID:        item.ProjectID,
		WorkOrderID:      item.WorkOrderID,
		MaterialCode:     item.MaterialCode,
		MaterialName:     item.MaterialName,
		RequiredQty:      item.RequiredQty,
		AvailableQty:     available,
		InTransitQty:     inTransit,
		ShortageQty:      shortage,
		Severity:         severity,
		AlertDate:        today,
		RequiredDate:     core.DateOnly(item.RequiredDate),
		DaysToShortage:   daysToShortage,
		AffectedProjects: impact.AffectedProjects,
		EstimatedDelay:   impact.EstimatedDelayDays,
		EstimatedCost:    impact.EstimatedCost,
		RiskScore:        impact.RiskScore,
		IsCriticalPath:   item.IsCriticalPath,
		Status:           alert.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := e.alerts.Create(ctx, a); err != nil {
		return nil, err
	}

	e.log.Info("alert %s created: material=%s shortage=%.2f severity=%s",
		a.AlertNumber, a.MaterialCode, shortage, severity)

	if severity.AtLeast(alert.SeverityCritical) {
		if _, err := e.GenerateSolutions(ctx, a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// CalculateAlertLevel classifies a shortfall. The table is evaluated top to
// bottom, first match wins; critical-path demand escalates faster.
func CalculateAlertLevel(shortageQty, requiredQty float64, daysToShortage int, isCriticalPath bool) alert.Severity {
	shortageRate := 0.0
	if requiredQty > 0 {
		shortageRate = shortageQty / requiredQty
	}

	if daysToShortage <= 0 {
		return alert.SeverityUrgent
	}

	if isCriticalPath {
		switch {
		case daysToShortage <= 3 || shortageRate > 0.5:
			return alert.SeverityUrgent
		case daysToShortage <= 7 || shortageRate > 0.3:
			return alert.SeverityCritical
		default:
			return alert.SeverityWarning
		}
	}

	switch {
	case daysToShortage <= 3 && shortageRate > 0.7:
		return alert.SeverityUrgent
	case daysToShortage <= 7 && shortageRate > 0.5:
		return alert.SeverityCritical
	case daysToShortage <= 14 && shortageRate > 0.3:
		return alert.SeverityWarning
	case shortageRate > 0.5:
		return alert.SeverityWarning
	default:
		return alert.SeverityInfo
	}
}

// PredictImpact estimates the blast radius of one shortage: affected
// projects, schedule delay, rush-order cost and a 0-100 risk score.
func (e *AlertEngine) PredictImpact(ctx context.Context, materialID core.MaterialID, shortageQty float64, requiredDate time.Time, projectID *core.ProjectID) (*alert.ImpactEstimate, error) {
	affected, err := e.supply.ProjectsWithOpenDemand(ctx, materialID, projectID)
	if err != nil {
		return nil, err
	}

	leadTime, ok, err := e.supply.AverageSupplierLeadTimeDays(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if !ok {
		leadTime = DefaultSupplierLeadTimeDays
	}

	daysUntilRequired := core.DaysBetween(core.DateOnly(e.now()), requiredDate)
	delayDays := leadTime - daysUntilRequired
	if delayDays < 0 {
		delayDays = 0
	}

	costImpact := 0.0
	if price, priced, perr := e.supply.MaterialUnitPrice(ctx, materialID); perr != nil {
		return nil, perr
	} else if priced {
		costImpact = shortageQty * price * rushOrderPremium
	}

	return &alert.ImpactEstimate{
		AffectedProjects:   affected,
		EstimatedDelayDays: delayDays,
		EstimatedCost:      costImpact,
		RiskScore:          impactRiskScore(delayDays, costImpact, len(affected), shortageQty),
	}, nil
}

// impactRiskScore buckets delay, cost, project spread and shortage size into
// a weighted 0-100 score.
func impactRiskScore(delayDays int, costImpact float64, affectedProjects int, shortageQty float64) float64 {
	score := 0.0

	switch {
	case delayDays > 30:
		score += 40
	case delayDays > 15:
		score += 30
	case delayDays > 7:
		score += 20
	case delayDays > 0:
		score += 10
	}

	switch {
	case costImpact > 100_000:
		score += 30
	case costImpact > 50_000:
		score += 20
	case costImpact > 10_000:
		score += 10
	}

	switch {
	case affectedProjects > 5:
		score += 20
	case affectedProjects > 3:
		score += 15
	case affectedProjects > 1:
		score += 10
	}

	switch {
	case shortageQty > 1000:
		score += 10
	case shortageQty > 100:
		score += 7
	case shortageQty > 10:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// GenerateSolutions builds the candidate handling plans for an alert, scores
// them, marks the best one recommended and persists the batch.
func (e *AlertEngine) GenerateSolutions(ctx context.Context, a *alert.ShortageAlert) ([]alert.HandlingPlan, error) {
	now := e.now()

	plans := []alert.HandlingPlan{}
	if p, err := e.urgentPurchasePlan(ctx, a, now); err != nil {
		return nil, err
	} else if p != nil {
		plans = append(plans, *p)
	}
	plans = append(plans, e.substitutePlans(a)...)
	plans = append(plans, e.transferPlans(a)...)
	if p := e.partialDeliveryPlan(a, now); p != nil {
		plans = append(plans, *p)
	}
	plans = append(plans, e.reschedulePlan(a, now))

	for i := range plans {
		e.scorer.Score(&plans[i], a)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].AIScore > plans[j].AIScore
	})
	for i := range plans {
		plans[i].Rank = i + 1
		plans[i].IsRecommended = i == 0
	}

	if err := e.plans.CreateBatch(ctx, plans); err != nil {
		return nil, err
	}

	e.log.Info("generated %d handling plans for alert %s", len(plans), a.AlertNumber)
	return plans, nil
}

func (e *AlertEngine) urgentPurchasePlan(ctx context.Context, a *alert.ShortageAlert, now time.Time) (*alert.HandlingPlan, error) {
	cost := 0.0
	if price, ok, err := e.supply.MaterialUnitPrice(ctx, a.MaterialID); err != nil {
		return nil, err
	} else if ok {
		cost = a.ShortageQty * price * urgentPurchaseCostFactor
	}

	return &alert.HandlingPlan{
		ID:                core.PlanID(core.NewID()),
		AlertID:           a.ID,
		Strategy:          alert.StrategyUrgentPurchase,
		ProposedQty:       a.ShortageQty,
		EstimatedLeadTime: urgentPurchaseLeadTimeDays,
		EstimatedCost:     cost,
		Advantages:        alert.StringList{"fastest full replenishment", "covers the entire shortfall"},
		Disadvantages:     alert.StringList{"carries a 20% rush premium"},
		Risks:             alert.StringList{"supplier may miss the expedited window", "premium cost needs approval"},
		Status:            alert.PlanPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// substitutePlans is an extension point for substitute-material lookups.
// No substitution catalog is wired yet, so no candidates are produced.
func (e *AlertEngine) substitutePlans(_ *alert.ShortageAlert) []alert.HandlingPlan {
	return nil
}

// transferPlans is an extension point for cross-project stock transfers.
// No transferable-stock query is wired yet, so no candidates are produced.
func (e *AlertEngine) transferPlans(_ *alert.ShortageAlert) []alert.HandlingPlan {
	return nil
}

func (e *AlertEngine) partialDeliveryPlan(a *alert.ShortageAlert, now time.Time) *alert.HandlingPlan {
	if a.AvailableQty <= 0 {
		return nil
	}
	return &alert.HandlingPlan{
		ID:                core.PlanID(core.NewID()),
		AlertID:           a.ID,
		Strategy:          alert.StrategyPartialDelivery,
		ProposedQty:       a.AvailableQty,
		EstimatedLeadTime: 0,
		EstimatedCost:     0,
		Advantages:        alert.StringList{"uses stock already on hand", "no incremental cost"},
		Disadvantages:     alert.StringList{"covers only part of the requirement"},
		Risks:             alert.StringList{"remaining shortfall still unresolved"},
		Status:            alert.PlanPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (e *AlertEngine) reschedulePlan(a *alert.ShortageAlert, now time.Time) alert.HandlingPlan {
	proposed := a.RequiredDate.AddDate(0, 0, a.EstimatedDelay)
	return alert.HandlingPlan{
		ID:                core.PlanID(core.NewID()),
		AlertID:           a.ID,
		Strategy:          alert.StrategyReschedule,
		ProposedQty:       a.ShortageQty,
		ProposedDate:      &proposed,
		EstimatedLeadTime: a.EstimatedDelay,
		EstimatedCost:     0,
		Advantages:        alert.StringList{"no procurement cost", "aligns the schedule with realistic supply"},
		Disadvantages:     alert.StringList{"delays downstream work"},
		Risks:             alert.StringList{"knock-on slip on dependent tasks", "milestone exposure"},
		Status:            alert.PlanPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
