package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockcast/domain/alert"
	"stockcast/domain/core"
)

type serviceFixture struct {
	alerts  *MockAlertRepository
	plans   *MockPlanRepository
	supply  *MockSupplyReader
	service *ShortageAlertService
}

func newServiceFixture() *serviceFixture {
	alerts := &MockAlertRepository{}
	plans := &MockPlanRepository{}
	supply := &MockSupplyReader{}
	forecasts := &MockForecastRepository{}

	alertEng := newTestAlertEngine(alerts, plans, supply)
	forecastEng := newTestForecastEngine(forecasts, supply)

	service := NewShortageAlertService(alerts, plans, alertEng, forecastEng, nopLogger{})
	service.now = func() time.Time { return testNow }

	return &serviceFixture{alerts: alerts, plans: plans, supply: supply, service: service}
}

func TestResolveAlert(t *testing.T) {
	fx := newServiceFixture()

	stored := &alert.ShortageAlert{
		ID:          "alert-1",
		AlertNumber: "SA202603150001",
		Status:      alert.StatusPending,
	}
	fx.alerts.On("GetByID", mock.Anything, core.AlertID("alert-1")).Return(stored, nil)
	fx.alerts.On("Update", mock.Anything, mock.Anything).Return(nil)

	actualCost := 1200.0
	resolved, err := fx.service.ResolveAlert(context.Background(), "alert-1", alert.Resolution{
		Type:       "URGENT_PURCHASE",
		Note:       "expedited from backup supplier",
		Handler:    "j.park",
		ActualCost: &actualCost,
	})

	require.NoError(t, err)
	assert.Equal(t, alert.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolutionType)
	assert.Equal(t, "URGENT_PURCHASE", *resolved.ResolutionType)
	require.NotNil(t, resolved.Handler)
	assert.Equal(t, "j.park", *resolved.Handler)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, testNow, *resolved.ResolvedAt)
	require.NotNil(t, resolved.ActualCost)
	assert.Equal(t, 1200.0, *resolved.ActualCost)

	// The stored alert is untouched; the resolved copy goes through Update.
	assert.Equal(t, alert.StatusPending, stored.Status)
	fx.alerts.AssertCalled(t, "Update", mock.Anything, mock.MatchedBy(func(a *alert.ShortageAlert) bool {
		return a.Status == alert.StatusResolved
	}))
}

func TestResolveAlert_AlreadyResolved(t *testing.T) {
	fx := newServiceFixture()

	stored := &alert.ShortageAlert{ID: "alert-1", Status: alert.StatusResolved}
	fx.alerts.On("GetByID", mock.Anything, core.AlertID("alert-1")).Return(stored, nil)

	_, err := fx.service.ResolveAlert(context.Background(), "alert-1", alert.Resolution{
		Type: "RESCHEDULE", Handler: "j.park",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAlertResolved)
	fx.alerts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestResolveAlert_Cancelled(t *testing.T) {
	fx := newServiceFixture()

	stored := &alert.ShortageAlert{ID: "alert-1", Status: alert.StatusCancelled}
	fx.alerts.On("GetByID", mock.Anything, core.AlertID("alert-1")).Return(stored, nil)

	_, err := fx.service.ResolveAlert(context.Background(), "alert-1", alert.Resolution{
		Type: "RESCHEDULE", Handler: "j.park",
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrAlertResolved)
	assert.Contains(t, err.Error(), "CANCELLED")
}

func TestGetHandlingPlans_ReturnsExisting(t *testing.T) {
	fx := newServiceFixture()

	existing := []alert.HandlingPlan{
		{ID: "plan-1", Strategy: alert.StrategyUrgentPurchase, Rank: 1},
		{ID: "plan-2", Strategy: alert.StrategyReschedule, Rank: 2},
	}
	fx.plans.On("ListByAlert", mock.Anything, core.AlertID("alert-1")).Return(existing, nil)

	plans, err := fx.service.GetHandlingPlans(context.Background(), "alert-1")

	require.NoError(t, err)
	assert.Equal(t, existing, plans)
	fx.alerts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetHandlingPlans_GeneratesWhenEmpty(t *testing.T) {
	fx := newServiceFixture()

	stored := &alert.ShortageAlert{
		ID:             "alert-1",
		MaterialID:     "mat-1",
		ShortageQty:    30,
		AvailableQty:   5,
		RequiredDate:   core.DateOnly(testNow).AddDate(0, 0, 4),
		EstimatedDelay: 3,
		EstimatedCost:  450,
		Severity:       alert.SeverityWarning,
		Status:         alert.StatusPending,
	}

	fx.plans.On("ListByAlert", mock.Anything, core.AlertID("alert-1")).Return([]alert.HandlingPlan{}, nil)
	fx.alerts.On("GetByID", mock.Anything, core.AlertID("alert-1")).Return(stored, nil)
	fx.supply.On("MaterialUnitPrice", mock.Anything, core.MaterialID("mat-1")).Return(10.0, true, nil)
	fx.plans.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	plans, err := fx.service.GetHandlingPlans(context.Background(), "alert-1")

	require.NoError(t, err)
	// Urgent purchase, partial delivery (stock on hand) and reschedule.
	require.Len(t, plans, 3)
	assert.True(t, plans[0].IsRecommended)
	fx.plans.AssertCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestAlertTrend(t *testing.T) {
	fx := newServiceFixture()

	today := core.DateOnly(testNow)
	resolvedAt := today.Add(12 * time.Hour)
	window := []alert.ShortageAlert{
		{
			AlertNumber:   "SA-1",
			Severity:      alert.SeverityCritical,
			Status:        alert.StatusResolved,
			AlertDate:     today.AddDate(0, 0, -2),
			EstimatedCost: 5000,
			CreatedAt:     today,
			ResolvedAt:    &resolvedAt,
		},
		{
			AlertNumber:   "SA-2",
			Severity:      alert.SeverityInfo,
			Status:        alert.StatusPending,
			AlertDate:     today.AddDate(0, 0, -2),
			EstimatedCost: 200,
			CreatedAt:     today,
		},
		{
			AlertNumber:   "SA-3",
			Severity:      alert.SeverityCritical,
			Status:        alert.StatusPending,
			AlertDate:     today,
			EstimatedCost: 1800,
			CreatedAt:     today,
		},
	}
	fx.alerts.On("ListSince", mock.Anything, today.AddDate(0, 0, -7)).Return(window, nil)

	report, err := fx.service.AlertTrend(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalAlerts)
	assert.Equal(t, 2, report.ByLevel[alert.SeverityCritical])
	assert.Equal(t, 1, report.ByLevel[alert.SeverityInfo])
	assert.Equal(t, 2, report.ByStatus[alert.StatusPending])
	assert.Equal(t, 1, report.ByStatus[alert.StatusResolved])
	assert.InDelta(t, 12.0, report.MeanResolutionHours, 1e-9)
	assert.InDelta(t, 7000.0, report.TotalCostImpact, 1e-9)

	// One bucket per day in the window, inclusive on both ends, in order.
	require.Len(t, report.Daily, 8)
	for i := 1; i < len(report.Daily); i++ {
		assert.True(t, report.Daily[i-1].Date.Before(report.Daily[i].Date))
	}
	assert.Equal(t, 2, report.Daily[5].Count)
	assert.Equal(t, 1, report.Daily[7].Count)
}

func TestClassifyRootCause(t *testing.T) {
	tests := []struct {
		name  string
		alert alert.ShortageAlert
		want  string
	}{
		{"in transit points at the supplier", alert.ShortageAlert{InTransitQty: 5, AvailableQty: 0, EstimatedDelay: 20}, CauseSupplierDelay},
		{"nothing on hand", alert.ShortageAlert{InTransitQty: 0, AvailableQty: 0, EstimatedDelay: 20}, CauseInventoryMismanagement},
		{"long delay with some stock", alert.ShortageAlert{InTransitQty: 0, AvailableQty: 3, EstimatedDelay: 8}, CauseProcurementProcessDelay},
		{"everything else", alert.ShortageAlert{InTransitQty: 0, AvailableQty: 3, EstimatedDelay: 2}, CauseForecastInaccuracy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyRootCause(&tt.alert))
		})
	}
}

func TestRootCauses(t *testing.T) {
	fx := newServiceFixture()

	today := core.DateOnly(testNow)
	window := []alert.ShortageAlert{
		{AlertNumber: "SA-1", InTransitQty: 5, EstimatedCost: 1000},
		{AlertNumber: "SA-2", InTransitQty: 2, EstimatedCost: 3000},
		{AlertNumber: "SA-3", AvailableQty: 0, EstimatedCost: 500},
		{AlertNumber: "SA-4", AvailableQty: 4, EstimatedDelay: 1, EstimatedCost: 200},
	}
	fx.alerts.On("ListSince", mock.Anything, today.AddDate(0, 0, -30)).Return(window, nil)

	report, err := fx.service.RootCauses(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalAlerts)
	require.NotEmpty(t, report.Causes)

	top := report.Causes[0]
	assert.Equal(t, CauseSupplierDelay, top.Cause)
	assert.Equal(t, 2, top.Count)
	assert.InDelta(t, 50.0, top.Percentage, 1e-9)
	assert.InDelta(t, 2000.0, top.MeanCostImpact, 1e-9)
	assert.Equal(t, []string{"SA-1", "SA-2"}, top.ExampleAlerts)

	assert.Equal(t, causeRecommendations[CauseSupplierDelay], report.Recommendations)
}

func TestRootCauses_Empty(t *testing.T) {
	fx := newServiceFixture()

	today := core.DateOnly(testNow)
	fx.alerts.On("ListSince", mock.Anything, today.AddDate(0, 0, -30)).Return([]alert.ShortageAlert{}, nil)

	report, err := fx.service.RootCauses(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalAlerts)
	assert.Empty(t, report.Causes)
	assert.Empty(t, report.Recommendations)
}

func TestProjectImpacts(t *testing.T) {
	fx := newServiceFixture()

	open := []alert.ShortageAlert{
		{ProjectID: "proj-a", MaterialName: "Steel Plate", Severity: alert.SeverityCritical, ShortageQty: 50, EstimatedDelay: 10, EstimatedCost: 8000},
		{ProjectID: "proj-a", MaterialName: "Copper Wire", Severity: alert.SeverityInfo, ShortageQty: 20, EstimatedDelay: 3, EstimatedCost: 300},
		{ProjectID: "proj-b", MaterialName: "Resin", Severity: alert.SeverityUrgent, ShortageQty: 900, EstimatedDelay: 21, EstimatedCost: 40000},
	}
	fx.alerts.On("ListOpen", mock.Anything).Return(open, nil)

	impacts, err := fx.service.ProjectImpacts(context.Background())

	require.NoError(t, err)
	require.Len(t, impacts, 2)

	// Sorted by descending cost impact.
	assert.Equal(t, core.ProjectID("proj-b"), impacts[0].ProjectID)
	assert.Equal(t, 1, impacts[0].AlertCount)
	assert.Equal(t, 21, impacts[0].MaxDelayDays)
	assert.Equal(t, []string{"Resin"}, impacts[0].CriticalMaterials)

	assert.Equal(t, core.ProjectID("proj-a"), impacts[1].ProjectID)
	assert.Equal(t, 2, impacts[1].AlertCount)
	assert.InDelta(t, 70.0, impacts[1].TotalShortageQty, 1e-9)
	assert.InDelta(t, 8300.0, impacts[1].TotalCostImpact, 1e-9)
	// INFO-level materials are not listed as critical.
	assert.Equal(t, []string{"Steel Plate"}, impacts[1].CriticalMaterials)
}
