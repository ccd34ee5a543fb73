package app

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"stockcast/domain/alert"
	"stockcast/domain/core"
	"stockcast/domain/forecast"
	"stockcast/ports"
)

// Mock implementations for testing

type MockForecastRepository struct {
	mock.Mock
	mu      sync.Mutex
	created []*forecast.DemandForecast
}

func (m *MockForecastRepository) Create(ctx context.Context, f *forecast.DemandForecast) error {
	args := m.Called(ctx, f)
	m.mu.Lock()
	m.created = append(m.created, f)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockForecastRepository) Update(ctx context.Context, f *forecast.DemandForecast) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockForecastRepository) GetByID(ctx context.Context, id core.ForecastID) (*forecast.DemandForecast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.DemandForecast), args.Error(1)
}

func (m *MockForecastRepository) GetByNumber(ctx context.Context, number string) (*forecast.DemandForecast, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.DemandForecast), args.Error(1)
}

func (m *MockForecastRepository) ListValidatedSince(ctx context.Context, since time.Time, materialID *core.MaterialID) ([]forecast.DemandForecast, error) {
	args := m.Called(ctx, since, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.DemandForecast), args.Error(1)
}

type MockAlertRepository struct {
	mock.Mock
	mu      sync.Mutex
	created []*alert.ShortageAlert
}

func (m *MockAlertRepository) Create(ctx context.Context, a *alert.ShortageAlert) error {
	args := m.Called(ctx, a)
	m.mu.Lock()
	m.created = append(m.created, a)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockAlertRepository) Update(ctx context.Context, a *alert.ShortageAlert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id core.AlertID) (*alert.ShortageAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alert.ShortageAlert), args.Error(1)
}

func (m *MockAlertRepository) List(ctx context.Context, filter ports.AlertFilter) ([]alert.ShortageAlert, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]alert.ShortageAlert), args.Int(1), args.Error(2)
}

func (m *MockAlertRepository) ListSince(ctx context.Context, since time.Time) ([]alert.ShortageAlert, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.ShortageAlert), args.Error(1)
}

func (m *MockAlertRepository) ListOpen(ctx context.Context) ([]alert.ShortageAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.ShortageAlert), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
	mu      sync.Mutex
	batches [][]alert.HandlingPlan
}

func (m *MockPlanRepository) CreateBatch(ctx context.Context, plans []alert.HandlingPlan) error {
	args := m.Called(ctx, plans)
	m.mu.Lock()
	m.batches = append(m.batches, plans)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockPlanRepository) ListByAlert(ctx context.Context, alertID core.AlertID) ([]alert.HandlingPlan, error) {
	args := m.Called(ctx, alertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.HandlingPlan), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, p *alert.HandlingPlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockSupplyReader struct {
	mock.Mock
}

func (m *MockSupplyReader) DailyDemandHistory(ctx context.Context, materialID core.MaterialID, since, until time.Time, projectID *core.ProjectID) ([]ports.DailyDemand, error) {
	args := m.Called(ctx, materialID, since, until, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DailyDemand), args.Error(1)
}

func (m *MockSupplyReader) AvailableStockQty(ctx context.Context, materialID core.MaterialID) (float64, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSupplyReader) InTransitQty(ctx context.Context, materialID core.MaterialID) (float64, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSupplyReader) OpenDemand(ctx context.Context, projectID *core.ProjectID, materialID *core.MaterialID, horizonDays int) ([]ports.DemandItem, error) {
	args := m.Called(ctx, projectID, materialID, horizonDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DemandItem), args.Error(1)
}

func (m *MockSupplyReader) MaterialUnitPrice(ctx context.Context, materialID core.MaterialID) (float64, bool, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockSupplyReader) AverageSupplierLeadTimeDays(ctx context.Context, materialID core.MaterialID) (int, bool, error) {
	args := m.Called(ctx, materialID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockSupplyReader) ProjectsWithOpenDemand(ctx context.Context, materialID core.MaterialID, projectID *core.ProjectID) ([]alert.AffectedProject, error) {
	args := m.Called(ctx, materialID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.AffectedProject), args.Error(1)
}

// nopLogger discards everything; engine tests assert behavior, not logs.
type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// dailySeries builds a dense demand series of len(qtys) days ending yesterday.
func dailySeries(until time.Time, qtys ...float64) []ports.DailyDemand {
	series := make([]ports.DailyDemand, len(qtys))
	start := until.AddDate(0, 0, -len(qtys))
	for i, q := range qtys {
		series[i] = ports.DailyDemand{Date: start.AddDate(0, 0, i), Qty: q}
	}
	return series
}
