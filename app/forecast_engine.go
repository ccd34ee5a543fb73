package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stockcast/domain/core"
	"stockcast/domain/forecast"
	"stockcast/internal/timeseries"
	"stockcast/ports"
)

// Forecast defaults applied when a request leaves fields unset.
const (
	DefaultHorizonDays     = 30
	DefaultHistoryDays     = 90
	DefaultConfidenceLevel = 95.0

	batchForecastWorkers = 4
)

// ForecastDefaults are the fallbacks applied to requests that leave fields
// unset, normally sourced from configuration. Zero fields fall back to the
// package constants.
type ForecastDefaults struct {
	HorizonDays     int
	HistoryDays     int
	ConfidenceLevel float64
}

func (d ForecastDefaults) normalized() ForecastDefaults {
	if d.HorizonDays <= 0 {
		d.HorizonDays = DefaultHorizonDays
	}
	if d.HistoryDays <= 0 {
		d.HistoryDays = DefaultHistoryDays
	}
	if d.ConfidenceLevel <= 0 {
		d.ConfidenceLevel = DefaultConfidenceLevel
	}
	return d
}

// ForecastEngine orchestrates demand history retrieval, algorithm selection,
// confidence interval construction and forecast persistence.
type ForecastEngine struct {
	forecasts ports.ForecastRepository
	supply    ports.SupplyReader
	log       ports.Logger
	defaults  ForecastDefaults
	now       func() time.Time
}

// NewForecastEngine creates a forecast engine
func NewForecastEngine(forecasts ports.ForecastRepository, supply ports.SupplyReader, log ports.Logger, defaults ForecastDefaults) *ForecastEngine {
	return &ForecastEngine{
		forecasts: forecasts,
		supply:    supply,
		log:       log,
		defaults:  defaults.normalized(),
		now:       time.Now,
	}
}

// ForecastRequest defines inputs for a single material forecast
type ForecastRequest struct {
	MaterialID      core.MaterialID
	ProjectID       *core.ProjectID
	HorizonDays     int
	HistoryDays     int
	Algorithm       forecast.Algorithm
	ConfidenceLevel float64
}

func (e *ForecastEngine) applyDefaults(r *ForecastRequest) {
	if r.HorizonDays <= 0 {
		r.HorizonDays = e.defaults.HorizonDays
	}
	if r.HistoryDays <= 0 {
		r.HistoryDays = e.defaults.HistoryDays
	}
	if r.Algorithm == "" {
		r.Algorithm = forecast.ExpSmoothing
	}
	if r.ConfidenceLevel <= 0 {
		r.ConfidenceLevel = e.defaults.ConfidenceLevel
	}
}

// ForecastMaterialDemand produces and persists one demand forecast for a
// material, optionally scoped to a project.
func (e *ForecastEngine) ForecastMaterialDemand(ctx context.Context, req ForecastRequest) (*forecast.DemandForecast, error) {
	e.applyDefaults(&req)

	if !req.Algorithm.IsValid() {
		return nil, core.NewUnsupportedAlgorithmError(string(req.Algorithm))
	}

	today := core.DateOnly(e.now())
	since := today.AddDate(0, 0, -req.HistoryDays)

	history, err := e.supply.DailyDemandHistory(ctx, req.MaterialID, since, today, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, core.NewInsufficientDataError(req.MaterialID.String(), req.HistoryDays)
	}

	series := make([]float64, len(history))
	for i, d := range history {
		series[i] = d.Qty
	}

	baselineMean := timeseries.Average(series)
	baselineStdDev := timeseries.SampleStdDev(series)
	seasonal := timeseries.SeasonalityFactor(series)

	var raw float64
	switch req.Algorithm {
	case forecast.MovingAverage:
		raw = timeseries.MovingAverageForecast(series, timeseries.DefaultMovingAverageWindow)
	case forecast.ExpSmoothing:
		raw = timeseries.ExponentialSmoothingForecast(series, timeseries.DefaultSmoothingAlpha)
	case forecast.LinearRegression:
		raw = timeseries.LinearRegressionForecast(series)
	default:
		return nil, core.NewUnsupportedAlgorithmError(string(req.Algorithm))
	}

	predicted := raw * seasonal
	lower, upper := timeseries.ConfidenceInterval(predicted, baselineStdDev, req.ConfidenceLevel)

	now := e.now()
	f := &forecast.DemandForecast{
		ID:                core.ForecastID(core.NewID()),
		MaterialID:        req.MaterialID,
		ProjectID:         req.ProjectID,
		ForecastStartDate: today,
		ForecastEndDate:   today.AddDate(0, 0, req.HorizonDays),
		HorizonDays:       req.HorizonDays,
		Algorithm:         req.Algorithm,
		HistoryDays:       req.HistoryDays,
		SampleCount:       len(series),
		ForecastedDemand:  predicted,
		LowerBound:        lower,
		UpperBound:        upper,
		ConfidenceLevel:   req.ConfidenceLevel,
		BaselineMean:      baselineMean,
		BaselineStdDev:    baselineStdDev,
		SeasonalFactor:    seasonal,
		Status:            forecast.StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := e.forecasts.Create(ctx, f); err != nil {
		return nil, err
	}

	e.log.Info("forecast %s created: material=%s algorithm=%s demand=%.2f interval=[%.2f, %.2f]",
		f.ForecastNumber, req.MaterialID, req.Algorithm, predicted, lower, upper)

	return f, nil
}

// ValidateForecastAccuracy scores a forecast against realized demand and
// marks it validated. A forecast is validated at most once.
func (e *ForecastEngine) ValidateForecastAccuracy(ctx context.Context, id core.ForecastID, actualDemand float64) (*forecast.AccuracyReport, error) {
	f, err := e.forecasts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == forecast.StatusValidated {
		return nil, core.ErrForecastAlreadyScored
	}

	validated, report := f.WithValidation(actualDemand, e.now())
	if err := e.forecasts.Update(ctx, &validated); err != nil {
		return nil, err
	}

	e.log.Info("forecast %s validated: actual=%.2f accuracy=%.1f within_interval=%t",
		f.ForecastNumber, actualDemand, report.AccuracyScore, report.WithinConfidenceInterval)

	return &report, nil
}

// BatchForecastForProject forecasts every material with open demand on the
// project. Per-material failures do not abort the batch; they are returned
// alongside the successes.
func (e *ForecastEngine) BatchForecastForProject(ctx context.Context, projectID core.ProjectID, horizonDays int) (*forecast.BatchResult, error) {
	if horizonDays <= 0 {
		horizonDays = e.defaults.HorizonDays
	}

	demand, err := e.supply.OpenDemand(ctx, &projectID, nil, horizonDays)
	if err != nil {
		return nil, err
	}

	seen := make(map[core.MaterialID]bool)
	var materials []core.MaterialID
	for _, item := range demand {
		if !seen[item.MaterialID] {
			seen[item.MaterialID] = true
			materials = append(materials, item.MaterialID)
		}
	}

	result := &forecast.BatchResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchForecastWorkers)

	for _, materialID := range materials {
		materialID := materialID
		g.Go(func() error {
			f, ferr := e.ForecastMaterialDemand(gctx, ForecastRequest{
				MaterialID:  materialID,
				ProjectID:   &projectID,
				HorizonDays: horizonDays,
			})

			mu.Lock()
			defer mu.Unlock()
			if ferr != nil {
				e.log.Warn("batch forecast skipped material %s: %v", materialID, ferr)
				result.Failures = append(result.Failures, forecast.BatchFailure{
					MaterialID: materialID,
					Reason:     ferr.Error(),
				})
				return nil
			}
			result.Forecasts = append(result.Forecasts, *f)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Forecasts, func(i, j int) bool {
		return result.Forecasts[i].MaterialID < result.Forecasts[j].MaterialID
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].MaterialID < result.Failures[j].MaterialID
	})

	return result, nil
}

// AccuracySummary aggregates validated forecasts over the trailing window,
// optionally filtered to one material.
func (e *ForecastEngine) AccuracySummary(ctx context.Context, materialID *core.MaterialID, days int) (*forecast.AccuracySummary, error) {
	if days <= 0 {
		days = e.defaults.HorizonDays
	}

	since := core.DateOnly(e.now()).AddDate(0, 0, -days)
	validated, err := e.forecasts.ListValidatedSince(ctx, since, materialID)
	if err != nil {
		return nil, err
	}

	summary := &forecast.AccuracySummary{
		WindowDays: days,
		MaterialID: materialID,
	}
	if len(validated) == 0 {
		return summary, nil
	}

	type bucket struct {
		count    int
		accuracy float64
		mape     float64
	}
	byAlgorithm := make(map[forecast.Algorithm]*bucket)

	var totalAccuracy, totalMAPE float64
	withinCount := 0
	for _, f := range validated {
		if f.AccuracyScore == nil || f.ActualDemand == nil || f.AbsolutePercentageError == nil {
			continue
		}
		summary.TotalValidated++
		totalAccuracy += *f.AccuracyScore
		totalMAPE += *f.AbsolutePercentageError
		if f.WithinInterval(*f.ActualDemand) {
			withinCount++
		}

		b := byAlgorithm[f.Algorithm]
		if b == nil {
			b = &bucket{}
			byAlgorithm[f.Algorithm] = b
		}
		b.count++
		b.accuracy += *f.AccuracyScore
		b.mape += *f.AbsolutePercentageError
	}

	if summary.TotalValidated == 0 {
		return summary, nil
	}

	n := float64(summary.TotalValidated)
	summary.MeanAccuracy = totalAccuracy / n
	summary.MeanMAPE = totalMAPE / n
	summary.WithinIntervalRate = float64(withinCount) / n * 100

	for _, algo := range []forecast.Algorithm{forecast.MovingAverage, forecast.ExpSmoothing, forecast.LinearRegression} {
		b := byAlgorithm[algo]
		if b == nil {
			continue
		}
		summary.ByAlgorithm = append(summary.ByAlgorithm, forecast.AlgorithmAccuracy{
			Algorithm:    algo,
			Count:        b.count,
			MeanAccuracy: b.accuracy / float64(b.count),
			MeanMAPE:     b.mape / float64(b.count),
		})
	}

	return summary, nil
}
