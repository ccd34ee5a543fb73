package forecast

import (
	"math"
	"time"

	"stockcast/domain/core"
)

// Algorithm tags the statistical method used to produce a forecast.
type Algorithm string

const (
	MovingAverage    Algorithm = "MOVING_AVERAGE"
	ExpSmoothing     Algorithm = "EXP_SMOOTHING"
	LinearRegression Algorithm = "LINEAR_REGRESSION"
)

// IsValid reports whether the tag names a known algorithm.
func (a Algorithm) IsValid() bool {
	switch a {
	case MovingAverage, ExpSmoothing, LinearRegression:
		return true
	}
	return false
}

// Status is the forecast lifecycle state.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusValidated Status = "VALIDATED"
)

// DemandForecast is a point-in-time demand prediction for one material,
// optionally scoped to a project.
type DemandForecast struct {
	ID             core.ForecastID `db:"id" json:"id"`
	ForecastNumber string          `db:"forecast_number" json:"forecast_number"`
	MaterialID     core.MaterialID `db:"material_id" json:"material_id"`
	ProjectID      *core.ProjectID `db:"project_id" json:"project_id,omitempty"`

	ForecastStartDate time.Time `db:"forecast_start_date" json:"forecast_start_date"`
	ForecastEndDate   time.Time `db:"forecast_end_date" json:"forecast_end_date"`
	HorizonDays       int       `db:"horizon_days" json:"horizon_days"`

	Algorithm   Algorithm `db:"algorithm" json:"algorithm"`
	HistoryDays int       `db:"history_days" json:"history_days"`
	SampleCount int       `db:"sample_count" json:"sample_count"`

	ForecastedDemand float64 `db:"forecasted_demand" json:"forecasted_demand"`
	LowerBound       float64 `db:"lower_bound" json:"lower_bound"`
	UpperBound       float64 `db:"upper_bound" json:"upper_bound"`
	ConfidenceLevel  float64 `db:"confidence_level" json:"confidence_level"`

	BaselineMean   float64 `db:"baseline_mean" json:"baseline_mean"`
	BaselineStdDev float64 `db:"baseline_std_dev" json:"baseline_std_dev"`
	SeasonalFactor float64 `db:"seasonal_factor" json:"seasonal_factor"`

	Status Status `db:"status" json:"status"`

	// Set once by validation against realized demand.
	ActualDemand            *float64   `db:"actual_demand" json:"actual_demand,omitempty"`
	ForecastError           *float64   `db:"forecast_error" json:"forecast_error,omitempty"`
	AbsolutePercentageError *float64   `db:"absolute_percentage_error" json:"absolute_percentage_error,omitempty"`
	AccuracyScore           *float64   `db:"accuracy_score" json:"accuracy_score,omitempty"`
	ValidatedAt             *time.Time `db:"validated_at" json:"validated_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WithinInterval reports whether a realized demand falls inside the
// forecast's confidence bounds.
func (f *DemandForecast) WithinInterval(actual float64) bool {
	return actual >= f.LowerBound && actual <= f.UpperBound
}

// AccuracyReport captures the outcome of validating one forecast against
// realized demand.
type AccuracyReport struct {
	ForecastID       core.ForecastID `json:"forecast_id"`
	ForecastNumber   string          `json:"forecast_number"`
	ForecastedDemand float64         `json:"forecasted_demand"`
	ActualDemand     float64         `json:"actual_demand"`
	Error            float64         `json:"error"`
	MAE              float64         `json:"mae"`
	// RMSE here is the single-sample |error|, not a multi-observation
	// root-mean-square. Downstream consumers rely on this exact value.
	RMSE                     float64 `json:"rmse"`
	MAPE                     float64 `json:"mape"`
	AccuracyScore            float64 `json:"accuracy_score"`
	WithinConfidenceInterval bool    `json:"within_confidence_interval"`
}

// WithValidation returns a validated copy of the forecast plus the accuracy
// report. The receiver is not mutated; callers merge the copy back through
// the repository update.
func (f *DemandForecast) WithValidation(actual float64, now time.Time) (DemandForecast, AccuracyReport) {
	errVal := actual - f.ForecastedDemand
	mae := math.Abs(errVal)

	mape := 0.0
	if actual != 0 {
		mape = math.Abs(errVal/actual) * 100
	}
	accuracy := math.Max(0, 100-mape)

	report := AccuracyReport{
		ForecastID:               f.ID,
		ForecastNumber:           f.ForecastNumber,
		ForecastedDemand:         f.ForecastedDemand,
		ActualDemand:             actual,
		Error:                    errVal,
		MAE:                      mae,
		RMSE:                     mae,
		MAPE:                     mape,
		AccuracyScore:            accuracy,
		WithinConfidenceInterval: f.WithinInterval(actual),
	}

	updated := *f
	updated.ActualDemand = &actual
	updated.ForecastError = &errVal
	updated.AbsolutePercentageError = &mape
	updated.AccuracyScore = &accuracy
	updated.Status = StatusValidated
	validatedAt := now
	updated.ValidatedAt = &validatedAt
	updated.UpdatedAt = now

	return updated, report
}

// AlgorithmAccuracy is the per-algorithm slice of an accuracy summary.
type AlgorithmAccuracy struct {
	Algorithm    Algorithm `json:"algorithm"`
	Count        int       `json:"count"`
	MeanAccuracy float64   `json:"mean_accuracy"`
	MeanMAPE     float64   `json:"mean_mape"`
}

// AccuracySummary aggregates validated forecasts over a window.
type AccuracySummary struct {
	WindowDays         int                 `json:"window_days"`
	MaterialID         *core.MaterialID    `json:"material_id,omitempty"`
	TotalValidated     int                 `json:"total_validated"`
	MeanAccuracy       float64             `json:"mean_accuracy"`
	MeanMAPE           float64             `json:"mean_mape"`
	WithinIntervalRate float64             `json:"within_interval_rate"`
	ByAlgorithm        []AlgorithmAccuracy `json:"by_algorithm"`
}

// BatchFailure records one material that could not be forecast during a
// project batch run.
type BatchFailure struct {
	MaterialID core.MaterialID `json:"material_id"`
	Reason     string          `json:"reason"`
}

// BatchResult pairs the forecasts that succeeded with the materials that
// failed, so callers can observe partial failure without parsing logs.
type BatchResult struct {
	Forecasts []DemandForecast `json:"forecasts"`
	Failures  []BatchFailure   `json:"failures"`
}
