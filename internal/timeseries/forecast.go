package timeseries

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMovingAverageWindow is the trailing window for the moving
	// average forecaster.
	DefaultMovingAverageWindow = 7

	// DefaultSmoothingAlpha is the exponential smoothing coefficient.
	DefaultSmoothingAlpha = 0.3
)

// MovingAverageForecast predicts the next value as the mean of the last
// min(window, len(series)) observations. Non-positive windows fall back to
// the default. Returns 0 for an empty series.
func MovingAverageForecast(series []float64, window int) float64 {
	if len(series) == 0 {
		return 0
	}
	if window <= 0 {
		window = DefaultMovingAverageWindow
	}
	if window > len(series) {
		window = len(series)
	}
	return Average(series[len(series)-window:])
}

// ExponentialSmoothingForecast runs single exponential smoothing with the
// given alpha: S0 = y0, St = alpha*yt + (1-alpha)*S(t-1). Returns 0 for an
// empty series and y0 for a single point.
func ExponentialSmoothingForecast(series []float64, alpha float64) float64 {
	if len(series) == 0 {
		return 0
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothingAlpha
	}

	smoothed := series[0]
	for _, y := range series[1:] {
		smoothed = alpha*y + (1-alpha)*smoothed
	}
	return smoothed
}

// LinearRegressionForecast fits an ordinary least squares line of quantity
// against 0-based day index and extrapolates one step past the series.
// Fewer than 2 points degenerate to the series mean. Demand cannot be
// negative, so a downward trend is floored at 0.
func LinearRegressionForecast(series []float64) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}
	if n < 2 {
		return series[0]
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, series, nil, false)
	if math.IsNaN(intercept) || math.IsNaN(slope) {
		return Average(series)
	}

	next := intercept + slope*float64(n)
	return math.Max(0, next)
}
