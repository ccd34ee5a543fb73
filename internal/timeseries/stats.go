// Package timeseries provides the pure statistical building blocks for
// demand forecasting: summary statistics, seasonality detection and the
// point-forecast algorithms. All functions are total over their numeric
// inputs; degenerate series fall back to documented defaults instead of
// returning errors.
package timeseries

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	// SeasonalityWindow is the number of trailing days compared against the
	// prior baseline when estimating recent demand divergence.
	SeasonalityWindow = 7

	seasonalFactorMin = 0.5
	seasonalFactorMax = 2.0
)

// Average returns the arithmetic mean of the series, 0 for empty input.
func Average(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	mean, err := stats.Mean(series)
	if err != nil {
		return 0
	}
	return mean
}

// SampleStdDev returns the sample standard deviation (n-1 denominator),
// 0 for fewer than 2 points.
func SampleStdDev(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(series)
	if err != nil {
		return 0
	}
	return sd
}

// SeasonalityFactor estimates recent-vs-historical demand divergence as the
// ratio of the trailing 7-day mean to the mean of everything before it.
// Series shorter than two windows, or with a zero prior baseline, get the
// neutral factor 1.0. The result is clamped to [0.5, 2.0] so one demand
// spike cannot dominate a forecast.
func SeasonalityFactor(series []float64) float64 {
	if len(series) < 2*SeasonalityWindow {
		return 1.0
	}

	recent := Average(series[len(series)-SeasonalityWindow:])
	prior := Average(series[:len(series)-SeasonalityWindow])
	if prior == 0 {
		return 1.0
	}

	factor := recent / prior
	return math.Min(seasonalFactorMax, math.Max(seasonalFactorMin, factor))
}

// ConfidenceInterval builds a symmetric interval around the forecast from
// the baseline standard deviation. The z multiplier follows the usual
// two-sided critical values: 1.96 at >=95%, 1.645 at >=90%, 1.0 below.
// The lower bound is floored at zero since demand cannot be negative.
func ConfidenceInterval(forecast, stdDev, confidencePct float64) (lower, upper float64) {
	z := 1.0
	switch {
	case confidencePct >= 95:
		z = 1.96
	case confidencePct >= 90:
		z = 1.645
	}

	margin := z * stdDev
	return math.Max(0, forecast-margin), forecast + margin
}
