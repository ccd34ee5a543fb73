package timeseries

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestAverage(t *testing.T) {
	if got := Average(nil); got != 0 {
		t.Errorf("Average(nil) = %f, want 0", got)
	}
	if got := Average([]float64{10, 20, 30}); got != 20 {
		t.Errorf("Average = %f, want 20", got)
	}
}

func TestSampleStdDev(t *testing.T) {
	if got := SampleStdDev([]float64{5}); got != 0 {
		t.Errorf("single point stddev = %f, want 0", got)
	}

	// Known sample stddev: [2,4,4,4,5,5,7,9] has population sd 2,
	// sample sd sqrt(32/7).
	got := SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("sample stddev = %f, want %f", got, want)
	}
}

func TestSeasonalityFactor_ShortSeries(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	if got := SeasonalityFactor(series); got != 1.0 {
		t.Errorf("factor for 13-point series = %f, want 1.0", got)
	}
}

func TestSeasonalityFactor_ZeroPriorBaseline(t *testing.T) {
	series := make([]float64, 14)
	for i := 7; i < 14; i++ {
		series[i] = 5
	}
	if got := SeasonalityFactor(series); got != 1.0 {
		t.Errorf("factor with zero prior = %f, want 1.0", got)
	}
}

func TestSeasonalityFactor_Clamped(t *testing.T) {
	// Recent demand 100x the baseline must clamp at 2.0.
	spike := make([]float64, 21)
	for i := 0; i < 14; i++ {
		spike[i] = 1
	}
	for i := 14; i < 21; i++ {
		spike[i] = 100
	}
	if got := SeasonalityFactor(spike); got != 2.0 {
		t.Errorf("spike factor = %f, want clamp at 2.0", got)
	}

	// Recent demand collapse must clamp at 0.5.
	collapse := make([]float64, 21)
	for i := 0; i < 14; i++ {
		collapse[i] = 100
	}
	for i := 14; i < 21; i++ {
		collapse[i] = 1
	}
	if got := SeasonalityFactor(collapse); got != 0.5 {
		t.Errorf("collapse factor = %f, want clamp at 0.5", got)
	}
}

func TestSeasonalityFactor_AlwaysInRange(t *testing.T) {
	// Property: clamp holds for arbitrary series.
	cases := [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50},
	}
	for i := 0; i < 20; i++ {
		series := make([]float64, 30)
		for j := range series {
			series[j] = float64((i*7 + j*13) % 23)
		}
		cases = append(cases, series)
	}

	for _, series := range cases {
		got := SeasonalityFactor(series)
		if got < 0.5 || got > 2.0 {
			t.Errorf("factor %f out of [0.5, 2.0] for series %v", got, series)
		}
	}
}

func TestConfidenceInterval(t *testing.T) {
	tests := []struct {
		name       string
		forecast   float64
		stdDev     float64
		confidence float64
		wantLower  float64
		wantUpper  float64
	}{
		{"95 percent", 100, 10, 95, 80.4, 119.6},
		{"90 percent", 100, 10, 90, 83.55, 116.45},
		{"below 90 uses z=1", 100, 10, 80, 90, 110},
		{"lower floored at zero", 5, 10, 95, 0, 24.6},
		{"zero stddev collapses", 50, 0, 95, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := ConfidenceInterval(tt.forecast, tt.stdDev, tt.confidence)
			if !almostEqual(lower, tt.wantLower, 1e-9) {
				t.Errorf("lower = %f, want %f", lower, tt.wantLower)
			}
			if !almostEqual(upper, tt.wantUpper, 1e-9) {
				t.Errorf("upper = %f, want %f", upper, tt.wantUpper)
			}
			if lower < 0 {
				t.Errorf("lower bound %f is negative", lower)
			}
			if lower > tt.forecast || upper < tt.forecast {
				t.Errorf("interval [%f, %f] does not contain forecast %f", lower, upper, tt.forecast)
			}
		})
	}
}
