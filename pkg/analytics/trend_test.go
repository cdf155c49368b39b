package analytics

import (
	"math"
	"testing"

	"github.com/aulanota/insight/pkg/config"
)

func TestTrendPerfectDailyIncrease(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// 10 points, one per day, increasing by exactly 1 per day
	points := dailySeries(10, func(i int) float64 { return float64(i + 1) })
	trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points)
	if trend == nil {
		t.Fatal("expected trend analysis")
	}
	if trend.Direction != "increasing" {
		t.Errorf("direction = %s, want increasing", trend.Direction)
	}
	if math.Abs(trend.Rate-1.0) > 1e-6 {
		t.Errorf("rate = %f, want 1.0 per day", trend.Rate)
	}
	if math.Abs(trend.Significance-1.0) > 1e-6 {
		t.Errorf("r_squared = %f, want 1.0", trend.Significance)
	}
	// 0.3*(10/30) + 0.3*(9/21) + 0.4*1
	wantConfidence := 0.3*(10.0/30.0) + 0.3*(9.0/21.0) + 0.4
	if math.Abs(trend.Confidence-wantConfidence) > 1e-6 {
		t.Errorf("confidence = %f, want %f", trend.Confidence, wantConfidence)
	}
	// Index-space extrapolation: value at index 9 is 10, slope 1
	if math.Abs(trend.Forecast.Next7Days-17.0) > 1e-6 {
		t.Errorf("next_7_days = %f, want 17.0", trend.Forecast.Next7Days)
	}
	if math.Abs(trend.Forecast.Next30Days-40.0) > 1e-6 {
		t.Errorf("next_30_days = %f, want 40.0", trend.Forecast.Next30Days)
	}
}

func TestTrendStableBelowThreshold(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	points := dailySeries(10, func(i int) float64 { return 5.0 })
	trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points)
	if trend == nil {
		t.Fatal("expected trend analysis")
	}
	if trend.Direction != "stable" {
		t.Errorf("direction = %s, want stable", trend.Direction)
	}
	if trend.Rate != 0 {
		t.Errorf("rate = %f, want 0", trend.Rate)
	}
	if math.IsNaN(trend.Significance) {
		t.Error("r_squared must not be NaN for a flat series")
	}
}

func TestTrendDecreasing(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	points := dailySeries(8, func(i int) float64 { return 10 - float64(i) })
	trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points)
	if trend == nil {
		t.Fatal("expected trend analysis")
	}
	if trend.Direction != "decreasing" {
		t.Errorf("direction = %s, want decreasing", trend.Direction)
	}
}

func TestTrendNilBelowMinSampleSize(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	points := dailySeries(4, func(i int) float64 { return float64(i) })
	if trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points); trend != nil {
		t.Errorf("expected nil below min_sample_size, got %+v", trend)
	}
}

func TestTrendSameDayPointsGuarded(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// All points at the same instant: elapsed days is 0 and must be
	// guarded to 1, not divided by.
	points := make([]DataPoint, 6)
	for i := range points {
		points[i] = DataPoint{Value: float64(i), Timestamp: anchor}
	}
	trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points)
	if trend == nil {
		t.Fatal("expected trend analysis")
	}
	if math.IsNaN(trend.Rate) || math.IsInf(trend.Rate, 0) {
		t.Errorf("rate = %f, want finite", trend.Rate)
	}
}

func TestTrendUnsortedInput(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	points := dailySeries(10, func(i int) float64 { return float64(i + 1) })
	// Shuffle deterministically
	points[0], points[9] = points[9], points[0]
	points[2], points[7] = points[7], points[2]

	trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points)
	if trend == nil {
		t.Fatal("expected trend analysis")
	}
	if math.Abs(trend.Rate-1.0) > 1e-6 {
		t.Errorf("rate = %f, want 1.0 after internal sorting", trend.Rate)
	}
}
