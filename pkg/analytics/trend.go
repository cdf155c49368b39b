package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/aulanota/insight/pkg/stats"
)

// DataPoint is one timestamped measurement in a trend series
type DataPoint struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Confidence blend weights: sample size saturates at 30 points, time span at
// 21 days, and goodness of fit carries the remaining weight.
const (
	confidenceSampleSaturation = 30.0
	confidenceSpanSaturation   = 21.0
)

// AnalyzeTrendsWithStatistics fits an ordinary least-squares line to the
// series and reports direction, per-day rate, R-squared and a blended
// confidence score. Returns nil below minSampleSize.
func (e *Engine) AnalyzeTrendsWithStatistics(metric string, points []DataPoint) *TrendAnalysis {
	cfg := e.config()
	if len(points) < cfg.EnhancedAnalysis.MinSampleSize {
		e.logger.Debug("Insufficient data for trend analysis",
			"metric", metric, "points", len(points), "required", cfg.EnhancedAnalysis.MinSampleSize)
		return nil
	}

	sorted := make([]DataPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.Value
	}

	line := stats.FitLine(values)
	n := len(sorted)

	// Slope is per sequence index; convert to per-day using the actual
	// elapsed span, guarded to at least one day.
	elapsedDays := sorted[n-1].Timestamp.Sub(sorted[0].Timestamp).Hours() / 24
	rate := line.Slope * float64(n-1) / math.Max(elapsedDays, 1)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}

	direction := "stable"
	if math.Abs(rate) >= cfg.EnhancedAnalysis.TrendThreshold {
		if rate > 0 {
			direction = "increasing"
		} else {
			direction = "decreasing"
		}
	}

	confidence := stats.Clamp01(
		0.3*math.Min(1, float64(n)/confidenceSampleSaturation) +
			0.3*math.Min(1, elapsedDays/confidenceSpanSaturation) +
			0.4*line.R2)

	// Forecast extrapolates in index space beyond the last point
	lastIndex := float64(n - 1)
	analysis := &TrendAnalysis{
		Metric:       metric,
		Direction:    direction,
		Rate:         rate,
		Significance: line.R2,
		Confidence:   confidence,
		Forecast: Forecast{
			Next7Days:  line.At(lastIndex + 7),
			Next30Days: line.At(lastIndex + 30),
			Confidence: confidence,
		},
	}

	e.logger.Debug("Trend analysis complete",
		"metric", metric, "direction", direction, "rate", rate,
		"r_squared", line.R2, "confidence", confidence)
	return analysis
}
