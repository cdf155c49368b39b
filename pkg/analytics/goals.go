package analytics

import (
	"math"

	pkg "github.com/aulanota/insight/pkg"
)

// PredictGoalAchievement derives a trend from a goal's progress history and
// projects the days remaining until the target is reached on the current
// trajectory. Returns nil when the history is too short for a trend.
func (e *Engine) PredictGoalAchievement(goal pkg.GoalRecord) *GoalProjection {
	cfg := e.config()

	points := make([]DataPoint, len(goal.Progress))
	for i, p := range goal.Progress {
		points[i] = DataPoint{Value: p.Value, Timestamp: p.Timestamp}
	}

	trend := e.AnalyzeTrendsWithStatistics(goal.Metric, points)
	if trend == nil {
		return nil
	}

	// AnalyzeTrendsWithStatistics sorts a copy, so find the latest here too
	latest := points[0]
	for _, p := range points[1:] {
		if p.Timestamp.After(latest.Timestamp) {
			latest = p
		}
	}
	current := latest.Value

	projection := &GoalProjection{
		GoalID:       goal.ID,
		Metric:       goal.Metric,
		Target:       goal.Target,
		CurrentValue: current,
		Trend:        trend,
		DaysToTarget: -1,
		Confidence:   trend.Confidence,
	}

	remaining := goal.Target - current
	if remaining <= 0 {
		// Already at or past the target
		projection.Achievable = true
		projection.DaysToTarget = 0
		return projection
	}

	// A flat or opposing trend never reaches the target
	if trend.Rate <= 0 {
		return projection
	}

	days := remaining / trend.Rate
	if math.IsNaN(days) || math.IsInf(days, 0) || days < 0 {
		return projection
	}
	projection.DaysToTarget = int(math.Ceil(days))
	projection.Achievable = trend.Confidence >= cfg.EnhancedAnalysis.PredictionConfidenceThreshold

	e.logger.Debug("Goal projection complete",
		"goal_id", goal.ID, "metric", goal.Metric,
		"days_to_target", projection.DaysToTarget, "achievable", projection.Achievable)
	return projection
}
