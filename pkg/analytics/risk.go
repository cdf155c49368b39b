package analytics

import (
	"fmt"
	"math"

	pkg "github.com/aulanota/insight/pkg"
)

// AssessRisks counts high-intensity negative emotion records inside the short
// recent window and reports a risk insight when the count meets the
// sensitivity-adjusted assessment threshold. Returns nil when the window is
// clean.
func (e *Engine) AssessRisks(emotions []pkg.EmotionRecord, subjectID string) *RiskInsight {
	cfg := e.config()
	now := e.now()
	cutoff := now.AddDate(0, 0, -cfg.TimeWindows.ShortTermDays)

	effectiveIntensity := cfg.PatternAnalysis.HighIntensityThreshold /
		cfg.AlertSensitivity.EmotionIntensityMultiplier
	// The frequency multiplier lowers the count required to flag a risk
	effectiveCount := float64(cfg.EnhancedAnalysis.RiskAssessmentThreshold) /
		cfg.AlertSensitivity.FrequencyMultiplier

	count := 0
	for _, rec := range emotions {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		if pkg.IsNegativeEmotion(rec.Label) && float64(rec.Intensity) >= effectiveIntensity {
			count++
		}
	}
	if float64(count) < effectiveCount {
		return nil
	}

	level := "medium"
	if float64(count) >= 2*math.Max(effectiveCount, 1) {
		level = "high"
	}

	insight := &RiskInsight{
		SubjectID:  subjectID,
		Level:      level,
		Count:      count,
		WindowDays: cfg.TimeWindows.ShortTermDays,
		Timestamp:  now,
		Description: fmt.Sprintf(
			"%d high-intensity negative emotion records in the last %d days",
			count, cfg.TimeWindows.ShortTermDays),
		Recommendations: []string{
			"Increase observation frequency for the next few days",
			"Review recent schedule or environment changes",
			"Escalate to the support team if the pattern continues",
		},
	}

	e.logger.Info("Risk assessment flagged",
		"subject_id", subjectID, "level", level, "count", count)
	return insight
}
