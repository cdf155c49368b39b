package patterns

import (
	"fmt"
	"time"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/stats"
)

// moderateIntensity is the fixed floor for the moderate-negative fallback check
const moderateIntensity = 3

// AnalyzeEmotionPatterns classifies emotion records inside the timeframe into
// named patterns. timeframeDays <= 0 selects the configured default window.
// Fewer than minDataPoints records inside the window yields no patterns.
func (e *Engine) AnalyzeEmotionPatterns(emotions []pkg.EmotionRecord, timeframeDays int) []PatternResult {
	cfg := e.config()
	days := e.timeframeDays(timeframeDays)
	cutoff := e.now().AddDate(0, 0, -days)

	var recent []pkg.EmotionRecord
	for _, rec := range emotions {
		if !rec.Timestamp.Before(cutoff) {
			recent = append(recent, rec)
		}
	}
	if len(recent) < cfg.PatternAnalysis.MinDataPoints {
		e.logger.Debug("Insufficient emotion data for pattern analysis",
			"records", len(recent), "required", cfg.PatternAnalysis.MinDataPoints)
		return nil
	}

	timeframe := fmt.Sprintf("last %d days", days)
	var results []PatternResult

	// Sensitivity multipliers above 1.0 lower the effective thresholds
	effectiveIntensity := cfg.PatternAnalysis.HighIntensityThreshold /
		cfg.AlertSensitivity.EmotionIntensityMultiplier
	effectiveFrequency := cfg.PatternAnalysis.ConcernFrequencyThreshold /
		cfg.AlertSensitivity.FrequencyMultiplier

	highNegative := 0
	for _, rec := range recent {
		if pkg.IsNegativeEmotion(rec.Label) && float64(rec.Intensity) >= effectiveIntensity {
			highNegative++
		}
	}
	highNegativeShare := float64(highNegative) / float64(len(recent))
	highNegativeFired := highNegativeShare > effectiveFrequency

	if highNegativeFired {
		results = append(results, PatternResult{
			Type:       "emotion",
			Pattern:    "high-intensity-negative",
			Confidence: stats.Clamp01(highNegativeShare),
			Frequency:  highNegative,
			Description: fmt.Sprintf(
				"%d of %d recent emotion records are high-intensity negative states",
				highNegative, len(recent)),
			Recommendations: []string{
				"Review recent sessions for recurring triggers",
				"Consider scheduling calming activities before high-stress periods",
				"Share observations with the support team",
			},
			DataPoints: len(recent),
			Timeframe:  timeframe,
		})
	}

	if label, count := mostFrequentLabel(recent); count > 0 {
		share := float64(count) / float64(len(recent))
		if share > cfg.PatternAnalysis.EmotionConsistencyThreshold {
			results = append(results, PatternResult{
				Type:       "emotion",
				Pattern:    "consistent-emotion",
				Confidence: stats.Clamp01(share),
				Frequency:  count,
				Description: fmt.Sprintf(
					"'%s' is the dominant emotional state (%d of %d records)",
					label, count, len(recent)),
				Recommendations: []string{
					fmt.Sprintf("Track what reliably precedes '%s' states", label),
					"Note whether the dominant state is helping or hindering engagement",
				},
				DataPoints: len(recent),
				Timeframe:  timeframe,
			})
		}
	}

	// Fallback: moderate-intensity negatives only matter when the
	// high-intensity check did not already fire.
	if !highNegativeFired {
		moderate := 0
		for _, rec := range recent {
			if pkg.IsNegativeEmotion(rec.Label) && rec.Intensity >= moderateIntensity {
				moderate++
			}
		}
		moderateShare := float64(moderate) / float64(len(recent))
		if moderateShare > cfg.PatternAnalysis.ModerateNegativeThreshold {
			results = append(results, PatternResult{
				Type:       "emotion",
				Pattern:    "moderate-negative-trend",
				Confidence: stats.Clamp01(moderateShare),
				Frequency:  moderate,
				Description: fmt.Sprintf(
					"%d of %d recent emotion records are moderate-or-higher negative states",
					moderate, len(recent)),
				Recommendations: []string{
					"Watch for escalation toward high-intensity episodes",
					"Review environmental factors across the affected sessions",
				},
				DataPoints: len(recent),
				Timeframe:  timeframe,
			})
		}
	}

	e.logger.Debug("Emotion pattern analysis complete",
		"records", len(recent), "patterns", len(results))
	return results
}

// mostFrequentLabel returns the most common emotion label and its count.
// Ties resolve to the earliest-observed label for determinism.
func mostFrequentLabel(emotions []pkg.EmotionRecord) (string, int) {
	counts := make(map[string]int)
	first := make(map[string]time.Time)
	for _, rec := range emotions {
		counts[rec.Label]++
		if t, ok := first[rec.Label]; !ok || rec.Timestamp.Before(t) {
			first[rec.Label] = rec.Timestamp
		}
	}

	best := ""
	bestCount := 0
	for label, count := range counts {
		if count > bestCount ||
			(count == bestCount && best != "" && first[label].Before(first[best])) {
			best = label
			bestCount = count
		}
	}
	return best, bestCount
}
