package patterns

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	pkg "github.com/aulanota/insight/pkg"
)

// Alert synthesis thresholds. Two high-intensity negative records inside the
// recent window is the canonical concern floor; improvement requires a clear
// majority of strongly positive states among at least five recent records.
const (
	concernAlertMinCount     = 2
	improvementMinRecords    = 5
	improvementMinPositive   = 3
	strongPositiveIntensity  = 4
	patternAlertCorrelationR = 0.6
)

// GenerateTriggerAlerts scans the recent window for conditions worth
// surfacing immediately. Alert IDs are unique per call and timestamps are
// generation time, not observation time.
func (e *Engine) GenerateTriggerAlerts(
	emotions []pkg.EmotionRecord,
	inputs []pkg.SensoryRecord,
	sessions []pkg.SessionRecord,
	subjectID string,
) []TriggerAlert {
	cfg := e.config()
	now := e.now()
	cutoff := now.AddDate(0, 0, -cfg.TimeWindows.RecentDataDays)

	var recent []pkg.EmotionRecord
	for _, rec := range emotions {
		if !rec.Timestamp.Before(cutoff) {
			recent = append(recent, rec)
		}
	}

	effectiveIntensity := cfg.PatternAnalysis.HighIntensityThreshold /
		cfg.AlertSensitivity.EmotionIntensityMultiplier

	var alerts []TriggerAlert

	highNegative := 0
	for _, rec := range recent {
		if pkg.IsNegativeEmotion(rec.Label) && float64(rec.Intensity) >= effectiveIntensity {
			highNegative++
		}
	}
	if highNegative >= concernAlertMinCount {
		alerts = append(alerts, TriggerAlert{
			ID:       uuid.New().String(),
			Type:     "concern",
			Severity: "high",
			Title:    "Repeated high-intensity negative emotions",
			Description: fmt.Sprintf(
				"%d high-intensity negative emotion records in the last %d days",
				highNegative, cfg.TimeWindows.RecentDataDays),
			Recommendations: []string{
				"Check in with the subject as soon as practical",
				"Review the sessions surrounding each episode for triggers",
				"Consider adjusting the current support plan",
			},
			Timestamp:  now,
			SubjectID:  subjectID,
			DataPoints: len(recent),
		})
	}

	if len(recent) >= improvementMinRecords {
		strongPositive := 0
		for _, rec := range recent {
			if pkg.IsPositiveEmotion(rec.Label) && rec.Intensity >= strongPositiveIntensity {
				strongPositive++
			}
		}
		if strongPositive >= improvementMinPositive {
			alerts = append(alerts, TriggerAlert{
				ID:       uuid.New().String(),
				Type:     "improvement",
				Severity: "low",
				Title:    "Sustained positive emotional states",
				Description: fmt.Sprintf(
					"%d of %d recent emotion records are strongly positive",
					strongPositive, len(recent)),
				Recommendations: []string{
					"Identify what changed and reinforce it",
					"Record the current routine as a known-good baseline",
				},
				Timestamp:  now,
				SubjectID:  subjectID,
				DataPoints: len(recent),
			})
		}
	}

	for _, corr := range e.AnalyzeEnvironmentalCorrelations(sessions) {
		if corr.Significance != "high" || math.Abs(corr.Correlation) <= patternAlertCorrelationR {
			continue
		}
		alerts = append(alerts, TriggerAlert{
			ID:       uuid.New().String(),
			Type:     "pattern",
			Severity: "medium",
			Title:    fmt.Sprintf("Strong link between %s and %s", corr.Factor1, corr.Factor2),
			Description: fmt.Sprintf("%s (r=%.2f)", corr.Description, corr.Correlation),
			Recommendations: corr.Recommendations,
			Timestamp:  now,
			SubjectID:  subjectID,
			DataPoints: len(sessions),
		})
	}

	if len(alerts) > 0 {
		e.logger.Info("Trigger alerts generated",
			"subject_id", subjectID, "alerts", len(alerts))
	}
	return alerts
}
