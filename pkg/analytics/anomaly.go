package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/stats"
)

// DetectAnomalies flags emotion records whose intensity deviates sharply from
// the batch baseline, and calendar days with unusually many sensory inputs.
// Results are sorted newest-first. All-equal inputs produce no anomalies
// because the standard deviation short-circuits to zero.
func (e *Engine) DetectAnomalies(
	emotions []pkg.EmotionRecord,
	inputs []pkg.SensoryRecord,
	sessions []pkg.SessionRecord,
) []AnomalyDetection {
	cfg := e.config()

	// The anomaly multiplier lowers the effective z-score bar when > 1
	threshold := cfg.EnhancedAnalysis.AnomalyThreshold / cfg.AlertSensitivity.AnomalyMultiplier

	var anomalies []AnomalyDetection
	anomalies = append(anomalies, e.emotionIntensityAnomalies(emotions, threshold)...)
	anomalies = append(anomalies, e.sensoryFrequencyAnomalies(inputs, threshold)...)

	sort.Slice(anomalies, func(i, j int) bool {
		return anomalies[i].Timestamp.After(anomalies[j].Timestamp)
	})

	e.logger.Debug("Anomaly detection complete",
		"emotions", len(emotions), "sensory", len(inputs), "anomalies", len(anomalies))
	return anomalies
}

func (e *Engine) emotionIntensityAnomalies(emotions []pkg.EmotionRecord, threshold float64) []AnomalyDetection {
	cfg := e.config()
	if len(emotions) < cfg.EnhancedAnalysis.MinSampleSize {
		return nil
	}

	values := make([]float64, len(emotions))
	for i, rec := range emotions {
		values[i] = float64(rec.Intensity)
	}
	mean, std := stats.MeanStd(values)
	if std <= 0 {
		return nil
	}

	var anomalies []AnomalyDetection
	for _, rec := range emotions {
		z := stats.ZScore(float64(rec.Intensity), mean, std)
		if math.Abs(z) <= threshold {
			continue
		}
		anomalies = append(anomalies, AnomalyDetection{
			Timestamp:      rec.Timestamp,
			Type:           "emotion-intensity",
			Severity:       severityByZ(math.Abs(z)),
			DeviationScore: z,
			Description: fmt.Sprintf(
				"'%s' at intensity %d deviates %.1f standard deviations from the recent mean %.1f",
				rec.Label, rec.Intensity, math.Abs(z), mean),
			Recommendations: []string{
				"Review the session notes around this observation",
				"Check for one-off environmental disruptions that day",
			},
		})
	}
	return anomalies
}

// sensoryFrequencyAnomalies buckets sensory inputs per calendar day and flags
// days whose count is a z-score outlier.
func (e *Engine) sensoryFrequencyAnomalies(inputs []pkg.SensoryRecord, threshold float64) []AnomalyDetection {
	cfg := e.config()
	if len(inputs) == 0 {
		return nil
	}

	daily := make(map[time.Time]int)
	for _, rec := range inputs {
		daily[rec.Timestamp.Truncate(24*time.Hour)]++
	}
	if len(daily) < cfg.EnhancedAnalysis.MinSampleSize {
		return nil
	}

	days := make([]time.Time, 0, len(daily))
	counts := make([]float64, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		counts = append(counts, float64(daily[day]))
	}

	mean, std := stats.MeanStd(counts)
	if std <= 0 {
		return nil
	}

	var anomalies []AnomalyDetection
	for i, day := range days {
		z := stats.ZScore(counts[i], mean, std)
		if math.Abs(z) <= threshold {
			continue
		}
		anomalies = append(anomalies, AnomalyDetection{
			Timestamp:      day,
			Type:           "sensory-frequency",
			Severity:       severityByZ(math.Abs(z)),
			DeviationScore: z,
			Description: fmt.Sprintf(
				"%d sensory inputs recorded on %s against a daily mean of %.1f",
				int(counts[i]), day.Format("2006-01-02"), mean),
			Recommendations: []string{
				"Compare this day's schedule with a typical day",
				"Look for sensory load sources unique to this date",
			},
		})
	}
	return anomalies
}

// severityByZ bands an absolute z-score into a severity label
func severityByZ(absZ float64) string {
	switch {
	case absZ > 3:
		return "high"
	case absZ > 2.5:
		return "medium"
	default:
		return "low"
	}
}
