package cached

import (
	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/analytics"
	"github.com/aulanota/insight/pkg/fingerprint"
	"github.com/aulanota/insight/pkg/patterns"
)

// Cache key prefixes double as operation tags, so a whole operation's results
// can be invalidated in one call.
const (
	opEmotionPatterns      = "emotion_patterns"
	opSensoryPatterns      = "sensory_patterns"
	opEnvCorrelations      = "environmental_correlations"
	opTriggerAlerts        = "trigger_alerts"
	opTrendAnalysis        = "trend_analysis"
	opAnomalyDetection     = "anomaly_detection"
	opCorrelationMatrix    = "correlation_matrix"
	opGoalProjection       = "goal_projection"
	opRiskAssessment       = "risk_assessment"
)

// Operations enumerates every cacheable operation tag
var Operations = []string{
	opEmotionPatterns,
	opSensoryPatterns,
	opEnvCorrelations,
	opTriggerAlerts,
	opTrendAnalysis,
	opAnomalyDetection,
	opCorrelationMatrix,
	opGoalProjection,
	opRiskAssessment,
}

// AnalyzeEmotionPatterns returns cached emotion patterns, computing and
// storing them on miss. The only error is a fingerprinting failure on
// non-serializable input.
func (a *Analyzer) AnalyzeEmotionPatterns(emotions []pkg.EmotionRecord, timeframeDays int) ([]patterns.PatternResult, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opEmotionPatterns, map[string]interface{}{
		"emotions":       emotions,
		"timeframe_days": timeframeDays,
		"config":         hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.([]patterns.PatternResult), nil
	}

	start := a.now()
	result := a.pattern.AnalyzeEmotionPatterns(emotions, timeframeDays)
	a.observe(opEmotionPatterns, start)

	a.store.Set(key, result, append([]string{opEmotionPatterns}, subjectTags(emotionSubjects(emotions))...))
	return result, nil
}

// AnalyzeSensoryPatterns returns cached sensory patterns
func (a *Analyzer) AnalyzeSensoryPatterns(inputs []pkg.SensoryRecord, timeframeDays int) ([]patterns.PatternResult, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opSensoryPatterns, map[string]interface{}{
		"sensory_inputs": inputs,
		"timeframe_days": timeframeDays,
		"config":         hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.([]patterns.PatternResult), nil
	}

	start := a.now()
	result := a.pattern.AnalyzeSensoryPatterns(inputs, timeframeDays)
	a.observe(opSensoryPatterns, start)

	a.store.Set(key, result, append([]string{opSensoryPatterns}, subjectTags(sensorySubjects(inputs))...))
	return result, nil
}

// AnalyzeEnvironmentalCorrelations returns cached environmental correlations
func (a *Analyzer) AnalyzeEnvironmentalCorrelations(sessions []pkg.SessionRecord) ([]patterns.CorrelationResult, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opEnvCorrelations, map[string]interface{}{
		"sessions": sessions,
		"config":   hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.([]patterns.CorrelationResult), nil
	}

	start := a.now()
	result := a.pattern.AnalyzeEnvironmentalCorrelations(sessions)
	a.observe(opEnvCorrelations, start)

	a.store.Set(key, result, append([]string{opEnvCorrelations}, subjectTags(sessionSubjects(sessions))...))
	return result, nil
}

// GenerateTriggerAlerts returns cached trigger alerts for the subject.
// Alert timestamps and IDs are generation-time values, so a cache hit returns
// the alerts exactly as first generated.
func (a *Analyzer) GenerateTriggerAlerts(
	emotions []pkg.EmotionRecord,
	inputs []pkg.SensoryRecord,
	sessions []pkg.SessionRecord,
	subjectID string,
) ([]patterns.TriggerAlert, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opTriggerAlerts, map[string]interface{}{
		"emotions":       emotions,
		"sensory_inputs": inputs,
		"sessions":       sessions,
		"subject_id":     subjectID,
		"config":         hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.([]patterns.TriggerAlert), nil
	}

	start := a.now()
	result := a.pattern.GenerateTriggerAlerts(emotions, inputs, sessions, subjectID)
	a.observe(opTriggerAlerts, start)

	if a.metrics != nil {
		for _, alert := range result {
			a.metrics.AlertsGenerated.WithLabelValues(alert.Type).Inc()
		}
	}

	tags := append([]string{opTriggerAlerts}, subjectTags([]string{subjectID},
		emotionSubjects(emotions), sensorySubjects(inputs), sessionSubjects(sessions))...)
	a.store.Set(key, result, tags)
	return result, nil
}

// AnalyzeTrendsWithStatistics returns a cached trend analysis. subjectID is
// used only for tagging; it does not affect the computation.
func (a *Analyzer) AnalyzeTrendsWithStatistics(metric string, points []analytics.DataPoint, subjectID string) (*analytics.TrendAnalysis, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opTrendAnalysis, map[string]interface{}{
		"metric": metric,
		"points": points,
		"config": hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.(*analytics.TrendAnalysis), nil
	}

	start := a.now()
	result := a.trend.AnalyzeTrendsWithStatistics(metric, points)
	a.observe(opTrendAnalysis, start)

	a.store.Set(key, result, append([]string{opTrendAnalysis}, subjectTags([]string{subjectID})...))
	return result, nil
}

// DetectAnomalies returns cached anomaly detections
func (a *Analyzer) DetectAnomalies(
	emotions []pkg.EmotionRecord,
	inputs []pkg.SensoryRecord,
	sessions []pkg.SessionRecord,
) ([]analytics.AnomalyDetection, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opAnomalyDetection, map[string]interface{}{
		"emotions":       emotions,
		"sensory_inputs": inputs,
		"sessions":       sessions,
		"config":         hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.([]analytics.AnomalyDetection), nil
	}

	start := a.now()
	result := a.trend.DetectAnomalies(emotions, inputs, sessions)
	a.observe(opAnomalyDetection, start)

	tags := append([]string{opAnomalyDetection}, subjectTags(
		emotionSubjects(emotions), sensorySubjects(inputs), sessionSubjects(sessions))...)
	a.store.Set(key, result, tags)
	return result, nil
}

// GenerateCorrelationMatrix returns a cached factor correlation matrix
func (a *Analyzer) GenerateCorrelationMatrix(sessions []pkg.SessionRecord) (analytics.CorrelationMatrix, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opCorrelationMatrix, map[string]interface{}{
		"sessions": sessions,
		"config":   hash,
	})
	if err != nil {
		return analytics.CorrelationMatrix{}, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.(analytics.CorrelationMatrix), nil
	}

	start := a.now()
	result := a.trend.GenerateCorrelationMatrix(sessions)
	a.observe(opCorrelationMatrix, start)

	a.store.Set(key, result, append([]string{opCorrelationMatrix}, subjectTags(sessionSubjects(sessions))...))
	return result, nil
}

// PredictGoalAchievement returns a cached goal projection
func (a *Analyzer) PredictGoalAchievement(goal pkg.GoalRecord) (*analytics.GoalProjection, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opGoalProjection, map[string]interface{}{
		"goal":   goal,
		"config": hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.(*analytics.GoalProjection), nil
	}

	start := a.now()
	result := a.trend.PredictGoalAchievement(goal)
	a.observe(opGoalProjection, start)

	a.store.Set(key, result, append([]string{opGoalProjection}, subjectTags([]string{goal.SubjectID})...))
	return result, nil
}

// AssessRisks returns a cached risk assessment
func (a *Analyzer) AssessRisks(emotions []pkg.EmotionRecord, subjectID string) (*analytics.RiskInsight, error) {
	hash, ttl := a.snapshot()
	key, err := fingerprint.Key(opRiskAssessment, map[string]interface{}{
		"emotions":   emotions,
		"subject_id": subjectID,
		"config":     hash,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := a.lookup(key, ttl); ok {
		return v.(*analytics.RiskInsight), nil
	}

	start := a.now()
	result := a.trend.AssessRisks(emotions, subjectID)
	a.observe(opRiskAssessment, start)

	tags := append([]string{opRiskAssessment}, subjectTags([]string{subjectID}, emotionSubjects(emotions))...)
	a.store.Set(key, result, tags)
	return result, nil
}
