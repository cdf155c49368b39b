package cached

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/analytics"
	"github.com/aulanota/insight/pkg/cache"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
	"github.com/aulanota/insight/pkg/patterns"
)

// countingPatternEngine counts calls into each pattern operation
type countingPatternEngine struct {
	emotionCalls int
	sensoryCalls int
	envCalls     int
	alertCalls   int
}

func (c *countingPatternEngine) AnalyzeEmotionPatterns(emotions []pkg.EmotionRecord, timeframeDays int) []patterns.PatternResult {
	c.emotionCalls++
	return []patterns.PatternResult{{Pattern: "high-intensity-negative", DataPoints: len(emotions)}}
}

func (c *countingPatternEngine) AnalyzeSensoryPatterns(inputs []pkg.SensoryRecord, timeframeDays int) []patterns.PatternResult {
	c.sensoryCalls++
	return nil
}

func (c *countingPatternEngine) AnalyzeEnvironmentalCorrelations(sessions []pkg.SessionRecord) []patterns.CorrelationResult {
	c.envCalls++
	return nil
}

func (c *countingPatternEngine) GenerateTriggerAlerts(emotions []pkg.EmotionRecord, inputs []pkg.SensoryRecord, sessions []pkg.SessionRecord, subjectID string) []patterns.TriggerAlert {
	c.alertCalls++
	return []patterns.TriggerAlert{{ID: "a1", Type: "concern", SubjectID: subjectID}}
}

// countingTrendEngine counts calls into each analytics operation
type countingTrendEngine struct {
	trendCalls   int
	anomalyCalls int
	matrixCalls  int
	goalCalls    int
	riskCalls    int
}

func (c *countingTrendEngine) AnalyzeTrendsWithStatistics(metric string, points []analytics.DataPoint) *analytics.TrendAnalysis {
	c.trendCalls++
	return &analytics.TrendAnalysis{Metric: metric, Direction: "stable"}
}

func (c *countingTrendEngine) DetectAnomalies(emotions []pkg.EmotionRecord, inputs []pkg.SensoryRecord, sessions []pkg.SessionRecord) []analytics.AnomalyDetection {
	c.anomalyCalls++
	return nil
}

func (c *countingTrendEngine) GenerateCorrelationMatrix(sessions []pkg.SessionRecord) analytics.CorrelationMatrix {
	c.matrixCalls++
	return analytics.CorrelationMatrix{}
}

func (c *countingTrendEngine) PredictGoalAchievement(goal pkg.GoalRecord) *analytics.GoalProjection {
	c.goalCalls++
	return &analytics.GoalProjection{GoalID: goal.ID}
}

func (c *countingTrendEngine) AssessRisks(emotions []pkg.EmotionRecord, subjectID string) *analytics.RiskInsight {
	c.riskCalls++
	return nil
}

func testRecords(subjectID string, n int) []pkg.EmotionRecord {
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	records := make([]pkg.EmotionRecord, n)
	for i := range records {
		records[i] = pkg.EmotionRecord{
			ID:        subjectID + "-e" + string(rune('0'+i)),
			SubjectID: subjectID,
			Label:     "anxious",
			Intensity: 4,
			Timestamp: base.AddDate(0, 0, -i),
		}
	}
	return records
}

func newTestAnalyzer(cfg config.Config) (*Analyzer, *countingPatternEngine, *countingTrendEngine, *config.Provider) {
	logger := logx.NewLogger("error", "cached-test")
	provider := config.NewProvider(cfg, logger)
	store := cache.NewStore(logger)
	pattern := &countingPatternEngine{}
	trend := &countingTrendEngine{}
	analyzer := NewAnalyzer(store, pattern, trend, provider, logger, nil)
	return analyzer, pattern, trend, provider
}

func TestRepeatedCallComputesOnce(t *testing.T) {
	analyzer, pattern, _, _ := newTestAnalyzer(config.Default())
	records := testRecords("s1", 5)

	first, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	second, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)

	assert.Equal(t, 1, pattern.emotionCalls, "engine must run exactly once")
	assert.Equal(t, first, second)
}

func TestInputChangeForcesRecomputation(t *testing.T) {
	analyzer, pattern, _, _ := newTestAnalyzer(config.Default())
	records := testRecords("s1", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)

	// Change one element of one record
	changed := make([]pkg.EmotionRecord, len(records))
	copy(changed, records)
	changed[2].Intensity = 5

	_, err = analyzer.AnalyzeEmotionPatterns(changed, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, pattern.emotionCalls)
}

func TestScalarParameterChangesKey(t *testing.T) {
	analyzer, pattern, _, _ := newTestAnalyzer(config.Default())
	records := testRecords("s1", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	_, err = analyzer.AnalyzeEmotionPatterns(records, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, pattern.emotionCalls)
}

func TestStudentTagInvalidation(t *testing.T) {
	analyzer, pattern, _, _ := newTestAnalyzer(config.Default())

	recordsX := testRecords("student-x", 5)
	recordsY := testRecords("student-y", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(recordsX, 30)
	require.NoError(t, err)
	_, err = analyzer.AnalyzeEmotionPatterns(recordsY, 30)
	require.NoError(t, err)

	removed := analyzer.InvalidateStudentCache("student-x")
	assert.Equal(t, 1, removed)

	// X recomputes, Y still cached
	_, err = analyzer.AnalyzeEmotionPatterns(recordsX, 30)
	require.NoError(t, err)
	_, err = analyzer.AnalyzeEmotionPatterns(recordsY, 30)
	require.NoError(t, err)
	assert.Equal(t, 3, pattern.emotionCalls)
}

func TestInvalidateAllCache(t *testing.T) {
	analyzer, pattern, trend, _ := newTestAnalyzer(config.Default())
	records := testRecords("s1", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	_, err = analyzer.AssessRisks(records, "s1")
	require.NoError(t, err)

	removed := analyzer.InvalidateAllCache()
	assert.Equal(t, 2, removed)

	_, err = analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	_, err = analyzer.AssessRisks(records, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, pattern.emotionCalls)
	assert.Equal(t, 2, trend.riskCalls)
}

func TestConfigChangeInvalidatesAndChangesKey(t *testing.T) {
	analyzer, pattern, _, provider := newTestAnalyzer(config.Default())
	records := testRecords("s1", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.CacheStats().Entries)

	// An output-affecting change flushes the cache and alters the key
	pa := config.Default().PatternAnalysis
	pa.HighIntensityThreshold = 3
	provider.Update(config.Partial{PatternAnalysis: &pa})

	assert.Equal(t, 0, analyzer.CacheStats().Entries)

	_, err = analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, pattern.emotionCalls)
}

func TestConfigChangeFlushDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.InvalidateOnConfigChange = false
	analyzer, _, _, provider := newTestAnalyzer(cfg)
	records := testRecords("s1", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)

	pa := cfg.PatternAnalysis
	pa.HighIntensityThreshold = 3
	provider.Update(config.Partial{PatternAnalysis: &pa})

	// Entry survives, though the new config hash will miss it
	assert.Equal(t, 1, analyzer.CacheStats().Entries)
}

func TestTTLExpiry(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.TTL = config.Duration(10 * time.Minute)
	analyzer, pattern, _, _ := newTestAnalyzer(cfg)
	records := testRecords("s1", 5)

	// Entry CreatedAt comes from the real clock inside the cache store,
	// so the stubbed clock starts from it and advances.
	now := time.Now()
	analyzer.now = func() time.Time { return now }

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)

	// Within TTL: served from cache
	now = now.Add(5 * time.Minute)
	_, err = analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, pattern.emotionCalls)

	// Past TTL: stale entry is evicted and recomputed
	now = now.Add(20 * time.Minute)
	_, err = analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, pattern.emotionCalls)
}

func TestDistinctOperationsCachedSeparately(t *testing.T) {
	analyzer, pattern, trend, _ := newTestAnalyzer(config.Default())
	records := testRecords("s1", 5)

	_, err := analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	_, err = analyzer.AssessRisks(records, "s1")
	require.NoError(t, err)
	_, err = analyzer.AnalyzeEmotionPatterns(records, 30)
	require.NoError(t, err)
	_, err = analyzer.AssessRisks(records, "s1")
	require.NoError(t, err)

	assert.Equal(t, 1, pattern.emotionCalls)
	assert.Equal(t, 1, trend.riskCalls)
}
