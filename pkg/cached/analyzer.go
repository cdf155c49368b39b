// Package cached wraps the pattern and analytics engines with a
// content-addressed, tag-invalidated result cache. For fixed inputs and fixed
// configuration, repeated calls return the cached result without re-running
// the engine; any change to an input collection, a scalar parameter, or an
// output-affecting configuration section produces a different key and forces
// recomputation.
package cached

import (
	"sync"
	"time"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/analytics"
	"github.com/aulanota/insight/pkg/cache"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
	"github.com/aulanota/insight/pkg/metrics"
	"github.com/aulanota/insight/pkg/patterns"
)

// PatternEngine is the pattern-analysis surface the facade wraps. Satisfied
// by *patterns.Engine; tests substitute call-counting stubs.
type PatternEngine interface {
	AnalyzeEmotionPatterns(emotions []pkg.EmotionRecord, timeframeDays int) []patterns.PatternResult
	AnalyzeSensoryPatterns(inputs []pkg.SensoryRecord, timeframeDays int) []patterns.PatternResult
	AnalyzeEnvironmentalCorrelations(sessions []pkg.SessionRecord) []patterns.CorrelationResult
	GenerateTriggerAlerts(emotions []pkg.EmotionRecord, inputs []pkg.SensoryRecord, sessions []pkg.SessionRecord, subjectID string) []patterns.TriggerAlert
}

// TrendEngine is the statistical-analysis surface the facade wraps.
// Satisfied by *analytics.Engine.
type TrendEngine interface {
	AnalyzeTrendsWithStatistics(metric string, points []analytics.DataPoint) *analytics.TrendAnalysis
	DetectAnomalies(emotions []pkg.EmotionRecord, inputs []pkg.SensoryRecord, sessions []pkg.SessionRecord) []analytics.AnomalyDetection
	GenerateCorrelationMatrix(sessions []pkg.SessionRecord) analytics.CorrelationMatrix
	PredictGoalAchievement(goal pkg.GoalRecord) *analytics.GoalProjection
	AssessRisks(emotions []pkg.EmotionRecord, subjectID string) *analytics.RiskInsight
}

// Analyzer is the cached analysis facade
type Analyzer struct {
	store    *cache.Store
	pattern  PatternEngine
	trend    TrendEngine
	provider *config.Provider
	logger   *logx.Logger
	metrics  *metrics.Metrics

	mu         sync.RWMutex
	configHash string
	ttl        time.Duration

	unsubscribe func()

	now func() time.Time
}

// NewAnalyzer creates the facade and subscribes it to configuration changes.
// metrics may be nil. On every configuration update the facade recomputes its
// config hash and, when cache.invalidate_on_config_change is set, flushes the
// whole cache.
func NewAnalyzer(
	store *cache.Store,
	pattern PatternEngine,
	trend TrendEngine,
	provider *config.Provider,
	logger *logx.Logger,
	m *metrics.Metrics,
) *Analyzer {
	cfg := provider.Get()
	a := &Analyzer{
		store:      store,
		pattern:    pattern,
		trend:      trend,
		provider:   provider,
		logger:     logger,
		metrics:    m,
		configHash: config.AnalysisHash(cfg),
		ttl:        cfg.Cache.TTL.Std(),
		now:        time.Now,
	}
	a.unsubscribe = provider.Subscribe(a.onConfigChange)
	return a
}

// Close detaches the facade from configuration updates
func (a *Analyzer) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *Analyzer) onConfigChange(cfg config.Config) {
	newHash := config.AnalysisHash(cfg)

	a.mu.Lock()
	changed := newHash != a.configHash
	a.configHash = newHash
	a.ttl = cfg.Cache.TTL.Std()
	a.mu.Unlock()

	if changed && cfg.Cache.InvalidateOnConfigChange {
		removed := a.store.Flush()
		if a.metrics != nil {
			a.metrics.CacheInvalidations.Add(float64(removed))
		}
		a.logger.Info("Cache flushed after configuration change", "removed", removed)
	}
}

func (a *Analyzer) snapshot() (string, time.Duration) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.configHash, a.ttl
}

// InvalidateStudentCache removes every cached result tagged with the
// subject's identifier and returns the removed count.
func (a *Analyzer) InvalidateStudentCache(subjectID string) int {
	removed := a.store.InvalidateByTag(subjectTag(subjectID))
	if a.metrics != nil {
		a.metrics.CacheInvalidations.Add(float64(removed))
	}
	a.logger.Debug("Subject cache invalidated", "subject_id", subjectID, "removed", removed)
	return removed
}

// InvalidateAllCache removes every cached analysis result by invalidating
// each known operation tag.
func (a *Analyzer) InvalidateAllCache() int {
	removed := 0
	for _, op := range Operations {
		removed += a.store.InvalidateByTag(op)
	}
	if a.metrics != nil {
		a.metrics.CacheInvalidations.Add(float64(removed))
	}
	a.logger.Debug("Analysis cache flushed", "removed", removed)
	return removed
}

// CacheStats returns the underlying store's counters
func (a *Analyzer) CacheStats() cache.Stats {
	return a.store.Stats()
}

// lookup fetches a live cache entry, treating entries older than the TTL as
// misses and evicting them.
func (a *Analyzer) lookup(key string, ttl time.Duration) (interface{}, bool) {
	entry, ok := a.store.GetEntry(key)
	if !ok {
		if a.metrics != nil {
			a.metrics.CacheMisses.Inc()
		}
		return nil, false
	}
	if ttl > 0 && a.now().Sub(entry.CreatedAt) > ttl {
		a.store.Delete(key)
		if a.metrics != nil {
			a.metrics.CacheMisses.Inc()
		}
		return nil, false
	}
	if a.metrics != nil {
		a.metrics.CacheHits.Inc()
	}
	return entry.Value, true
}

// observe times an engine call on the cache-miss path
func (a *Analyzer) observe(operation string, start time.Time) {
	if a.metrics != nil {
		a.metrics.AnalysisDuration.WithLabelValues(operation).Observe(a.now().Sub(start).Seconds())
	}
}

func subjectTag(subjectID string) string {
	return "student-" + subjectID
}

// subjectTags collects one tag per distinct subject ID across the inputs
func subjectTags(ids ...[]string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, group := range ids {
		for _, id := range group {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			tags = append(tags, subjectTag(id))
		}
	}
	return tags
}

func emotionSubjects(records []pkg.EmotionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SubjectID
	}
	return out
}

func sensorySubjects(records []pkg.SensoryRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SubjectID
	}
	return out
}

func sessionSubjects(records []pkg.SessionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SubjectID
	}
	return out
}
