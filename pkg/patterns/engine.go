// Package patterns classifies emotion and sensory observation sets into named
// behavioral patterns, derives environmental correlations, and synthesizes
// trigger alerts. All analysis methods are pure over their inputs plus the
// latest configuration snapshot; the engine subscribes to configuration
// changes so each call sees current thresholds.
package patterns

import (
	"sync"
	"time"

	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
)

// PatternResult is a single detected behavioral pattern
type PatternResult struct {
	Type            string   `json:"type"`    // emotion | sensory | environmental
	Pattern         string   `json:"pattern"` // high-intensity-negative, sensory-seeking, ...
	Confidence      float64  `json:"confidence"`
	Frequency       int      `json:"frequency"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
	DataPoints      int      `json:"data_points"`
	Timeframe       string   `json:"timeframe"`
}

// CorrelationResult describes a relationship between two observed factors
type CorrelationResult struct {
	Factor1         string   `json:"factor1"`
	Factor2         string   `json:"factor2"`
	Correlation     float64  `json:"correlation"`
	Significance    string   `json:"significance"` // low | moderate | high
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// TriggerAlert is an actionable notification synthesized from recent data
type TriggerAlert struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`     // concern | improvement | pattern
	Severity        string    `json:"severity"` // low | medium | high
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Recommendations []string  `json:"recommendations"`
	Timestamp       time.Time `json:"timestamp"`
	SubjectID       string    `json:"subject_id"`
	DataPoints      int       `json:"data_points"`
}

// Engine runs pattern classification using the latest configuration snapshot
type Engine struct {
	mu     sync.RWMutex
	cfg    config.Config
	logger *logx.Logger

	unsubscribe func()

	// now is stubbed in tests so timeframe filters are deterministic
	now func() time.Time
}

// NewEngine creates a pattern engine bound to the configuration provider.
// The engine caches the current snapshot and refreshes it on every update.
func NewEngine(provider *config.Provider, logger *logx.Logger) *Engine {
	e := &Engine{
		cfg:    provider.Get(),
		logger: logger,
		now:    time.Now,
	}
	e.unsubscribe = provider.Subscribe(func(cfg config.Config) {
		e.mu.Lock()
		e.cfg = cfg
		e.mu.Unlock()
	})
	return e
}

// Close detaches the engine from configuration updates
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func (e *Engine) config() config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// timeframeDays resolves an optional per-call window to the configured default
func (e *Engine) timeframeDays(requested int) int {
	if requested > 0 {
		return requested
	}
	return e.config().TimeWindows.DefaultAnalysisDays
}

// significanceByMagnitude labels a correlation coefficient relative to the
// configured correlation threshold.
func significanceByMagnitude(absR, threshold float64) string {
	switch {
	case absR < threshold:
		return "low"
	case absR < 2*threshold:
		return "moderate"
	default:
		return "high"
	}
}
