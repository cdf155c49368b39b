// Package analytics implements the statistical half of the insight engine:
// OLS trend analysis with forecasting, z-score anomaly detection, factor
// correlation matrices with approximate p-values, goal projection, and risk
// assessment. Methods are synchronous and pure over their inputs plus the
// latest configuration snapshot; the optional predictive-insight path is the
// only asynchronous overlay and is strictly best-effort.
package analytics

import (
	"sync"
	"time"

	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
)

// TrendAnalysis is a fitted trend over a timestamped value series
type TrendAnalysis struct {
	Metric       string   `json:"metric"`
	Direction    string   `json:"direction"`    // increasing | decreasing | stable
	Rate         float64  `json:"rate"`         // change per day
	Significance float64  `json:"significance"` // R-squared, [0,1]
	Confidence   float64  `json:"confidence"`   // blended, [0,1]
	Forecast     Forecast `json:"forecast"`
}

// Forecast extrapolates the fitted line beyond the last observation
type Forecast struct {
	Next7Days  float64 `json:"next_7_days"`
	Next30Days float64 `json:"next_30_days"`
	Confidence float64 `json:"confidence"`
}

// AnomalyDetection flags a single observation or day that deviates sharply
// from the batch baseline.
type AnomalyDetection struct {
	Timestamp       time.Time `json:"timestamp"`
	Type            string    `json:"type"` // emotion-intensity | sensory-frequency
	Severity        string    `json:"severity"`
	Description     string    `json:"description"`
	DeviationScore  float64   `json:"deviation_score"` // z-score
	Recommendations []string  `json:"recommendations"`
}

// FactorCorrelation is one significant pair from the correlation matrix
type FactorCorrelation struct {
	Factor1      string  `json:"factor1"`
	Factor2      string  `json:"factor2"`
	Correlation  float64 `json:"correlation"`
	PValue       float64 `json:"p_value"`
	Significance string  `json:"significance"`
}

// CorrelationMatrix is the full symmetric Pearson matrix over derived
// per-session factors, plus the pairs that cleared the significance bar.
type CorrelationMatrix struct {
	Factors          []string            `json:"factors"`
	Matrix           [][]float64         `json:"matrix"`
	SignificantPairs []FactorCorrelation `json:"significant_pairs"`
}

// GoalProjection estimates whether and when a goal's target will be reached
type GoalProjection struct {
	GoalID       string         `json:"goal_id"`
	Metric       string         `json:"metric"`
	Target       float64        `json:"target"`
	CurrentValue float64        `json:"current_value"`
	Trend        *TrendAnalysis `json:"trend,omitempty"`
	DaysToTarget int            `json:"days_to_target"` // -1 when unreachable on current trend
	Achievable   bool           `json:"achievable"`
	Confidence   float64        `json:"confidence"`
}

// RiskInsight flags accumulated concerning observations over a short window
type RiskInsight struct {
	SubjectID       string    `json:"subject_id"`
	Level           string    `json:"level"` // low | medium | high
	Description     string    `json:"description"`
	Count           int       `json:"count"`
	WindowDays      int       `json:"window_days"`
	Timestamp       time.Time `json:"timestamp"`
	Recommendations []string  `json:"recommendations"`
}

// ConfidenceExplanation is a human-readable breakdown of a confidence score
type ConfidenceExplanation struct {
	Level       string   `json:"level"` // low | medium | high
	Explanation string   `json:"explanation"`
	Factors     []string `json:"factors"`
}

// Engine runs statistical analysis using the latest configuration snapshot
type Engine struct {
	mu     sync.RWMutex
	cfg    config.Config
	logger *logx.Logger

	unsubscribe func()

	// now is stubbed in tests so window filters are deterministic
	now func() time.Time
}

// NewEngine creates an analytics engine bound to the configuration provider
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
