package logx

import (
	"fmt"
	"sync"
	"time"
)

// PerformanceLogger tracks per-operation timing for the analysis engines and
// the cache, and logs slow outliers. It complements the Prometheus collectors
// with human-readable summaries in the daemon log.
type PerformanceLogger struct {
	logger *Logger

	mu      sync.RWMutex
	metrics map[string]*OperationMetric
}

// OperationMetric accumulates timing data for one named operation
type OperationMetric struct {
	Name          string        `json:"name"`
	Count         int64         `json:"count"`
	ErrorCount    int64         `json:"error_count"`
	TotalDuration time.Duration `json:"total_duration"`
	MinDuration   time.Duration `json:"min_duration"`
	MaxDuration   time.Duration `json:"max_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
	LastExecuted  time.Time     `json:"last_executed"`
}

// slowOperationThreshold controls which completions are logged individually
const slowOperationThreshold = 100 * time.Millisecond

// NewPerformanceLogger creates a performance logger over the base logger
func NewPerformanceLogger(logger *Logger) *PerformanceLogger {
	return &PerformanceLogger{
		logger:  logger,
		metrics: make(map[string]*OperationMetric),
	}
}

// Timing is an in-flight measurement returned by StartOperation
type Timing struct {
	name  string
	start time.Time
	pl    *PerformanceLogger
}

// StartOperation begins timing a named operation
func (pl *PerformanceLogger) StartOperation(name string) *Timing {
	return &Timing{name: name, start: time.Now(), pl: pl}
}

// Complete records the operation's duration and outcome. Slow completions and
// failures are logged immediately; everything else only feeds the summary.
func (t *Timing) Complete(err error) {
	duration := time.Since(t.start)

	t.pl.mu.Lock()
	metric, ok := t.pl.metrics[t.name]
	if !ok {
		metric = &OperationMetric{Name: t.name, MinDuration: duration}
		t.pl.metrics[t.name] = metric
	}
	metric.Count++
	metric.TotalDuration += duration
	metric.LastExecuted = time.Now()
	if duration < metric.MinDuration {
		metric.MinDuration = duration
	}
	if duration > metric.MaxDuration {
		metric.MaxDuration = duration
	}
	metric.AvgDuration = metric.TotalDuration / time.Duration(metric.Count)
	if err != nil {
		metric.ErrorCount++
	}
	t.pl.mu.Unlock()

	if err != nil {
		t.pl.logger.Error("Operation failed",
			"operation", t.name, "duration", duration.String(), "error", err.Error())
		return
	}
	if duration > slowOperationThreshold {
		t.pl.logger.Warn("Slow operation",
			"operation", t.name, "duration", duration.String())
	}
}

// LogCachePerformance logs a single cache access
func (pl *PerformanceLogger) LogCachePerformance(operation, key string, hit bool, duration time.Duration) {
	pl.logger.Debug("Cache access",
		"operation", operation, "key", key, "hit", hit, "duration", duration.String())
}

// LogStorePerformance logs a single observation store access
func (pl *PerformanceLogger) LogStorePerformance(operation string, records int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"operation": operation,
		"records":   records,
		"duration":  duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		pl.logger.Error("Store operation failed", fields)
		return
	}
	pl.logger.Debug("Store operation completed", fields)
}

// LogSummary logs an aggregate line per tracked operation
func (pl *PerformanceLogger) LogSummary() {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	for name, metric := range pl.metrics {
		successRate := 100.0
		if metric.Count > 0 {
			successRate = float64(metric.Count-metric.ErrorCount) / float64(metric.Count) * 100
		}
		pl.logger.Info("Operation summary",
			"operation", name,
			"count", metric.Count,
			"avg_duration", metric.AvgDuration.String(),
			"max_duration", metric.MaxDuration.String(),
			"success_rate", fmt.Sprintf("%.1f%%", successRate),
		)
	}
}

// Metric returns a copy of the named metric, or nil if never recorded
func (pl *PerformanceLogger) Metric(name string) *OperationMetric {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	metric, ok := pl.metrics[name]
	if !ok {
		return nil
	}
	copied := *metric
	return &copied
}

// Reset clears all accumulated metrics
func (pl *PerformanceLogger) Reset() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.metrics = make(map[string]*OperationMetric)
}
