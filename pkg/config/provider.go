package config

import (
	"sync"

	"github.com/aulanota/insight/pkg/fingerprint"
	"github.com/aulanota/insight/pkg/logx"
)

// Provider owns the live configuration and its observers. Engines hold a
// *Provider and read a snapshot per call; the cached facade subscribes so it
// can react to threshold changes. Subscribers are invoked synchronously, in
// registration order, once per Update, after the merge has completed.
type Provider struct {
	mu     sync.RWMutex
	cfg    Config
	subs   []subscription
	nextID int

	logger *logx.Logger
}

type subscription struct {
	id int
	fn func(Config)
}

// Partial is a sparse configuration update. Non-nil sections replace the
// corresponding section of the current configuration wholesale (shallow merge
// per top-level section); nil sections are left untouched.
type Partial struct {
	PatternAnalysis  *PatternAnalysisConfig  `json:"pattern_analysis,omitempty" yaml:"pattern_analysis,omitempty"`
	EnhancedAnalysis *EnhancedAnalysisConfig `json:"enhanced_analysis,omitempty" yaml:"enhanced_analysis,omitempty"`
	AlertSensitivity *AlertSensitivityConfig `json:"alert_sensitivity,omitempty" yaml:"alert_sensitivity,omitempty"`
	TimeWindows      *TimeWindowsConfig      `json:"time_windows,omitempty" yaml:"time_windows,omitempty"`
	Cache            *CacheConfig            `json:"cache,omitempty" yaml:"cache,omitempty"`
	MQTT             *MQTTConfig             `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	Daemon           *DaemonConfig           `json:"daemon,omitempty" yaml:"daemon,omitempty"`
}

// NewProvider creates a provider seeded with the given configuration
func NewProvider(cfg Config, logger *logx.Logger) *Provider {
	return &Provider{cfg: cfg, logger: logger}
}

// Get returns the current configuration snapshot. The returned value is a
// copy; mutating it has no effect on the provider.
func (p *Provider) Get() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Subscribe registers a callback invoked with the full new configuration
// after every Update. It returns an unsubscribe function.
func (p *Provider) Subscribe(fn func(Config)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs = append(p.subs, subscription{id: id, fn: fn})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// Update merges the partial into the current configuration and notifies all
// subscribers synchronously, in registration order, before returning. Values
// are accepted as-is; validation is the caller's concern.
func (p *Provider) Update(partial Partial) Config {
	p.mu.Lock()
	if partial.PatternAnalysis != nil {
		p.cfg.PatternAnalysis = *partial.PatternAnalysis
	}
	if partial.EnhancedAnalysis != nil {
		p.cfg.EnhancedAnalysis = *partial.EnhancedAnalysis
	}
	if partial.AlertSensitivity != nil {
		p.cfg.AlertSensitivity = *partial.AlertSensitivity
	}
	if partial.TimeWindows != nil {
		p.cfg.TimeWindows = *partial.TimeWindows
	}
	if partial.Cache != nil {
		p.cfg.Cache = *partial.Cache
	}
	if partial.MQTT != nil {
		p.cfg.MQTT = *partial.MQTT
	}
	if partial.Daemon != nil {
		p.cfg.Daemon = *partial.Daemon
	}
	cfg := p.cfg
	subs := make([]subscription, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Debug("Configuration updated", "subscribers", len(subs))
	}

	// Notify outside the lock so a subscriber may read (or even update)
	// the provider without deadlocking.
	for _, sub := range subs {
		sub.fn(cfg)
	}
	return cfg
}

// Replace swaps in a complete configuration (used by the file watcher) and
// notifies subscribers the same way Update does.
func (p *Provider) Replace(cfg Config) Config {
	return p.Update(Partial{
		PatternAnalysis:  &cfg.PatternAnalysis,
		EnhancedAnalysis: &cfg.EnhancedAnalysis,
		AlertSensitivity: &cfg.AlertSensitivity,
		TimeWindows:      &cfg.TimeWindows,
		Cache:            &cfg.Cache,
		MQTT:             &cfg.MQTT,
		Daemon:           &cfg.Daemon,
	})
}

// analysisSnapshot is the configuration subset that affects analysis outputs
type analysisSnapshot struct {
	PatternAnalysis  PatternAnalysisConfig  `json:"pattern_analysis"`
	EnhancedAnalysis EnhancedAnalysisConfig `json:"enhanced_analysis"`
	AlertSensitivity AlertSensitivityConfig `json:"alert_sensitivity"`
	TimeWindows      TimeWindowsConfig      `json:"time_windows"`
}

// AnalysisHash returns a fingerprint of the output-affecting configuration
// subset, for inclusion in cache keys. Cache/MQTT/Daemon settings do not
// change analysis results and are excluded.
func (p *Provider) AnalysisHash() string {
	cfg := p.Get()
	return AnalysisHash(cfg)
}

// AnalysisHash fingerprints the output-affecting subset of cfg
func AnalysisHash(cfg Config) string {
	digest, err := fingerprint.Fingerprint(analysisSnapshot{
		PatternAnalysis:  cfg.PatternAnalysis,
		EnhancedAnalysis: cfg.EnhancedAnalysis,
		AlertSensitivity: cfg.AlertSensitivity,
		TimeWindows:      cfg.TimeWindows,
	})
	if err != nil {
		// The snapshot is a plain struct of numbers; serialization
		// cannot fail. Return a constant so callers stay deterministic.
		return "config-unavailable"
	}
	return digest
}
