package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full insight engine configuration. The four analysis sections
// (PatternAnalysis, EnhancedAnalysis, AlertSensitivity, TimeWindows) affect
// analysis outputs and participate in cache key hashing; Cache, MQTT and
// Daemon do not.
type Config struct {
	PatternAnalysis  PatternAnalysisConfig  `json:"pattern_analysis" yaml:"pattern_analysis"`
	EnhancedAnalysis EnhancedAnalysisConfig `json:"enhanced_analysis" yaml:"enhanced_analysis"`
	AlertSensitivity AlertSensitivityConfig `json:"alert_sensitivity" yaml:"alert_sensitivity"`
	TimeWindows      TimeWindowsConfig      `json:"time_windows" yaml:"time_windows"`
	Cache            CacheConfig            `json:"cache" yaml:"cache"`
	MQTT             MQTTConfig             `json:"mqtt" yaml:"mqtt"`
	Daemon           DaemonConfig           `json:"daemon" yaml:"daemon"`
}

// PatternAnalysisConfig holds thresholds for the pattern analysis engine
type PatternAnalysisConfig struct {
	MinDataPoints               int     `json:"min_data_points" yaml:"min_data_points"`
	HighIntensityThreshold      float64 `json:"high_intensity_threshold" yaml:"high_intensity_threshold"`
	CorrelationThreshold        float64 `json:"correlation_threshold" yaml:"correlation_threshold"`
	EmotionConsistencyThreshold float64 `json:"emotion_consistency_threshold" yaml:"emotion_consistency_threshold"`
	ModerateNegativeThreshold   float64 `json:"moderate_negative_threshold" yaml:"moderate_negative_threshold"`
	ConcernFrequencyThreshold   float64 `json:"concern_frequency_threshold" yaml:"concern_frequency_threshold"`
}

// EnhancedAnalysisConfig holds thresholds for trend, anomaly and risk analysis
type EnhancedAnalysisConfig struct {
	MinSampleSize                 int     `json:"min_sample_size" yaml:"min_sample_size"`
	TrendThreshold                float64 `json:"trend_threshold" yaml:"trend_threshold"`
	AnomalyThreshold              float64 `json:"anomaly_threshold" yaml:"anomaly_threshold"`
	PredictionConfidenceThreshold float64 `json:"prediction_confidence_threshold" yaml:"prediction_confidence_threshold"`
	RiskAssessmentThreshold       int     `json:"risk_assessment_threshold" yaml:"risk_assessment_threshold"`
}

// AlertSensitivityConfig holds the sensitivity multipliers. A multiplier
// above 1.0 lowers the corresponding effective threshold (more alerts),
// below 1.0 raises it (fewer alerts).
type AlertSensitivityConfig struct {
	EmotionIntensityMultiplier float64 `json:"emotion_intensity_multiplier" yaml:"emotion_intensity_multiplier"`
	FrequencyMultiplier        float64 `json:"frequency_multiplier" yaml:"frequency_multiplier"`
	AnomalyMultiplier          float64 `json:"anomaly_multiplier" yaml:"anomaly_multiplier"`
}

// TimeWindowsConfig holds the analysis window sizes in days
type TimeWindowsConfig struct {
	DefaultAnalysisDays int `json:"default_analysis_days" yaml:"default_analysis_days"`
	RecentDataDays      int `json:"recent_data_days" yaml:"recent_data_days"`
	ShortTermDays       int `json:"short_term_days" yaml:"short_term_days"`
}

// CacheConfig controls the cached analysis facade
type CacheConfig struct {
	TTL                      Duration `json:"ttl" yaml:"ttl"`
	InvalidateOnConfigChange bool     `json:"invalidate_on_config_change" yaml:"invalidate_on_config_change"`
}

// MQTTConfig controls optional alert publishing
type MQTTConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Broker      string `json:"broker" yaml:"broker"`
	Port        int    `json:"port" yaml:"port"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         int    `json:"qos" yaml:"qos"`
}

// DaemonConfig controls insightd runtime behavior
type DaemonConfig struct {
	LogLevel         string   `json:"log_level" yaml:"log_level"`
	MetricsAddr      string   `json:"metrics_addr" yaml:"metrics_addr"`
	AnalysisInterval Duration `json:"analysis_interval" yaml:"analysis_interval"`
	DBPath           string   `json:"db_path" yaml:"db_path"`
}

// Default returns the canonical default configuration
func Default() Config {
	return Config{
		PatternAnalysis: PatternAnalysisConfig{
			MinDataPoints:               5,
			HighIntensityThreshold:      4,
			CorrelationThreshold:        0.3,
			EmotionConsistencyThreshold: 0.4,
			ModerateNegativeThreshold:   0.5,
			ConcernFrequencyThreshold:   0.3,
		},
		EnhancedAnalysis: EnhancedAnalysisConfig{
			MinSampleSize:                 5,
			TrendThreshold:                0.1,
			AnomalyThreshold:              2.0,
			PredictionConfidenceThreshold: 0.6,
			RiskAssessmentThreshold:       2,
		},
		AlertSensitivity: AlertSensitivityConfig{
			EmotionIntensityMultiplier: 1.0,
			FrequencyMultiplier:        1.0,
			AnomalyMultiplier:          1.0,
		},
		TimeWindows: TimeWindowsConfig{
			DefaultAnalysisDays: 30,
			RecentDataDays:      7,
			ShortTermDays:       3,
		},
		Cache: CacheConfig{
			TTL:                      Duration(15 * time.Minute),
			InvalidateOnConfigChange: true,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Broker:      "localhost",
			Port:        1883,
			ClientID:    "insightd",
			TopicPrefix: "insight",
			QoS:         1,
		},
		Daemon: DaemonConfig{
			LogLevel:         "info",
			MetricsAddr:      ":9109",
			AnalysisInterval: Duration(5 * time.Minute),
			DBPath:           "insight.db",
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PatternAnalysis.MinDataPoints < 1 {
		return fmt.Errorf("pattern_analysis.min_data_points must be >= 1")
	}
	if c.EnhancedAnalysis.MinSampleSize < 2 {
		return fmt.Errorf("enhanced_analysis.min_sample_size must be >= 2")
	}
	if c.AlertSensitivity.EmotionIntensityMultiplier <= 0 ||
		c.AlertSensitivity.FrequencyMultiplier <= 0 ||
		c.AlertSensitivity.AnomalyMultiplier <= 0 {
		return fmt.Errorf("alert_sensitivity multipliers must be > 0")
	}
	if c.TimeWindows.DefaultAnalysisDays < 1 || c.TimeWindows.RecentDataDays < 1 || c.TimeWindows.ShortTermDays < 1 {
		return fmt.Errorf("time_windows values must be >= 1 day")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}
