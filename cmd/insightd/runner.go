package main

import (
	"context"
	"time"

	"github.com/aulanota/insight/pkg/analytics"
	"github.com/aulanota/insight/pkg/cached"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
	"github.com/aulanota/insight/pkg/mqtt"
	"github.com/aulanota/insight/pkg/store"
)

// analysisRunner drives one full analysis cycle across every known subject
type analysisRunner struct {
	provider  *config.Provider
	store     *store.Store
	analyzer  *cached.Analyzer
	engine    *analytics.Engine
	publisher *mqtt.Publisher
	logger    *logx.Logger
	perf      *logx.PerformanceLogger
}

// runOnce analyzes every subject in the store and publishes what it finds
func (r *analysisRunner) runOnce(ctx context.Context) {
	timing := r.perf.StartOperation("analysis_cycle")

	subjects, err := r.store.Subjects()
	if err != nil {
		r.logger.Error("Failed to list subjects", "error", err)
		timing.Complete(err)
		return
	}

	for _, subjectID := range subjects {
		select {
		case <-ctx.Done():
			timing.Complete(ctx.Err())
			return
		default:
		}
		r.analyzeSubject(ctx, subjectID)
	}

	timing.Complete(nil)
	r.logger.Debug("Analysis cycle complete",
		"subjects", len(subjects), "cache", r.analyzer.CacheStats())
}

func (r *analysisRunner) analyzeSubject(ctx context.Context, subjectID string) {
	cfg := r.provider.Get()
	since := time.Now().AddDate(0, 0, -cfg.TimeWindows.DefaultAnalysisDays)

	emotions, err := r.store.EmotionsSince(subjectID, since)
	if err != nil {
		r.logger.Error("Failed to load emotion records", "subject_id", subjectID, "error", err)
		return
	}
	sensory, err := r.store.SensorySince(subjectID, since)
	if err != nil {
		r.logger.Error("Failed to load sensory records", "subject_id", subjectID, "error", err)
		return
	}
	sessions, err := r.store.SessionsSince(subjectID, since)
	if err != nil {
		r.logger.Error("Failed to load session records", "subject_id", subjectID, "error", err)
		return
	}

	alerts, err := r.analyzer.GenerateTriggerAlerts(emotions, sensory, sessions, subjectID)
	if err != nil {
		r.logger.Error("Alert generation failed", "subject_id", subjectID, "error", err)
	}
	for _, alert := range alerts {
		if err := r.publisher.PublishAlert(alert); err != nil {
			r.logger.Warn("Failed to publish alert", "alert_id", alert.ID, "error", err)
		}
	}

	risk, err := r.analyzer.AssessRisks(emotions, subjectID)
	if err != nil {
		r.logger.Error("Risk assessment failed", "subject_id", subjectID, "error", err)
	}
	if risk != nil {
		if err := r.publisher.PublishRisk(*risk); err != nil {
			r.logger.Warn("Failed to publish risk", "subject_id", subjectID, "error", err)
		}
	}

	// Predictive insights run uncached: they fold in the optional model
	// path and carry generation-time context.
	insights := r.engine.GeneratePredictiveInsights(ctx, nil, emotions, sensory, subjectID)
	if err := r.publisher.PublishInsights(subjectID, insights); err != nil {
		r.logger.Warn("Failed to publish insights", "subject_id", subjectID, "error", err)
	}

	goals, err := r.store.Goals(subjectID)
	if err != nil {
		r.logger.Error("Failed to load goals", "subject_id", subjectID, "error", err)
		return
	}
	for _, goal := range goals {
		projection, err := r.analyzer.PredictGoalAchievement(goal)
		if err != nil {
			r.logger.Error("Goal projection failed", "goal_id", goal.ID, "error", err)
			continue
		}
		if projection != nil {
			r.logger.Debug("Goal projection",
				"goal_id", goal.ID, "metric", projection.Metric,
				"days_to_target", projection.DaysToTarget, "achievable", projection.Achievable)
		}
	}
}
