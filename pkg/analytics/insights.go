package analytics

import (
	"context"
	"fmt"
	"time"

	pkg "github.com/aulanota/insight/pkg"
)

// PredictiveInsight is a forward-looking observation produced either by the
// statistical path or by an optional model collaborator.
type PredictiveInsight struct {
	Type        string  `json:"type"` // trend | risk | goal | model
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source"` // statistical | model
}

// InsightModel is an optional collaborator that augments statistical insights.
// Implementations may be slow or unreliable; the engine treats them as
// best-effort.
type InsightModel interface {
	GenerateInsights(ctx context.Context, emotions []pkg.EmotionRecord, inputs []pkg.SensoryRecord) ([]PredictiveInsight, error)
}

// modelTimeout bounds how long the optional model path may delay a result
const modelTimeout = 5 * time.Second

// GeneratePredictiveInsights combines the synchronous statistical insights
// with whatever the optional model produces within the timeout. Model failure
// (error, timeout, panic) is logged and never affects the statistical
// results.
func (e *Engine) GeneratePredictiveInsights(
	ctx context.Context,
	model InsightModel,
	emotions []pkg.EmotionRecord,
	inputs []pkg.SensoryRecord,
	subjectID string,
) []PredictiveInsight {
	insights := e.statisticalInsights(emotions, subjectID)

	if model == nil {
		return insights
	}

	modelCtx, cancel := context.WithTimeout(ctx, modelTimeout)
	defer cancel()

	type result struct {
		insights []PredictiveInsight
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("insight model panicked: %v", r)}
			}
		}()
		out, err := model.GenerateInsights(modelCtx, emotions, inputs)
		ch <- result{insights: out, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			e.logger.Warn("Insight model failed, returning statistical insights only",
				"subject_id", subjectID, "error", res.err)
			return insights
		}
		for _, ins := range res.insights {
			ins.Source = "model"
			insights = append(insights, ins)
		}
	case <-modelCtx.Done():
		e.logger.Warn("Insight model timed out, returning statistical insights only",
			"subject_id", subjectID, "timeout", modelTimeout)
	}
	return insights
}

// statisticalInsights derives insights from the synchronous analysis paths
func (e *Engine) statisticalInsights(emotions []pkg.EmotionRecord, subjectID string) []PredictiveInsight {
	var insights []PredictiveInsight

	points := make([]DataPoint, len(emotions))
	for i, rec := range emotions {
		points[i] = DataPoint{Value: float64(rec.Intensity), Timestamp: rec.Timestamp}
	}
	if trend := e.AnalyzeTrendsWithStatistics("emotion_intensity", points); trend != nil && trend.Direction != "stable" {
		insights = append(insights, PredictiveInsight{
			Type:  "trend",
			Title: fmt.Sprintf("Emotion intensity is %s", trend.Direction),
			Description: fmt.Sprintf(
				"Intensity is changing by %.2f per day; projected %.1f in a week",
				trend.Rate, trend.Forecast.Next7Days),
			Confidence: trend.Confidence,
			Source:     "statistical",
		})
	}

	if risk := e.AssessRisks(emotions, subjectID); risk != nil {
		insights = append(insights, PredictiveInsight{
			Type:        "risk",
			Title:       fmt.Sprintf("%s stress risk", risk.Level),
			Description: risk.Description,
			Confidence:  0.8,
			Source:      "statistical",
		})
	}

	return insights
}
