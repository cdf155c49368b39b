package analytics

import (
	"context"
	"errors"
	"testing"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/config"
)

type stubModel struct {
	insights []PredictiveInsight
	err      error
	panics   bool
}

func (m *stubModel) GenerateInsights(ctx context.Context, emotions []pkg.EmotionRecord, inputs []pkg.SensoryRecord) ([]PredictiveInsight, error) {
	if m.panics {
		panic("model exploded")
	}
	return m.insights, m.err
}

// trendingEmotions yields a clear increasing intensity trend
func trendingEmotions() []pkg.EmotionRecord {
	var emotions []pkg.EmotionRecord
	for i := 0; i < 10; i++ {
		intensity := i/2 + 1
		emotions = append(emotions, emotionAt(10-i, "anxious", intensity))
	}
	return emotions
}

func TestStatisticalInsightsWithoutModel(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	insights := e.GeneratePredictiveInsights(context.Background(), nil, trendingEmotions(), nil, "s1")
	if len(insights) == 0 {
		t.Fatal("expected statistical insights for a trending series")
	}
	for _, ins := range insights {
		if ins.Source != "statistical" {
			t.Errorf("source = %s, want statistical", ins.Source)
		}
	}
}

func TestModelInsightsAppended(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	model := &stubModel{insights: []PredictiveInsight{{
		Type:       "model",
		Title:      "projected regulation improvement",
		Confidence: 0.5,
	}}}
	insights := e.GeneratePredictiveInsights(context.Background(), model, trendingEmotions(), nil, "s1")

	found := false
	for _, ins := range insights {
		if ins.Source == "model" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected model insight in %+v", insights)
	}
}

func TestModelErrorKeepsStatisticalInsights(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	model := &stubModel{err: errors.New("model unavailable")}
	insights := e.GeneratePredictiveInsights(context.Background(), model, trendingEmotions(), nil, "s1")
	if len(insights) == 0 {
		t.Fatal("model failure must not drop statistical insights")
	}
	for _, ins := range insights {
		if ins.Source == "model" {
			t.Errorf("failed model must contribute nothing, got %+v", ins)
		}
	}
}

func TestModelPanicRecovered(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	model := &stubModel{panics: true}
	insights := e.GeneratePredictiveInsights(context.Background(), model, trendingEmotions(), nil, "s1")
	if len(insights) == 0 {
		t.Fatal("model panic must not drop statistical insights")
	}
}
