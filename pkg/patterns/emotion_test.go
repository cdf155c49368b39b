package patterns

import (
	"math"
	"testing"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/config"
)

func TestHighIntensityNegativePattern(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// 10 records over 10 distinct days: 6 anxious at 4-5, 4 calm at 2
	var emotions []pkg.EmotionRecord
	intensities := []int{4, 5, 4, 5, 4, 5}
	for i, intensity := range intensities {
		emotions = append(emotions, emotionAt(i+1, "anxious", intensity))
	}
	for i := 0; i < 4; i++ {
		emotions = append(emotions, emotionAt(i+7, "calm", 2))
	}

	results := e.AnalyzeEmotionPatterns(emotions, 0)

	p := findPattern(results, "high-intensity-negative")
	if p == nil {
		t.Fatalf("expected high-intensity-negative pattern, got %+v", results)
	}
	if p.Frequency != 6 {
		t.Errorf("frequency = %d, want 6", p.Frequency)
	}
	if p.DataPoints != 10 {
		t.Errorf("data_points = %d, want 10", p.DataPoints)
	}
	if math.Abs(p.Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %f, want 0.6", p.Confidence)
	}
	if p.Type != "emotion" {
		t.Errorf("type = %s, want emotion", p.Type)
	}
}

func TestConsistentEmotionPattern(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// 5 of 8 records share the same label (share 0.625 > 0.4)
	var emotions []pkg.EmotionRecord
	for i := 0; i < 5; i++ {
		emotions = append(emotions, emotionAt(i+1, "focused", 3))
	}
	emotions = append(emotions,
		emotionAt(6, "happy", 3),
		emotionAt(7, "calm", 2),
		emotionAt(8, "excited", 4),
	)

	results := e.AnalyzeEmotionPatterns(emotions, 0)
	p := findPattern(results, "consistent-emotion")
	if p == nil {
		t.Fatalf("expected consistent-emotion pattern, got %+v", results)
	}
	if p.Frequency != 5 {
		t.Errorf("frequency = %d, want 5", p.Frequency)
	}
}

func TestModerateNegativeFallback(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// All negatives at intensity 3: below the high-intensity bar, but 6 of
	// 10 (0.6 > 0.5) clears the moderate threshold.
	var emotions []pkg.EmotionRecord
	for i := 0; i < 6; i++ {
		emotions = append(emotions, emotionAt(i+1, "frustrated", 3))
	}
	for i := 0; i < 4; i++ {
		emotions = append(emotions, emotionAt(i+7, "happy", 3))
	}

	results := e.AnalyzeEmotionPatterns(emotions, 0)
	if findPattern(results, "high-intensity-negative") != nil {
		t.Error("high-intensity-negative should not fire at intensity 3")
	}
	if findPattern(results, "moderate-negative-trend") == nil {
		t.Fatalf("expected moderate-negative-trend pattern, got %+v", results)
	}
}

func TestModerateSkippedWhenHighFired(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// All records are high-intensity negatives; only the high pattern fires
	var emotions []pkg.EmotionRecord
	for i := 0; i < 8; i++ {
		emotions = append(emotions, emotionAt(i+1, "anxious", 5))
	}

	results := e.AnalyzeEmotionPatterns(emotions, 0)
	if findPattern(results, "high-intensity-negative") == nil {
		t.Fatal("expected high-intensity-negative pattern")
	}
	if findPattern(results, "moderate-negative-trend") != nil {
		t.Error("moderate-negative-trend must not fire when the high check fired")
	}
}

func TestInsufficientDataReturnsEmpty(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	emotions := []pkg.EmotionRecord{
		emotionAt(1, "anxious", 5),
		emotionAt(2, "anxious", 5),
		emotionAt(3, "anxious", 5),
		emotionAt(4, "anxious", 5),
	}
	if results := e.AnalyzeEmotionPatterns(emotions, 0); len(results) != 0 {
		t.Errorf("expected no patterns below min_data_points, got %+v", results)
	}
}

func TestTimeframeFilterExcludesOldRecords(t *testing.T) {
	e, _ := newTestEngine(config.Default())

	// Five qualifying records, but only three inside a 7-day window
	emotions := []pkg.EmotionRecord{
		emotionAt(1, "anxious", 5),
		emotionAt(2, "anxious", 5),
		emotionAt(3, "anxious", 5),
		emotionAt(20, "anxious", 5),
		emotionAt(25, "anxious", 5),
	}
	if results := e.AnalyzeEmotionPatterns(emotions, 7); len(results) != 0 {
		t.Errorf("expected no patterns with only 3 records in window, got %+v", results)
	}
	if results := e.AnalyzeEmotionPatterns(emotions, 30); len(results) == 0 {
		t.Error("expected patterns over the full 30-day window")
	}
}

func TestIntensityMultiplierLowersThreshold(t *testing.T) {
	// Negatives at intensity 3 sit below the default effective threshold
	// of 4; doubling the multiplier halves it to 2 and they qualify.
	var emotions []pkg.EmotionRecord
	for i := 0; i < 6; i++ {
		emotions = append(emotions, emotionAt(i+1, "upset", 3))
	}
	for i := 0; i < 6; i++ {
		emotions = append(emotions, emotionAt(i+7, "happy", 2))
	}

	e, _ := newTestEngine(config.Default())
	baseline := e.AnalyzeEmotionPatterns(emotions, 0)
	if findPattern(baseline, "high-intensity-negative") != nil {
		t.Fatal("pattern should not fire at default sensitivity")
	}

	sensitive := config.Default()
	sensitive.AlertSensitivity.EmotionIntensityMultiplier = 2.0
	e2, _ := newTestEngine(sensitive)
	boosted := e2.AnalyzeEmotionPatterns(emotions, 0)
	if findPattern(boosted, "high-intensity-negative") == nil {
		t.Fatalf("doubling the intensity multiplier should fire the pattern, got %+v", boosted)
	}
}

func TestConfigUpdatePropagatesToEngine(t *testing.T) {
	e, provider := newTestEngine(config.Default())

	var emotions []pkg.EmotionRecord
	for i := 0; i < 6; i++ {
		emotions = append(emotions, emotionAt(i+1, "upset", 3))
	}
	for i := 0; i < 6; i++ {
		emotions = append(emotions, emotionAt(i+7, "happy", 2))
	}

	if findPattern(e.AnalyzeEmotionPatterns(emotions, 0), "high-intensity-negative") != nil {
		t.Fatal("pattern should not fire before the sensitivity update")
	}

	as := config.Default().AlertSensitivity
	as.EmotionIntensityMultiplier = 2.0
	provider.Update(config.Partial{AlertSensitivity: &as})

	if findPattern(e.AnalyzeEmotionPatterns(emotions, 0), "high-intensity-negative") == nil {
		t.Fatal("pattern should fire after the subscribed engine saw the update")
	}
}
