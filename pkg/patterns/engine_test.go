package patterns

import (
	"fmt"
	"time"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
)

// anchor is the fixed "now" used by all pattern tests
var anchor = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func newTestEngine(cfg config.Config) (*Engine, *config.Provider) {
	provider := config.NewProvider(cfg, logx.NewLogger("error", "patterns-test"))
	e := NewEngine(provider, logx.NewLogger("error", "patterns-test"))
	e.now = func() time.Time { return anchor }
	return e, provider
}

// emotionAt builds an emotion record n days before the anchor
func emotionAt(daysAgo int, label string, intensity int) pkg.EmotionRecord {
	return pkg.EmotionRecord{
		ID:        fmt.Sprintf("e-%s-%d", label, daysAgo),
		SubjectID: "s1",
		Label:     label,
		Intensity: intensity,
		Timestamp: anchor.AddDate(0, 0, -daysAgo),
	}
}

func sensoryAt(daysAgo int, modality, response string, intensity int) pkg.SensoryRecord {
	return pkg.SensoryRecord{
		ID:        fmt.Sprintf("sen-%s-%d", response, daysAgo),
		SubjectID: "s1",
		Modality:  modality,
		Response:  response,
		Intensity: intensity,
		Timestamp: anchor.AddDate(0, 0, -daysAgo),
	}
}

// sessionAt builds a session with the given noise level and emotion labels,
// all at the same per-record intensity.
func sessionAt(daysAgo, noise int, lighting string, intensity int, labels ...string) pkg.SessionRecord {
	s := pkg.SessionRecord{
		ID:        fmt.Sprintf("sess-%d", daysAgo),
		SubjectID: "s1",
		Timestamp: anchor.AddDate(0, 0, -daysAgo),
		Environmental: &pkg.EnvironmentalSnapshot{
			RoomConditions: pkg.RoomConditions{
				NoiseLevel:  noise,
				Lighting:    lighting,
				Temperature: 21,
			},
		},
	}
	for i, label := range labels {
		s.Emotions = append(s.Emotions, pkg.EmotionRecord{
			ID:        fmt.Sprintf("sess-%d-em-%d", daysAgo, i),
			SubjectID: "s1",
			Label:     label,
			Intensity: intensity,
			Timestamp: s.Timestamp,
		})
	}
	return s
}

func findPattern(results []PatternResult, name string) *PatternResult {
	for i := range results {
		if results[i].Pattern == name {
			return &results[i]
		}
	}
	return nil
}
