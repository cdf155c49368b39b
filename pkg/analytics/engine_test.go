package analytics

import (
	"fmt"
	"time"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
)

// anchor is the fixed "now" used by all analytics tests
var anchor = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func newTestEngine(cfg config.Config) (*Engine, *config.Provider) {
	provider := config.NewProvider(cfg, logx.NewLogger("error", "analytics-test"))
	e := NewEngine(provider, logx.NewLogger("error", "analytics-test"))
	e.now = func() time.Time { return anchor }
	return e, provider
}

func emotionAt(daysAgo int, label string, intensity int) pkg.EmotionRecord {
	return pkg.EmotionRecord{
		ID:        fmt.Sprintf("e-%s-%d", label, daysAgo),
		SubjectID: "s1",
		Label:     label,
		Intensity: intensity,
		Timestamp: anchor.AddDate(0, 0, -daysAgo),
	}
}

// dailySeries builds one point per day ending the given number of days before
// the anchor, with values produced by f(index).
func dailySeries(n int, f func(i int) float64) []DataPoint {
	points := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		points[i] = DataPoint{
			Value:     f(i),
			Timestamp: anchor.AddDate(0, 0, -(n - 1 - i)),
		}
	}
	return points
}
