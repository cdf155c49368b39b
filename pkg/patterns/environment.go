package patterns

import (
	"fmt"
	"math"
	"sort"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/stats"
)

// minSessionsPerLightingGroup is the floor for a lighting category to count
// in the categorical comparison.
const minSessionsPerLightingGroup = 3

// lightingDifferenceThreshold is the minimum spread in positive-emotion ratio
// between the best and worst lighting category worth reporting.
const lightingDifferenceThreshold = 0.2

// AnalyzeEnvironmentalCorrelations relates session environment to emotional
// state: a Pearson correlation between per-session noise level and average
// emotion intensity, plus a categorical comparison of positive-emotion ratios
// across lighting conditions.
func (e *Engine) AnalyzeEnvironmentalCorrelations(sessions []pkg.SessionRecord) []CorrelationResult {
	cfg := e.config()
	var results []CorrelationResult

	var noise, intensity []float64
	for _, s := range sessions {
		if s.Environmental == nil || len(s.Emotions) == 0 {
			continue
		}
		sum := 0.0
		for _, em := range s.Emotions {
			sum += float64(em.Intensity)
		}
		noise = append(noise, float64(s.Environmental.RoomConditions.NoiseLevel))
		intensity = append(intensity, sum/float64(len(s.Emotions)))
	}

	if len(noise) >= cfg.PatternAnalysis.MinDataPoints {
		r := stats.Pearson(noise, intensity)
		if math.Abs(r) > cfg.PatternAnalysis.CorrelationThreshold {
			direction := "rises"
			if r < 0 {
				direction = "falls"
			}
			results = append(results, CorrelationResult{
				Factor1:      "noise_level",
				Factor2:      "emotion_intensity",
				Correlation:  r,
				Significance: significanceByMagnitude(math.Abs(r), cfg.PatternAnalysis.CorrelationThreshold),
				Description: fmt.Sprintf(
					"Average emotion intensity %s with room noise (r=%.2f over %d sessions)",
					direction, r, len(noise)),
				Recommendations: []string{
					"Compare sessions in quiet and noisy rooms directly",
					"Consider noise-reducing supports during louder periods",
				},
			})
		}
	}

	if lighting := e.lightingComparison(sessions); lighting != nil {
		results = append(results, *lighting)
	}

	e.logger.Debug("Environmental correlation analysis complete",
		"sessions", len(sessions), "usable", len(noise), "correlations", len(results))
	return results
}

// lightingComparison groups sessions by lighting category and compares
// positive-emotion ratios; categories with fewer than three sessions are
// excluded.
func (e *Engine) lightingComparison(sessions []pkg.SessionRecord) *CorrelationResult {
	type group struct {
		sessions int
		positive int
		total    int
	}
	groups := make(map[string]*group)
	for _, s := range sessions {
		if s.Environmental == nil || s.Environmental.RoomConditions.Lighting == "" || len(s.Emotions) == 0 {
			continue
		}
		g, ok := groups[s.Environmental.RoomConditions.Lighting]
		if !ok {
			g = &group{}
			groups[s.Environmental.RoomConditions.Lighting] = g
		}
		g.sessions++
		for _, em := range s.Emotions {
			g.total++
			if pkg.IsPositiveEmotion(em.Label) {
				g.positive++
			}
		}
	}

	type rated struct {
		lighting string
		ratio    float64
	}
	var qualified []rated
	for lighting, g := range groups {
		if g.sessions < minSessionsPerLightingGroup || g.total == 0 {
			continue
		}
		qualified = append(qualified, rated{lighting, float64(g.positive) / float64(g.total)})
	}
	if len(qualified) < 2 {
		return nil
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].ratio != qualified[j].ratio {
			return qualified[i].ratio > qualified[j].ratio
		}
		return qualified[i].lighting < qualified[j].lighting
	})

	best := qualified[0]
	worst := qualified[len(qualified)-1]
	diff := best.ratio - worst.ratio
	if diff <= lightingDifferenceThreshold {
		return nil
	}

	return &CorrelationResult{
		Factor1:      "lighting",
		Factor2:      "positive_emotion_ratio",
		Correlation:  diff,
		Significance: "moderate",
		Description: fmt.Sprintf(
			"Positive emotions are %.0f%% more frequent under %s lighting than %s lighting",
			diff*100, best.lighting, worst.lighting),
		Recommendations: []string{
			fmt.Sprintf("Prefer %s lighting where the schedule allows", best.lighting),
			fmt.Sprintf("Observe closely during sessions under %s lighting", worst.lighting),
		},
	}
}
