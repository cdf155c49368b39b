package analytics

import (
	"math"
	"sort"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/stats"
)

// matrixCorrelationFloor is the minimum |r| for a pair to be tested for
// significance at all.
const matrixCorrelationFloor = 0.3

// factorNames are the derived per-session factors, in matrix order
var factorNames = []string{
	"avg_emotion_intensity",
	"positive_emotion_ratio",
	"sensory_seeking_ratio",
	"noise_level",
	"temperature",
	"lighting_score",
}

// lightingScores maps lighting categories onto a rough quality scale.
// Unknown categories score neutral.
var lightingScores = map[string]float64{
	"natural":     5,
	"bright":      4,
	"fluorescent": 3,
	"dim":         2,
	"harsh":       1,
}

func lightingScore(lighting string) float64 {
	if score, ok := lightingScores[lighting]; ok {
		return score
	}
	return 3
}

// GenerateCorrelationMatrix derives six numeric factors per session, computes
// the full symmetric Pearson matrix, and collects pairs whose correlation is
// both strong and statistically significant by an approximate two-sided
// Student-t p-value. Significant pairs are sorted by |correlation| descending.
func (e *Engine) GenerateCorrelationMatrix(sessions []pkg.SessionRecord) CorrelationMatrix {
	cfg := e.config()

	series := make([][]float64, len(factorNames))
	for _, s := range sessions {
		if s.Environmental == nil || len(s.Emotions) == 0 {
			continue
		}

		intensitySum := 0.0
		positive := 0
		for _, em := range s.Emotions {
			intensitySum += float64(em.Intensity)
			if pkg.IsPositiveEmotion(em.Label) {
				positive++
			}
		}

		seekingRatio := 0.0
		if len(s.SensoryInputs) > 0 {
			seeking := 0
			for _, si := range s.SensoryInputs {
				if pkg.IsSeekingResponse(si.Response) {
					seeking++
				}
			}
			seekingRatio = float64(seeking) / float64(len(s.SensoryInputs))
		}

		values := []float64{
			intensitySum / float64(len(s.Emotions)),
			float64(positive) / float64(len(s.Emotions)),
			seekingRatio,
			float64(s.Environmental.RoomConditions.NoiseLevel),
			s.Environmental.RoomConditions.Temperature,
			lightingScore(s.Environmental.RoomConditions.Lighting),
		}
		for i, v := range values {
			series[i] = append(series[i], v)
		}
	}

	n := 0
	if len(series[0]) > 0 {
		n = len(series[0])
	}

	matrix := make([][]float64, len(factorNames))
	for i := range matrix {
		matrix[i] = make([]float64, len(factorNames))
		matrix[i][i] = 1
	}

	var pairs []FactorCorrelation
	for i := 0; i < len(factorNames); i++ {
		for j := i + 1; j < len(factorNames); j++ {
			r := stats.Pearson(series[i], series[j])
			matrix[i][j] = r
			matrix[j][i] = r

			if math.Abs(r) <= matrixCorrelationFloor || n < cfg.EnhancedAnalysis.MinSampleSize {
				continue
			}
			p := stats.TwoSidedTTestPValue(r, n)
			pairs = append(pairs, FactorCorrelation{
				Factor1:      factorNames[i],
				Factor2:      factorNames[j],
				Correlation:  r,
				PValue:       p,
				Significance: significanceByPValue(p),
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Correlation) > math.Abs(pairs[j].Correlation)
	})

	e.logger.Debug("Correlation matrix generated",
		"sessions", len(sessions), "usable", n, "significant_pairs", len(pairs))

	return CorrelationMatrix{
		Factors:          factorNames,
		Matrix:           matrix,
		SignificantPairs: pairs,
	}
}

// significanceByPValue bands a p-value into a reporting label
func significanceByPValue(p float64) string {
	switch {
	case p < 0.01:
		return "high"
	case p < 0.05:
		return "moderate"
	default:
		return "low"
	}
}
