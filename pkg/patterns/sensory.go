package patterns

import (
	"fmt"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/stats"
)

// AnalyzeSensoryPatterns classifies sensory responses inside the timeframe as
// seeking-like or avoiding-like and reports a pattern when one category
// outnumbers the other by more than 2x.
func (e *Engine) AnalyzeSensoryPatterns(inputs []pkg.SensoryRecord, timeframeDays int) []PatternResult {
	cfg := e.config()
	days := e.timeframeDays(timeframeDays)
	cutoff := e.now().AddDate(0, 0, -days)

	var recent []pkg.SensoryRecord
	for _, rec := range inputs {
		if !rec.Timestamp.Before(cutoff) {
			recent = append(recent, rec)
		}
	}
	if len(recent) < cfg.PatternAnalysis.MinDataPoints {
		e.logger.Debug("Insufficient sensory data for pattern analysis",
			"records", len(recent), "required", cfg.PatternAnalysis.MinDataPoints)
		return nil
	}

	seeking := 0
	avoiding := 0
	seekingModalities := make(map[string]int)
	avoidingModalities := make(map[string]int)
	for _, rec := range recent {
		switch {
		case pkg.IsSeekingResponse(rec.Response):
			seeking++
			seekingModalities[rec.Modality]++
		case pkg.IsAvoidingResponse(rec.Response):
			avoiding++
			avoidingModalities[rec.Modality]++
		}
	}

	timeframe := fmt.Sprintf("last %d days", days)
	classified := seeking + avoiding
	var results []PatternResult

	switch {
	case classified > 0 && float64(seeking) > 2*float64(avoiding):
		results = append(results, PatternResult{
			Type:       "sensory",
			Pattern:    "sensory-seeking",
			Confidence: stats.Clamp01(float64(seeking) / float64(classified)),
			Frequency:  seeking,
			Description: fmt.Sprintf(
				"Seeking responses dominate (%d seeking vs %d avoiding), strongest in %s input",
				seeking, avoiding, dominantModality(seekingModalities)),
			Recommendations: []string{
				"Offer structured sensory input before demanding tasks",
				"Build movement or tactile breaks into the routine",
			},
			DataPoints: len(recent),
			Timeframe:  timeframe,
		})
	case classified > 0 && float64(avoiding) > 2*float64(seeking):
		results = append(results, PatternResult{
			Type:       "sensory",
			Pattern:    "sensory-avoiding",
			Confidence: stats.Clamp01(float64(avoiding) / float64(classified)),
			Frequency:  avoiding,
			Description: fmt.Sprintf(
				"Avoiding responses dominate (%d avoiding vs %d seeking), strongest in %s input",
				avoiding, seeking, dominantModality(avoidingModalities)),
			Recommendations: []string{
				"Reduce exposure to the dominant modality where possible",
				"Provide an accessible low-stimulation retreat space",
			},
			DataPoints: len(recent),
			Timeframe:  timeframe,
		})
	}

	e.logger.Debug("Sensory pattern analysis complete",
		"records", len(recent), "seeking", seeking, "avoiding", avoiding, "patterns", len(results))
	return results
}

// dominantModality returns the modality with the highest count, resolving
// ties alphabetically so output is deterministic.
func dominantModality(counts map[string]int) string {
	best := ""
	bestCount := 0
	for modality, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || modality < best)) {
			best = modality
			bestCount = count
		}
	}
	if best == "" {
		return "mixed"
	}
	return best
}
