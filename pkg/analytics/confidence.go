package analytics

import "fmt"

// GenerateConfidenceExplanation maps the ingredients of a confidence score to
// a level label and human-readable factor tags. Pure function, no engine
// state involved.
func GenerateConfidenceExplanation(dataPoints int, timeSpanDays, rSquared, confidence float64) ConfidenceExplanation {
	level := "low"
	switch {
	case confidence >= 0.7:
		level = "high"
	case confidence >= 0.4:
		level = "medium"
	}

	var factors []string
	if dataPoints >= 30 {
		factors = append(factors, "large sample")
	} else if dataPoints >= 10 {
		factors = append(factors, "adequate sample")
	} else {
		factors = append(factors, "limited sample")
	}

	if timeSpanDays >= 21 {
		factors = append(factors, "long observation window")
	} else if timeSpanDays >= 7 {
		factors = append(factors, "moderate observation window")
	} else {
		factors = append(factors, "short observation window")
	}

	if rSquared >= 0.7 {
		factors = append(factors, "strong fit")
	} else if rSquared >= 0.3 {
		factors = append(factors, "moderate fit")
	} else {
		factors = append(factors, "weak fit")
	}

	return ConfidenceExplanation{
		Level: level,
		Explanation: fmt.Sprintf(
			"Confidence %.0f%% from %d data points over %.0f days with R²=%.2f",
			confidence*100, dataPoints, timeSpanDays, rSquared),
		Factors: factors,
	}
}
