package stats

import (
	"math"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// This package wraps the numeric primitives shared by the pattern and trend
// engines. All functions are pure and defensive: degenerate inputs (too few
// samples, zero variance, non-finite intermediates) yield neutral values
// rather than NaN, so downstream thresholds never compare against NaN.

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for fewer than
// two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// MeanStd returns mean and population standard deviation in one pass pair
func MeanStd(values []float64) (float64, float64) {
	return Mean(values), StdDev(values)
}

// ZScore returns (value - mean) / std, or 0 when std is not positive
func ZScore(value, mean, std float64) float64 {
	if std <= 0 {
		return 0
	}
	return (value - mean) / std
}

// Pearson returns the Pearson correlation coefficient of x and y.
// Mismatched lengths, fewer than two points, or zero variance in either
// series yield 0.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// TwoSidedTTestPValue returns the two-sided p-value for the hypothesis that
// a Pearson correlation r over n samples is zero, via the Student's
// t-distribution with n-2 degrees of freedom. Degenerate inputs (n < 3,
// |r| >= 1) return 1, the most conservative answer.
func TwoSidedTTestPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	df := float64(n - 2)
	denom := 1 - r*r
	if denom <= 0 {
		// |r| == 1 exactly; a perfect correlation on a degenerate
		// sample is not evidence, so stay conservative.
		return 1
	}
	t := r * math.Sqrt(df/denom)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 1
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	if math.IsNaN(p) || p < 0 {
		return 1
	}
	if p > 1 {
		return 1
	}
	return p
}

// Line is a fitted least-squares regression line over an indexed series
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r_squared"`
}

// FitLine fits y = intercept + slope*x by ordinary least squares over the
// series values at x = 0, 1, 2, ... Fewer than two points, or a degenerate
// fit, yields the zero Line.
func FitLine(values []float64) Line {
	if len(values) < 2 {
		return Line{}
	}

	r := new(regression.Regression)
	r.SetObserved("value")
	r.SetVar(0, "index")
	for i, v := range values {
		r.Train(regression.DataPoint(v, []float64{float64(i)}))
	}
	if err := r.Run(); err != nil {
		return Line{}
	}

	line := Line{
		Slope:     r.Coeff(1),
		Intercept: r.Coeff(0),
		R2:        r.R2,
	}
	if math.IsNaN(line.Slope) || math.IsInf(line.Slope, 0) {
		line.Slope = 0
	}
	if math.IsNaN(line.Intercept) || math.IsInf(line.Intercept, 0) {
		line.Intercept = 0
	}
	if math.IsNaN(line.R2) || math.IsInf(line.R2, 0) || line.R2 < 0 {
		line.R2 = 0
	}
	if line.R2 > 1 {
		line.R2 = 1
	}
	return line
}

// At evaluates the fitted line at index x
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Clamp01 clamps v into [0, 1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp clamps v into [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
