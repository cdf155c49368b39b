package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}))
}

func TestStdDevPopulation(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{7}))
	assert.Equal(t, 0.0, StdDev([]float64{4, 4, 4, 4}))

	// [3,3,3,3,3,9]: mean 4, population variance 5
	got := StdDev([]float64{3, 3, 3, 3, 3, 9})
	assert.InDelta(t, math.Sqrt(5), got, 1e-9)
}

func TestZScoreGuardsZeroStd(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(10, 5, 0))
	assert.InDelta(t, 2.0, ZScore(9, 5, 2), 1e-9)
}

func TestPearson(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{2, 4, 6, 8, 10}
		assert.InDelta(t, 1.0, Pearson(x, y), 1e-9)
	})

	t.Run("perfect negative", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{10, 8, 6, 4, 2}
		assert.InDelta(t, -1.0, Pearson(x, y), 1e-9)
	})

	t.Run("zero variance yields zero", func(t *testing.T) {
		x := []float64{3, 3, 3, 3}
		y := []float64{1, 2, 3, 4}
		assert.Equal(t, 0.0, Pearson(x, y))
	})

	t.Run("mismatched lengths yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Pearson([]float64{1, 2}, []float64{1, 2, 3}))
	})
}

func TestTwoSidedTTestPValue(t *testing.T) {
	t.Run("strong correlation on decent sample is significant", func(t *testing.T) {
		p := TwoSidedTTestPValue(0.9, 20)
		assert.Less(t, p, 0.01)
	})

	t.Run("weak correlation is not significant", func(t *testing.T) {
		p := TwoSidedTTestPValue(0.1, 10)
		assert.Greater(t, p, 0.05)
	})

	t.Run("degenerate inputs return 1", func(t *testing.T) {
		assert.Equal(t, 1.0, TwoSidedTTestPValue(0.5, 2))
		assert.Equal(t, 1.0, TwoSidedTTestPValue(1.0, 10))
		assert.Equal(t, 1.0, TwoSidedTTestPValue(-1.0, 10))
	})

	t.Run("p-value in range", func(t *testing.T) {
		for _, r := range []float64{-0.8, -0.3, 0, 0.3, 0.8} {
			p := TwoSidedTTestPValue(r, 15)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
	})
}

func TestFitLine(t *testing.T) {
	t.Run("perfect line", func(t *testing.T) {
		line := FitLine([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		assert.InDelta(t, 1.0, line.Slope, 1e-6)
		assert.InDelta(t, 1.0, line.Intercept, 1e-6)
		assert.InDelta(t, 1.0, line.R2, 1e-6)
	})

	t.Run("flat line", func(t *testing.T) {
		line := FitLine([]float64{5, 5, 5, 5, 5})
		assert.InDelta(t, 0.0, line.Slope, 1e-6)
		// Zero total variance must not yield NaN
		assert.False(t, math.IsNaN(line.R2))
		assert.GreaterOrEqual(t, line.R2, 0.0)
		assert.LessOrEqual(t, line.R2, 1.0)
	})

	t.Run("too few points", func(t *testing.T) {
		assert.Equal(t, Line{}, FitLine([]float64{3}))
		assert.Equal(t, Line{}, FitLine(nil))
	})

	t.Run("extrapolation", func(t *testing.T) {
		line := FitLine([]float64{2, 4, 6, 8})
		assert.InDelta(t, 10.0, line.At(4), 1e-6)
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.7, Clamp01(0.7))
	assert.Equal(t, 2.0, Clamp(1, 2, 5))
	assert.Equal(t, 5.0, Clamp(9, 2, 5))
}
