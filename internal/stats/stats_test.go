package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected float64
	}{
		{"empty sample", nil, 0},
		{"single value", []float64{42}, 42},
		{"odd length", []float64{3, 1, 2}, 2},
		{"even length averages middle pair", []float64{4, 1, 3, 2}, 2.5},
		{"duplicates", []float64{5, 5, 5, 5}, 5},
		{"unsorted input", []float64{100, 1, 50}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Median(tt.input), 1e-9)
		})
	}
}

func TestQuantile(t *testing.T) {
	xs := []float64{1, 2, 3, 4}

	tests := []struct {
		name     string
		input    []float64
		q        float64
		expected float64
	}{
		{"empty sample", nil, 0.5, 0},
		{"q0 is minimum", xs, 0, 1},
		{"q1 is maximum", xs, 1, 4},
		{"interpolated quartile", xs, 0.25, 1.75},
		{"interpolated median", xs, 0.5, 2.5},
		{"index lands on element", []float64{1, 2, 3, 4, 5}, 0.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Quantile(tt.input, tt.q), 1e-9)
		})
	}
}

func TestMedcouple(t *testing.T) {
	t.Run("short sample reports no skew", func(t *testing.T) {
		assert.Zero(t, Medcouple([]float64{1, 2, 3}))
	})

	t.Run("symmetric sample", func(t *testing.T) {
		assert.InDelta(t, 0, Medcouple([]float64{1, 2, 3, 4, 5}), 1e-9)
	})

	t.Run("right-skewed sample is positive", func(t *testing.T) {
		mc := Medcouple([]float64{1, 1, 2, 2, 3, 3, 50, 60})
		assert.Greater(t, mc, 0.0)
		assert.LessOrEqual(t, mc, 1.0)
	})

	t.Run("left-skewed sample is negative", func(t *testing.T) {
		mc := Medcouple([]float64{-60, -50, 3, 3, 2, 2, 1, 1})
		assert.Less(t, mc, 0.0)
		assert.GreaterOrEqual(t, mc, -1.0)
	})

	t.Run("constant sample", func(t *testing.T) {
		// Every kernel degenerates to the sign case and evaluates to 0.
		assert.Zero(t, Medcouple([]float64{7, 7, 7, 7, 7}))
	})
}

func TestDoubleMAD(t *testing.T) {
	t.Run("short history reports no signal", func(t *testing.T) {
		assert.Zero(t, DoubleMAD(1, []float64{100, 100, 100, 100, 100, 100, 100, 100, 100}))
	})

	t.Run("constant history reports no signal", func(t *testing.T) {
		history := []float64{50, 50, 50, 50, 50, 50, 50, 50, 50, 50}
		assert.Zero(t, DoubleMAD(1, history))
	})

	t.Run("deep drop scores high", func(t *testing.T) {
		history := []float64{100, 101, 100, 99, 100, 101, 100, 99, 100, 101, 100}
		score := DoubleMAD(50, history)
		assert.Greater(t, score, 3.0)
	})

	t.Run("price near median scores low", func(t *testing.T) {
		history := []float64{100, 101, 100, 99, 100, 101, 100, 99, 100, 101, 100}
		score := DoubleMAD(99.5, history)
		assert.Less(t, score, 1.0)
	})

	t.Run("price above median scores negative", func(t *testing.T) {
		history := []float64{100, 101, 100, 99, 100, 101, 100, 99, 100, 101, 100}
		assert.Less(t, DoubleMAD(150, history), 0.0)
	})

	t.Run("zero-variance side falls back to the other side", func(t *testing.T) {
		// Everything at or below the median is exactly the median, so the
		// lower-side MAD is 0 and the upper side must take over.
		history := []float64{100, 100, 100, 100, 100, 100, 102, 104, 106, 108}
		assert.Greater(t, DoubleMAD(10, history), 0.0)
	})
}

func TestAdjustedIQROutlier(t *testing.T) {
	history := []float64{95, 97, 98, 99, 100, 100, 101, 102, 103, 105}

	t.Run("short history is never an outlier", func(t *testing.T) {
		assert.False(t, AdjustedIQROutlier(1, []float64{100, 100, 100}, 2.2))
	})

	t.Run("zero spread is never an outlier", func(t *testing.T) {
		flat := []float64{50, 50, 50, 50, 50, 50, 50, 50, 50, 50}
		assert.False(t, AdjustedIQROutlier(1, flat, 2.2))
	})

	t.Run("deep drop is an outlier", func(t *testing.T) {
		assert.True(t, AdjustedIQROutlier(40, history, 2.2))
	})

	t.Run("typical price is not an outlier", func(t *testing.T) {
		assert.False(t, AdjustedIQROutlier(99, history, 2.2))
	})

	t.Run("extreme spike is an outlier", func(t *testing.T) {
		assert.True(t, AdjustedIQROutlier(500, history, 2.2))
	})
}

func TestZScore(t *testing.T) {
	t.Run("short history reports no signal", func(t *testing.T) {
		assert.Zero(t, ZScore(5, []float64{100}))
	})

	t.Run("zero variance reports no signal", func(t *testing.T) {
		assert.Zero(t, ZScore(5, []float64{100, 100, 100}))
	})

	t.Run("drop is positive", func(t *testing.T) {
		// mean 100, population stddev 10.
		z := ZScore(80, []float64{90, 110, 90, 110})
		assert.InDelta(t, 2.0, z, 1e-9)
	})

	t.Run("spike is negative", func(t *testing.T) {
		z := ZScore(120, []float64{90, 110, 90, 110})
		assert.InDelta(t, -2.0, z, 1e-9)
	})
}
