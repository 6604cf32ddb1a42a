package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturns(t *testing.T) {
	got := Returns([]float64{100, 110, 99})
	assert.InDeltaSlice(t, []float64{0.10, -0.10}, got, 1e-12)
	assert.Nil(t, Returns([]float64{100}))
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		sample float64
		pop    float64
	}{
		{"empty", nil, 0, 0},
		{"single observation", []float64{0.1}, 0, 0},
		{"two values", []float64{1, 3}, math.Sqrt2, 1},
		{"constant", []float64{2, 2, 2}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.sample, StdDev(tt.values), 1e-12)
			assert.InDelta(t, tt.pop, PopStdDev(tt.values), 1e-12)
		})
	}
}

func TestCovariance(t *testing.T) {
	assert.InDelta(t, 2.0, Covariance([]float64{1, 3}, []float64{2, 4}), 1e-12)
	assert.Equal(t, 0.0, Covariance([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, Covariance([]float64{1, 2}, []float64{2}))
}

func TestCorrelation(t *testing.T) {
	r, ok := Correlation([]float64{1, 2, 3}, []float64{2, 4, 6})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, ok = Correlation([]float64{1, 2, 3}, []float64{3, 2, 1})
	assert.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-12)

	_, ok = Correlation([]float64{1, 2, 3}, []float64{5, 5, 5})
	assert.False(t, ok, "zero variance makes correlation undefined")

	_, ok = Correlation([]float64{0.1}, []float64{0})
	assert.False(t, ok)
}

func TestDownsideDeviation(t *testing.T) {
	// min(0, r)² = [0, 0.01, 0, 0.04] → mean 0.0125
	got := DownsideDeviation([]float64{0.05, -0.1, 0.2, -0.2})
	assert.InDelta(t, math.Sqrt(0.0125), got, 1e-12)

	assert.Equal(t, 0.0, DownsideDeviation([]float64{0.1, 0.2}))
	assert.Equal(t, 0.0, DownsideDeviation(nil))
}

func TestRangeDrawdown(t *testing.T) {
	assert.Equal(t, 0.75, RangeDrawdown([]float64{100, 50, 200}))
	assert.Equal(t, 0.0, RangeDrawdown([]float64{100, 100, 100}))
	assert.InDelta(t, 0.5, RangeDrawdown([]float64{200, 100}), 1e-12)
	assert.Equal(t, 0.0, RangeDrawdown(nil))
}
