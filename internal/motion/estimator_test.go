package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageEstimator(t *testing.T) {
	t.Parallel()
	e := NewAverageEstimator(2)

	h, v := e.Add(1, 2)
	assert.Equal(t, 1.0, h)
	assert.Equal(t, 2.0, v)

	h, v = e.Add(3, 4)
	assert.Equal(t, 2.0, h)
	assert.Equal(t, 3.0, v)

	// (1, 2) is evicted
	h, v = e.Add(5, 6)
	assert.Equal(t, 4.0, h)
	assert.Equal(t, 5.0, v)
}

func TestAverageEstimatorColumnsAreIndependent(t *testing.T) {
	t.Parallel()
	e := NewAverageEstimator(4)
	e.Add(10, 0.5)
	h, v := e.Add(20, 1.5)
	assert.Equal(t, 15.0, h)
	assert.Equal(t, 1.0, v)
}

func TestEstimatorGuardsNonFiniteValues(t *testing.T) {
	t.Parallel()

	t.Run("nan and inf are stored as zero", func(t *testing.T) {
		t.Parallel()
		e := NewAverageEstimator(4)
		h, v := e.Add(math.NaN(), math.Inf(1))
		assert.Equal(t, 0.0, h)
		assert.Equal(t, 0.0, v)

		h, v = e.Add(4, 8)
		assert.Equal(t, 2.0, h)
		assert.Equal(t, 4.0, v)
	})

	t.Run("negative infinity and subnormals are stored as zero", func(t *testing.T) {
		t.Parallel()
		e := NewAverageEstimator(2)
		h, v := e.Add(math.Inf(-1), 1e-310)
		assert.Equal(t, 0.0, h)
		assert.Equal(t, 0.0, v)
	})

	t.Run("quantile sees zero in place of nan", func(t *testing.T) {
		t.Parallel()
		e := NewQuantileEstimator(2, 0.75)
		e.Add(-1, -1)
		h, v := e.Add(math.NaN(), math.NaN())
		assert.Equal(t, 0.0, h)
		assert.Equal(t, 0.0, v)
	})
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"normal positive", 1.25, 1.25},
		{"normal negative", -3, -3},
		{"smallest normal", minNormal, minNormal},
		{"zero", 0, 0},
		{"subnormal", math.SmallestNonzeroFloat64, 0},
		{"nan", math.NaN(), 0},
		{"+inf", math.Inf(1), 0},
		{"-inf", math.Inf(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}

func TestQuantileEstimatorFullWindow(t *testing.T) {
	t.Parallel()
	e := NewQuantileEstimator(40, DefaultQuantile)

	var h, v float64
	for i := 1; i <= 40; i++ {
		// vertical arrives in descending order to exercise the sort
		h, v = e.Add(float64(i), float64(41-i))
	}
	// sorted[floor(40*0.75)] = sorted[30] = 31
	assert.Equal(t, 31.0, h)
	assert.Equal(t, 31.0, v)
}

func TestQuantileEstimatorPartialWindow(t *testing.T) {
	t.Parallel()
	e := NewQuantileEstimator(10, 0.75)

	h, _ := e.Add(7, 0)
	assert.Equal(t, 7.0, h, "single value is its own quantile")

	e.Add(30, 0)
	h, _ = e.Add(10, 0)
	// n=3, floor(2.25)=2 -> largest of {7, 10, 30}
	assert.Equal(t, 30.0, h)

	h, _ = e.Add(20, 0)
	// n=4, floor(3)=3 -> 30
	assert.Equal(t, 30.0, h)

	h, _ = e.Add(1, 0)
	// n=5, floor(3.75)=3 -> {1, 7, 10, 20, 30}[3]
	assert.Equal(t, 20.0, h)
}

func TestQuantileEstimatorEvictsOldest(t *testing.T) {
	t.Parallel()
	e := NewQuantileEstimator(4, 0.5)
	e.Add(100, 100)
	var h, v float64
	for i := 1; i <= 4; i++ {
		h, v = e.Add(float64(i), float64(i))
	}
	// window is {1, 2, 3, 4}; floor(4*0.5)=2
	assert.Equal(t, 3.0, h)
	assert.Equal(t, 3.0, v)
}

func TestEstimatorWindowBound(t *testing.T) {
	t.Parallel()
	for _, s := range []Strategy{StrategyAverage, StrategyQuantile} {
		e := NewEstimator(s, 30, DefaultQuantile)
		for i := 0; i < 100; i++ {
			e.Add(float64(i), float64(i))
			require.LessOrEqual(t, e.Len(), 30, s.String())
		}
		assert.Equal(t, 30, e.Len(), s.String())
	}
}

func TestNewEstimator(t *testing.T) {
	t.Parallel()
	assert.IsType(t, &AverageEstimator{}, NewEstimator(StrategyAverage, 3, 0))
	assert.IsType(t, &QuantileEstimator{}, NewEstimator(StrategyQuantile, 3, 0.75))
	assert.Panics(t, func() { NewEstimator(Strategy(9), 3, 0.75) })
}

func TestEstimatorConstructorPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAverageEstimator(0) })
	assert.Panics(t, func() { NewQuantileEstimator(0, 0.75) })
	assert.Panics(t, func() { NewQuantileEstimator(4, 1) })
	assert.Panics(t, func() { NewQuantileEstimator(4, -0.1) })
	assert.Panics(t, func() { NewQuantileEstimator(4, math.NaN()) })
}

func TestEmptyWindowStatisticPanics(t *testing.T) {
	t.Parallel()
	avg := NewAverageEstimator(3)
	assert.Panics(t, func() { avg.stat() })
	q := NewQuantileEstimator(3, 0.75)
	assert.Panics(t, func() { q.stat() })
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "average", want: StrategyAverage},
		{in: " Mean ", want: StrategyAverage},
		{in: "QUANTILE", want: StrategyQuantile},
		{in: "median", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
