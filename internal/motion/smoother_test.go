package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmootherFirstSampleUnchanged(t *testing.T) {
	t.Parallel()
	s := NewSmoother(10)
	in := Vector{X: 0.25, Y: -1.5, Z: 9.0}
	assert.Equal(t, in, s.Add(in))
	assert.Equal(t, 1, s.Len())
}

func TestSmootherSubtractsMeanBeforeInsert(t *testing.T) {
	t.Parallel()
	s := NewSmoother(2)

	steps := []struct {
		in, want float64
	}{
		{in: 1, want: 1}, // empty buffer, mean is zero
		{in: 3, want: 2}, // mean(1)
		{in: 5, want: 3}, // mean(1, 3), then 1 is evicted
		{in: 7, want: 3}, // mean(3, 5)
	}
	for i, step := range steps {
		got := s.Add(Vector{X: step.in, Y: -step.in, Z: 2 * step.in})
		assert.Equal(t, Vector{X: step.want, Y: -step.want, Z: 2 * step.want}, got, "step %d", i)
	}
}

func TestSmootherConstantInputConverges(t *testing.T) {
	t.Parallel()
	inputs := []Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 0.3, Y: -0.7, Z: 1.0},
		{X: 123.456, Y: 1e-3, Z: -42},
	}
	for _, v := range inputs {
		s := NewSmoother(16)
		var out Vector
		for i := 0; i < 64; i++ {
			out = s.Add(v)
		}
		assert.InDelta(t, 0, out.X, 1e-9)
		assert.InDelta(t, 0, out.Y, 1e-9)
		assert.InDelta(t, 0, out.Z, 1e-9)
	}
}

func TestSmootherWindowBound(t *testing.T) {
	t.Parallel()
	s := NewSmoother(100)
	for i := 0; i < 250; i++ {
		s.Add(Vector{X: float64(i)})
		require.LessOrEqual(t, s.Len(), 100)
	}
	assert.Equal(t, 100, s.Len())
}

func TestNewSmootherRejectsEmptyWindow(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewSmoother(0) })
	assert.Panics(t, func() { NewSmoother(-3) })
}
