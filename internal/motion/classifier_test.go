package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newDefaultClassifier() *Classifier {
	return NewClassifier(DefaultAccelThreshold, DefaultAngleLow, DefaultAngleHigh)
}

type classifyStep struct {
	h, v   float64
	want   Direction
	moving bool
}

func runSteps(t *testing.T, c *Classifier, steps []classifyStep) {
	t.Helper()
	for i, s := range steps {
		dir, ok := c.Classify(s.h, s.v)
		if assert.Equal(t, s.moving, ok, "step %d (%v, %v)", i, s.h, s.v) && ok {
			assert.Equal(t, s.want, dir, "step %d (%v, %v)", i, s.h, s.v)
		}
	}
}

func TestClassifierHysteresisLatch(t *testing.T) {
	t.Parallel()
	c := newDefaultClassifier()
	runSteps(t, c, []classifyStep{
		{h: 2, v: 2, want: Diagonal, moving: true},
		{h: 0.1, v: 0.1, moving: false},
		{h: 2, v: 2, want: Diagonal, moving: true},
	})
}

func TestClassifierDirectionIsSticky(t *testing.T) {
	t.Parallel()
	c := newDefaultClassifier()
	runSteps(t, c, []classifyStep{
		{h: 2, v: 2, want: Diagonal, moving: true},
		// angle drifts to pure horizontal, still above threshold
		{h: 5, v: 0.1, want: Diagonal, moving: true},
		{h: 0, v: 5, want: Diagonal, moving: true},
		{h: 1, v: 1, moving: false},
		// a fresh choice after the reset
		{h: 5, v: 0.1, want: Horizontal, moving: true},
	})
}

func TestClassifierStaysUnsetBelowThreshold(t *testing.T) {
	t.Parallel()
	c := newDefaultClassifier()
	runSteps(t, c, []classifyStep{
		{h: 0, v: 0, moving: false},
		{h: 1.49, v: 1.49, moving: false},
		{h: 0.2, v: 1.0, moving: false},
	})
	_, latched := c.State()
	assert.False(t, latched)
}

func TestClassifierSingleAxisAboveThreshold(t *testing.T) {
	t.Parallel()

	c := newDefaultClassifier()
	dir, ok := c.Classify(0.1, 2.0)
	assert.True(t, ok)
	assert.Equal(t, Vertical, dir)

	// threshold comparison is strict: an energy equal to it counts as motion
	c = newDefaultClassifier()
	dir, ok = c.Classify(DefaultAccelThreshold, 0)
	assert.True(t, ok)
	assert.Equal(t, Horizontal, dir)
}

func TestClassifierSectors(t *testing.T) {
	t.Parallel()
	const r = 3.0
	polar := func(angle float64) (float64, float64) {
		return r * math.Cos(angle), r * math.Sin(angle)
	}

	tests := []struct {
		name  string
		angle float64
		want  Direction
	}{
		{"flat", 0, Horizontal},
		{"just below low", DefaultAngleLow - 1e-3, Horizontal},
		{"just above low", DefaultAngleLow + 1e-3, Diagonal},
		{"forty five degrees", math.Pi / 4, Diagonal},
		{"just below high", DefaultAngleHigh - 1e-3, Diagonal},
		{"just above high", DefaultAngleHigh + 1e-3, Vertical},
		{"upright", math.Pi / 2, Vertical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, v := polar(tt.angle)
			dir, ok := newDefaultClassifier().Classify(h, v)
			assert.True(t, ok)
			assert.Equal(t, tt.want, dir)
		})
	}
}

func TestClassifierAngleOnLowBoundIsVertical(t *testing.T) {
	t.Parallel()
	c := NewClassifier(1, 0, 1)
	dir, ok := c.Classify(2, 0) // atan2(0, 2) == 0 == low
	assert.True(t, ok)
	assert.Equal(t, Vertical, dir)
}

func TestNewClassifierRejectsUnorderedAngles(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewClassifier(1, 1, 1) })
	assert.Panics(t, func() { NewClassifier(1, 1, 0.5) })
	assert.Panics(t, func() { NewClassifier(1, math.NaN(), 1) })
}

func TestDefaultAngles(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, math.Pi/8, DefaultAngleLow, 1e-12)
	assert.InDelta(t, 0.275*math.Pi, DefaultAngleHigh, 1e-12)
	assert.Less(t, DefaultAngleLow, math.Pi/4)
	assert.Greater(t, DefaultAngleHigh, math.Pi/4)
}

func TestDirectionText(t *testing.T) {
	t.Parallel()
	for _, d := range []Direction{Horizontal, Vertical, Diagonal} {
		text, err := d.MarshalText()
		assert.NoError(t, err)

		var back Direction
		assert.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, d, back)
	}

	_, err := Direction(7).MarshalText()
	assert.Error(t, err)
	var d Direction
	assert.Error(t, d.UnmarshalText([]byte("sideways")))

	assert.Equal(t, "none", Label(Vertical, false))
	assert.Equal(t, "vertical", Label(Vertical, true))
}
