// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"math"
)

const (
	// DefaultAccelThreshold is the energy (g) both axes must stay under for
	// the body to count as stationary.
	DefaultAccelThreshold = 1.5
	// DefaultAngleLow and DefaultAngleHigh bound the diagonal sector. The band
	// is deliberately skewed towards the vertical side of 45°.
	DefaultAngleLow  = math.Pi/4 - math.Pi/8
	DefaultAngleHigh = 1.1 * math.Pi / 4
)

// Classifier turns (horizontal, vertical) energy pairs into a direction
// with hysteresis: once a direction is latched it is kept until both
// energies drop below the threshold, even if the angle drifts meanwhile.
type Classifier struct {
	threshold float64
	angleLow  float64
	angleHigh float64

	latched   Direction
	isLatched bool
}

// NewClassifier panics unless angleLow < angleHigh.
func NewClassifier(threshold, angleLow, angleHigh float64) *Classifier {
	if !(angleLow < angleHigh) {
		panic(fmt.Sprintf("motion: angle thresholds out of order: low=%v high=%v", angleLow, angleHigh))
	}
	return &Classifier{
		threshold: threshold,
		angleLow:  angleLow,
		angleHigh: angleHigh,
	}
}

// Classify advances the latch with one energy pair. ok is false while the
// body is considered stationary.
func (c *Classifier) Classify(horizontal, vertical float64) (dir Direction, ok bool) {
	below := horizontal < c.threshold && vertical < c.threshold

	if c.isLatched {
		if below {
			c.isLatched = false
			return 0, false
		}
		return c.latched, true
	}
	if below {
		return 0, false
	}

	c.latched = c.sector(math.Atan2(vertical, horizontal))
	c.isLatched = true
	return c.latched, true
}

// State reports the current latch.
func (c *Classifier) State() (Direction, bool) {
	return c.latched, c.isLatched
}

// sector maps an angle measured from the horizontal plane. An angle exactly
// on angleLow falls through to Vertical.
func (c *Classifier) sector(angle float64) Direction {
	switch {
	case c.angleLow < angle && angle < c.angleHigh:
		return Diagonal
	case angle < c.angleLow:
		return Horizontal
	default:
		return Vertical
	}
}
