// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultQuantile is the order statistic used by the quantile estimator.
const DefaultQuantile = 0.75

// minNormal is the smallest positive normal float64.
const minNormal = 0x1p-1022

// Estimator reduces a stream of (horizontal, vertical) magnitudes to a
// windowed motion-energy pair.
type Estimator interface {
	// Add stores the pair, evicting the oldest one if the window is full,
	// and returns the window statistic for each column.
	Add(horizontal, vertical float64) (float64, float64)
	// Len is the number of buffered pairs.
	Len() int
}

// Strategy selects an Estimator implementation.
type Strategy uint8

const (
	StrategyAverage Strategy = iota
	StrategyQuantile
)

func (s Strategy) String() string {
	switch s {
	case StrategyAverage:
		return "average"
	case StrategyQuantile:
		return "quantile"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// ParseStrategy accepts "average" or "quantile", case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "average", "avg", "mean":
		return StrategyAverage, nil
	case "quantile":
		return StrategyQuantile, nil
	}
	return 0, fmt.Errorf("unknown magnitude estimator %q (want average or quantile)", s)
}

// NewEstimator builds the estimator for strategy over a window of size
// pairs. q is only used by StrategyQuantile.
func NewEstimator(strategy Strategy, size int, q float64) Estimator {
	switch strategy {
	case StrategyAverage:
		return NewAverageEstimator(size)
	case StrategyQuantile:
		return NewQuantileEstimator(size, q)
	}
	panic(fmt.Sprintf("motion: unknown estimator strategy %d", uint8(strategy)))
}

// sanitize maps NaN, ±Inf and subnormal values to zero so that a single
// corrupt sample cannot poison every statistic over the window holding it.
// Exact zero is also "not normal" and maps to itself.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) < minNormal {
		return 0
	}
	return v
}

// pairWindow holds the two magnitude columns of a detection window.
type pairWindow struct {
	horizontal floatRing
	vertical   floatRing
}

func newPairWindow(size int) pairWindow {
	if size <= 0 {
		panic(fmt.Sprintf("motion: detection window size must be positive, got %d", size))
	}
	return pairWindow{
		horizontal: newFloatRing(size),
		vertical:   newFloatRing(size),
	}
}

func (w *pairWindow) push(h, v float64) {
	w.horizontal.push(sanitize(h))
	w.vertical.push(sanitize(v))
}

func (w *pairWindow) len() int {
	return w.horizontal.len()
}

func (w *pairWindow) mustNotBeEmpty() {
	if w.len() == 0 {
		panic("motion: window statistic requested before any measurement was added")
	}
}

// AverageEstimator reports the arithmetic mean of each column.
type AverageEstimator struct {
	window pairWindow
}

func NewAverageEstimator(size int) *AverageEstimator {
	return &AverageEstimator{window: newPairWindow(size)}
}

func (e *AverageEstimator) Add(horizontal, vertical float64) (float64, float64) {
	e.window.push(horizontal, vertical)
	return e.stat()
}

func (e *AverageEstimator) Len() int { return e.window.len() }

func (e *AverageEstimator) stat() (float64, float64) {
	e.window.mustNotBeEmpty()
	n := float64(e.window.len())
	return floats.Sum(e.window.horizontal.values()) / n,
		floats.Sum(e.window.vertical.values()) / n
}

// QuantileEstimator reports the value at quantile q of each column, taken
// as sorted[floor(n*q)]. The sort scratch is allocated once.
type QuantileEstimator struct {
	window pairWindow
	q      float64

	hScratch []float64
	vScratch []float64
}

// NewQuantileEstimator panics unless 0 <= q < 1.
func NewQuantileEstimator(size int, q float64) *QuantileEstimator {
	if !(q >= 0 && q < 1) {
		panic(fmt.Sprintf("motion: quantile must be in [0, 1), got %v", q))
	}
	return &QuantileEstimator{
		window:   newPairWindow(size),
		q:        q,
		hScratch: make([]float64, 0, size),
		vScratch: make([]float64, 0, size),
	}
}

func (e *QuantileEstimator) Add(horizontal, vertical float64) (float64, float64) {
	e.window.push(horizontal, vertical)
	return e.stat()
}

func (e *QuantileEstimator) Len() int { return e.window.len() }

func (e *QuantileEstimator) stat() (float64, float64) {
	e.window.mustNotBeEmpty()
	e.hScratch = append(e.hScratch[:0], e.window.horizontal.values()...)
	e.vScratch = append(e.vScratch[:0], e.window.vertical.values()...)
	slices.Sort(e.hScratch)
	slices.Sort(e.vScratch)

	pos := int(float64(len(e.hScratch)) * e.q)
	return e.hScratch[pos], e.vScratch[pos]
}
