// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion classifies the translation regime of a body (stationary,
// horizontal, vertical or diagonal) from a stream of earth-frame linear
// acceleration samples.
//
// A Pipeline chains three stages per sample: a Smoother removing drift, an
// Estimator reducing the smoothed sample to a windowed (horizontal,
// vertical) energy pair, and a Classifier latching a direction with
// hysteresis. Everything is sized at construction; Add does not allocate.
// A Pipeline is owned by a single goroutine.
package motion

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidWindow    = errors.New("window size must be positive")
	ErrInvalidThreshold = errors.New("acceleration threshold must be finite and positive")
	ErrWindowOrder      = errors.New("detection window must be shorter than smoothing window")
	ErrAngleOrder       = errors.New("angle low threshold must be below angle high threshold")
	ErrQuantileRange    = errors.New("quantile must be in [0, 1)")
	ErrUnknownStrategy  = errors.New("unknown magnitude estimator")
)

// Params configures a Pipeline.
type Params struct {
	SmoothingWindow int
	DetectionWindow int
	AccelThreshold  float64 // g
	AngleLow        float64 // radians
	AngleHigh       float64 // radians
	Strategy        Strategy
	Quantile        float64 // StrategyQuantile only
}

// DefaultParams mirrors the tuning used on the device.
func DefaultParams() Params {
	return Params{
		SmoothingWindow: 100,
		DetectionWindow: 30,
		AccelThreshold:  DefaultAccelThreshold,
		AngleLow:        DefaultAngleLow,
		AngleHigh:       DefaultAngleHigh,
		Strategy:        StrategyAverage,
		Quantile:        DefaultQuantile,
	}
}

// Validate reports every violated constraint.
func (p Params) Validate() error {
	var errs []error
	if p.SmoothingWindow <= 0 {
		errs = append(errs, fmt.Errorf("smoothing: %w (got %d)", ErrInvalidWindow, p.SmoothingWindow))
	}
	if p.DetectionWindow <= 0 {
		errs = append(errs, fmt.Errorf("detection: %w (got %d)", ErrInvalidWindow, p.DetectionWindow))
	}
	if p.SmoothingWindow > 0 && p.DetectionWindow > 0 && p.DetectionWindow >= p.SmoothingWindow {
		errs = append(errs, fmt.Errorf("%w (detection=%d, smoothing=%d)", ErrWindowOrder, p.DetectionWindow, p.SmoothingWindow))
	}
	// energies are never negative, so a threshold <= 0 would never read stationary
	if math.IsNaN(p.AccelThreshold) || math.IsInf(p.AccelThreshold, 0) || p.AccelThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%w (got %v)", ErrInvalidThreshold, p.AccelThreshold))
	}
	if !(p.AngleLow < p.AngleHigh) {
		errs = append(errs, fmt.Errorf("%w (low=%v, high=%v)", ErrAngleOrder, p.AngleLow, p.AngleHigh))
	}
	switch p.Strategy {
	case StrategyAverage:
	case StrategyQuantile:
		if !(p.Quantile >= 0 && p.Quantile < 1) {
			errs = append(errs, fmt.Errorf("%w (got %v)", ErrQuantileRange, p.Quantile))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownStrategy, p.Strategy))
	}
	return errors.Join(errs...)
}

// Trace holds the intermediate values of the last processed sample.
type Trace struct {
	Smoothed   Vector
	Horizontal float64
	Vertical   float64
	EnergyH    float64
	EnergyV    float64
	Direction  Direction
	Moving     bool
}

// Pipeline is the per-sample motion analysis chain.
type Pipeline struct {
	params     Params
	smoother   *Smoother
	estimator  Estimator
	classifier *Classifier
	last       Trace
}

// New validates p and builds a Pipeline.
func New(p Params) (*Pipeline, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("motion: invalid params: %w", err)
	}
	return &Pipeline{
		params:     p,
		smoother:   NewSmoother(p.SmoothingWindow),
		estimator:  NewEstimator(p.Strategy, p.DetectionWindow, p.Quantile),
		classifier: NewClassifier(p.AccelThreshold, p.AngleLow, p.AngleHigh),
	}, nil
}

// MustNew is like New but panics on invalid params.
func MustNew(p Params) *Pipeline {
	pl, err := New(p)
	if err != nil {
		panic(err)
	}
	return pl
}

// Add feeds one earth-frame acceleration sample and returns the current
// direction; ok is false while stationary.
func (p *Pipeline) Add(sample Vector) (Direction, bool) {
	smoothed := p.smoother.Add(sample)
	h, v := smoothed.Horizontal(), smoothed.Vertical()
	eh, ev := p.estimator.Add(h, v)
	dir, ok := p.classifier.Classify(eh, ev)

	p.last = Trace{
		Smoothed:   smoothed,
		Horizontal: h,
		Vertical:   v,
		EnergyH:    eh,
		EnergyV:    ev,
		Direction:  dir,
		Moving:     ok,
	}
	return dir, ok
}

// Last returns the trace of the most recent Add.
func (p *Pipeline) Last() Trace {
	return p.last
}

func (p *Pipeline) Params() Params {
	return p.params
}
