// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "fmt"

// Smoother removes slow bias and drift from an acceleration stream by
// subtracting the trailing mean of the last N samples from each new one.
//
// Smoother is not safe for concurrent use.
type Smoother struct {
	window vectorRing
}

// NewSmoother returns a Smoother averaging over the last size samples.
// It panics if size is not positive.
func NewSmoother(size int) *Smoother {
	if size <= 0 {
		panic(fmt.Sprintf("motion: smoothing window size must be positive, got %d", size))
	}
	return &Smoother{window: newVectorRing(size)}
}

// Add returns sample minus the mean of the samples buffered so far, then
// stores sample, evicting the oldest one if the window is full. The first
// sample is returned unchanged.
func (s *Smoother) Add(sample Vector) Vector {
	smoothed := sample.Sub(s.mean())
	s.window.push(sample)
	return smoothed
}

// Len is the number of buffered samples.
func (s *Smoother) Len() int {
	return s.window.len()
}

func (s *Smoother) mean() Vector {
	vals := s.window.values()
	if len(vals) == 0 {
		return Vector{}
	}
	var sum Vector
	for _, v := range vals {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(vals)))
}
