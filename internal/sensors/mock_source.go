// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"

	"github.com/relabs-tech/inertial_motion/internal/imu"
	"github.com/relabs-tech/inertial_motion/internal/motion"
)

// MockPhase is one segment of the synthetic motion profile.
type MockPhase struct {
	Name string
	// Amplitude of the sinusoidal linear acceleration in g, earth frame.
	Amplitude motion.Vector
}

// MockProfile cycles through rest and each translation regime.
var MockProfile = []MockPhase{
	{Name: "rest"},
	{Name: "horizontal", Amplitude: motion.Vector{X: 3}},
	{Name: "rest"},
	{Name: "vertical", Amplitude: motion.Vector{Z: 3}},
	{Name: "rest"},
	// atan(2.1/2.5) ≈ 40°, inside the default diagonal band
	{Name: "diagonal", Amplitude: motion.Vector{X: 2.5, Z: 2.1}},
}

const (
	mockPhaseSeconds = 2.0
	mockShakeHz      = 2.0
)

// MockSource generates a level, non-rotating body shaken along the axes of
// MockProfile. Time advances by one sample interval per Read, so the output
// does not depend on the wall clock.
type MockSource struct {
	interval float64 // seconds
	n        int
}

// NewMockSource creates a mock source sampled every intervalMS milliseconds.
func NewMockSource(intervalMS int) *MockSource {
	if intervalMS <= 0 {
		intervalMS = 5
	}
	return &MockSource{interval: float64(intervalMS) / 1000}
}

func (m *MockSource) Read() (imu.Reading, error) {
	elapsed := float64(m.n) * m.interval
	m.n++

	phase := m.PhaseAt(elapsed)
	s := math.Sin(2 * math.Pi * mockShakeHz * elapsed)
	return imu.Reading{
		Accel: motion.Vector{Z: 1}.Add(phase.Amplitude.Scale(s)),
	}, nil
}

// PhaseAt returns the profile phase active elapsed seconds after start.
func (m *MockSource) PhaseAt(elapsed float64) MockPhase {
	i := int(elapsed/mockPhaseSeconds) % len(MockProfile)
	return MockProfile[i]
}

// Elapsed is the simulated time of the next Read, in seconds.
func (m *MockSource) Elapsed() float64 {
	return float64(m.n) * m.interval
}
