// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// floatRing is a fixed-capacity FIFO of float64 values. The oldest value is
// overwritten once the ring is full.
type floatRing struct {
	data []float64
	pos  int
	full bool
}

func newFloatRing(capacity int) floatRing {
	return floatRing{data: make([]float64, capacity)}
}

func (r *floatRing) push(v float64) {
	r.data[r.pos] = v
	r.pos++
	if r.pos == len(r.data) {
		r.pos = 0
		r.full = true
	}
}

func (r *floatRing) len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// values returns the live contents. Order is storage order, not insertion
// order; callers only compute order-independent statistics over it.
func (r *floatRing) values() []float64 {
	return r.data[:r.len()]
}

// vectorRing is the Vector counterpart of floatRing.
type vectorRing struct {
	data []Vector
	pos  int
	full bool
}

func newVectorRing(capacity int) vectorRing {
	return vectorRing{data: make([]Vector, capacity)}
}

func (r *vectorRing) push(v Vector) {
	r.data[r.pos] = v
	r.pos++
	if r.pos == len(r.data) {
		r.pos = 0
		r.full = true
	}
}

func (r *vectorRing) len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

func (r *vectorRing) values() []Vector {
	return r.data[:r.len()]
}
