// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

const (
	// StandardGravity converts g to m/s².
	StandardGravity = 9.81

	DefaultGain = 0.5
	DefaultLeak = 0.99
)

// accNormMin rejects accelerometer readings too small to carry a gravity
// direction (free fall or a dead sensor).
const accNormMin = 1e-6

// Tracker is a Mahony-style complementary filter without magnetometer. The
// gyroscope is integrated into a unit quaternion and the accelerometer
// gravity direction pulls it back with a proportional gain.
//
// On top of the attitude it keeps a leaky velocity/position integral of the
// earth-frame acceleration, which drifts and is only useful over seconds.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	period time.Duration
	gain   float64
	leak   float64

	q           quat.Number
	initialized bool
	last        time.Time
	latestDelta time.Duration

	pose     Pose
	accel    motion.Vector
	velocity motion.Vector
	position motion.Vector
}

// NewTracker returns a Tracker expecting samples every period. gain is the
// accelerometer correction gain (1/s) and leak the per-update velocity
// retention factor in (0, 1].
func NewTracker(period time.Duration, gain, leak float64) *Tracker {
	if gain < 0 {
		gain = 0
	}
	if leak <= 0 || leak > 1 {
		leak = 1
	}
	return &Tracker{
		period: period,
		gain:   gain,
		leak:   leak,
		q:      quat.Number{Real: 1},
	}
}

// Update fuses one accelerometer (g) and gyroscope (deg/s) reading taken at
// ts and returns the pose together with the earth-frame linear
// acceleration in g.
func (t *Tracker) Update(ts time.Time, accel, gyro motion.Vector) (Pose, motion.Vector) {
	if !t.initialized {
		// Level the attitude from the first gravity reading instead of
		// waiting for the filter to converge from identity.
		if norm(accel) > accNormMin {
			t.q = quatFromPose(ComputePoseFromAccel(accel.X, accel.Y, accel.Z))
		}
		t.initialized = true
		t.last = ts
		t.latestDelta = 0
		return t.finish(accel, 0)
	}

	dt := ts.Sub(t.last)
	t.last = ts
	t.latestDelta = dt
	if dt <= 0 {
		return t.finish(accel, 0)
	}
	secs := dt.Seconds()

	w := gyro.Scale(math.Pi / 180)
	if n := norm(accel); n > accNormMin {
		a := accel.Scale(1 / n)
		v := gravityInBody(t.q)
		// e = a × v
		e := motion.Vector{
			X: a.Y*v.Z - a.Z*v.Y,
			Y: a.Z*v.X - a.X*v.Z,
			Z: a.X*v.Y - a.Y*v.X,
		}
		w = w.Add(e.Scale(t.gain))
	}

	dq := quat.Scale(0.5*secs, quat.Mul(t.q, quat.Number{Imag: w.X, Jmag: w.Y, Kmag: w.Z}))
	q := quat.Add(t.q, dq)
	t.q = quat.Scale(1/quat.Abs(q), q)

	return t.finish(accel, secs)
}

func (t *Tracker) finish(accel motion.Vector, secs float64) (Pose, motion.Vector) {
	t.pose = poseFromQuat(t.q)
	t.accel = rotate(t.q, accel).Sub(motion.Vector{Z: 1})

	t.velocity = t.velocity.Scale(t.leak).Add(t.accel.Scale(StandardGravity * secs))
	t.position = t.position.Add(t.velocity.Scale(secs))
	return t.pose, t.accel
}

func (t *Tracker) Pose() Pose { return t.pose }

// EarthAccel is the last gravity-free earth-frame acceleration in g.
func (t *Tracker) EarthAccel() motion.Vector { return t.accel }

// Velocity in m/s.
func (t *Tracker) Velocity() motion.Vector { return t.velocity }

// Position in m.
func (t *Tracker) Position() motion.Vector { return t.position }

// LatestDelta is the time between the last two updates.
func (t *Tracker) LatestDelta() time.Duration { return t.latestDelta }

// SamplingDeviation is the ratio of the last update interval to the
// nominal sampling period; 1 means on time.
func (t *Tracker) SamplingDeviation() float64 {
	if t.period <= 0 {
		return 0
	}
	return t.latestDelta.Seconds() / t.period.Seconds()
}

// gravityInBody is the earth "up" axis expressed in the body frame, i.e.
// the third row of the rotation matrix of q.
func gravityInBody(q quat.Number) motion.Vector {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return motion.Vector{
		X: 2 * (x*z - w*y),
		Y: 2 * (w*x + y*z),
		Z: w*w - x*x - y*y + z*z,
	}
}

func norm(v motion.Vector) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}
