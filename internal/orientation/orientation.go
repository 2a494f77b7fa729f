package orientation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

// Pose is the canonical representation of orientation for the app, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Estimator fuses accelerometer (g) and gyroscope (deg/s) readings into a
// heading and an earth-frame linear acceleration with gravity removed.
type Estimator interface {
	Update(ts time.Time, accel, gyro motion.Vector) (Pose, motion.Vector)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is unobservable without a magnetometer and is left at 0.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// quatFromPose builds the body-to-earth rotation for a ZYX pose in degrees.
func quatFromPose(p Pose) quat.Number {
	r := p.Roll * math.Pi / 360
	pi := p.Pitch * math.Pi / 360
	y := p.Yaw * math.Pi / 360
	cr, sr := math.Cos(r), math.Sin(r)
	cp, sp := math.Cos(pi), math.Sin(pi)
	cy, sy := math.Cos(y), math.Sin(y)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// poseFromQuat is the inverse of quatFromPose.
func poseFromQuat(q quat.Number) Pose {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sinp := 2 * (w*y - z*x)
	pitch := math.Asin(math.Max(-1, math.Min(1, sinp)))
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return Pose{
		Roll:  roll * 180 / math.Pi,
		Pitch: pitch * 180 / math.Pi,
		Yaw:   yaw * 180 / math.Pi,
	}
}

// rotate applies q to v (q v q*).
func rotate(q quat.Number, v motion.Vector) motion.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return motion.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}
