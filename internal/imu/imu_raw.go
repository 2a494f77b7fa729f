package imu

import "github.com/relabs-tech/inertial_motion/internal/motion"

// IMURaw represents a single raw accelerometer+gyro sample in sensor counts.
type IMURaw struct {
	Source string `json:"source"`

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// Reading is an IMU sample in physical units.
type Reading struct {
	Accel motion.Vector `json:"accel"` // g
	Gyro  motion.Vector `json:"gyro"`  // deg/s
}

// Full-scale sensitivities of the MPU9250 at range 0 (±2g, ±250°/s). Each
// range step halves the sensitivity.
const (
	accelCountsPerG   = 16384.0
	gyroCountsPerDegS = 131.0
)

// AccelRangeG maps an ACCEL_FS_SEL value (0-3) to its full scale in g.
func AccelRangeG(r byte) int {
	return 2 << (r & 3)
}

// GyroRangeDPS maps a GYRO_FS_SEL value (0-3) to its full scale in deg/s.
func GyroRangeDPS(r byte) int {
	return 250 << (r & 3)
}

// Scale converts raw counts to g and deg/s for the given range settings.
func Scale(raw IMURaw, accelRange, gyroRange byte) Reading {
	aDiv := accelCountsPerG / float64(int(1)<<(accelRange&3))
	gDiv := gyroCountsPerDegS / float64(int(1)<<(gyroRange&3))
	return Reading{
		Accel: motion.Vector{
			X: float64(raw.Ax) / aDiv,
			Y: float64(raw.Ay) / aDiv,
			Z: float64(raw.Az) / aDiv,
		},
		Gyro: motion.Vector{
			X: float64(raw.Gx) / gDiv,
			Y: float64(raw.Gy) / gDiv,
			Z: float64(raw.Gz) / gDiv,
		},
	}
}
