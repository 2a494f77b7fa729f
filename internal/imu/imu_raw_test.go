package imu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

func TestScale(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                  string
		raw                   IMURaw
		accelRange, gyroRange byte
		want                  Reading
	}{
		{
			name: "level at ±2g ±250",
			raw:  IMURaw{Az: 16384, Gz: 131},
			want: Reading{Accel: motion.Vector{Z: 1}, Gyro: motion.Vector{Z: 1}},
		},
		{
			name:       "±8g ±500",
			raw:        IMURaw{Ax: -4096, Ay: 2048, Gx: 655},
			accelRange: 2,
			gyroRange:  1,
			want:       Reading{Accel: motion.Vector{X: -1, Y: 0.5}, Gyro: motion.Vector{X: 10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scale(tt.raw, tt.accelRange, tt.gyroRange)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scale mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRanges(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{2, 4, 8, 16}, []int{AccelRangeG(0), AccelRangeG(1), AccelRangeG(2), AccelRangeG(3)})
	assert.Equal(t, []int{250, 500, 1000, 2000}, []int{GyroRangeDPS(0), GyroRangeDPS(1), GyroRangeDPS(2), GyroRangeDPS(3)})
}
