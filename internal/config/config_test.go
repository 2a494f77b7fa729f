package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inertial_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "# nothing but a comment\n\n"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, motion.DefaultParams(), cfg.MotionParams())
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, `
MQTT_BROKER = tcp://broker.local:1883
TOPIC_MOTION=lab/motion
IMU_SOURCE=mock
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=3
IMU_SAMPLE_INTERVAL=10
SMOOTHING_WINDOW_SIZE=50
DETECTION_WINDOW_SIZE=20
ACCEL_THRESHOLD=0.8
ANGLE_LOW_THRESHOLD=0.3
ANGLE_HIGH_THRESHOLD=1.0
MAGNITUDE_ESTIMATOR=quantile
QUANTILE=0.9
SERIAL_PORT=/dev/ttyUSB1
SERIAL_BAUD_RATE=921600
`))
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTTBroker)
	assert.Equal(t, "lab/motion", cfg.TopicMotion)
	assert.Equal(t, "mock", cfg.IMUSource)
	assert.Equal(t, byte(2), cfg.IMUAccelRange)
	assert.Equal(t, byte(3), cfg.IMUGyroRange)
	assert.Equal(t, 10, cfg.IMUSampleInterval)
	assert.Equal(t, "/dev/ttyUSB1", cfg.SerialPort)
	assert.Equal(t, 921600, cfg.SerialBaudRate)
	assert.Equal(t, motion.Params{
		SmoothingWindow: 50,
		DetectionWindow: 20,
		AccelThreshold:  0.8,
		AngleLow:        0.3,
		AngleHigh:       1.0,
		Strategy:        motion.StrategyQuantile,
		Quantile:        0.9,
	}, cfg.MotionParams())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "missing separator", body: "MQTT_BROKER\n"},
		{name: "unknown key", body: "NOPE=1\n"},
		{name: "bad range", body: "IMU_ACCEL_RANGE=4\n"},
		{name: "bad int", body: "IMU_SAMPLE_INTERVAL=fast\n"},
		{name: "non positive window", body: "DETECTION_WINDOW_SIZE=0\n"},
		{name: "bad estimator", body: "MAGNITUDE_ESTIMATOR=median\n"},
		{name: "bad source", body: "IMU_SOURCE=bmp280\n"},
		{name: "bad leak", body: "VELOCITY_LEAK=1.5\n"},
		{name: "empty broker", body: "MQTT_BROKER=\n"},
		{
			name:    "detection window not shorter than smoothing",
			body:    "SMOOTHING_WINDOW_SIZE=30\nDETECTION_WINDOW_SIZE=30\n",
			wantErr: motion.ErrWindowOrder,
		},
		{
			name:    "angles out of order",
			body:    "ANGLE_LOW_THRESHOLD=1.0\nANGLE_HIGH_THRESHOLD=0.5\n",
			wantErr: motion.ErrAngleOrder,
		},
		{
			name:    "quantile out of range",
			body:    "MAGNITUDE_ESTIMATOR=quantile\nQUANTILE=1\n",
			wantErr: motion.ErrQuantileRange,
		},
		{
			name:    "quantile out of range with average estimator",
			body:    "MAGNITUDE_ESTIMATOR=average\nQUANTILE=1.5\n",
			wantErr: motion.ErrQuantileRange,
		},
		{
			name:    "NaN threshold",
			body:    "ACCEL_THRESHOLD=NaN\n",
			wantErr: motion.ErrInvalidThreshold,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadSampleConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join("..", "..", "inertial_config.txt"))
	require.NoError(t, err)
	assert.Equal(t, "inertial/motion", cfg.TopicMotion)
	assert.Equal(t, motion.DefaultParams(), cfg.MotionParams())
}
