package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/inertial_motion/internal/motion"
	"github.com/relabs-tech/inertial_motion/internal/orientation"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDAnalyzer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicMotion string

	// IMU Hardware
	IMUSource     string // "mpu9250" or "mock"
	IMUSPIDevice  string
	IMUCSPin      string
	IMUAccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUGyroRange  byte // 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s

	// Timing
	IMUSampleInterval int // milliseconds
	ReportInterval    int // milliseconds

	// Orientation fusion
	FusionGain   float64
	VelocityLeak float64

	// Motion analysis
	SmoothingWindowSize int
	DetectionWindowSize int
	AccelThreshold      float64 // g
	AngleLowThreshold   float64 // radians
	AngleHighThreshold  float64 // radians
	MagnitudeEstimator  motion.Strategy
	Quantile            float64

	// Serial acquisition board
	SerialPort     string
	SerialBaudRate int

	// Web Server
	WebServerPort int

	// Capture store
	CaptureDBPath string

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify it without locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional key at its default value.
func Default() *Config {
	p := motion.DefaultParams()
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDAnalyzer: "inertial-motion-analyzer",
		MQTTClientIDConsole:  "inertial-motion-console",
		MQTTClientIDWeb:      "inertial-motion-web",
		MQTTClientIDDisplay:  "inertial-motion-display",
		TopicMotion:          "inertial/motion",

		IMUSource:    "mpu9250",
		IMUSPIDevice: "/dev/spidev6.0",
		IMUCSPin:     "18",

		IMUSampleInterval: 5,
		ReportInterval:    200,

		FusionGain:   orientation.DefaultGain,
		VelocityLeak: orientation.DefaultLeak,

		SmoothingWindowSize: p.SmoothingWindow,
		DetectionWindowSize: p.DetectionWindow,
		AccelThreshold:      p.AccelThreshold,
		AngleLowThreshold:   p.AngleLow,
		AngleHighThreshold:  p.AngleHigh,
		MagnitudeEstimator:  p.Strategy,
		Quantile:            p.Quantile,

		SerialPort:     "/dev/ttyACM0",
		SerialBaudRate: 115200,

		WebServerPort: 8080,
		CaptureDBPath: "inertial_capture.db",

		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file and returns a Config struct. Keys that
// are not present keep their Default() value; an empty path yields the
// defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_ANALYZER":
		c.MQTTClientIDAnalyzer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_MOTION":
		c.TopicMotion = value

	// IMU Hardware
	case "IMU_SOURCE":
		switch value {
		case "mpu9250", "mock":
			c.IMUSource = value
		default:
			return fmt.Errorf("IMU_SOURCE must be mpu9250 or mock, got %q", value)
		}
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseRange(key, value, "0=±2g, 1=±4g, 2=±8g, 3=±16g")
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = parseRange(key, value, "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s")

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parsePositiveInt(key, value)
	case "REPORT_INTERVAL":
		c.ReportInterval, err = parsePositiveInt(key, value)

	// Orientation fusion
	case "FUSION_GAIN":
		c.FusionGain, err = parseFloat(key, value)
	case "VELOCITY_LEAK":
		c.VelocityLeak, err = parseFloat(key, value)
		if err == nil && (c.VelocityLeak <= 0 || c.VelocityLeak > 1) {
			return fmt.Errorf("VELOCITY_LEAK must be in (0, 1], got %v", c.VelocityLeak)
		}

	// Motion analysis
	case "SMOOTHING_WINDOW_SIZE":
		c.SmoothingWindowSize, err = parsePositiveInt(key, value)
	case "DETECTION_WINDOW_SIZE":
		c.DetectionWindowSize, err = parsePositiveInt(key, value)
	case "ACCEL_THRESHOLD":
		c.AccelThreshold, err = parseFloat(key, value)
	case "ANGLE_LOW_THRESHOLD":
		c.AngleLowThreshold, err = parseFloat(key, value)
	case "ANGLE_HIGH_THRESHOLD":
		c.AngleHighThreshold, err = parseFloat(key, value)
	case "MAGNITUDE_ESTIMATOR":
		c.MagnitudeEstimator, err = motion.ParseStrategy(value)
	case "QUANTILE":
		c.Quantile, err = parseFloat(key, value)

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parsePositiveInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parsePositiveInt(key, value)

	// Capture
	case "CAPTURE_DB_PATH":
		c.CaptureDBPath = value

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parsePositiveInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func parseRange(key, value, help string) (byte, error) {
	rangeVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if rangeVal < 0 || rangeVal > 3 {
		return 0, fmt.Errorf("%s must be 0-3 (%s), got %d", key, help, rangeVal)
	}
	return byte(rangeVal), nil
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicMotion == "" {
		return fmt.Errorf("TOPIC_MOTION is required")
	}
	if c.IMUSource == "mpu9250" && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required for the mpu9250 source")
	}
	// replay can switch to the quantile estimator whatever is configured here
	if !(c.Quantile >= 0 && c.Quantile < 1) {
		return fmt.Errorf("QUANTILE: %w (got %v)", motion.ErrQuantileRange, c.Quantile)
	}
	if err := c.MotionParams().Validate(); err != nil {
		return fmt.Errorf("motion analysis settings: %w", err)
	}
	return nil
}

// MotionParams returns the analysis pipeline settings.
func (c *Config) MotionParams() motion.Params {
	return motion.Params{
		SmoothingWindow: c.SmoothingWindowSize,
		DetectionWindow: c.DetectionWindowSize,
		AccelThreshold:  c.AccelThreshold,
		AngleLow:        c.AngleLowThreshold,
		AngleHigh:       c.AngleHighThreshold,
		Strategy:        c.MagnitudeEstimator,
		Quantile:        c.Quantile,
	}
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
