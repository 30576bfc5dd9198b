// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/jump_tracker/internal/jump"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDTracker string
	MQTTClientIDDevice  string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string
	MQTTClientIDHistory string

	// Topics
	TopicJumpEvent  string
	TopicJumpStatus string

	// Sample source: "mock" or "serial"
	SampleSource   string
	SerialPort     string
	SerialBaudRate uint

	// Sampling
	SampleRateHz float64

	// Status snapshot publish interval, milliseconds
	StatusInterval int

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds

	// On-device sensors
	IMUSPIDevice string
	IMUCSPin     string
	BMPSPIDevice string

	// History store
	HistoryDBPath string

	// Detector tuning; starts from jump.DefaultConfig and is overridden
	// per key.
	Detector jump.Config
}

// Package-level unexported variables for the config singleton. External code
// must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

func defaults() *Config {
	return &Config{
		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDTracker: "jump-tracker",
		MQTTClientIDDevice:  "jump-device-producer",
		MQTTClientIDConsole: "jump-console-subscriber",
		MQTTClientIDWeb:     "jump-web-subscriber",
		MQTTClientIDDisplay: "jump-display-subscriber",
		MQTTClientIDHistory: "jump-history-subscriber",

		TopicJumpEvent:  "jump/event",
		TopicJumpStatus: "jump/status",

		SampleSource:   "mock",
		SerialPort:     "/dev/ttyUSB0",
		SerialBaudRate: 115200,

		SampleRateHz:   100,
		StatusInterval: 500,

		WebServerPort: 8080,

		DisplayUpdateInterval: 250,

		IMUSPIDevice: "/dev/spidev0.0",
		IMUCSPin:     "GPIO8",
		BMPSPIDevice: "/dev/spidev0.1",

		HistoryDBPath: "./jump_history.db",

		Detector: jump.DefaultConfig(),
	}
}

// Load reads the configuration file and returns a Config struct. Unset keys
// keep their defaults.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
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

func floatValue(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func intValue(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func boolValue(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value
	case "MQTT_CLIENT_ID_DEVICE":
		c.MQTTClientIDDevice = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_HISTORY":
		c.MQTTClientIDHistory = value

	// Topics
	case "TOPIC_JUMP_EVENT":
		c.TopicJumpEvent = value
	case "TOPIC_JUMP_STATUS":
		c.TopicJumpStatus = value

	// Sample source
	case "SAMPLE_SOURCE":
		if value != "mock" && value != "serial" {
			return fmt.Errorf("SAMPLE_SOURCE must be \"mock\" or \"serial\", got %q", value)
		}
		c.SampleSource = value
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := intValue(key, value)
		if err != nil {
			return err
		}
		c.SerialBaudRate = uint(rate)

	// Sampling / timing
	case "SAMPLE_RATE_HZ":
		c.SampleRateHz, err = floatValue(key, value)
		return err
	case "STATUS_INTERVAL":
		c.StatusInterval, err = intValue(key, value)
		return err

	// Web server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = intValue(key, value)
		return err

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = intValue(key, value)
		return err

	// On-device sensors
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "BMP_SPI_DEVICE":
		c.BMPSPIDevice = value

	// History store
	case "HISTORY_DB_PATH":
		c.HistoryDBPath = value

	// Detector thresholds
	case "DETECT_FREEFALL_THRESHOLD_G":
		c.Detector.FreefallThresholdG, err = floatValue(key, value)
		return err
	case "DETECT_GROUND_THRESHOLD_G":
		c.Detector.GroundThresholdG, err = floatValue(key, value)
		return err
	case "DETECT_NEED_BELOW_FREEFALL_SAMPLES":
		c.Detector.NeedBelowFreefallSamples, err = intValue(key, value)
		return err
	case "DETECT_NEED_ABOVE_GROUND_SAMPLES":
		c.Detector.NeedAboveGroundSamples, err = intValue(key, value)
		return err
	case "DETECT_NEED_PRE_JUMP_STABLE_SAMPLES":
		c.Detector.NeedPreJumpStableSamples, err = intValue(key, value)
		return err
	case "DETECT_STABLE_MIN_G":
		c.Detector.StableMinG, err = floatValue(key, value)
		return err
	case "DETECT_STABLE_MAX_G":
		c.Detector.StableMaxG, err = floatValue(key, value)
		return err
	case "DETECT_MIN_FLIGHT_TIME":
		c.Detector.MinFlightTime, err = floatValue(key, value)
		return err
	case "DETECT_MAX_FLIGHT_TIME":
		c.Detector.MaxFlightTime, err = floatValue(key, value)
		return err
	case "DETECT_IMPACT_PEAK_G":
		c.Detector.ImpactPeakG, err = floatValue(key, value)
		return err
	case "DETECT_IMPACT_WINDOW_SAMPLES":
		c.Detector.ImpactWindowSamples, err = intValue(key, value)
		return err
	case "DETECT_MIN_JUMP_SCORE":
		c.Detector.MinJumpScore, err = floatValue(key, value)
		return err
	case "DETECT_ALPHA_SLOW":
		c.Detector.AlphaSlow, err = floatValue(key, value)
		return err
	case "DETECT_ALPHA_FAST":
		c.Detector.AlphaFast, err = floatValue(key, value)
		return err
	case "DETECT_STANDARD_GRAVITY":
		c.Detector.StandardGravity, err = floatValue(key, value)
		return err
	case "DETECT_USE_ADAPTIVE_THRESHOLDS":
		c.Detector.UseAdaptiveThresholds, err = boolValue(key, value)
		return err
	case "DETECT_FORGIVE_LANDING_DIPS":
		c.Detector.ForgiveLandingDips, err = boolValue(key, value)
		return err
	case "DETECT_STABILITY_DECAY_STEP":
		c.Detector.StabilityDecayStep, err = intValue(key, value)
		return err

	// Adaptive baseline
	case "DETECT_BASELINE_MIN_G":
		c.Detector.BaselineMinG, err = floatValue(key, value)
		return err
	case "DETECT_BASELINE_MAX_G":
		c.Detector.BaselineMaxG, err = floatValue(key, value)
		return err
	case "DETECT_BASELINE_WARMUP_SAMPLES":
		c.Detector.BaselineWarmupSamples, err = intValue(key, value)
		return err
	case "DETECT_ADAPTIVE_GROUND_OFFSET":
		c.Detector.AdaptiveGroundOffset, err = floatValue(key, value)
		return err
	case "DETECT_ADAPTIVE_GROUND_MIN":
		c.Detector.AdaptiveGroundMin, err = floatValue(key, value)
		return err
	case "DETECT_ADAPTIVE_GROUND_MAX":
		c.Detector.AdaptiveGroundMax, err = floatValue(key, value)
		return err
	case "DETECT_ADAPTIVE_FREEFALL_SIGMA":
		c.Detector.AdaptiveFreefallSigma, err = floatValue(key, value)
		return err
	case "DETECT_ADAPTIVE_FREEFALL_MIN":
		c.Detector.AdaptiveFreefallMin, err = floatValue(key, value)
		return err
	case "DETECT_ADAPTIVE_FREEFALL_MAX":
		c.Detector.AdaptiveFreefallMax, err = floatValue(key, value)
		return err

	// Velocity integration and apex detection
	case "DETECT_VELOCITY_CLAMP_MS":
		c.Detector.VelocityClampMS, err = floatValue(key, value)
		return err
	case "DETECT_VELOCITY_HISTORY_LEN":
		c.Detector.VelocityHistoryLen, err = intValue(key, value)
		return err
	case "DETECT_ACCEL_RING_LEN":
		c.Detector.AccelRingLen, err = intValue(key, value)
		return err
	case "DETECT_APEX_MIN_ELAPSED":
		c.Detector.ApexMinElapsed, err = floatValue(key, value)
		return err
	case "DETECT_APEX_MAX_ELAPSED":
		c.Detector.ApexMaxElapsed, err = floatValue(key, value)
		return err
	case "DETECT_APEX_ZERO_TOLERANCE":
		c.Detector.ApexZeroTolerance, err = floatValue(key, value)
		return err
	case "DETECT_APEX_FLIGHT_RATIO_MAX":
		c.Detector.ApexFlightRatioMax, err = floatValue(key, value)
		return err
	case "DETECT_APEX_BLEND_WEIGHT":
		c.Detector.ApexBlendWeight, err = floatValue(key, value)
		return err

	// Quality score bands
	case "DETECT_SCORE_FLIGHT_LOW":
		c.Detector.ScoreFlightLow, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_FLIGHT_HIGH":
		c.Detector.ScoreFlightHigh, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_FLIGHT_MAX":
		c.Detector.ScoreFlightMax, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_DEPTH_DEEP":
		c.Detector.ScoreDepthDeep, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_DEPTH_SHALLOW":
		c.Detector.ScoreDepthShallow, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_DEPTH_MAX":
		c.Detector.ScoreDepthMax, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_IMPACT_LOW":
		c.Detector.ScoreImpactLow, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_IMPACT_MAX":
		c.Detector.ScoreImpactMax, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_VARIATION_LOW":
		c.Detector.ScoreVariationLow, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_VARIATION_HIGH":
		c.Detector.ScoreVariationHigh, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_VARIATION_MAX":
		c.Detector.ScoreVariationMax, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_APEX_BONUS":
		c.Detector.ScoreApexBonus, err = floatValue(key, value)
		return err
	case "DETECT_SCORE_ENVELOPE_BONUS":
		c.Detector.ScoreEnvelopeBonus, err = floatValue(key, value)
		return err
	case "DETECT_ENVELOPE_RATIO_MIN":
		c.Detector.EnvelopeRatioMin, err = floatValue(key, value)
		return err
	case "DETECT_ENVELOPE_RATIO_MAX":
		c.Detector.EnvelopeRatioMax, err = floatValue(key, value)
		return err

	// Height estimation
	case "DETECT_HEIGHT_QUALITY_FLOOR":
		c.Detector.HeightQualityFloor, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND1_MAX":
		c.Detector.HeightBand1Max, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND1_FACTOR":
		c.Detector.HeightBand1Factor, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND2_MAX":
		c.Detector.HeightBand2Max, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND2_FACTOR":
		c.Detector.HeightBand2Factor, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND3_MAX":
		c.Detector.HeightBand3Max, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND3_FACTOR":
		c.Detector.HeightBand3Factor, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_BAND4_FACTOR":
		c.Detector.HeightBand4Factor, err = floatValue(key, value)
		return err
	case "DETECT_BARO_MIN_DELTA":
		c.Detector.BaroMinDelta, err = floatValue(key, value)
		return err
	case "DETECT_BARO_MAX_DELTA":
		c.Detector.BaroMaxDelta, err = floatValue(key, value)
		return err
	case "DETECT_BARO_MAX_DIVERGENCE":
		c.Detector.BaroMaxDivergence, err = floatValue(key, value)
		return err
	case "DETECT_BARO_WEIGHT":
		c.Detector.BaroWeight, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_CLAMP_MIN":
		c.Detector.HeightClampMin, err = floatValue(key, value)
		return err
	case "DETECT_HEIGHT_CLAMP_MAX":
		c.Detector.HeightClampMax, err = floatValue(key, value)
		return err

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that the loaded configuration is usable.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("SAMPLE_RATE_HZ must be positive")
	}
	if c.SampleSource == "serial" && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required when SAMPLE_SOURCE=serial")
	}
	d := &c.Detector
	if d.MinFlightTime >= d.MaxFlightTime {
		return fmt.Errorf("DETECT_MIN_FLIGHT_TIME must be below DETECT_MAX_FLIGHT_TIME")
	}
	if d.FreefallThresholdG >= d.GroundThresholdG {
		return fmt.Errorf("DETECT_FREEFALL_THRESHOLD_G must be below DETECT_GROUND_THRESHOLD_G")
	}
	return nil
}

// DetectorConfig materializes the detector configuration, carrying the
// sample rate over.
func (c *Config) DetectorConfig() jump.Config {
	d := c.Detector
	d.UpdateFrequencyHz = c.SampleRateHz
	return d
}

// InitGlobal initializes the global configuration from file. Uses sync.Once
// so this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be called
// first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
