package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "# comment only\n\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "jump/event", cfg.TopicJumpEvent)
	assert.Equal(t, "mock", cfg.SampleSource)
	assert.Equal(t, 100.0, cfg.SampleRateHz)
	assert.Equal(t, 0.65, cfg.Detector.FreefallThresholdG)
	assert.Equal(t, 1.10, cfg.Detector.GroundThresholdG)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER = tcp://broker.local:1883
SAMPLE_SOURCE = serial
SERIAL_PORT = /dev/ttyACM0
SERIAL_BAUD_RATE = 230400
SAMPLE_RATE_HZ = 200
DETECT_FREEFALL_THRESHOLD_G = 0.55
DETECT_MIN_JUMP_SCORE = 4.0
DETECT_FORGIVE_LANDING_DIPS = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTTBroker)
	assert.Equal(t, "serial", cfg.SampleSource)
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
	assert.Equal(t, uint(230400), cfg.SerialBaudRate)
	assert.Equal(t, 200.0, cfg.SampleRateHz)
	assert.Equal(t, 0.55, cfg.Detector.FreefallThresholdG)
	assert.Equal(t, 4.0, cfg.Detector.MinJumpScore)
	assert.True(t, cfg.Detector.ForgiveLandingDips)
}

func TestLoadDetectorBandOverrides(t *testing.T) {
	path := writeConfig(t, `
DETECT_STABILITY_DECAY_STEP = 5
DETECT_BASELINE_WARMUP_SAMPLES = 60
DETECT_ADAPTIVE_FREEFALL_SIGMA = 3.5
DETECT_VELOCITY_CLAMP_MS = 8.0
DETECT_VELOCITY_HISTORY_LEN = 16
DETECT_APEX_BLEND_WEIGHT = 0.6
DETECT_SCORE_FLIGHT_MAX = 3.5
DETECT_SCORE_DEPTH_SHALLOW = 0.70
DETECT_SCORE_ENVELOPE_BONUS = 0.8
DETECT_ENVELOPE_RATIO_MAX = 15.0
DETECT_HEIGHT_QUALITY_FLOOR = 0.90
DETECT_HEIGHT_BAND1_FACTOR = 1.10
DETECT_BARO_WEIGHT = 0.35
DETECT_HEIGHT_CLAMP_MAX = 2.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	d := cfg.Detector
	assert.Equal(t, 5, d.StabilityDecayStep)
	assert.Equal(t, 60, d.BaselineWarmupSamples)
	assert.Equal(t, 3.5, d.AdaptiveFreefallSigma)
	assert.Equal(t, 8.0, d.VelocityClampMS)
	assert.Equal(t, 16, d.VelocityHistoryLen)
	assert.Equal(t, 0.6, d.ApexBlendWeight)
	assert.Equal(t, 3.5, d.ScoreFlightMax)
	assert.Equal(t, 0.70, d.ScoreDepthShallow)
	assert.Equal(t, 0.8, d.ScoreEnvelopeBonus)
	assert.Equal(t, 15.0, d.EnvelopeRatioMax)
	assert.Equal(t, 0.90, d.HeightQualityFloor)
	assert.Equal(t, 1.10, d.HeightBand1Factor)
	assert.Equal(t, 0.35, d.BaroWeight)
	assert.Equal(t, 2.5, d.HeightClampMax)

	// Untouched fields keep their defaults.
	assert.Equal(t, 0.88, d.HeightBand4Factor)
	assert.Equal(t, 2.0, d.EnvelopeRatioMin)
}

func TestDetectorConfigCarriesSampleRate(t *testing.T) {
	path := writeConfig(t, "SAMPLE_RATE_HZ = 250\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	d := cfg.DetectorConfig()
	assert.Equal(t, 250.0, d.UpdateFrequencyHz)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "NO_SUCH_KEY = 1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	path := writeConfig(t, "JUST_A_KEY_NO_VALUE\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config line 1")
}

func TestLoadRejectsBadSampleSource(t *testing.T) {
	path := writeConfig(t, "SAMPLE_SOURCE = replay\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateThresholdOrdering(t *testing.T) {
	path := writeConfig(t, "DETECT_FREEFALL_THRESHOLD_G = 1.2\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DETECT_FREEFALL_THRESHOLD_G")
}

func TestValidateFlightWindowOrdering(t *testing.T) {
	path := writeConfig(t, "DETECT_MAX_FLIGHT_TIME = 0.05\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DETECT_MIN_FLIGHT_TIME")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/tracker.conf")
	require.Error(t, err)
}
