package jump

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaselineWelfordStatistics(t *testing.T) {
	var b baselineEstimator
	for _, v := range []float64{1.0, 1.1, 0.9, 1.05, 0.95} {
		b.add(v)
	}

	assert.Equal(t, 5, b.count)
	assert.InDelta(t, 1.0, b.mean, 1e-12)
	// Sample stddev of the values above.
	assert.InDelta(t, 0.079057, b.stddev(), 1e-5)
	assert.GreaterOrEqual(t, b.m2, 0.0, "variance accumulator never goes negative")
}

func TestBaselineSingleSampleHasZeroSpread(t *testing.T) {
	var b baselineEstimator
	b.add(1.02)

	assert.Equal(t, 0.0, b.stddev())
	assert.Equal(t, 1.02, b.mean)
}

func TestBaselineThresholdClamping(t *testing.T) {
	cfg := DefaultConfig()
	var b baselineEstimator
	// A noisy baseline drives the free-fall threshold far down; the clamp
	// keeps both thresholds inside their configured bands.
	for i := 0; i < 100; i++ {
		b.add(1.0 + 0.25*math.Sin(float64(i)))
	}

	ground, freefall := b.thresholds(&cfg)
	assert.GreaterOrEqual(t, ground, cfg.AdaptiveGroundMin)
	assert.LessOrEqual(t, ground, cfg.AdaptiveGroundMax)
	assert.GreaterOrEqual(t, freefall, cfg.AdaptiveFreefallMin)
	assert.LessOrEqual(t, freefall, cfg.AdaptiveFreefallMax)
}

func TestBaselineReset(t *testing.T) {
	var b baselineEstimator
	b.add(1.0)
	b.add(1.2)
	b.reset()

	assert.Zero(t, b.count)
	assert.Zero(t, b.mean)
	assert.Zero(t, b.m2)
}
