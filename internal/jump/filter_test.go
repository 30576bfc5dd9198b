package jump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSeedsFromFirstSample(t *testing.T) {
	f := dualRateFilter{alphaSlow: 0.28, alphaFast: 0.42}
	f.update(0.9, 1.5)

	assert.True(t, f.initialized)
	assert.Equal(t, 0.9, f.slow)
	assert.Equal(t, 0.9, f.fast)
	assert.Equal(t, 0.9, f.prevValue)
	assert.Equal(t, 0.9, f.currValue)
	assert.Equal(t, 1.5, f.currTime)
}

func TestFilterTracksBothRates(t *testing.T) {
	f := dualRateFilter{alphaSlow: 0.25, alphaFast: 0.50}
	f.update(1.0, 0)
	f.update(0.0, 0.01)

	assert.InDelta(t, 0.75, f.slow, 1e-12)
	assert.InDelta(t, 0.50, f.fast, 1e-12)
	assert.Equal(t, 1.0, f.prevValue)
	assert.InDelta(t, 0.75, f.currValue, 1e-12, "classifier sees the slow stream")

	f.reset()
	assert.False(t, f.initialized)
	f.update(0.3, 2.0)
	assert.Equal(t, 0.3, f.slow, "reset behaves like a new session")
}

func TestCrossingTimeInterpolation(t *testing.T) {
	// Falling through 0.65 between (0.51, 0.663) and (0.52, 0.561).
	got := crossingTime(0.51, 0.663, 0.52, 0.561, 0.65)
	assert.InDelta(t, 0.51127, got, 1e-4)

	// Rising through a threshold.
	got = crossingTime(0.64, 1.062, 0.65, 1.157, 1.10)
	assert.InDelta(t, 0.64400, got, 1e-4)
}

func TestCrossingTimeDegenerateInputs(t *testing.T) {
	// A flat segment cannot be interpolated; fall back to the current tick.
	assert.Equal(t, 0.52, crossingTime(0.51, 0.6, 0.52, 0.6, 0.65))

	// A threshold outside the segment clamps instead of extrapolating.
	assert.Equal(t, 0.51, crossingTime(0.51, 0.7, 0.52, 0.6, 0.9))
	assert.Equal(t, 0.52, crossingTime(0.51, 0.7, 0.52, 0.6, 0.1))
}

func TestRingEviction(t *testing.T) {
	r := newRing(3)
	for i := 1; i <= 5; i++ {
		r.push(float64(i))
	}

	assert.Equal(t, 3, r.len())
	assert.Equal(t, 5.0, r.last(0))
	assert.Equal(t, 4.0, r.last(1))
	assert.Equal(t, 3.0, r.last(2))
	assert.Equal(t, 2.0, r.spread(3))
	assert.Equal(t, 1.0, r.spread(2))
}
