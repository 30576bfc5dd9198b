package motion

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerticalGAtRest(t *testing.T) {
	// Resting device, any orientation: user accel zero, projection is 1g.
	flat := Sample{Gz: -1}
	assert.InDelta(t, 1.0, flat.VerticalG(), 1e-12)

	tilted := Sample{Gx: 0.5, Gy: -0.5, Gz: -math.Sqrt(0.5)}
	assert.InDelta(t, 1.0, tilted.VerticalG(), 1e-12)
}

func TestVerticalGIsOrientationIndependent(t *testing.T) {
	// The same vertical push reads identically whichever way the wrist
	// points, because only the component along gravity survives.
	up := Sample{Gz: -1, Az: -0.5}
	assert.InDelta(t, 1.5, up.VerticalG(), 1e-12)

	s := math.Sqrt(0.5)
	rotated := Sample{Gx: s, Gz: -s, Ax: 0.5 * s, Az: -0.5 * s}
	assert.InDelta(t, 1.5, rotated.VerticalG(), 1e-12)
}

func TestVerticalGFreeFall(t *testing.T) {
	// In free fall the user acceleration cancels gravity exactly.
	s := Sample{Gz: -1, Az: 1}
	assert.InDelta(t, 0.0, s.VerticalG(), 1e-12)
}

func TestVerticalGDegenerateGravity(t *testing.T) {
	// A (briefly) zero gravity estimate must not divide by zero.
	s := Sample{Ax: 0.1}
	assert.False(t, math.IsNaN(s.VerticalG()))
	assert.False(t, math.IsInf(s.VerticalG(), 0))
}

func TestMockSourceIsDeterministicAndJumps(t *testing.T) {
	// Unpaced so the full loop replays instantly; pacing is covered below.
	a := &mockSource{rateHz: 100}
	b := &mockSource{rateHz: 100}

	sawRest := false
	sawFlight := false
	sawImpact := false
	for i := 0; i < 500; i++ {
		sa, err := a.Next()
		require.NoError(t, err)
		sb, _ := b.Next()
		assert.Equal(t, sa, sb)

		vg := sa.VerticalG()
		switch {
		case vg > 1.5:
			sawImpact = true
		case vg < 0.3:
			sawFlight = true
		case vg > 0.9 && vg < 1.1:
			sawRest = true
		}
	}

	assert.True(t, sawRest)
	assert.True(t, sawFlight)
	assert.True(t, sawImpact)
}

func TestMockSourcePacesAtRate(t *testing.T) {
	src := NewMockSource(1000)

	start := time.Now()
	for i := 0; i < 20; i++ {
		_, err := src.Next()
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// 20 samples at 1 kHz cannot complete faster than real time allows.
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}
