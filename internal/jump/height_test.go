package jump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightKinematicBase(t *testing.T) {
	cfg := DefaultConfig()

	// Perfect score, mid band, no apex, no barometer: pure g*t^2/8.
	h := estimateHeight(&cfg, 0.45, 0, 10, 0, false)
	assert.InDelta(t, cfg.StandardGravity*0.45*0.45/8, h, 1e-9)
}

func TestHeightQualityMultiplier(t *testing.T) {
	cfg := DefaultConfig()

	atGate := estimateHeight(&cfg, 0.45, 0, cfg.MinJumpScore, 0, false)
	perfect := estimateHeight(&cfg, 0.45, 0, 10, 0, false)

	assert.InDelta(t, cfg.HeightQualityFloor, atGate/perfect, 1e-9)
	assert.Less(t, atGate, perfect)
}

func TestHeightEmpiricalBandsAreMonotonic(t *testing.T) {
	cfg := DefaultConfig()

	// Small hops get scaled up, big jumps get scaled down.
	small := estimateHeight(&cfg, 0.25, 0, 10, 0, false)
	assert.InDelta(t, cfg.StandardGravity*0.25*0.25/8*cfg.HeightBand1Factor, small, 1e-9)

	big := estimateHeight(&cfg, 0.80, 0, 10, 0, false)
	assert.InDelta(t, cfg.StandardGravity*0.80*0.80/8*cfg.HeightBand4Factor, big, 1e-9)
}

func TestHeightApexBlend(t *testing.T) {
	cfg := DefaultConfig()

	// Apex-derived flight time within the ratio guard pulls the estimate.
	blended := estimateHeight(&cfg, 0.40, 0.44, 10, 0, false)
	tBlend := cfg.ApexBlendWeight*0.40 + (1-cfg.ApexBlendWeight)*0.44
	assert.InDelta(t, cfg.StandardGravity*tBlend*tBlend/8, blended, 1e-9)

	// A spuriously late apex estimate is ignored entirely.
	guarded := estimateHeight(&cfg, 0.40, 0.80, 10, 0, false)
	plain := estimateHeight(&cfg, 0.40, 0, 10, 0, false)
	assert.Equal(t, plain, guarded)
}

func TestHeightBarometricFusion(t *testing.T) {
	cfg := DefaultConfig()

	plain := estimateHeight(&cfg, 0.45, 0, 10, 0, false)

	fused := estimateHeight(&cfg, 0.45, 0, 10, plain+0.10, true)
	want := (1-cfg.BaroWeight)*plain + cfg.BaroWeight*(plain+0.10)
	assert.InDelta(t, want, fused, 1e-9)

	// Outside the plausibility band or diverging too far: ignored.
	assert.Equal(t, plain, estimateHeight(&cfg, 0.45, 0, 10, 0.02, true))
	assert.Equal(t, plain, estimateHeight(&cfg, 0.45, 0, 10, 1.50, true))
	assert.Equal(t, plain, estimateHeight(&cfg, 0.45, 0, 10, plain+0.35, true))
}

func TestHeightHardClamp(t *testing.T) {
	cfg := DefaultConfig()

	tiny := estimateHeight(&cfg, cfg.MinFlightTime, 0, cfg.MinJumpScore, 0, false)
	assert.GreaterOrEqual(t, tiny, cfg.HeightClampMin)

	huge := estimateHeight(&cfg, 4.0, 0, 10, 0, false)
	assert.Equal(t, cfg.HeightClampMax, huge)
}
