// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package jump

// estimateHeight converts a validated flight time into jump height in meters.
//
// The kinematic base is h = g*t^2/8 (symmetric rise and fall under constant
// gravity). Before applying it, the flight time may be blended with an
// apex-derived estimate when the two agree; afterwards a quality-weighted
// multiplier, an empirical per-band correction and optional barometric fusion
// refine the value, and a hard physical clamp bounds the result.
func estimateHeight(cfg *Config, flightTime, apexFlightTime, score, baroDelta float64, baroOK bool) float64 {
	t := flightTime
	if apexFlightTime > 0 && apexFlightTime <= cfg.ApexFlightRatioMax*flightTime {
		w := clamp(cfg.ApexBlendWeight, 0, 1)
		t = w*flightTime + (1-w)*apexFlightTime
	}

	h := cfg.StandardGravity * t * t / 8

	// Quality multiplier: slightly below 1 at the acceptance threshold,
	// approaching 1 for clean jumps.
	floor := cfg.HeightQualityFloor
	span := 10 - cfg.MinJumpScore
	if span < 1e-6 {
		span = 1e-6
	}
	h *= floor + (1-floor)*clamp((score-cfg.MinJumpScore)/span, 0, 1)

	// Empirical correction: the kinematic formula systematically overshoots
	// on big jumps and undershoots on small hops. Monotonic in magnitude.
	switch {
	case h <= cfg.HeightBand1Max:
		h *= cfg.HeightBand1Factor
	case h <= cfg.HeightBand2Max:
		h *= cfg.HeightBand2Factor
	case h <= cfg.HeightBand3Max:
		h *= cfg.HeightBand3Factor
	default:
		h *= cfg.HeightBand4Factor
	}

	// Barometric fusion, only when the barometer saw a plausible rise that
	// does not diverge from the accelerometer estimate. Otherwise the
	// reading is ignored for this jump.
	if baroOK &&
		baroDelta >= cfg.BaroMinDelta && baroDelta <= cfg.BaroMaxDelta &&
		abs(baroDelta-h) <= cfg.BaroMaxDivergence {
		h = (1-cfg.BaroWeight)*h + cfg.BaroWeight*baroDelta
	}

	return clamp(h, cfg.HeightClampMin, cfg.HeightClampMax)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
