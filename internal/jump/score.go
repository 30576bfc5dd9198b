// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package jump

// scoreAttempt computes the composite quality score of one candidate jump on
// a 0-10 scale. Every factor contributes a graduated amount inside its own
// configured band, so a borderline-good jump still passes while no single
// factor alone can clear the acceptance gate.
func scoreAttempt(cfg *Config, flightTime, minAccel, maxLanding, variation float64,
	apexFound bool, gRange float64) float64 {

	score := 0.0

	// Longer free flight.
	score += rampUp(flightTime, cfg.ScoreFlightLow, cfg.ScoreFlightHigh, cfg.ScoreFlightMax)

	// Deeper sub-1g minimum while airborne.
	score += rampDown(minAccel, cfg.ScoreDepthDeep, cfg.ScoreDepthShallow, cfg.ScoreDepthMax)

	// Stronger landing peak.
	score += rampUp(maxLanding, cfg.ScoreImpactLow, cfg.ImpactPeakG, cfg.ScoreImpactMax)

	// Overall signal movement across the attempt.
	score += rampUp(variation, cfg.ScoreVariationLow, cfg.ScoreVariationHigh, cfg.ScoreVariationMax)

	if apexFound {
		score += cfg.ScoreApexBonus
	}

	// A genuine vertical jump keeps the g-range/flight-time ratio in a
	// consistent envelope; arm swings and noise usually fall outside it.
	if flightTime > 1e-6 {
		ratio := gRange / flightTime
		if ratio >= cfg.EnvelopeRatioMin && ratio <= cfg.EnvelopeRatioMax {
			score += cfg.ScoreEnvelopeBonus
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}

// rampUp grows linearly from 0 at lo to max at hi; higher is better.
func rampUp(v, lo, hi, max float64) float64 {
	if hi <= lo {
		if v >= hi {
			return max
		}
		return 0
	}
	return max * clamp((v-lo)/(hi-lo), 0, 1)
}

// rampDown grows linearly from 0 at the shallow bound to max at the deep
// bound; lower is better.
func rampDown(v, deep, shallow, max float64) float64 {
	if shallow <= deep {
		if v <= shallow {
			return max
		}
		return 0
	}
	return max * clamp((shallow-v)/(shallow-deep), 0, 1)
}
