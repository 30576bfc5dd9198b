// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package jump

// Config holds every tunable of the detection pipeline. The struct is copied
// into the Detector at construction and never mutated afterwards; the only
// runtime overrides are the explicit threshold setters on the Detector, which
// also turn adaptive recomputation off for the rest of the session.
type Config struct {
	// Classifier thresholds, in g.
	FreefallThresholdG float64
	GroundThresholdG   float64

	// Run lengths required to confirm a phase.
	NeedBelowFreefallSamples int
	NeedAboveGroundSamples   int
	NeedPreJumpStableSamples int

	// Pre-jump stability band and the penalty applied per out-of-band sample.
	// Instability is distrusted faster than stability is earned.
	StableMinG         float64
	StableMaxG         float64
	StabilityDecayStep int

	// Flight-time plausibility window, seconds. Inclusive on both ends.
	MinFlightTime float64
	MaxFlightTime float64

	// Landing impact reference peak and the ring-buffer window scanned for
	// the g-range envelope check.
	ImpactPeakG         float64
	ImpactWindowSamples int

	// Minimum composite quality score for acceptance.
	MinJumpScore float64

	// Dual-rate EMA coefficients. The slow stream feeds the classifier and
	// the integrator; the fast stream is kept for responsiveness experiments.
	AlphaSlow float64
	AlphaFast float64

	// Nominal delivery rate, used as the integration step whenever sample
	// timestamps fail to advance, and the gravity constant.
	UpdateFrequencyHz float64
	StandardGravity   float64

	// Adaptive baseline. Samples inside [BaselineMinG, BaselineMaxG] feed a
	// Welford accumulator while grounded; after BaselineWarmupSamples the
	// thresholds are recomputed as
	//   ground   = clamp(mean + AdaptiveGroundOffset, min, max)
	//   freefall = clamp(mean - AdaptiveFreefallSigma*stddev, min, max)
	UseAdaptiveThresholds bool
	BaselineMinG          float64
	BaselineMaxG          float64
	BaselineWarmupSamples int
	AdaptiveGroundOffset  float64
	AdaptiveGroundMin     float64
	AdaptiveGroundMax     float64
	AdaptiveFreefallSigma float64
	AdaptiveFreefallMin   float64
	AdaptiveFreefallMax   float64

	// Landing confirmation reset policy. Strict (false) clears the landing
	// counter and candidate time on any sub-threshold sample, matching the
	// original firmware. Forgiving (true) tolerates one isolated dip.
	ForgiveLandingDips bool

	// Velocity integration and apex detection.
	VelocityClampMS    float64
	VelocityHistoryLen int
	AccelRingLen       int
	ApexMinElapsed     float64
	ApexMaxElapsed     float64
	ApexZeroTolerance  float64
	ApexFlightRatioMax float64
	ApexBlendWeight    float64

	// Quality score bands. Each contribution ramps linearly from zero at one
	// bound to its Max at the other; no band is load-bearing on its own.
	ScoreFlightLow     float64
	ScoreFlightHigh    float64
	ScoreFlightMax     float64
	ScoreDepthDeep     float64
	ScoreDepthShallow  float64
	ScoreDepthMax      float64
	ScoreImpactLow     float64
	ScoreImpactMax     float64
	ScoreVariationLow  float64
	ScoreVariationHigh float64
	ScoreVariationMax  float64
	ScoreApexBonus     float64
	ScoreEnvelopeBonus float64
	EnvelopeRatioMin   float64
	EnvelopeRatioMax   float64

	// Height estimation: quality multiplier floor, empirical correction
	// bands (monotonic in magnitude), barometric fusion and the final clamp.
	HeightQualityFloor float64
	HeightBand1Max     float64
	HeightBand1Factor  float64
	HeightBand2Max     float64
	HeightBand2Factor  float64
	HeightBand3Max     float64
	HeightBand3Factor  float64
	HeightBand4Factor  float64
	BaroMinDelta       float64
	BaroMaxDelta       float64
	BaroMaxDivergence  float64
	BaroWeight         float64
	HeightClampMin     float64
	HeightClampMax     float64
}

// DefaultConfig returns the tuning used on the reference wearable at 100 Hz.
func DefaultConfig() Config {
	return Config{
		FreefallThresholdG: 0.65,
		GroundThresholdG:   1.10,

		NeedBelowFreefallSamples: 8,
		NeedAboveGroundSamples:   10,
		NeedPreJumpStableSamples: 25,

		StableMinG:         0.85,
		StableMaxG:         1.15,
		StabilityDecayStep: 3,

		MinFlightTime: 0.10,
		MaxFlightTime: 1.00,

		ImpactPeakG:         2.0,
		ImpactWindowSamples: 32,

		MinJumpScore: 3.2,

		AlphaSlow: 0.28,
		AlphaFast: 0.42,

		UpdateFrequencyHz: 100,
		StandardGravity:   9.80665,

		UseAdaptiveThresholds: true,
		BaselineMinG:          0.70,
		BaselineMaxG:          1.30,
		BaselineWarmupSamples: 40,
		AdaptiveGroundOffset:  0.12,
		AdaptiveGroundMin:     1.05,
		AdaptiveGroundMax:     1.35,
		AdaptiveFreefallSigma: 4.0,
		AdaptiveFreefallMin:   0.45,
		AdaptiveFreefallMax:   0.75,

		ForgiveLandingDips: false,

		VelocityClampMS:    6.0,
		VelocityHistoryLen: 10,
		AccelRingLen:       64,
		ApexMinElapsed:     0.08,
		ApexMaxElapsed:     1.00,
		ApexZeroTolerance:  0.05,
		ApexFlightRatioMax: 1.4,
		ApexBlendWeight:    0.7,

		ScoreFlightLow:     0.08,
		ScoreFlightHigh:    0.40,
		ScoreFlightMax:     3.0,
		ScoreDepthDeep:     0.20,
		ScoreDepthShallow:  0.65,
		ScoreDepthMax:      2.5,
		ScoreImpactLow:     1.20,
		ScoreImpactMax:     2.0,
		ScoreVariationLow:  0.60,
		ScoreVariationHigh: 3.00,
		ScoreVariationMax:  1.0,
		ScoreApexBonus:     1.0,
		ScoreEnvelopeBonus: 0.5,
		EnvelopeRatioMin:   2.0,
		EnvelopeRatioMax:   12.0,

		HeightQualityFloor: 0.94,
		HeightBand1Max:     0.15,
		HeightBand1Factor:  1.06,
		HeightBand2Max:     0.40,
		HeightBand2Factor:  1.00,
		HeightBand3Max:     0.70,
		HeightBand3Factor:  0.94,
		HeightBand4Factor:  0.88,
		BaroMinDelta:       0.08,
		BaroMaxDelta:       1.00,
		BaroMaxDivergence:  0.30,
		BaroWeight:         0.20,
		HeightClampMin:     0.02,
		HeightClampMax:     2.00,
	}
}
