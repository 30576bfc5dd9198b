// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package jump

import "math"

// baselineEstimator tracks the resting vertical-g distribution with Welford's
// online algorithm. It only ever sees grounded samples inside the plausibility
// band, so transients and flights never pollute the statistics.
type baselineEstimator struct {
	mean  float64
	m2    float64
	count int
}

func (b *baselineEstimator) add(v float64) {
	b.count++
	delta := v - b.mean
	b.mean += delta / float64(b.count)
	b.m2 += delta * (v - b.mean)
}

func (b *baselineEstimator) stddev() float64 {
	if b.count < 2 {
		return 0
	}
	return math.Sqrt(b.m2 / float64(b.count-1))
}

func (b *baselineEstimator) reset() {
	b.mean = 0
	b.m2 = 0
	b.count = 0
}

// thresholds recomputes the ground and free-fall thresholds from the current
// statistics, clamped to their configured ranges. Only meaningful once the
// warm-up count has been reached.
func (b *baselineEstimator) thresholds(cfg *Config) (ground, freefall float64) {
	ground = clamp(b.mean+cfg.AdaptiveGroundOffset, cfg.AdaptiveGroundMin, cfg.AdaptiveGroundMax)
	freefall = clamp(b.mean-cfg.AdaptiveFreefallSigma*b.stddev(), cfg.AdaptiveFreefallMin, cfg.AdaptiveFreefallMax)
	return ground, freefall
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
