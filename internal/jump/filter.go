// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package jump

// dualRateFilter smooths the vertical-g stream with two single-pole EMAs and
// keeps the previous and current filtered sample pair for sub-sample
// threshold interpolation. The slow stream is what the classifier sees.
type dualRateFilter struct {
	alphaSlow float64
	alphaFast float64

	slow float64
	fast float64

	prevValue float64
	prevTime  float64
	currValue float64
	currTime  float64

	initialized bool
}

// update folds one raw sample into both EMAs. The first sample of a session
// seeds everything to the raw value so no back-dated state exists.
func (f *dualRateFilter) update(raw, t float64) {
	if !f.initialized {
		f.slow = raw
		f.fast = raw
		f.prevValue = raw
		f.prevTime = t
		f.currValue = raw
		f.currTime = t
		f.initialized = true
		return
	}

	f.slow = f.alphaSlow*raw + (1-f.alphaSlow)*f.slow
	f.fast = f.alphaFast*raw + (1-f.alphaFast)*f.fast

	f.prevValue = f.currValue
	f.prevTime = f.currTime
	f.currValue = f.slow
	f.currTime = t
}

func (f *dualRateFilter) reset() {
	f.slow = 0
	f.fast = 0
	f.prevValue = 0
	f.prevTime = 0
	f.currValue = 0
	f.currTime = 0
	f.initialized = false
}

// crossingTime linearly interpolates the instant the filtered signal crossed
// threshold between the retained previous and current samples. A flat segment
// falls back to the current timestamp; the fraction is clamped so a threshold
// outside the segment cannot extrapolate.
func crossingTime(prevT, prevA, currT, currA, threshold float64) float64 {
	den := currA - prevA
	if den < 1e-9 && den > -1e-9 {
		return currT
	}
	frac := (threshold - prevA) / den
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return prevT + frac*(currT-prevT)
}
