// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package jump

import "math"

// ring is a fixed-capacity FIFO of float64 samples.
type ring struct {
	buf  []float64
	head int
	n    int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]float64, capacity)}
}

func (r *ring) push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

func (r *ring) len() int { return r.n }

// last returns the i-th most recent value; last(0) is the newest push.
func (r *ring) last(i int) float64 {
	idx := r.head - 1 - i
	for idx < 0 {
		idx += len(r.buf)
	}
	return r.buf[idx]
}

// spread returns max-min over the most recent window values.
func (r *ring) spread(window int) float64 {
	if r.n == 0 {
		return 0
	}
	if window > r.n {
		window = r.n
	}
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for i := 0; i < window; i++ {
		v := r.last(i)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// flightContext is the working state of one jump attempt. It is created when
// free fall first crosses the threshold and thrown away whole when the
// attempt resolves, so nothing can leak into the next attempt.
type flightContext struct {
	takeoffTime          float64
	landingCandidateTime float64
	apexTime             float64
	hasTakeoff           bool
	hasLanding           bool
	apexFound            bool

	verticalVelocity float64
	velocityHistory  *ring
	accelRing        *ring

	minFlightAccel  float64
	maxLandingAccel float64
	totalVariation  float64

	baroStartAltitude float64
	baroPeakAltitude  float64
	hasBaro           bool
}

func newFlightContext(cfg *Config) *flightContext {
	return &flightContext{
		velocityHistory: newRing(cfg.VelocityHistoryLen),
		accelRing:       newRing(cfg.AccelRingLen),
		minFlightAccel:  math.Inf(1),
	}
}

// observeAltitude folds a barometer tick into the attempt window.
func (fc *flightContext) observeAltitude(meters float64) {
	if !fc.hasBaro {
		return
	}
	if meters > fc.baroPeakAltitude {
		fc.baroPeakAltitude = meters
	}
}

// baroDelta returns the barometric rise over the attempt, if a starting
// altitude was captured.
func (fc *flightContext) baroDelta() (float64, bool) {
	if !fc.hasBaro {
		return 0, false
	}
	return fc.baroPeakAltitude - fc.baroStartAltitude, true
}
