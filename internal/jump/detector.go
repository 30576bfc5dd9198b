// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package jump implements the vertical-jump detection pipeline: dual-rate
// smoothing of the vertical-g stream, an adaptive ground/free-fall/landing
// classifier, sub-sample event interpolation, quality scoring and kinematic
// height estimation with optional barometric fusion.
//
// The package is purely computational. One sample goes in, at most one Event
// comes out, and no goroutine, lock or I/O exists anywhere inside; callers
// must serialize delivery (the sensor loop already is a single goroutine).
package jump

import (
	"math"

	"github.com/relabs-tech/jump_tracker/internal/motion"
)

// State is the classifier phase.
type State int

const (
	// StateGrounded: on the ground, pre-jump stability not yet earned.
	StateGrounded State = iota
	// StateArmed: enough consecutive calm samples; free fall may now be evaluated.
	StateArmed
	// StateFreeFall: below the free-fall threshold, confirming contiguity.
	StateFreeFall
	// StateInFlight: free fall confirmed, waiting for a landing candidate.
	StateInFlight
	// StateLanding: above the ground threshold, confirming the impact.
	StateLanding
)

func (s State) String() string {
	switch s {
	case StateGrounded:
		return "grounded"
	case StateArmed:
		return "armed"
	case StateFreeFall:
		return "freefall"
	case StateInFlight:
		return "inflight"
	case StateLanding:
		return "landing"
	}
	return "unknown"
}

// Detector runs the full per-sample pipeline. Construct with NewDetector,
// call Start, then feed every sensor tick to ProcessMotion (or
// ProcessVerticalG when the projection has already been done).
type Detector struct {
	cfg Config

	filter   dualRateFilter
	baseline baselineEstimator

	freefallThreshold float64
	groundThreshold   float64
	adaptive          bool

	state          State
	stabilityCount int
	freefallCount  int
	groundCount    int
	landingDipRun  int

	flight *flightContext

	lastAltitude float64
	haveAltitude bool

	lastHeight float64
	bestHeight float64
	rejected   uint64

	running bool
}

// NewDetector builds a detector from cfg. The configuration is copied; later
// mutation of the caller's struct has no effect.
func NewDetector(cfg Config) *Detector {
	if cfg.VelocityHistoryLen < 2 {
		cfg.VelocityHistoryLen = 2
	}
	if cfg.AccelRingLen < 1 {
		cfg.AccelRingLen = 1
	}
	d := &Detector{cfg: cfg}
	d.filter.alphaSlow = cfg.AlphaSlow
	d.filter.alphaFast = cfg.AlphaFast
	d.resetSession()
	return d
}

// Start resets all session state and begins accepting samples.
func (d *Detector) Start() {
	d.resetSession()
	d.running = true
}

// Stop halts sample acceptance. An attempt in progress is discarded, not
// scored.
func (d *Detector) Stop() {
	d.running = false
	d.clearFlight()
}

// Reset is Start without changing the running flag.
func (d *Detector) Reset() {
	running := d.running
	d.resetSession()
	d.running = running
}

func (d *Detector) resetSession() {
	d.filter.reset()
	d.baseline.reset()
	d.freefallThreshold = d.cfg.FreefallThresholdG
	d.groundThreshold = d.cfg.GroundThresholdG
	d.adaptive = d.cfg.UseAdaptiveThresholds
	d.state = StateGrounded
	d.stabilityCount = 0
	d.freefallCount = 0
	d.groundCount = 0
	d.landingDipRun = 0
	d.flight = nil
	d.haveAltitude = false
	d.lastHeight = 0
	d.bestHeight = 0
	d.rejected = 0
}

// SetFreefallThreshold overrides the free-fall threshold and permanently
// disables adaptive recomputation for the session. Manual tuning wins.
func (d *Detector) SetFreefallThreshold(g float64) {
	d.freefallThreshold = g
	d.adaptive = false
}

// SetGroundThreshold overrides the ground threshold and permanently disables
// adaptive recomputation for the session.
func (d *Detector) SetGroundThreshold(g float64) {
	d.groundThreshold = g
	d.adaptive = false
}

// ProcessMotion projects one raw motion sample onto the gravity direction and
// runs the classifier. The boolean is true when a jump was accepted on this
// sample.
func (d *Detector) ProcessMotion(s motion.Sample) (Event, bool) {
	return d.ProcessVerticalG(s.VerticalG(), s.T)
}

// ProcessVerticalG runs the classifier on one pre-projected vertical-g value.
func (d *Detector) ProcessVerticalG(raw, t float64) (Event, bool) {
	if !d.running {
		return Event{}, false
	}

	d.filter.update(raw, t)
	v := d.filter.currValue

	switch d.state {
	case StateGrounded:
		d.groundedSample(v)

	case StateArmed:
		if v < d.freefallThreshold {
			d.beginFreefall()
			return d.freefallSample(v, t)
		}
		d.groundedSample(v)

	case StateFreeFall:
		if v >= d.freefallThreshold {
			// Free fall must be contiguous: one recovery sample discards
			// the candidate takeoff entirely.
			d.flight = nil
			d.freefallCount = 0
			d.state = StateArmed
			d.groundedSample(v)
			return Event{}, false
		}
		return d.freefallSample(v, t)

	case StateInFlight, StateLanding:
		return d.airborneSample(v, t)
	}

	return Event{}, false
}

// ProcessAltitude folds one relative-altitude tick in. The altitude stream is
// optional and may run at a different rate than the motion stream; its
// absence just leaves barometric fusion off.
func (d *Detector) ProcessAltitude(meters, t float64) {
	if !d.running {
		return
	}
	_ = t
	d.lastAltitude = meters
	d.haveAltitude = true
	if d.flight != nil {
		d.flight.observeAltitude(meters)
	}
}

// LastHeight returns the height of the most recent accepted jump, in meters.
func (d *Detector) LastHeight() float64 { return d.lastHeight }

// BestHeight returns the best height of the session, in meters.
func (d *Detector) BestHeight() float64 { return d.bestHeight }

// RejectedAttempts counts attempts discarded by the time window or the
// quality gate. Diagnostics only; rejection is a normal outcome.
func (d *Detector) RejectedAttempts() uint64 { return d.rejected }

// State returns the current classifier phase.
func (d *Detector) State() State { return d.state }

// Thresholds returns the ground and free-fall thresholds currently in effect,
// after any adaptive recomputation or manual override.
func (d *Detector) Thresholds() (ground, freefall float64) {
	return d.groundThreshold, d.freefallThreshold
}

// groundedSample handles baseline accumulation and the pre-jump stability
// gate while on the ground.
func (d *Detector) groundedSample(v float64) {
	if d.adaptive && v >= d.cfg.BaselineMinG && v <= d.cfg.BaselineMaxG {
		d.baseline.add(v)
		if d.baseline.count > d.cfg.BaselineWarmupSamples {
			d.groundThreshold, d.freefallThreshold = d.baseline.thresholds(&d.cfg)
		}
	}

	if v >= d.cfg.StableMinG && v <= d.cfg.StableMaxG {
		if d.stabilityCount < d.cfg.NeedPreJumpStableSamples {
			d.stabilityCount++
		}
	} else {
		d.stabilityCount -= d.cfg.StabilityDecayStep
		if d.stabilityCount < 0 {
			d.stabilityCount = 0
		}
	}

	// Arming is one-way: the crouch right before a jump swings outside the
	// stable band, and revoking the armed state on it would block every
	// genuine takeoff. Stability is re-earned only after an attempt resolves.
	if d.state == StateGrounded && d.stabilityCount >= d.cfg.NeedPreJumpStableSamples {
		d.state = StateArmed
	}
}

// beginFreefall starts a fresh attempt at the first sub-threshold sample:
// the takeoff instant is interpolated on the filtered pair and a clean
// flight context replaces whatever a previous attempt may have left behind.
func (d *Detector) beginFreefall() {
	fc := newFlightContext(&d.cfg)
	fc.takeoffTime = crossingTime(d.filter.prevTime, d.filter.prevValue,
		d.filter.currTime, d.filter.currValue, d.freefallThreshold)
	fc.hasTakeoff = true
	if d.haveAltitude {
		fc.hasBaro = true
		fc.baroStartAltitude = d.lastAltitude
		fc.baroPeakAltitude = d.lastAltitude
	}
	d.flight = fc
	d.freefallCount = 0
	d.state = StateFreeFall
}

// freefallSample runs one confirming free-fall sample.
func (d *Detector) freefallSample(v, t float64) (Event, bool) {
	d.trackFlight(v)
	d.integrateVelocity(v)
	d.tryApex(t)

	d.freefallCount++
	if d.freefallCount >= d.cfg.NeedBelowFreefallSamples && d.flight.hasTakeoff {
		d.state = StateInFlight
		d.groundCount = 0
		d.landingDipRun = 0
	}
	return Event{}, false
}

// airborneSample runs one in-flight or landing-confirmation sample.
func (d *Detector) airborneSample(v, t float64) (Event, bool) {
	fc := d.flight
	d.trackFlight(v)
	d.integrateVelocity(v)
	d.tryApex(t)

	if v > d.groundThreshold {
		if v > fc.maxLandingAccel {
			fc.maxLandingAccel = v
		}
		if d.groundCount == 0 {
			fc.landingCandidateTime = crossingTime(d.filter.prevTime, d.filter.prevValue,
				d.filter.currTime, d.filter.currValue, d.groundThreshold)
			fc.hasLanding = true
			d.state = StateLanding
		}
		d.groundCount++
		d.landingDipRun = 0
		if d.groundCount >= d.cfg.NeedAboveGroundSamples && fc.hasTakeoff && fc.hasLanding {
			return d.resolveAttempt()
		}
		return Event{}, false
	}

	if d.state == StateLanding {
		if d.cfg.ForgiveLandingDips && d.landingDipRun == 0 {
			// One isolated dip is forgiven: the candidate time and the run
			// so far survive. A second consecutive dip restarts the window.
			d.landingDipRun++
			return Event{}, false
		}
		// Strict policy (original firmware behavior): any sub-threshold
		// sample restarts the confirmation window. The attempt itself
		// survives; only the landing candidate is dropped.
		d.groundCount = 0
		d.landingDipRun = 0
		fc.hasLanding = false
		d.state = StateInFlight
	}
	return Event{}, false
}

// trackFlight updates the per-attempt statistics shared by all airborne
// phases.
func (d *Detector) trackFlight(v float64) {
	fc := d.flight
	fc.totalVariation += math.Abs(d.filter.currValue - d.filter.prevValue)
	if v < fc.minFlightAccel {
		fc.minFlightAccel = v
	}
	fc.accelRing.push(v)
}

// integrateVelocity advances the vertical-velocity estimate by one tick and
// clamps it, so a long glitchy flight cannot drift the integrator into
// nonsense that would corrupt apex detection. A non-advancing timestamp
// (duplicate or out of order) falls back to the nominal sample interval so
// the integrator keeps moving through a timing glitch.
func (d *Detector) integrateVelocity(v float64) {
	fc := d.flight
	dt := d.filter.currTime - d.filter.prevTime
	if dt <= 0 {
		if d.cfg.UpdateFrequencyHz <= 0 {
			return
		}
		dt = 1.0 / d.cfg.UpdateFrequencyHz
	}
	fc.verticalVelocity += (v - 1.0) * d.cfg.StandardGravity * dt
	fc.verticalVelocity = clamp(fc.verticalVelocity, -d.cfg.VelocityClampMS, d.cfg.VelocityClampMS)
	fc.velocityHistory.push(fc.verticalVelocity)
}

// tryApex declares the apex the first time velocity crosses from negative to
// non-negative inside the plausible window, provided the recent trend shows
// deceleration. The crossing instant is interpolated between the two samples.
func (d *Detector) tryApex(t float64) {
	fc := d.flight
	if fc.apexFound || fc.velocityHistory.len() < 2 {
		return
	}
	tol := d.cfg.ApexZeroTolerance
	vel := fc.verticalVelocity
	velPrev := fc.velocityHistory.last(1)
	if !(velPrev < -tol && vel >= -tol) {
		return
	}
	elapsed := t - fc.takeoffTime
	if elapsed < d.cfg.ApexMinElapsed || elapsed > d.cfg.ApexMaxElapsed {
		return
	}
	if fc.velocityHistory.len() >= 3 && fc.velocityHistory.last(2) > velPrev {
		return
	}

	frac := math.Abs(vel) / (math.Abs(vel) + math.Abs(velPrev) + 1e-9)
	dt := d.filter.currTime - d.filter.prevTime
	fc.apexTime = t - frac*dt
	fc.apexFound = true
}

// resolveAttempt validates the confirmed landing, scores it and either emits
// an Event or discards the attempt. Both outcomes destroy the flight context
// and return the machine to Grounded, where stability must be earned again.
func (d *Detector) resolveAttempt() (Event, bool) {
	fc := d.flight
	flightTime := fc.landingCandidateTime - fc.takeoffTime

	if flightTime < d.cfg.MinFlightTime || flightTime > d.cfg.MaxFlightTime {
		d.rejected++
		d.clearFlight()
		return Event{}, false
	}

	gRange := fc.accelRing.spread(d.cfg.ImpactWindowSamples)
	score := scoreAttempt(&d.cfg, flightTime, fc.minFlightAccel, fc.maxLandingAccel,
		fc.totalVariation, fc.apexFound, gRange)
	if score < d.cfg.MinJumpScore {
		d.rejected++
		d.clearFlight()
		return Event{}, false
	}

	apexFlight := 0.0
	if fc.apexFound {
		apexFlight = 2 * (fc.apexTime - fc.takeoffTime)
	}
	baroDelta, baroOK := fc.baroDelta()
	height := estimateHeight(&d.cfg, flightTime, apexFlight, score, baroDelta, baroOK)

	ev := Event{
		HeightM:    height,
		FlightTime: flightTime,
		Quality:    score,
		Timestamp:  fc.landingCandidateTime,
	}
	d.lastHeight = height
	if height > d.bestHeight {
		d.bestHeight = height
	}
	d.clearFlight()
	return ev, true
}

func (d *Detector) clearFlight() {
	d.flight = nil
	d.freefallCount = 0
	d.groundCount = 0
	d.landingDipRun = 0
	d.stabilityCount = 0
	d.state = StateGrounded
}
