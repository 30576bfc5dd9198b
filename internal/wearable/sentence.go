// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package wearable parses the proprietary NMEA 0183-style stream the
// wrist-unit firmware emits over its UART bridge and turns it into motion
// and altitude samples.
package wearable

import (
	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/jump_tracker/internal/motion"
)

// Sentence types produced by the wearable firmware.
const (
	// TypePJMP carries one motion tick:
	// $PJMP,<t_s>,<gx>,<gy>,<gz>,<ax>,<ay>,<az>*hh
	TypePJMP = "PJMP"
	// TypePALT carries one relative-altitude tick:
	// $PALT,<t_s>,<alt_m>*hh
	TypePALT = "PALT"
)

// PJMP is a parsed motion sentence. Gravity and user acceleration are in g.
type PJMP struct {
	nmea.BaseSentence
	T  float64
	Gx float64
	Gy float64
	Gz float64
	Ax float64
	Ay float64
	Az float64
}

// PALT is a parsed relative-altitude sentence, in meters.
type PALT struct {
	nmea.BaseSentence
	T        float64
	Altitude float64
}

func init() {
	nmea.MustRegisterParser(TypePJMP, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return PJMP{
			BaseSentence: s,
			T:            p.Float64(0, "t"),
			Gx:           p.Float64(1, "gx"),
			Gy:           p.Float64(2, "gy"),
			Gz:           p.Float64(3, "gz"),
			Ax:           p.Float64(4, "ax"),
			Ay:           p.Float64(5, "ay"),
			Az:           p.Float64(6, "az"),
		}, p.Err()
	})

	nmea.MustRegisterParser(TypePALT, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return PALT{
			BaseSentence: s,
			T:            p.Float64(0, "t"),
			Altitude:     p.Float64(1, "alt"),
		}, p.Err()
	})
}

// Sample converts a motion sentence into the pipeline's sample type.
func (m PJMP) Sample() motion.Sample {
	return motion.Sample{
		Gx: m.Gx, Gy: m.Gy, Gz: m.Gz,
		Ax: m.Ax, Ay: m.Ay, Az: m.Az,
		T: m.T,
	}
}

// AltitudeSample converts an altitude sentence into the pipeline's type.
func (a PALT) AltitudeSample() motion.Altitude {
	return motion.Altitude{Meters: a.Altitude, T: a.T}
}
