// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"math"
)

// Sample is one motion tick from the wearable: the gravity estimate and the
// user (gravity-removed) acceleration, both in units of g, plus a monotonic
// timestamp in seconds.
type Sample struct {
	Gx float64 `json:"gx"`
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	T float64 `json:"t"`
}

// Altitude is one relative-altitude tick from the barometer, in meters.
type Altitude struct {
	Meters float64 `json:"alt_m"`
	T      float64 `json:"t"`
}

// Source is anything that can deliver motion samples over time:
// serial wearable, on-device sensors, mock generator, replay from file.
type Source interface {
	Next() (Sample, error)
}

// AltitudeSource delivers relative-altitude ticks at its own rate.
type AltitudeSource interface {
	NextAltitude() (Altitude, error)
}

// ErrClosed is returned by a source once its underlying stream has ended.
var ErrClosed = errors.New("motion: source closed")

// VerticalG projects total specific force (user + gravity) onto the unit
// gravity direction, giving the scalar vertical acceleration in g regardless
// of wrist orientation. Near-zero gravity vectors are floored to avoid a
// division blow-up.
func (s Sample) VerticalG() float64 {
	norm := math.Sqrt(s.Gx*s.Gx + s.Gy*s.Gy + s.Gz*s.Gz)
	if norm < 1e-9 {
		norm = 1e-9
	}
	tx := s.Ax + s.Gx
	ty := s.Ay + s.Gy
	tz := s.Az + s.Gz
	return (tx*s.Gx + ty*s.Gy + tz*s.Gz) / norm
}
