// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"
	"time"
)

type mockSource struct {
	rateHz float64
	tick   int
	ticker *time.Ticker
}

// NewMockSource creates a deterministic synthetic motion source that plays an
// endless loop of rest / free-fall / landing phases resembling a vertical
// jump every few seconds, paced at rateHz on the wall clock. Useful for
// running the full pipeline without any hardware attached.
func NewMockSource(rateHz float64) Source {
	if rateHz <= 0 {
		rateHz = 100
	}
	interval := time.Duration(float64(time.Second) / rateHz)
	return &mockSource{
		rateHz: rateHz,
		ticker: time.NewTicker(interval),
	}
}

// Phase layout of one loop, in seconds.
const (
	mockRest    = 3.0
	mockFlight  = 0.40
	mockImpact  = 0.20
	mockRecover = 1.0
)

func (m *mockSource) Next() (Sample, error) {
	if m.ticker != nil {
		<-m.ticker.C
	}

	t := float64(m.tick) / m.rateHz
	m.tick++

	loop := math.Mod(t, mockRest+mockFlight+mockImpact+mockRecover)

	var vg float64
	switch {
	case loop < mockRest:
		// Resting wrist with a little sensor noise.
		vg = 1.0 + 0.02*math.Sin(2*math.Pi*1.3*t)
	case loop < mockRest+mockFlight:
		vg = 0.12
	case loop < mockRest+mockFlight+mockImpact:
		vg = 1.9
	default:
		vg = 1.0
	}

	// Gravity straight down in device frame; the user-acceleration Z component
	// is chosen so the projection recovers vg exactly.
	return Sample{
		Gz: -1.0,
		Az: 1.0 - vg,
		T:  t,
	}, nil
}
