// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/jump_tracker/internal/motion"
)

// Barometer reads the BMP280 over SPI and emits relative altitude ticks.
// The first reading becomes the zero reference. Implements
// motion.AltitudeSource.
type Barometer struct {
	dev    *bmxx80.Dev
	ticker *time.Ticker
	start  time.Time

	refPressurePa float64
	haveRef       bool
}

// NewBarometer initializes the BMP280 over SPI, pacing reads at rateHz.
func NewBarometer(spiDev string, rateHz float64) (*Barometer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("BMP: periph host init: %w", err)
	}

	bus, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("BMP SPI open: %w", err)
	}

	dev, err := bmxx80.NewSPI(bus, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("BMP init: %w", err)
	}

	if rateHz <= 0 {
		rateHz = 25
	}
	interval := time.Duration(float64(time.Second) / rateHz)

	return &Barometer{
		dev:    dev,
		ticker: time.NewTicker(interval),
		start:  time.Now(),
	}, nil
}

// NextAltitude blocks until the next tick, then senses pressure and converts
// it to altitude relative to the first reading using the barometric formula.
func (b *Barometer) NextAltitude() (motion.Altitude, error) {
	<-b.ticker.C

	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return motion.Altitude{}, fmt.Errorf("BMP sense: %w", err)
	}

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	if !b.haveRef {
		b.refPressurePa = pressurePa
		b.haveRef = true
	}

	// International barometric formula, relative to the reference pressure.
	alt := 44330.0 * (1.0 - math.Pow(pressurePa/b.refPressurePa, 1.0/5.255))

	return motion.Altitude{
		Meters: alt,
		T:      time.Since(b.start).Seconds(),
	}, nil
}

// Close stops the read pacing and halts the sensor.
func (b *Barometer) Close() error {
	b.ticker.Stop()
	return b.dev.Halt()
}
