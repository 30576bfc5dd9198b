// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/jump_tracker/internal/motion"
)

// MPU9250 LSB per g at the ±2g power-on range.
const accelCountsPerG = 16384.0

// gravityAlpha is the low-pass coefficient for the on-device gravity
// estimate. The accelerometer only reports total specific force, so gravity
// is recovered as a slow average and the user component as the remainder.
const gravityAlpha = 0.02

// IMUSource reads the MPU9250 accelerometer over SPI and emits motion
// samples at a fixed rate. Implements motion.Source.
type IMUSource struct {
	imu    *mpu9250.MPU9250
	ticker *time.Ticker
	start  time.Time

	gx, gy, gz float64
	primed     bool
}

// NewIMUSource initializes the MPU9250 over SPI and starts pacing at
// rateHz. Self-test and calibration failures are logged but not fatal.
func NewIMUSource(spiDev, csPin string, rateHz float64) (*IMUSource, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	// Self-test
	if _, err := imu.SelfTest(); err != nil {
		log.Printf("Warning: IMU self-test failed: %v", err)
	} else {
		log.Println("IMU self-test passed")
	}

	// Calibration
	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Printf("IMU calibration complete")
	}

	if rateHz <= 0 {
		rateHz = 100
	}
	interval := time.Duration(float64(time.Second) / rateHz)

	return &IMUSource{
		imu:    imu,
		ticker: time.NewTicker(interval),
		start:  time.Now(),
	}, nil
}

// Next blocks until the next sample tick, then reads the accelerometer and
// splits total specific force into a low-passed gravity estimate and the
// user remainder.
func (s *IMUSource) Next() (motion.Sample, error) {
	<-s.ticker.C

	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	tx := float64(ax) / accelCountsPerG
	ty := float64(ay) / accelCountsPerG
	tz := float64(az) / accelCountsPerG

	if !s.primed {
		// Assume the wearer is still at startup: first reading is all gravity.
		s.gx, s.gy, s.gz = tx, ty, tz
		s.primed = true
	} else {
		s.gx += gravityAlpha * (tx - s.gx)
		s.gy += gravityAlpha * (ty - s.gy)
		s.gz += gravityAlpha * (tz - s.gz)
	}

	return motion.Sample{
		Gx: s.gx,
		Gy: s.gy,
		Gz: s.gz,
		Ax: tx - s.gx,
		Ay: ty - s.gy,
		Az: tz - s.gz,
		T:  time.Since(s.start).Seconds(),
	}, nil
}

// Close stops the sample pacing.
func (s *IMUSource) Close() error {
	s.ticker.Stop()
	return nil
}
