// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/jump_tracker/internal/config"
	"github.com/relabs-tech/jump_tracker/internal/jump"
	"github.com/relabs-tech/jump_tracker/internal/motion"
	"github.com/relabs-tech/jump_tracker/internal/wearable"
)

// Status is the periodic tracker snapshot published on the status topic.
type Status struct {
	State             string  `json:"state"`
	GroundThreshold   float64 `json:"ground_threshold_g"`
	FreefallThreshold float64 `json:"freefall_threshold_g"`
	LastHeightM       float64 `json:"last_height_m"`
	BestHeightM       float64 `json:"best_height_m"`
	Jumps             uint64  `json:"jumps"`
	Rejected          uint64  `json:"rejected"`
	T                 float64 `json:"t"`
}

// RunTracker runs the detection pipeline: samples in from the configured
// source, jump events and status snapshots out over MQTT.
func RunTracker() error {
	cfg := config.Get()

	log.Println("starting jump tracker")

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDTracker)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("tracker: connected to MQTT broker at %s", cfg.MQTTBroker)

	detector := jump.NewDetector(cfg.DetectorConfig())
	detector.Start()

	// Events leave the sampling loop through a buffered channel so a slow
	// broker never stalls sample processing.
	events := make(chan jump.Event, 16)
	done := make(chan struct{})

	var jumps uint64
	go func() {
		defer close(done)
		for ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("tracker: event marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicJumpEvent, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("tracker: MQTT publish error (event): %v", token.Error())
				continue
			}
			log.Printf("tracker: jump height=%.2fm flight=%.3fs quality=%.1f", ev.HeightM, ev.FlightTime, ev.Quality)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	statusTicker := time.NewTicker(time.Duration(cfg.StatusInterval) * time.Millisecond)
	defer statusTicker.Stop()

	publishStatus := func(t float64) {
		ground, freefall := detector.Thresholds()
		st := Status{
			State:             detector.State().String(),
			GroundThreshold:   ground,
			FreefallThreshold: freefall,
			LastHeightM:       detector.LastHeight(),
			BestHeightM:       detector.BestHeight(),
			Jumps:             jumps,
			Rejected:          detector.RejectedAttempts(),
			T:                 t,
		}
		payload, err := json.Marshal(st)
		if err != nil {
			log.Printf("tracker: status marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicJumpStatus, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("tracker: MQTT publish error (status): %v", token.Error())
		}
	}

	var err error
	switch cfg.SampleSource {
	case "serial":
		err = runSerialLoop(cfg, detector, events, &jumps, statusTicker, publishStatus, sigCh)
	default:
		err = runMockLoop(cfg, detector, events, &jumps, statusTicker, publishStatus, sigCh)
	}

	detector.Stop()
	close(events)
	<-done
	log.Println("tracker: shutting down")
	return err
}

func runMockLoop(cfg *config.Config, detector *jump.Detector, events chan<- jump.Event,
	jumps *uint64, statusTicker *time.Ticker, publishStatus func(float64), sigCh <-chan os.Signal) error {

	log.Printf("tracker: using mock motion source at %.0f Hz", cfg.SampleRateHz)
	src := motion.NewMockSource(cfg.SampleRateHz)

	var lastT float64
	for {
		select {
		case <-sigCh:
			return nil
		case <-statusTicker.C:
			publishStatus(lastT)
		default:
		}

		s, err := src.Next()
		if err != nil {
			return fmt.Errorf("mock source: %w", err)
		}
		lastT = s.T
		if ev, ok := detector.ProcessMotion(s); ok {
			*jumps++
			events <- ev
		}
	}
}

func runSerialLoop(cfg *config.Config, detector *jump.Detector, events chan<- jump.Event,
	jumps *uint64, statusTicker *time.Ticker, publishStatus func(float64), sigCh <-chan os.Signal) error {

	log.Printf("tracker: opening wearable link on %s at %d baud", cfg.SerialPort, cfg.SerialBaudRate)
	reader, err := wearable.Open(cfg.SerialPort, cfg.SerialBaudRate)
	if err != nil {
		return fmt.Errorf("wearable open: %w", err)
	}
	defer reader.Close()

	var lastT float64
	for {
		select {
		case <-sigCh:
			return nil
		case <-statusTicker.C:
			publishStatus(lastT)
		default:
		}

		tick, err := reader.Next()
		if err != nil {
			if err == motion.ErrClosed {
				log.Println("tracker: wearable link closed")
				return nil
			}
			return fmt.Errorf("wearable read: %w", err)
		}

		switch {
		case tick.Motion != nil:
			lastT = tick.Motion.T
			if ev, ok := detector.ProcessMotion(*tick.Motion); ok {
				*jumps++
				events <- ev
			}
		case tick.Altitude != nil:
			detector.ProcessAltitude(tick.Altitude.Meters, tick.Altitude.T)
		}
	}
}
