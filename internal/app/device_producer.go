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
	"github.com/relabs-tech/jump_tracker/internal/sensors"
)

// RunDeviceProducer runs the detection pipeline directly on the device,
// fed from the MPU9250 and BMP280 over SPI instead of the serial wearable
// link.
func RunDeviceProducer() error {
	cfg := config.Get()

	log.Println("starting on-device jump producer")

	imu, err := sensors.NewIMUSource(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.SampleRateHz)
	if err != nil {
		return fmt.Errorf("IMU source: %w", err)
	}
	defer imu.Close()

	baro, err := sensors.NewBarometer(cfg.BMPSPIDevice, 25)
	if err != nil {
		// Height falls back to pure flight-time kinematics without the
		// barometer.
		log.Printf("device: barometer unavailable, continuing without it: %v", err)
		baro = nil
	} else {
		defer baro.Close()
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDevice)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("device: connected to MQTT broker at %s", cfg.MQTTBroker)

	detector := jump.NewDetector(cfg.DetectorConfig())
	detector.Start()
	defer detector.Stop()

	events := make(chan jump.Event, 16)
	done := make(chan struct{})

	var jumps uint64
	go func() {
		defer close(done)
		for ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("device: event marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicJumpEvent, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("device: MQTT publish error (event): %v", token.Error())
				continue
			}
			log.Printf("device: jump height=%.2fm flight=%.3fs quality=%.1f", ev.HeightM, ev.FlightTime, ev.Quality)
		}
	}()

	// The detector is single-goroutine, so the barometer reads in its own
	// goroutine at its own rate and the ticks are drained into the main
	// sample loop.
	alts := make(chan motion.Altitude, 32)
	if baro != nil {
		go func() {
			for {
				alt, err := baro.NextAltitude()
				if err != nil {
					log.Printf("device: barometer read error: %v", err)
					return
				}
				select {
				case alts <- alt:
				default: // drop when the main loop falls behind
				}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	statusTicker := time.NewTicker(time.Duration(cfg.StatusInterval) * time.Millisecond)
	defer statusTicker.Stop()

	var lastT float64
	for {
		select {
		case <-sigCh:
			close(events)
			<-done
			log.Println("device: shutting down")
			return nil
		case <-statusTicker.C:
			ground, freefall := detector.Thresholds()
			st := Status{
				State:             detector.State().String(),
				GroundThreshold:   ground,
				FreefallThreshold: freefall,
				LastHeightM:       detector.LastHeight(),
				BestHeightM:       detector.BestHeight(),
				Jumps:             jumps,
				Rejected:          detector.RejectedAttempts(),
				T:                 lastT,
			}
			if payload, err := json.Marshal(st); err != nil {
				log.Printf("device: status marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicJumpStatus, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("device: MQTT publish error (status): %v", token.Error())
			}
		default:
		}

		s, err := imu.Next()
		if err != nil {
			log.Printf("device: IMU read error: %v", err)
			continue
		}
		lastT = s.T
		if ev, ok := detector.ProcessMotion(s); ok {
			jumps++
			events <- ev
		}

	drain:
		for {
			select {
			case alt := <-alts:
				detector.ProcessAltitude(alt.Meters, alt.T)
			default:
				break drain
			}
		}
	}
}
