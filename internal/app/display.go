package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/jump_tracker/internal/config"
	"github.com/relabs-tech/jump_tracker/internal/jump"
)

// displayData holds the latest data for the OLED
type displayData struct {
	mu sync.RWMutex

	lastJump jump.Event
	haveJump bool

	status     Status
	haveStatus bool
}

// RunDisplay drives the wrist-mounted ssd1306 OLED: last jump height,
// session best, and the tracker state, fed by MQTT.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicJumpEvent, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev jump.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("display: jump event unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.lastJump = ev
		data.haveJump = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicJumpEvent)

	token = client.Subscribe(cfg.TopicJumpStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("display: status unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.status = st
		data.haveStatus = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicJumpStatus)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snapshot := displayData{
			lastJump:   data.lastJump,
			haveJump:   data.haveJump,
			status:     data.status,
			haveStatus: data.haveStatus,
		}
		data.mu.RUnlock()

		if err := updateJumpDisplay(dev, &snapshot); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func blankImage() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}
	return img
}

func updateJumpDisplay(dev *ssd1306.Dev, data *displayData) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !data.haveJump && !data.haveStatus {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Jump Tracker"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	if data.haveJump {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("Last: %.2fm", data.lastJump.HeightM)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("  %.3fs q%.1f", data.lastJump.FlightTime, data.lastJump.Quality)))
	}

	if data.haveStatus {
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Best: %.2fm", data.status.BestHeightM)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(data.status.State))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Jump Tracker"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Ready to"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("fly"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
