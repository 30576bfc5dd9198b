package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/jump_tracker/internal/config"
	"github.com/relabs-tech/jump_tracker/internal/jump"
)

// RunConsole subscribes to the tracker topics and prints every jump and
// status snapshot to stdout.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to jump events
	jumpToken := client.Subscribe(cfg.TopicJumpEvent, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev jump.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: jump event unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[JUMP]  height=%5.2fm  flight=%6.3fs  quality=%4.1f  t=%8.2f\n",
			ev.HeightM, ev.FlightTime, ev.Quality, ev.Timestamp,
		)
	})
	jumpToken.Wait()
	if jumpToken.Error() != nil {
		return jumpToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicJumpEvent)

	// Subscribe to tracker status
	statusToken := client.Subscribe(cfg.TopicJumpStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[STAT]  state=%-16s  ground=%.2fg  freefall=%.2fg  last=%5.2fm  best=%5.2fm  jumps=%d  rejected=%d\n",
			st.State, st.GroundThreshold, st.FreefallThreshold,
			st.LastHeightM, st.BestHeightM, st.Jumps, st.Rejected,
		)
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicJumpStatus)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
