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

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/jump_tracker/internal/config"
	"github.com/relabs-tech/jump_tracker/internal/history"
	"github.com/relabs-tech/jump_tracker/internal/jump"
)

// RunHistory subscribes to the jump event topic and persists every event to
// the SQLite history database.
func RunHistory() error {
	cfg := config.Get()

	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("history store: %w", err)
	}
	defer store.Close()

	if n, err := store.Count(); err == nil {
		log.Printf("history: %d jumps on record in %s", n, cfg.HistoryDBPath)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDHistory)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("history: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicJumpEvent, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev jump.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("history: jump event unmarshal error: %v", err)
			return
		}
		if err := store.Insert(ev); err != nil {
			log.Printf("history: insert error: %v", err)
			return
		}
		log.Printf("history: recorded jump height=%.2fm flight=%.3fs", ev.HeightM, ev.FlightTime)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("history: subscribed to %s", cfg.TopicJumpEvent)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("history: shutting down")
	client.Disconnect(250)
	return nil
}
