package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/jump_tracker/internal/config"
	"github.com/relabs-tech/jump_tracker/internal/jump"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsHub fans every jump and status update out to connected browsers.
type wsHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends a typed JSON frame to every client, dropping clients whose
// writes fail.
func (h *wsHub) broadcast(kind string, payload interface{}) {
	frame := struct {
		Type string      `json:"type"`
		Data interface{} `json:"data"`
	}{Type: kind, Data: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("web: websocket write error, dropping client: %v", err)
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// RunWeb serves the dashboard: JSON API plus a websocket push channel, fed
// from the tracker's MQTT topics.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu         sync.RWMutex
		lastJump   jump.Event
		haveJump   bool
		lastStatus Status
		haveStatus bool
	)

	hub := newWSHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to jump events
	token := client.Subscribe(cfg.TopicJumpEvent, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev jump.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("web: jump event unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastJump = ev
		haveJump = true
		mu.Unlock()
		hub.broadcast("jump", ev)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicJumpEvent)

	// 3) Subscribe to tracker status
	token = client.Subscribe(cfg.TopicJumpStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("web: status unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastStatus = st
		haveStatus = true
		mu.Unlock()
		hub.broadcast("status", st)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicJumpStatus)

	// 4) JSON API: latest jump
	http.HandleFunc("/api/last", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveJump {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastJump); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 5) JSON API: latest tracker status
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveStatus {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastStatus); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 6) Websocket push channel
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Read loop only to detect close; clients don't send anything.
		go func() {
			defer hub.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// 7) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
