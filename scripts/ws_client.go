// Package main runs a demo WebSocket client for coordinator state events.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	host := os.Getenv("PLANCTL_HTTP_HOST")
	if host == "" {
		host = "localhost:8080"
	}
	base := fmt.Sprintf("http://%s", host)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: host, Path: "/v1/events"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger coverage.pending / coverage.success (or .failure) events
	time.Sleep(500 * time.Millisecond)
	resp, err := http.Get(base + "/v1/coverage?week=current")
	if err != nil {
		log.Fatal(err)
	}
	_ = resp.Body.Close()
	log.Printf("coverage request: %s", resp.Status)

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
