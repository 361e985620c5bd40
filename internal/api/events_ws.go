package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"teamplanner/internal/events"
	"teamplanner/internal/state"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	wsReadTimeout = 60 * time.Second
	wsPingEvery   = 20 * time.Second
)

// EventsWSHandler handles /v1/events. The first message is a snapshot of
// the current state; every store change follows as an "event" message.
// ?kinds=schedule,coverage limits events to those kinds.
func (s *Server) EventsWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	var wmu sync.Mutex
	write := func(typ string, v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		wmu.Lock()
		defer wmu.Unlock()
		return conn.WriteJSON(wsMessage{Type: typ, Payload: payload})
	}

	kinds := parseKinds(r.URL.Query().Get("kinds"))
	// subscribe before the snapshot so no change falls in between
	ch := s.Broker.Subscribe(events.Topic)
	defer s.Broker.Unsubscribe(events.Topic, ch)

	st := s.Dispatcher.Snapshot()
	if err := write("snapshot", map[string]any{"state": st, "flags": state.Derive(st)}); err != nil {
		return
	}

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout)); return nil })

	// Read loop: answers pings and notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
			if msg.Type == "ping" {
				_ = write("pong", nil)
			}
		}
	}()

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			wmu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			wmu.Unlock()
			if err != nil {
				return
			}
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if !kinds.match(evt.Type) {
				continue
			}
			if err := write("event", evt); err != nil {
				s.Logger.Debug().Err(err).Msg("event stream closed")
				return
			}
		}
	}
}

type kindFilter map[string]struct{}

func parseKinds(v string) kindFilter {
	if v == "" {
		return nil
	}
	f := kindFilter{}
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			f[k] = struct{}{}
		}
	}
	return f
}

// match compares the kind prefix of an event type such as "coverage.success".
func (f kindFilter) match(eventType string) bool {
	if len(f) == 0 {
		return true
	}
	kind, _, _ := strings.Cut(eventType, ".")
	_, ok := f[kind]
	return ok
}
