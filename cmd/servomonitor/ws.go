package main

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// wsMessage is the minimal event envelope sent over WebSocket.
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsClient wraps a websocket connection with a per-connection write mutex:
// gorilla/websocket requires writes not be concurrent on the same Conn.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(msg wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// wsHub is the broadcast hub for connected telemetry viewers.
//
// It also remembers the most recent telemetry sample per servo id. A
// dashboard that connects between poll ticks would otherwise sit blank
// until the next tick fires; add replays the last known reading for every
// servo as soon as the connection registers, so the UI has something to
// show immediately instead of waiting out pollLoop's interval.
type wsHub struct {
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	lastByID map[uint8]telemetry
}

func newWSHub() *wsHub {
	return &wsHub{
		clients:  make(map[*wsClient]struct{}),
		lastByID: make(map[uint8]telemetry),
	}
}

// add registers conn with the hub, replays the last known telemetry for
// every servo id seen so far, and returns the client wrapper.
func (h *wsHub) add(conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	snapshot := make([]telemetry, 0, len(h.lastByID))
	for _, t := range h.lastByID {
		snapshot = append(snapshot, t)
	}
	h.mu.Unlock()

	for _, t := range snapshot {
		_ = c.send(wsMessage{Type: "telemetry", Data: t})
	}
	return c
}

func (h *wsHub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// broadcast records msg in the per-id cache when it carries telemetry, then
// marshals it once and fans it out to every connected client. Write failures
// are ignored here; the read-loop in serveWS notices disconnects and removes
// the client.
func (h *wsHub) broadcast(msg wsMessage) {
	h.mu.Lock()
	if t, ok := msg.Data.(telemetry); ok {
		h.lastByID[t.ID] = t
	}
	h.mu.Unlock()

	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, b)
		c.mu.Unlock()
	}
}
