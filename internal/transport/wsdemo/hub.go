// Package wsdemo is a thin realtime-channel adapter: it republishes every
// Event Bus kind verbatim to connected websocket clients as JSON. It is
// outside the kernel's own scope (the kernel has no opinion on transport)
// but exercises the Event Bus end-to-end, the way a real UI client would
// consume it.
package wsdemo

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
)

const (
	clientSendBuffer = 64
	writeWait        = 10 * time.Second
	pingInterval     = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireEvent is the JSON shape delivered to clients.
type wireEvent struct {
	Kind      eventbus.Kind `json:"kind"`
	Payload   any           `json:"payload"`
	Timestamp time.Time     `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans every event published on a Bus out to every connected
// websocket client. Construct with New, mount ServeHTTP on a route, and
// call Close on shutdown.
type Hub struct {
	logger *slog.Logger
	sink   *eventbus.BackpressureSink

	mu      sync.Mutex
	clients map[*client]bool
}

// New subscribes a Hub to bus and starts its broadcast loop. cfg sizes
// the backpressure sink's lanes; a zero value uses
// eventbus.DefaultBackpressureConfig.
func New(bus *eventbus.Bus, cfg eventbus.BackpressureConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	sink, events := eventbus.NewBackpressureSink(cfg)
	bus.Subscribe(sink)

	h := &Hub{logger: logger, sink: sink, clients: map[*client]bool{}}
	go h.broadcastLoop(events)
	return h
}

func (h *Hub) broadcastLoop(events <-chan eventbus.Event) {
	for e := range events {
		body, err := json.Marshal(wireEvent{Kind: e.Kind, Payload: e.Payload, Timestamp: e.Timestamp})
		if err != nil {
			h.logger.Warn("wsdemo: marshal event", "kind", e.Kind, "error", err)
			continue
		}
		h.broadcast(body)
	}
}

func (h *Hub) broadcast(body []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- body:
		default:
			h.logger.Warn("wsdemo: client send buffer full, dropping client")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request to a websocket and streams every
// subsequent event to it until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("wsdemo: upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}
	h.addClient(c)

	go h.readPump(c)
	go h.writePump(c)
}

// readPump discards inbound messages (this channel is output-only) but
// detects client disconnects so writePump can stop.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.removeClient(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case body, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close stops the Hub's backpressure sink and drops every connected
// client.
func (h *Hub) Close() {
	h.sink.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
