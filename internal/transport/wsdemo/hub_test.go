package wsdemo

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
)

func TestHubBroadcastsPublishedEvents(t *testing.T) {
	bus := eventbus.New()
	hub := New(bus, eventbus.DefaultBackpressureConfig(), nil)
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	bus.Publish(t.Context(), eventbus.KindAgentCreated, map[string]string{"name": "Scout"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, body, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "agent:created") || !strings.Contains(string(body), "Scout") {
		t.Fatalf("unexpected message: %s", body)
	}
}
