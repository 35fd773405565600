package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, sessionID uuid.UUID) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[sessionID] == nil {
		t.Fatal("session room not created")
	}
	if !hub.rooms[sessionID][client] {
		t.Fatal("client not registered in session room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)

	sessionID := uuid.New()
	client1 := mockClient(hub, sessionID)
	client2 := mockClient(hub, sessionID)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	if n := hub.Watchers(sessionID); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	if n := hub.Watchers(sessionID); n != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", n)
	}

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[sessionID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
}

func TestBroadcastToSingleSession(t *testing.T) {
	hub := startHub(t)

	session1 := uuid.New()
	session2 := uuid.New()

	client1 := mockClient(hub, session1)
	client2 := mockClient(hub, session2)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	testPayload := json.RawMessage(`{"order_id":"ORD-123"}`)
	hub.BroadcastToSession(session1, Event{Type: "receipt.issued", Payload: testPayload})

	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "receipt.issued" {
			t.Errorf("expected type 'receipt.issued', got '%s'", received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToMultipleDisplays(t *testing.T) {
	hub := startHub(t)

	sessionID := uuid.New()
	clients := []*Client{
		mockClient(hub, sessionID),
		mockClient(hub, sessionID),
		mockClient(hub, sessionID),
	}
	for _, c := range clients {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToSession(sessionID, Event{Type: "order.cleared", Payload: json.RawMessage(`{}`)})

	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order.cleared" {
				t.Errorf("client%d: expected type 'order.cleared', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubRunClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	cancel()
	<-stopped

	if _, ok := <-client.send; ok {
		t.Error("client send channel should be closed")
	}

	// must not block once the hub is gone
	done := make(chan struct{})
	go func() {
		hub.BroadcastToSession(sessionID, Event{Type: "order.cleared"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after shutdown")
	}
}
