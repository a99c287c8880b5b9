package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   nil,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestNotifyReachesOnlyOwner(t *testing.T) {
	hub := NewHub(slog.Default())

	owner1 := mockClient(hub, 1)
	owner2 := mockClient(hub, 1)
	stranger := mockClient(hub, 2)
	hub.Register(owner1)
	hub.Register(owner2)
	hub.Register(stranger)

	msg := NewMessage("meal", "recorded", 42, 7, map[string]any{"total_amount": float64(10000)})
	hub.Notify(1, msg)

	for _, c := range []*Client{owner1, owner2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "meal_recorded" {
				t.Errorf("expected type meal_recorded, got %s", got.Type)
			}
			if got.ID != 42 || got.GroupID != 7 {
				t.Errorf("expected id 42 in group 7, got %d/%d", got.ID, got.GroupID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	select {
	case <-stranger.send:
		t.Fatal("message leaked to another user's client")
	default:
	}

	hub.Unregister(owner1)
	hub.Unregister(owner2)
	hub.Unregister(stranger)
}

func TestNotifyEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	msg := NewMessage("deposit", "added", 1, 1, nil)
	hub.Notify(1, msg)
}

func TestNotifyFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Notify(1, NewMessage("test", "fill", int64(i), 1, nil))
	}

	// This should drop the message, not panic or block
	hub.Notify(1, NewMessage("test", "dropped", 999, 1, nil))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("member", "withdrawn", 5, 3, nil)
	if msg.Type != "member_withdrawn" {
		t.Errorf("expected type member_withdrawn, got %s", msg.Type)
	}
	if msg.Entity != "member" || msg.Action != "withdrawn" {
		t.Errorf("unexpected entity/action %s/%s", msg.Entity, msg.Action)
	}
	if msg.ID != 5 || msg.GroupID != 3 {
		t.Errorf("expected id 5 in group 3, got %d/%d", msg.ID, msg.GroupID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Register, notify, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c := mockClient(hub, userID)
			hub.Register(c)
			hub.Notify(userID, NewMessage("test", "concurrent", 0, 0, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
