package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID, role string) *Client {
	return &Client{
		UserID:   userID,
		UserRole: role,
		send:     make(chan []byte, 256),
	}
}

// registerAndWait pushes a client through the hub's register channel and
// waits for it to appear in the client map.
func registerAndWait(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	h.register <- c
	require.Eventually(t, func() bool {
		return h.IsUserConnected(c.UserID)
	}, time.Second, 5*time.Millisecond)
}

func TestHubRegisterAndUnregister(t *testing.T) {
	h := NewHub()
	go h.Run()

	staff := newTestClient("staff-1", "staff")
	registerAndWait(t, h, staff)
	assert.Equal(t, 1, h.GetClientCount())
	assert.Contains(t, h.GetConnectedClientIDs(), "staff-1")

	h.unregister <- staff
	require.Eventually(t, func() bool {
		return h.GetClientCount() == 0
	}, time.Second, 5*time.Millisecond)
	assert.False(t, h.IsUserConnected("staff-1"))
}

func TestHubReplacesStaleConnection(t *testing.T) {
	h := NewHub()
	go h.Run()

	first := newTestClient("staff-1", "staff")
	registerAndWait(t, h, first)
	second := newTestClient("staff-1", "staff")
	h.register <- second

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.clients["staff-1"] == second
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.GetClientCount())

	// The stale client's send channel was closed on replacement
	_, open := <-first.send
	assert.False(t, open)
}

func TestBroadcastToUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	staff := newTestClient("staff-1", "staff")
	admin := newTestClient("admin-1", "admin")
	registerAndWait(t, h, staff)
	registerAndWait(t, h, admin)

	h.BroadcastToUser("staff-1", map[string]string{"type": "route_assigned"})

	select {
	case raw := <-staff.send:
		var msg map[string]string
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "route_assigned", msg["type"])
	case <-time.After(time.Second):
		t.Fatal("staff client never received the message")
	}

	select {
	case <-admin.send:
		t.Fatal("admin client should not receive a user-targeted message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToRole(t *testing.T) {
	h := NewHub()
	go h.Run()

	staff := newTestClient("staff-1", "staff")
	admin := newTestClient("admin-1", "admin")
	citizen := newTestClient("citizen-1", "citizen")
	registerAndWait(t, h, staff)
	registerAndWait(t, h, admin)
	registerAndWait(t, h, citizen)

	h.BroadcastToRole("staff", map[string]string{"type": "bin_update"})

	select {
	case raw := <-staff.send:
		var msg map[string]string
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "bin_update", msg["type"])
	case <-time.After(time.Second):
		t.Fatal("staff client never received the broadcast")
	}

	assert.Empty(t, citizen.send)
	assert.Empty(t, admin.send)
}

func TestBroadcastToAll(t *testing.T) {
	h := NewHub()
	go h.Run()

	clients := []*Client{
		newTestClient("staff-1", "staff"),
		newTestClient("admin-1", "admin"),
		newTestClient("citizen-1", "citizen"),
	}
	for _, c := range clients {
		registerAndWait(t, h, c)
	}

	h.BroadcastToAll(map[string]string{"type": "new_alert"})

	for _, c := range clients {
		select {
		case <-c.send:
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the broadcast", c.UserID)
		}
	}
}
