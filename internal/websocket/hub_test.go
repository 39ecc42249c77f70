package websocket

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, deadline time.Duration, cond func() bool) {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubDisconnectsClientWithFullBuffer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient("driver-1", "driver", nil, hub, nil)
	hub.register <- client
	waitFor(t, time.Second, func() bool { return hub.IsUserConnected("driver-1") })

	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("{}")
	}
	hub.BroadcastToUser("driver-1", map[string]string{"type": "pickup_assigned"})

	waitFor(t, time.Second, func() bool { return !hub.IsUserConnected("driver-1") })
}

// A full-buffer disconnect in the hub loop must be safe against role
// broadcasts iterating the client map at the same time.
func TestHubTargetedBroadcastConcurrentWithRoleFanout(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	driver := NewClient("driver-1", "driver", nil, hub, nil)
	admin := NewClient("admin-1", "admin", nil, hub, nil)
	hub.register <- driver
	hub.register <- admin
	waitFor(t, time.Second, func() bool { return hub.GetClientCount() == 2 })

	// Leave the driver's buffer full so targeted broadcasts trip the
	// disconnect path mid-fanout.
	for i := 0; i < cap(driver.send); i++ {
		driver.send <- []byte("{}")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.BroadcastToUser("driver-1", map[string]string{"type": "pickup_assigned"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.BroadcastToRole("admin", map[string]string{"type": "pickup_created"})
		}
	}()
	wg.Wait()

	waitFor(t, time.Second, func() bool { return !hub.IsUserConnected("driver-1") })

	ids := hub.GetConnectedClientIDs()
	if len(ids) != 1 || ids[0] != "admin-1" {
		t.Errorf("connected clients = %v, want [admin-1]", ids)
	}
}
