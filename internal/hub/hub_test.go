package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-chat/models"
)

func connIDs(conns []*Conn) []string {
	ids := make([]string, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestHub_JoinLeave(t *testing.T) {
	h := New(8)

	c1 := h.Register("U1")
	c2 := h.Register("U2")

	h.Join(c1.ID, "room")
	h.Join(c1.ID, "room") // idempotent
	h.Join(c2.ID, "room")

	assert.ElementsMatch(t, []string{c1.ID, c2.ID}, connIDs(h.Subscribers("room")))

	h.Leave(c1.ID, "room")
	h.Leave(c1.ID, "room") // idempotent
	assert.Equal(t, []string{c2.ID}, connIDs(h.Subscribers("room")))
}

func TestHub_UnregisterLeavesAllRooms(t *testing.T) {
	h := New(8)

	c := h.Register("U1")
	h.Join(c.ID, "a")
	h.Join(c.ID, "b")

	h.Unregister(c.ID)
	h.Unregister(c.ID) // safe to repeat

	assert.Empty(t, h.Subscribers("a"))
	assert.Empty(t, h.Subscribers("b"))

	select {
	case <-c.Done():
	default:
		t.Fatal("unregister must close the connection")
	}
}

func TestHub_JoinAfterUnregisterIsNoop(t *testing.T) {
	h := New(8)
	c := h.Register("U1")
	h.Unregister(c.ID)

	h.Join(c.ID, "room")
	assert.Empty(t, h.Subscribers("room"))
}

func TestConn_DeliverNonBlocking(t *testing.T) {
	h := New(2)
	c := h.Register("U1")

	require.True(t, c.Deliver(models.ServerEvent{Event: "a"}))
	require.True(t, c.Deliver(models.ServerEvent{Event: "b"}))
	assert.False(t, c.Deliver(models.ServerEvent{Event: "c"}), "full buffer drops instead of blocking")

	h.Unregister(c.ID)
	assert.False(t, c.Deliver(models.ServerEvent{Event: "d"}), "closed connection drops")
}

func TestHub_ConcurrentJoinLeaveDuringFanout(t *testing.T) {
	// Exercises the shared registry under churn while another goroutine
	// resolves subscriber snapshots, as the dispatcher does. Run with -race.
	h := New(1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c := h.Register("U")
				h.Join(c.ID, "room")
				h.Unregister(c.ID)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			for _, c := range h.Subscribers("room") {
				c.Deliver(models.ServerEvent{Event: "x"})
			}
		}
	}()

	wg.Wait()
	<-done
	assert.Empty(t, h.Subscribers("room"))
}

func TestHub_JoinRacingUnregisterLeavesNoRegistryEntry(t *testing.T) {
	// A join landing in the registry after the connection's unregister
	// must not leave the dead connection subscribed. Run with -race.
	h := New(1)

	for i := 0; i < 500; i++ {
		c := h.Register("U")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Join(c.ID, "room")
		}()
		go func() {
			defer wg.Done()
			h.Unregister(c.ID)
		}()
		wg.Wait()

		h.registry.mu.RLock()
		_, stale := h.registry.rooms["room"][c.ID]
		h.registry.mu.RUnlock()
		require.False(t, stale, "unregistered connection still in registry")
	}
}
