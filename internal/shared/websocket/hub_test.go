package websocket

import (
	"testing"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The hub never touches the underlying connection, only the send channel,
// so tests can run clients without a live websocket.
func newTestClient(listingID, id string) *Client {
	return NewClient(nil, listingID, id)
}

func TestHub_SubscribeAndConnectionsFor(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient("item-x", "c1")
	c2 := newTestClient("item-x", "c2")
	c3 := newTestClient("item-y", "c3")

	hub.Subscribe(c1)
	hub.Subscribe(c2)
	hub.Subscribe(c3)

	assert.ElementsMatch(t, []*Client{c1, c2}, hub.ConnectionsFor("item-x"))
	assert.ElementsMatch(t, []*Client{c3}, hub.ConnectionsFor("item-y"))
	assert.Empty(t, hub.ConnectionsFor("item-z"))
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient("item-x", "c1")
	hub.Subscribe(c)

	hub.Unsubscribe(c)
	assert.Empty(t, hub.ConnectionsFor("item-x"))

	_, open := <-c.Send
	assert.False(t, open, "send channel closed on unsubscribe")

	// Second unsubscribe must be a no-op, not a double close.
	require.NotPanics(t, func() { hub.Unsubscribe(c) })
}

func TestHub_ResubscribeReplacesPriorSubscription(t *testing.T) {
	hub := NewHub()
	c := newTestClient("item-x", "c1")
	hub.Subscribe(c)

	c.ListingID = "item-y"
	hub.Subscribe(c)

	assert.Empty(t, hub.ConnectionsFor("item-x"))
	assert.ElementsMatch(t, []*Client{c}, hub.ConnectionsFor("item-y"))
}

func TestHub_BroadcastReachesOnlyTheListing(t *testing.T) {
	hub := NewHub()
	x1 := newTestClient("item-x", "x1")
	x2 := newTestClient("item-x", "x2")
	y1 := newTestClient("item-y", "y1")
	hub.Subscribe(x1)
	hub.Subscribe(x2)
	hub.Subscribe(y1)

	hub.Broadcast("item-x", []byte(`{"current_price":150}`))

	assert.Equal(t, `{"current_price":150}`, string(<-x1.Send))
	assert.Equal(t, `{"current_price":150}`, string(<-x2.Send))
	assert.Empty(t, y1.Send, "subscriber of another listing must not receive the event")
}

func TestHub_BroadcastEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	healthy := newTestClient("item-x", "healthy")
	stalled := newTestClient("item-x", "stalled")
	hub.Subscribe(healthy)
	hub.Subscribe(stalled)

	// Fill the stalled client's buffer so the next delivery fails.
	for i := 0; i < sendBufferSize; i++ {
		stalled.Send <- []byte("backlog")
	}

	hub.Broadcast("item-x", []byte("update"))

	// Failure on one client does not abort the batch.
	require.Equal(t, "update", string(<-healthy.Send))
	assert.ElementsMatch(t, []*Client{healthy}, hub.ConnectionsFor("item-x"))

	// The stalled client was detached: its backlog drains, then the
	// channel reports closed.
	for i := 0; i < sendBufferSize; i++ {
		require.Equal(t, "backlog", string(<-stalled.Send))
	}
	_, open := <-stalled.Send
	assert.False(t, open)
}

func TestHub_SendTargetsOneClient(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient("item-x", "c1")
	c2 := newTestClient("item-x", "c2")
	hub.Subscribe(c1)
	hub.Subscribe(c2)

	require.True(t, hub.Send(c1, []byte(`{"error":"bid too low"}`)))

	assert.Equal(t, `{"error":"bid too low"}`, string(<-c1.Send))
	assert.Empty(t, c2.Send, "error replies go only to the submitter")
}

func TestHub_SendToDetachedClient(t *testing.T) {
	hub := NewHub()
	c := newTestClient("item-x", "c1")
	hub.Subscribe(c)
	hub.Unsubscribe(c)

	assert.False(t, hub.Send(c, []byte("late")), "send after detach reports failure instead of panicking")
}

func TestHub_CloseListing(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient("item-x", "c1")
	c2 := newTestClient("item-x", "c2")
	other := newTestClient("item-y", "other")
	hub.Subscribe(c1)
	hub.Subscribe(c2)
	hub.Subscribe(other)

	hub.CloseListing("item-x", websocket.CloseUnsupportedData, "auction item not found")

	assert.Empty(t, hub.ConnectionsFor("item-x"))
	assert.Len(t, hub.ConnectionsFor("item-y"), 1, "other listings keep their subscribers")

	for _, c := range []*Client{c1, c2} {
		_, open := <-c.Send
		assert.False(t, open)
		assert.Equal(t, websocket.CloseUnsupportedData, c.closeCode)
		assert.Equal(t, "auction item not found", c.closeReason)
	}
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient("item-x", "c1")
	c2 := newTestClient("item-y", "c2")
	hub.Subscribe(c1)
	hub.Subscribe(c2)

	hub.Shutdown()

	assert.Empty(t, hub.ConnectionsFor("item-x"))
	assert.Empty(t, hub.ConnectionsFor("item-y"))
	for _, c := range []*Client{c1, c2} {
		_, open := <-c.Send
		assert.False(t, open)
		assert.Equal(t, websocket.CloseGoingAway, c.closeCode)
	}
}
