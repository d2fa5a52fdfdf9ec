package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/shared/logger"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Capacity of each client's outbound buffer. A client whose buffer is
	// full when a broadcast arrives is treated as dead and evicted.
	sendBufferSize = 16
)

// Client is one live bidder connection, subscribed to at most one listing.
type Client struct {
	Conn *websocket.Conn
	// Buffered channel of outbound messages. Owned by the hub: only the hub
	// closes it, and only after removing the client from the registry.
	Send      chan []byte
	ListingID string
	ID        string

	// Close frame the write pump emits once Send is closed. Written under
	// the hub lock before Send is closed.
	closeCode   int
	closeReason string
}

// NewClient wraps a websocket connection for registration under a listing.
func NewClient(conn *websocket.Conn, listingID, id string) *Client {
	return &Client{
		Conn:      conn,
		Send:      make(chan []byte, sendBufferSize),
		ListingID: listingID,
		ID:        id,
		closeCode: websocket.CloseNormalClosure,
	}
}

// Hub is the connection registry and broadcaster: it tracks which clients
// watch which listing and fans committed bid events out to them. All state
// lives behind one mutex; snapshot reads and mutations are safe from any
// goroutine.
type Hub struct {
	mu sync.RWMutex
	// Registered clients grouped by listing ID.
	clients map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
	}
}

// Subscribe registers the client under its listing ID. A client already
// subscribed elsewhere is moved: the prior subscription is replaced.
func (h *Hub) Subscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for listingID, group := range h.clients {
		if listingID != c.ListingID && group[c] {
			delete(group, c)
			if len(group) == 0 {
				delete(h.clients, listingID)
			}
		}
	}

	if _, ok := h.clients[c.ListingID]; !ok {
		h.clients[c.ListingID] = make(map[*Client]bool)
	}
	h.clients[c.ListingID][c] = true

	log.Info("Client subscribed",
		zap.String("clientID", c.ID),
		zap.String("listingID", c.ListingID),
		zap.Int("listing_clients", len(h.clients[c.ListingID])),
	)
}

// Unsubscribe removes the client and closes its send channel. Calling it
// for a client that was already removed is a no-op.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked detaches the client if still registered. The send channel is
// closed exactly once because removal from the map is the single
// linearization point, guarded by h.mu.
func (h *Hub) removeLocked(c *Client) {
	group, ok := h.clients[c.ListingID]
	if !ok || !group[c] {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.clients, c.ListingID)
	}
	close(c.Send)
	log.Info("Client unsubscribed",
		zap.String("clientID", c.ID),
		zap.String("listingID", c.ListingID),
	)
}

// ConnectionsFor returns a snapshot of the clients currently subscribed to
// the listing, safe to iterate while the registry keeps mutating.
func (h *Hub) ConnectionsFor(listingID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	group := h.clients[listingID]
	snapshot := make([]*Client, 0, len(group))
	for c := range group {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Broadcast delivers data to every client subscribed to the listing. A
// client whose buffer cannot take the message is evicted on the spot; the
// rest of the batch still gets delivered.
func (h *Hub) Broadcast(listingID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.clients[listingID]
	if !ok {
		return
	}
	log.Debug("Broadcasting to listing",
		zap.String("listingID", listingID),
		zap.Int("clients", len(group)),
	)
	for c := range group {
		select {
		case c.Send <- data:
		default:
			// Client not draining its buffer, probably disconnected.
			delete(group, c)
			close(c.Send)
			log.Warn("Failed to send to client, evicting",
				zap.String("clientID", c.ID),
				zap.String("listingID", listingID),
			)
		}
	}
	if len(group) == 0 {
		delete(h.clients, listingID)
	}
}

// Send queues data for one client only, e.g. a bid rejection that must not
// reach other subscribers. Reports whether the message was queued. The
// membership check under the lock guarantees the channel is still open.
func (h *Hub) Send(c *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	group, ok := h.clients[c.ListingID]
	if !ok || !group[c] {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		log.Warn("Client send buffer full, message dropped",
			zap.String("clientID", c.ID),
			zap.String("listingID", c.ListingID),
		)
		return false
	}
}

// CloseListing detaches every subscriber of the listing, arranging for each
// write pump to emit a close frame with the given code and reason. Used when
// an admin deletes a listing out from under live sessions.
func (h *Hub) CloseListing(listingID string, code int, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.clients[listingID]
	if !ok {
		return
	}
	for c := range group {
		c.closeCode = code
		c.closeReason = reason
		delete(group, c)
		close(c.Send)
	}
	delete(h.clients, listingID)
	log.Info("Listing group closed", zap.String("listingID", listingID), zap.String("reason", reason))
}

// Shutdown detaches every client on process stop.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for listingID, group := range h.clients {
		for c := range group {
			c.closeCode = websocket.CloseGoingAway
			c.closeReason = "server shutting down"
			close(c.Send)
		}
		delete(h.clients, listingID)
	}
	log.Info("WebSocket hub shut down")
}

// ReadPump reads inbound messages from the peer and hands each one to
// handle. It runs in the session goroutine and guarantees the client is
// unsubscribed on every exit path.
func (c *Client) ReadPump(hub *Hub, handle func(data []byte)) {
	defer func() {
		hub.Unsubscribe(c)
		c.Conn.Close()
		log.Info("ReadPump stopped",
			zap.String("clientID", c.ID),
			zap.String("listingID", c.ListingID),
		)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.String("listingID", c.ListingID),
					zap.Error(err),
				)
			} else {
				log.Info("WebSocket closed by peer",
					zap.String("clientID", c.ID),
					zap.String("listingID", c.ListingID),
				)
			}
			return
		}
		handle(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps the connection alive with pings. It is the connection's only
// writer. One goroutine per client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub detached this client; tell the peer why.
				msg := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
				if err := c.Conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
					log.Debug("Failed to write close message",
						zap.String("clientID", c.ID),
						zap.Error(err),
					)
				}
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("Failed to write to client",
					zap.String("clientID", c.ID),
					zap.String("listingID", c.ListingID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
