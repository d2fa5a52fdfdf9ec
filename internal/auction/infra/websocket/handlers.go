package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/auction/application"
	"github.com/rmontero/liveauction/internal/auction/domain"
	"github.com/rmontero/liveauction/internal/shared/logger"
	sharedws "github.com/rmontero/liveauction/internal/shared/websocket"
)

var log = logger.GetLogger()

// BidSessionHandler drives one bidding session per websocket connection:
// join validation, subscription, inbound bid dispatch and the error replies
// that go only to the offending client.
type BidSessionHandler struct {
	auctionService application.AuctionService
	hub            *sharedws.Hub
}

func NewBidSessionHandler(auctionService application.AuctionService, hub *sharedws.Hub) *BidSessionHandler {
	return &BidSessionHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

// RegisterRoutes mounts the bidding channel on the fiber app.
func (h *BidSessionHandler) RegisterRoutes(app *fiber.App) {
	app.Use("/auctions/:id/bid", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/auctions/:id/bid", websocket.New(h.Handle))
}

// Handle runs the session for GET /auctions/:id/bid. It blocks until the
// connection closes and unconditionally unsubscribes the client on exit.
func (h *BidSessionHandler) Handle(conn *websocket.Conn) {
	ctx := context.Background()
	listingID := conn.Params("id")

	listing, err := h.auctionService.GetListing(ctx, listingID)
	if err != nil {
		// Session never reaches Open: close right away with the reason.
		if !errors.Is(err, domain.ErrListingNotFound) {
			log.Error("failed to load listing at join",
				zap.String("listingID", listingID),
				zap.Error(err),
			)
		}
		code, reason := joinRefusal(err)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
		conn.Close()
		return
	}

	client := sharedws.NewClient(conn, listingID, uuid.NewString())
	h.hub.Subscribe(client)
	go client.WritePump()

	// Current state first, so the client can render the price it has to beat.
	if data, err := json.Marshal(updateFromListing(listing)); err == nil {
		h.hub.Send(client, data)
	}

	client.ReadPump(h.hub, func(data []byte) {
		h.handleBidMessage(ctx, client, data)
	})
}

// joinRefusal picks the close frame for a connection whose listing could
// not be loaded: a missing listing is the client's problem, anything else
// is ours.
func joinRefusal(err error) (code int, reason string) {
	if errors.Is(err, domain.ErrListingNotFound) {
		return websocket.CloseUnsupportedData, domain.ErrListingNotFound.Error()
	}
	return websocket.CloseInternalServerErr, "failed to load auction item"
}

func (h *BidSessionHandler) handleBidMessage(ctx context.Context, client *sharedws.Client, data []byte) {
	var msg BidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(client, "invalid bid message format")
		return
	}
	if msg.User == "" || msg.BidAmount <= 0 {
		h.sendError(client, "bid requires a user and a positive bid_amount")
		return
	}

	bid := domain.Bid{Bidder: msg.User, Amount: msg.BidAmount}
	_, err := h.auctionService.PlaceBid(ctx, client.ListingID, bid)
	if err != nil {
		// Accepted bids were already broadcast by the arbiter; rejections go
		// back to the submitter only.
		switch {
		case errors.Is(err, domain.ErrBidTooLow):
			h.sendError(client, domain.ErrBidTooLow.Error())
		case errors.Is(err, domain.ErrListingNotFound):
			h.sendError(client, domain.ErrListingNotFound.Error())
		default:
			log.Error("bid failed",
				zap.String("clientID", client.ID),
				zap.String("listingID", client.ListingID),
				zap.Error(err),
			)
			h.sendError(client, "failed to place bid")
		}
	}
}

func (h *BidSessionHandler) sendError(client *sharedws.Client, message string) {
	data, err := json.Marshal(ErrorMessage{Error: message})
	if err != nil {
		log.Error("failed to marshal error message", zap.Error(err))
		return
	}
	h.hub.Send(client, data)
}
