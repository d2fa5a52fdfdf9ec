package websocket

import (
	"encoding/json"

	gofiberws "github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/auction/domain"
	sharedws "github.com/rmontero/liveauction/internal/shared/websocket"
)

// HubBroadcaster adapts the shared hub to the auction module's outbound
// ports: it serializes accepted-bid events onto the wire and closes listing
// groups on deletion. The arbiter calls PublishBidAccepted inside its
// per-listing critical section, so subscribers see updates in commit order.
type HubBroadcaster struct {
	hub *sharedws.Hub
}

func NewHubBroadcaster(hub *sharedws.Hub) *HubBroadcaster {
	return &HubBroadcaster{hub: hub}
}

// PublishBidAccepted implements domain.BidEventPublisher.
func (b *HubBroadcaster) PublishBidAccepted(event *domain.BidAccepted) {
	data, err := json.Marshal(updateFromEvent(event))
	if err != nil {
		log.Error("failed to marshal listing update", zap.Error(err))
		return
	}
	b.hub.Broadcast(event.ListingID, data)
}

// CloseListing implements domain.SubscriptionCloser. 1003 matches the close
// code the service uses when the listing does not exist at join time.
func (b *HubBroadcaster) CloseListing(listingID, reason string) {
	b.hub.CloseListing(listingID, gofiberws.CloseUnsupportedData, reason)
}
