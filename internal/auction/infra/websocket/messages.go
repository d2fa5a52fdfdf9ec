package websocket

import "github.com/rmontero/liveauction/internal/auction/domain"

// BidMessage is the inbound message a bidder sends on the bidding channel.
type BidMessage struct {
	User      string  `json:"user"`
	BidAmount float64 `json:"bid_amount"`
}

// ListingUpdateMessage is broadcast to every subscriber of a listing when a
// bid is accepted. The same shape is sent to a client right after joining,
// so it can render the current price before bidding.
type ListingUpdateMessage struct {
	ItemID        string  `json:"item_id"`
	CurrentPrice  float64 `json:"current_price"`
	HighestBidder *string `json:"highest_bidder"`
}

// ErrorMessage goes only to the client whose message was rejected.
type ErrorMessage struct {
	Error string `json:"error"`
}

func updateFromEvent(e *domain.BidAccepted) ListingUpdateMessage {
	bidder := e.HighestBidder
	return ListingUpdateMessage{
		ItemID:        e.ListingID,
		CurrentPrice:  e.CurrentPrice,
		HighestBidder: &bidder,
	}
}

func updateFromListing(l *domain.Listing) ListingUpdateMessage {
	return ListingUpdateMessage{
		ItemID:        l.ID,
		CurrentPrice:  l.CurrentPrice,
		HighestBidder: l.HighestBidder,
	}
}
