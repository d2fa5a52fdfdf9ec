package domain

// Listing is the aggregate root of the auction module: an item under auction
// with its current price and, once at least one bid was accepted, the
// identity of the highest bidder.
type Listing struct {
	ID            string
	Name          string
	Description   string
	StartingPrice float64
	CurrentPrice  float64
	// HighestBidder is nil until the first accepted bid.
	HighestBidder *string
}

// NewListing builds a listing ready to receive bids, current price starts at
// the starting price.
func NewListing(id, name, description string, startingPrice float64) (*Listing, error) {
	if startingPrice <= 0 {
		return nil, ErrInvalidStartingPrice
	}
	return &Listing{
		ID:            id,
		Name:          name,
		Description:   description,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
	}, nil
}

// ApplyBid enforces the strictly-increasing price rule and, when the bid
// wins, mutates the listing and returns the event to broadcast. A bid equal
// to the current price loses. Callers must serialize ApplyBid per listing;
// the method itself holds no lock.
func (l *Listing) ApplyBid(bid Bid) (*BidAccepted, error) {
	if bid.Amount <= l.CurrentPrice {
		return nil, ErrBidTooLow
	}
	bidder := bid.Bidder
	l.CurrentPrice = bid.Amount
	l.HighestBidder = &bidder

	return &BidAccepted{
		ListingID:     l.ID,
		CurrentPrice:  l.CurrentPrice,
		HighestBidder: bidder,
	}, nil
}
