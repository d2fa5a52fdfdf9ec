package domain

// Bid is a bidder's attempt to raise the price of a listing. Bids are
// transient, only their effect on the listing is persisted.
type Bid struct {
	Bidder string
	Amount float64
}

// BidAccepted is the event emitted when a bid wins; it carries exactly the
// state every subscriber of the listing must learn about.
type BidAccepted struct {
	ListingID     string
	CurrentPrice  float64
	HighestBidder string
}
