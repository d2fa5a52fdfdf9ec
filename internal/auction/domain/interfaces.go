package domain

import "context"

// ListingRepository is the persistence port for listings. Implementations
// must return ErrListingNotFound (possibly wrapped) when the id is unknown.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context) ([]*Listing, error)
	Delete(ctx context.Context, id string) error
	// UpdatePrice persists the effect of an accepted bid.
	UpdatePrice(ctx context.Context, id string, price float64, bidder string) error
}

// BidEventPublisher is the outbound port the bid arbiter pushes accepted
// bids through. The arbiter calls it inside the per-listing critical
// section, so publications for one listing arrive in commit order.
type BidEventPublisher interface {
	PublishBidAccepted(event *BidAccepted)
}

// SubscriptionCloser detaches every live subscriber of a listing, telling
// each one why. Needed when a listing is deleted under active sessions.
type SubscriptionCloser interface {
	CloseListing(listingID, reason string)
}
