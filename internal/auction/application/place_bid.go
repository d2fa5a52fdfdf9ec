package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/auction/domain"
	"github.com/rmontero/liveauction/internal/shared/logger"
)

var log = logger.GetLogger()

// PlaceBidUseCase is the bid arbiter: it linearizes concurrent bids per
// listing, applies the strictly-increasing price rule, persists accepted
// bids and publishes the resulting event. Bids against different listings
// never contend on the same lock.
type PlaceBidUseCase struct {
	listings  domain.ListingRepository
	publisher domain.BidEventPublisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPlaceBidUseCase(listings domain.ListingRepository, publisher domain.BidEventPublisher) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		listings:  listings,
		publisher: publisher,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing all bids on one listing.
func (uc *PlaceBidUseCase) lockFor(listingID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.locks[listingID]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[listingID] = l
	}
	return l
}

// ReleaseLock drops the lock entry of a listing that no longer exists, so
// the table stays bounded by the number of live listings. A bid racing the
// deletion may briefly recreate the entry; it then fails with not found
// against the store, so no listing state is ever guarded by two mutexes.
func (uc *PlaceBidUseCase) ReleaseLock(listingID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.locks, listingID)
}

// Execute evaluates one bid against the listing's current price. Inside the
// per-listing critical section it loads the listing, applies the bid,
// persists the new price and publishes the event, so every caller observes
// a price that already reflects all previously committed bids and
// publications leave in commit order.
func (uc *PlaceBidUseCase) Execute(ctx context.Context, listingID string, bid domain.Bid) (*domain.BidAccepted, error) {
	lock := uc.lockFor(listingID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			log.Error("PlaceBidUseCase: failed to load listing",
				zap.String("listingID", listingID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("place bid use case: failed to get listing %s: %w", listingID, err)
	}

	event, err := listing.ApplyBid(bid)
	if err != nil {
		log.Warn("Bid rejected",
			zap.String("listingID", listingID),
			zap.String("bidder", bid.Bidder),
			zap.Float64("amount", bid.Amount),
			zap.Float64("currentPrice", listing.CurrentPrice),
		)
		return nil, fmt.Errorf("place bid use case: bid failed for listing %s: %w", listingID, err)
	}

	if err := uc.listings.UpdatePrice(ctx, listingID, event.CurrentPrice, event.HighestBidder); err != nil {
		log.Error("PlaceBidUseCase: failed to persist accepted bid",
			zap.String("listingID", listingID),
			zap.String("bidder", bid.Bidder),
			zap.Float64("amount", bid.Amount),
			zap.Error(err),
		)
		return nil, fmt.Errorf("place bid use case: failed to update listing %s: %w", listingID, err)
	}

	uc.publisher.PublishBidAccepted(event)

	log.Info("Bid accepted",
		zap.String("listingID", listingID),
		zap.String("bidder", event.HighestBidder),
		zap.Float64("newCurrentPrice", event.CurrentPrice),
	)

	return event, nil
}
