package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rmontero/liveauction/internal/auction/domain"
)

// ListingRepository is a concurrency-safe in-memory implementation of
// domain.ListingRepository. Used by tests and by standalone mode.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		listings: make(map[string]*domain.Listing),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = clone(listing)
	return nil
}

// GetByID returns a copy; callers mutate their copy and commit through
// UpdatePrice, never through the returned pointer.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return clone(listing), nil
}

func (r *ListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listings := make([]*domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		listings = append(listings, clone(l))
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Name < listings[j].Name })
	return listings, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *ListingRepository) UpdatePrice(ctx context.Context, id string, price float64, bidder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	listing.CurrentPrice = price
	b := bidder
	listing.HighestBidder = &b
	return nil
}

func clone(l *domain.Listing) *domain.Listing {
	c := *l
	if l.HighestBidder != nil {
		b := *l.HighestBidder
		c.HighestBidder = &b
	}
	return &c
}
