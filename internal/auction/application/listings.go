package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/auction/domain"
)

// CreateListingDTO is the input for creating a listing. An empty ID means
// the server assigns one.
type CreateListingDTO struct {
	ID            string
	Name          string
	Description   string
	StartingPrice float64
}

// ListingCatalogUseCase covers the administrative and public listing
// operations: create, delete, point get and list.
type ListingCatalogUseCase struct {
	listings domain.ListingRepository
	closer   domain.SubscriptionCloser
}

func NewListingCatalogUseCase(listings domain.ListingRepository, closer domain.SubscriptionCloser) *ListingCatalogUseCase {
	return &ListingCatalogUseCase{
		listings: listings,
		closer:   closer,
	}
}

// CreateListing registers a new listing; its current price starts at the
// starting price and it has no highest bidder.
func (uc *ListingCatalogUseCase) CreateListing(ctx context.Context, cmd CreateListingDTO) (*domain.Listing, error) {
	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}

	listing, err := domain.NewListing(id, cmd.Name, cmd.Description, cmd.StartingPrice)
	if err != nil {
		return nil, fmt.Errorf("listing catalog use case: %w", err)
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		log.Error("ListingCatalogUseCase: failed to create listing",
			zap.String("listingID", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("listing catalog use case: failed to create listing: %w", err)
	}

	log.Info("Listing created",
		zap.String("listingID", listing.ID),
		zap.String("name", listing.Name),
		zap.Float64("startingPrice", listing.StartingPrice),
	)
	return listing, nil
}

// DeleteListing removes the listing and detaches every live subscriber.
// Deletion is terminal: later bids fail with not found.
func (uc *ListingCatalogUseCase) DeleteListing(ctx context.Context, id string) error {
	if err := uc.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("listing catalog use case: failed to delete listing %s: %w", id, err)
	}

	uc.closer.CloseListing(id, domain.ErrListingNotFound.Error())

	log.Info("Listing deleted", zap.String("listingID", id))
	return nil
}

// GetListing returns one listing by id.
func (uc *ListingCatalogUseCase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing catalog use case: failed to get listing %s: %w", id, err)
	}
	return listing, nil
}

// ListListings returns every listing.
func (uc *ListingCatalogUseCase) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	listings, err := uc.listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing catalog use case: failed to list listings: %w", err)
	}
	return listings, nil
}
