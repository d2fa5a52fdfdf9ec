package application

import (
	"context"

	"github.com/rmontero/liveauction/internal/auction/domain"
)

// AuctionService is the application interface of the auction module,
// exposing its use cases to the outer layers (HTTP and WebSocket infra).
type AuctionService interface {
	// PlaceBid evaluates a bid against the listing's current price and, on
	// acceptance, commits and broadcasts the new state.
	PlaceBid(ctx context.Context, listingID string, bid domain.Bid) (*domain.BidAccepted, error)
	CreateListing(ctx context.Context, cmd CreateListingDTO) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context) ([]*domain.Listing, error)
}

type auctionService struct {
	placeBidUC *PlaceBidUseCase
	catalogUC  *ListingCatalogUseCase
}

func NewAuctionService(placeBidUC *PlaceBidUseCase, catalogUC *ListingCatalogUseCase) AuctionService {
	return &auctionService{
		placeBidUC: placeBidUC,
		catalogUC:  catalogUC,
	}
}

// PlaceBid implements AuctionService.
func (as *auctionService) PlaceBid(ctx context.Context, listingID string, bid domain.Bid) (*domain.BidAccepted, error) {
	return as.placeBidUC.Execute(ctx, listingID, bid)
}

// CreateListing implements AuctionService.
func (as *auctionService) CreateListing(ctx context.Context, cmd CreateListingDTO) (*domain.Listing, error) {
	return as.catalogUC.CreateListing(ctx, cmd)
}

// DeleteListing implements AuctionService.
func (as *auctionService) DeleteListing(ctx context.Context, id string) error {
	if err := as.catalogUC.DeleteListing(ctx, id); err != nil {
		return err
	}
	as.placeBidUC.ReleaseLock(id)
	return nil
}

// GetListing implements AuctionService.
func (as *auctionService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return as.catalogUC.GetListing(ctx, id)
}

// ListListings implements AuctionService.
func (as *auctionService) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	return as.catalogUC.ListListings(ctx)
}
