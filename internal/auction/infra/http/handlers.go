package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	adminapp "github.com/rmontero/liveauction/internal/admin/application"
	admindomain "github.com/rmontero/liveauction/internal/admin/domain"
	"github.com/rmontero/liveauction/internal/auction/application"
	"github.com/rmontero/liveauction/internal/auction/domain"
	"github.com/rmontero/liveauction/internal/shared/logger"
)

var log = logger.GetLogger()

// ListingHandler exposes the public read surface and the admin listing
// mutations. Admin credentials travel as query parameters, matching the
// original API contract.
type ListingHandler struct {
	auctionService application.AuctionService
	adminService   adminapp.AdminService
}

func NewListingHandler(auctionService application.AuctionService, adminService adminapp.AdminService) *ListingHandler {
	return &ListingHandler{
		auctionService: auctionService,
		adminService:   adminService,
	}
}

// RegisterRoutes mounts the listing endpoints on the fiber app.
func (h *ListingHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/auctions", h.listListings)
	app.Get("/auctions/:id", h.getListing)
	app.Post("/admin/auctions", h.createListing)
	app.Delete("/admin/auctions/:id", h.deleteListing)
}

type createListingRequest struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price"`
}

type listingResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price"`
	CurrentPrice  float64 `json:"current_price"`
	HighestBidder *string `json:"highest_bidder"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:            l.ID,
		Name:          l.Name,
		Description:   l.Description,
		StartingPrice: l.StartingPrice,
		CurrentPrice:  l.CurrentPrice,
		HighestBidder: l.HighestBidder,
	}
}

// requireAdmin verifies the credentials in the query string before any
// mutation proceeds.
func (h *ListingHandler) requireAdmin(c *fiber.Ctx) error {
	username := c.Query("username")
	password := c.Query("password")
	if err := h.adminService.Verify(c.Context(), username, password); err != nil {
		if errors.Is(err, admindomain.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		log.Error("admin verification failed", zap.String("username", username), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to verify credentials")
	}
	return nil
}

func (h *ListingHandler) createListing(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return err
	}

	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Name == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "name is required")
	}

	listing, err := h.auctionService.CreateListing(c.Context(), application.CreateListingDTO{
		ID:            req.ID,
		Name:          req.Name,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStartingPrice) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, domain.ErrInvalidStartingPrice.Error())
		}
		log.Error("failed to create listing", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create auction item")
	}

	return c.Status(fiber.StatusCreated).JSON(toListingResponse(listing))
}

func (h *ListingHandler) deleteListing(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return err
	}

	id := c.Params("id")
	if err := h.auctionService.DeleteListing(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Auction item not found."})
		}
		log.Error("failed to delete listing", zap.String("listingID", id), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete auction item")
	}

	return c.JSON(fiber.Map{"detail": "Auction item deleted successfully"})
}

func (h *ListingHandler) listListings(c *fiber.Ctx) error {
	listings, err := h.auctionService.ListListings(c.Context())
	if err != nil {
		log.Error("failed to list listings", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list auction items")
	}

	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return c.JSON(out)
}

func (h *ListingHandler) getListing(c *fiber.Ctx) error {
	id := c.Params("id")
	listing, err := h.auctionService.GetListing(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Auction item not found."})
		}
		log.Error("failed to get listing", zap.String("listingID", id), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to get auction item")
	}
	return c.JSON(toListingResponse(listing))
}
