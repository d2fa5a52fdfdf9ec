package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	adminapp "github.com/rmontero/liveauction/internal/admin/application"
	admindomain "github.com/rmontero/liveauction/internal/admin/domain"
	adminhttp "github.com/rmontero/liveauction/internal/admin/infra/http"
	adminmemory "github.com/rmontero/liveauction/internal/admin/infra/repository/memory"
	adminpostgres "github.com/rmontero/liveauction/internal/admin/infra/repository/postgres"
	"github.com/rmontero/liveauction/internal/auction/application"
	"github.com/rmontero/liveauction/internal/auction/domain"
	auctionhttp "github.com/rmontero/liveauction/internal/auction/infra/http"
	auctionmemory "github.com/rmontero/liveauction/internal/auction/infra/repository/memory"
	auctionpostgres "github.com/rmontero/liveauction/internal/auction/infra/repository/postgres"
	auctionws "github.com/rmontero/liveauction/internal/auction/infra/websocket"
	"github.com/rmontero/liveauction/internal/shared/db"
	"github.com/rmontero/liveauction/internal/shared/db/migrations"
	"github.com/rmontero/liveauction/internal/shared/httpserver"
	"github.com/rmontero/liveauction/internal/shared/logger"
	sharedws "github.com/rmontero/liveauction/internal/shared/websocket"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting liveauction server...")

	ctx := context.Background()

	var listingRepo domain.ListingRepository
	var adminRepo admindomain.AdminRepository

	if os.Getenv("STANDALONE") == "true" {
		// No database: everything lives in process memory. Handy for demos
		// and local front-end work.
		log.Info("Running in standalone mode with in-memory stores")
		listingRepo = auctionmemory.NewListingRepository()
		adminRepo = adminmemory.NewAdminRepository()
	} else {
		log.Info("Running database migrations...")
		if err := migrations.RunMigrations(); err != nil {
			log.Fatal("Database migration failed", zap.Error(err))
		}
		log.Info("Database migrations completed successfully.")

		pool, err := db.GetPostgresDBPool(ctx)
		if err != nil {
			log.Fatal("Database connection failed", zap.Error(err))
		}
		defer pool.Close()

		listingRepo = auctionpostgres.NewListingRepository(pool)
		adminRepo = adminpostgres.NewAdminRepository(pool)
	}

	hub := sharedws.NewHub()
	broadcaster := auctionws.NewHubBroadcaster(hub)

	placeBidUC := application.NewPlaceBidUseCase(listingRepo, broadcaster)
	catalogUC := application.NewListingCatalogUseCase(listingRepo, broadcaster)
	auctionService := application.NewAuctionService(placeBidUC, catalogUC)
	adminService := adminapp.NewAdminService(adminRepo)

	server := httpserver.NewServer(
		adminhttp.NewAdminHandler(adminService),
		auctionhttp.NewListingHandler(auctionService, adminService),
		auctionws.NewBidSessionHandler(auctionService, hub),
	)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	if err := server.Start(addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}

	hub.Shutdown()
}
