// cmd/api/main.go
package main

import (
	"context"
	"log"

	"stall-market-api-server/config"
	"stall-market-api-server/internal/api/routes"
	"stall-market-api-server/internal/auth"
	"stall-market-api-server/internal/database"
	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/models"
	"stall-market-api-server/internal/s3"
	"stall-market-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load configuration (.env overrides config.yaml)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.Init(cfg.JWT.Secret, cfg.JWT.Expiration)

	// 2. Connect MongoDB and prepare indexes
	db, err := database.Connect(cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// 3. Seed the admin account from configuration
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// 4. S3 uploader for license photos and product images
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to create S3 uploader: %v", err)
	}

	// 5. Repositories and lifecycle services
	stallRepo := market.NewMongoStallRepository(db)
	vendorRepo := market.NewMongoVendorRepository(db)
	historyRepo := market.NewMongoHistoryRepository(db)

	registry := market.NewRegistry(stallRepo, vendorRepo, historyRepo)
	booking := market.NewBookingService(stallRepo, vendorRepo, historyRepo, cfg.Booking.AttendanceWindow())
	license := market.NewLicenseService(vendorRepo)
	orders := market.NewOrderService(vendorRepo)

	// 6. WebSocket hub and the expiry sweeper
	wsHub := socket.NewHub()

	sweeper := &market.Sweeper{
		Booking:  booking,
		Interval: cfg.Booking.SweepInterval(),
		OnRelease: func(stall models.Stall) {
			wsHub.BroadcastEvent("stall_released", stall.ID.Hex())
		},
	}
	go sweeper.Run(context.Background())

	// 7. Router and server
	router := routes.SetupRouter(routes.Deps{
		DB:         db,
		Stalls:     stallRepo,
		Vendors:    vendorRepo,
		Registry:   registry,
		Booking:    booking,
		License:    license,
		Orders:     orders,
		S3Uploader: s3Uploader,
		Hub:        wsHub,
	})

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
