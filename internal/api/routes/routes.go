// internal/api/routes/routes.go
package routes

import (
	"stall-market-api-server/internal/api/handlers"
	"stall-market-api-server/internal/api/middleware"
	"stall-market-api-server/internal/auth"
	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/s3"
	"stall-market-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps bundles everything the router needs.
type Deps struct {
	DB         *mongo.Database
	Stalls     market.StallRepository
	Vendors    market.VendorRepository
	Registry   *market.Registry
	Booking    *market.BookingService
	License    *market.LicenseService
	Orders     *market.OrderService
	S3Uploader *s3.Uploader
	Hub        *socket.Hub
}

// SetupRouter wires the handlers onto the gin engine.
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	authHandler := &handlers.AuthHandler{DB: deps.DB, Vendors: deps.Vendors}
	stallHandler := &handlers.StallHandler{Registry: deps.Registry, Hub: deps.Hub}
	bookingHandler := &handlers.BookingHandler{Booking: deps.Booking, Vendors: deps.Vendors, Stalls: deps.Stalls, Hub: deps.Hub}
	licenseHandler := &handlers.LicenseHandler{License: deps.License, Vendors: deps.Vendors, S3Uploader: deps.S3Uploader}
	vendorHandler := &handlers.VendorHandler{Vendors: deps.Vendors, S3Uploader: deps.S3Uploader}
	orderHandler := &handlers.OrderHandler{Orders: deps.Orders, Vendors: deps.Vendors}
	webSocketHandler := &handlers.WebSocketHandler{Hub: deps.Hub}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket route for live occupancy updates
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === ROUTES WITHOUT AUTHENTICATION ===

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/vendor/register", authHandler.RegisterVendor)
			authRoutes.POST("/vendor/login", authHandler.LoginVendor)
			authRoutes.POST("/user/register", authHandler.RegisterUser)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Public map and catalog
		public := apiV1.Group("/")
		{
			public.GET("/stalls", stallHandler.GetAllStalls)
			public.GET("/stalls/:id", stallHandler.GetStallByID)
			public.GET("/products", vendorHandler.GetCatalog)
		}

		// === PROTECTED ROUTES ===

		// Vendor dashboard and lifecycle operations
		vendorRoutes := apiV1.Group("/vendor")
		vendorRoutes.Use(middleware.Authenticate())
		vendorRoutes.Use(middleware.Authorize(auth.RoleVendor))
		{
			vendorRoutes.GET("/dashboard", bookingHandler.Dashboard)
			vendorRoutes.GET("/profile", vendorHandler.GetProfile)
			vendorRoutes.PUT("/profile", vendorHandler.UpdateProfile)

			// Booking lifecycle
			vendorRoutes.POST("/stalls/:id/claim", bookingHandler.ClaimStall)
			vendorRoutes.POST("/stalls/:id/confirm", bookingHandler.ConfirmBooking)
			vendorRoutes.POST("/stalls/:id/release", bookingHandler.ReleaseStall)
			vendorRoutes.POST("/attendance", bookingHandler.MarkAttendance)

			// License lifecycle
			vendorRoutes.POST("/license/apply", licenseHandler.Apply)
			vendorRoutes.GET("/license", licenseHandler.GetMyLicense)

			// Product catalog
			products := vendorRoutes.Group("/products")
			{
				products.POST("/", vendorHandler.CreateProduct)
				products.PUT("/:productId", vendorHandler.UpdateProduct)
				products.DELETE("/:productId", vendorHandler.DeleteProduct)
			}

			// Received orders
			vendorRoutes.GET("/orders", orderHandler.GetVendorOrders)
			vendorRoutes.POST("/orders/:orderId/complete", orderHandler.CompleteOrder)
		}

		// Buyer routes
		userRoutes := apiV1.Group("/user")
		userRoutes.Use(middleware.Authenticate())
		userRoutes.Use(middleware.Authorize(auth.RoleUser))
		{
			userRoutes.POST("/orders", orderHandler.PlaceOrder)
			userRoutes.GET("/orders", orderHandler.GetMyOrders)
		}

		// Admin routes
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(auth.RoleAdmin))
		{
			stalls := admin.Group("/stalls")
			{
				stalls.POST("/", stallHandler.CreateStall)
				stalls.POST("/bulk", stallHandler.CreateStallsBulk)
				stalls.PUT("/:id/position", stallHandler.UpdateStallPosition)
				stalls.DELETE("/:id", stallHandler.DeleteStall)
				stalls.POST("/reset", stallHandler.ResetAllStalls)
				stalls.DELETE("/", stallHandler.ClearAllStalls)
			}

			admin.GET("/vendors", vendorHandler.GetAllVendors)
			admin.GET("/history", stallHandler.GetHistory)

			licenses := admin.Group("/licenses")
			{
				licenses.GET("/requests", licenseHandler.GetPendingApplications)
				licenses.POST("/:vendorId/approve", licenseHandler.Approve)
			}
		}
	}

	return router
}
