package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"booking/internal/domain"
	"booking/internal/handler"
	"booking/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler *handler.BookingHandler
	DriverHandler  *handler.DriverHandler
	AdminHandler   *handler.AdminHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Logger         logrus.FieldLogger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes. Every route needs the gateway-stamped caller identity.
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity())
	v1.Use(middleware.NewRelicIdentity())
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Logger))
	{
		// Rider booking routes.
		bookings := v1.Group("/bookings", middleware.RequireRole(domain.RoleRider))
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("/me", deps.BookingHandler.GetMyBookings)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.PUT("/:id/cancel", deps.BookingHandler.CancelBooking)
		}

		// Driver booking routes.
		driver := v1.Group("/driver/bookings", middleware.RequireRole(domain.RoleDriver))
		{
			driver.GET("/available", deps.DriverHandler.GetAvailable)
			driver.GET("/me", deps.DriverHandler.GetMyBookings)
			driver.GET("/active", deps.DriverHandler.GetActive)
			driver.GET("/:id", deps.DriverHandler.GetBooking)
			driver.PUT("/:id/accept", deps.DriverHandler.AcceptBooking)
			driver.PUT("/:id/start", deps.DriverHandler.StartRide)
			driver.PUT("/:id/complete", deps.DriverHandler.CompleteRide)
		}

		// Admin routes.
		admin := v1.Group("/admin/bookings", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("", deps.AdminHandler.GetAll)
			admin.GET("/:id", deps.AdminHandler.GetBooking)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("/rider/create-intent", middleware.RequireRole(domain.RoleRider), deps.PaymentHandler.CreatePaymentIntent)
			payments.POST("/driver/:id/complete", middleware.RequireRole(domain.RoleDriver), deps.PaymentHandler.MarkCashComplete)

			parties := payments.Group("", middleware.RequireRole(domain.RoleRider, domain.RoleDriver))
			parties.POST("", deps.PaymentHandler.ConfirmPayment)
			parties.POST("/:id/failed", deps.PaymentHandler.MarkFailed)
			parties.GET("/:id", deps.PaymentHandler.GetPayment)
			parties.GET("/:id/receipt", deps.PaymentHandler.GetReceipt)
		}
	}

	return router
}
