package router

import (
	"github.com/gin-gonic/gin"

	"bookingflow/internal/config"
	"bookingflow/internal/handler"
	"bookingflow/internal/middleware"
	"bookingflow/internal/port"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	verifier port.TokenVerifier,
	bookingH *handler.BookingHandler,
	jobH *handler.JobHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(verifier))

	// Booking routes
	bookings := protected.Group("/bookings")
	bookings.POST("", bookingH.Submit)
	bookings.GET("", bookingH.List)
	bookings.GET("/export", bookingH.Export)
	bookings.GET("/:id", bookingH.GetByID)
	bookings.POST("/:id/validate", bookingH.Validate)

	// Document routes
	documents := protected.Group("/documents")
	documents.GET("/:id/bookings", bookingH.ListByDocument)

	// Job routes
	jobs := protected.Group("/jobs")
	jobs.GET("", jobH.List)
	jobs.GET("/:id", jobH.GetByID)

	return r
}
