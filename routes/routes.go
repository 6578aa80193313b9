package routes

import (
	"net/http"
	"time"

	"jobnest/handlers"
	"jobnest/middleware"
	"jobnest/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.AuthMiddleware())
		api.POST("", bh.CreateBooking)
		api.GET("/:id", bh.GetBooking)
		api.GET("/:id/actions", bh.GetPermittedActions)
		api.GET("/:id/invoice", bh.GetInvoice)

		api.POST("/:id/accept", bh.Accept)
		api.POST("/:id/reject", bh.Reject)
		api.POST("/:id/cancel", bh.Cancel)
		api.POST("/:id/start", bh.Start)
		api.POST("/:id/initiate-completion", bh.InitiateCompletion)
		api.POST("/:id/verify-completion", bh.VerifyCompletion)
	}
}

// RegisterAdminRoutes sets up endpoints for moderation operations.
func RegisterAdminRoutes(r *gin.Engine, ah *handlers.AdminHandler) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
		adminGroup.GET("/providers/:id", ah.GetProvider)
		adminGroup.POST("/providers/:id/status", ah.SetProviderStatus)
		adminGroup.GET("/providers/:id/audit", ah.ListProviderAudit)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, ah *handlers.AdminHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, bh)
	RegisterAdminRoutes(r, ah)
}
