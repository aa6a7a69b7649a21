package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/controllers"
	"github.com/bantay-barangay/backend/internal/middleware"
	"github.com/bantay-barangay/backend/internal/services"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, client backend.Service) {
	// Initialize services
	authService := services.NewAuthService(client)
	reportService := services.NewReportService(client)

	// Initialize controllers
	authController := controllers.NewAuthController(authService)
	reportController := controllers.NewReportController(reportService)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/logout", authController.Logout)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// Reports
			reports := protected.Group("/reports")
			{
				reports.POST("", reportController.Submit)
				reports.GET("/:id", reportController.GetReport)
			}

			// Resident history view
			protected.GET("/my-reports", reportController.GetMyReports)

			// Official-only review surface
			official := protected.Group("/reports")
			official.Use(middleware.RequireOfficial())
			{
				official.GET("", reportController.GetReports)
				official.POST("/:id/in-progress", reportController.MarkInProgress)
				official.POST("/:id/resolve", reportController.Resolve)
				official.POST("/:id/reject", reportController.Reject)
			}
		}
	}
}
