package routes

import (
	"github.com/gin-gonic/gin"

	"medical-gallery-portal/internal/config"
	"medical-gallery-portal/internal/dashboard"
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/handlers"
	"medical-gallery-portal/internal/middleware"
	"medical-gallery-portal/internal/session"
)

// SetupRoutes configures the portal routes.
func SetupRoutes(router *gin.Engine, api *gallery.Client, store *session.Store, registry *dashboard.Registry, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(api, store, cfg)
	patientHandler := handlers.NewPatientHandler(registry)
	hospitalHandler := handlers.NewHospitalHandler(registry)

	ui := router.Group("/api/ui")
	{
		ui.GET("/session", authHandler.Session)
		ui.GET("/resolve", authHandler.Resolve)
		ui.GET("/backend-health", authHandler.BackendHealth)

		authRoutes := ui.Group("/auth")
		{
			authRoutes.POST("/otp/send", authHandler.SendOTP)
			authRoutes.POST("/otp/verify", authHandler.VerifyOTP)
			authRoutes.POST("/signin", authHandler.SignIn)
			authRoutes.POST("/signup", authHandler.SignUp)
			authRoutes.POST("/google", authHandler.GoogleSignIn)
			authRoutes.POST("/google/cancel", authHandler.GoogleCancelled)
			authRoutes.POST("/logout", authHandler.Logout)
		}

		patient := ui.Group("/patient")
		patient.Use(middleware.RequireRole(store, gallery.UserTypePatient))
		{
			patient.GET("/overview", patientHandler.Overview)
			patient.POST("/section", patientHandler.SetSection)
			patient.GET("/search", patientHandler.Search)
			patient.POST("/share", patientHandler.GenerateShareCode)
			patient.GET("/share/qr", patientHandler.ShareQR)
			patient.GET("/profile", patientHandler.Profile)
			patient.PUT("/profile", patientHandler.UpdateProfile)
			patient.POST("/records/:id/preview", patientHandler.OpenPreview)
			patient.GET("/preview/:handleId", patientHandler.PreviewBlob)
			patient.DELETE("/preview", patientHandler.ClosePreview)
			patient.GET("/records/:id/download", patientHandler.Download)
		}

		hospital := ui.Group("/hospital")
		hospital.Use(middleware.RequireRole(store, gallery.UserTypeHospital))
		{
			hospital.GET("/overview", hospitalHandler.Overview)
			hospital.POST("/section", hospitalHandler.SetSection)
			hospital.POST("/upload", hospitalHandler.Upload)
			hospital.POST("/patients", hospitalHandler.AddPatient)
			hospital.GET("/patients/:patientId/records", hospitalHandler.PatientRecords)
			hospital.GET("/search", hospitalHandler.Search)
			hospital.GET("/profile", hospitalHandler.Profile)
			hospital.PUT("/profile", hospitalHandler.UpdateProfile)
			hospital.POST("/records/:id/preview", hospitalHandler.OpenPreview)
			hospital.GET("/preview/:handleId", hospitalHandler.PreviewBlob)
			hospital.DELETE("/preview", hospitalHandler.ClosePreview)
			hospital.GET("/records/:id/download", hospitalHandler.Download)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
