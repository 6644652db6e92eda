package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/container"
	"github.com/joshua-takyi/roam/internal/handlers"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "roam-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.AuthenticateUser(container.UserService))
		v1.POST("/refresh", handlers.RefreshToken(container.UserService))
		v1.POST("/logout", handlers.Logout())
		v1.GET("/auth/google", handlers.GoogleAuth(container.UserService))
		v1.GET("/auth/google/callback", handlers.GoogleAuthCallback(container.UserService))

		// The catalog and its availability are browsable without a session.
		v1.GET("/experiences", handlers.ListExperiences(container.ExperienceService))
		v1.GET("/experiences/:id", handlers.GetExperienceHandler(container.ExperienceService))
		v1.GET("/experiences/:id/availability", handlers.GetAvailability(container.AvailabilityService))
		v1.GET("/experiences/:id/occupancy", handlers.GetOccupancy(container.AvailabilityService))
		v1.GET("/experiences/host/:host_id", handlers.ListExperiencesByHost(container.ExperienceService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))

	userRoutes := protected.Group("/users")
	{
		protected.GET("/profile", func(c *gin.Context) {
			user, exist := c.Get("user")
			if !exist {
				c.JSON(401, gin.H{"error": "Unauthorized"})
				return
			}

			enhancedClaims, ok := user.(*helpers.EnhancedClaims)
			if !ok {
				c.JSON(500, gin.H{"error": "Invalid user claims format"})
				return
			}

			c.JSON(200, gin.H{
				"status":   "OK",
				"user_id":  enhancedClaims.UserID,
				"email":    enhancedClaims.Email,
				"role":     enhancedClaims.GetSafeRole(),
				"username": enhancedClaims.Username,
				"is_admin": enhancedClaims.IsAdmin(),
			})
		})

		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.DELETE("/:id", handlers.DeleteUser(container.UserService))
		userRoutes.POST("/avatar", handlers.UploadAvatar(container.UserService))
	}

	experienceRoutes := protected.Group("/experiences")
	{
		experienceRoutes.POST("/", handlers.CreateExperienceHandler(container.ExperienceService, container.UserService))
		experienceRoutes.PATCH("/:id", handlers.UpdateExperienceHandler(container.ExperienceService))
		experienceRoutes.DELETE("/:id", handlers.DeleteExperienceHandler(container.ExperienceService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/", handlers.CreateBookingHandler(container.BookingService, container.UserService))
		bookingRoutes.GET("/", handlers.ListGuestBookings(container.BookingService))
		bookingRoutes.GET("/host", handlers.ListHostBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBookingHandler(container.BookingService))
		bookingRoutes.PATCH("/:id/status", handlers.UpdateBookingStatusHandler(container.BookingService))
		bookingRoutes.POST("/:id/cancel", handlers.CancelBookingHandler(container.BookingService))
		bookingRoutes.POST("/:id/messages", handlers.SendMessageHandler(container.MessageService, container.UserService))
		bookingRoutes.GET("/:id/messages", handlers.ListMessagesHandler(container.MessageService))
	}

	savedRoutes := protected.Group("/saved")
	{
		savedRoutes.GET("/", handlers.GetSavedHandler(container.SavedService))
		savedRoutes.POST("/:id", handlers.SaveExperienceHandler(container.SavedService))
		savedRoutes.DELETE("/:id", handlers.UnsaveExperienceHandler(container.SavedService))
	}

	return r
}
