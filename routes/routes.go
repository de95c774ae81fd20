package routes

import (
	"database/sql"

	"github.com/Ammara9/GymBooking/booking"
	"github.com/Ammara9/GymBooking/handlers"
	"github.com/Ammara9/GymBooking/metrics"
	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	DB      *sql.DB
	Service *booking.Service
	Users   handlers.UserStore
	Roles   handlers.RoleStore
	Tokens  *middleware.TokenService
	Metrics *metrics.Metrics
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, deps Dependencies) error {
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	r.Use(middleware.RequestID(), middleware.Metrics(deps.Metrics))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	gymClassHandler := handlers.NewGymClassHandler(deps.Service)
	bookingHandler := handlers.NewBookingHandler(deps.Service, deps.Metrics)
	roleHandler := handlers.NewRoleHandler(deps.Roles)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	requireAuth := middleware.AuthMiddleware(deps.Tokens, deps.Users)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.GET("/classes", middleware.OptionalAuth(deps.Tokens, deps.Users), gymClassHandler.ListClasses)

	// Protected routes
	protected := r.Group("/")
	protected.Use(requireAuth)
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.GetUserInfo)

		// Class and booking routes
		protected.GET("/classes/:id", gymClassHandler.GetClassDetails)
		protected.POST("/classes/:id/toggle-booking", bookingHandler.ToggleBooking)
		protected.GET("/bookings/upcoming", bookingHandler.GetUpcoming)
		protected.GET("/bookings/history", bookingHandler.GetHistory)
	}

	// Admin routes
	admin := r.Group("/")
	admin.Use(requireAuth, requireAdmin)
	{
		admin.POST("/classes", gymClassHandler.CreateClass)
		admin.PUT("/classes/:id", gymClassHandler.UpdateClass)
		admin.DELETE("/classes/:id", gymClassHandler.DeleteClass)

		// Role management
		admin.GET("/roles", roleHandler.GetRoles)
		admin.POST("/users/:id/roles", roleHandler.AssignRole)
	}

	return nil
}
