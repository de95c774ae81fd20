package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ammara9/GymBooking/booking"
	"github.com/Ammara9/GymBooking/config"
	"github.com/Ammara9/GymBooking/db"
	"github.com/Ammara9/GymBooking/metrics"
	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"
	"github.com/Ammara9/GymBooking/repository"
	"github.com/Ammara9/GymBooking/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found") // Non-fatal in production
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Connect to database
	database, err := db.Initialize(ctx, db.Config{DSN: cfg.DSN(), MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer database.Close()

	// Initialize database schema
	if err := db.InitSchema(ctx, database); err != nil {
		log.Fatalf("Error initializing database schema: %v", err)
	}

	// Seed roles and default accounts
	if cfg.Seed.Enabled {
		if err := db.Seed(ctx, database, seedAccounts(cfg.Seed)); err != nil {
			log.Fatalf("Error seeding initial data: %v", err)
		}
	}

	users := repository.NewUserRepository(database)
	service := booking.NewService(
		repository.NewGymClassRepository(database),
		repository.NewAttendanceRepository(database),
		users,
	)

	// Initialize router
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Setup routes
	err = routes.SetupRoutes(r, routes.Dependencies{
		DB:      database,
		Service: service,
		Users:   users,
		Roles:   users,
		Tokens:  middleware.NewTokenService(database, []byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Metrics: metrics.New(),
	})
	if err != nil {
		log.Fatalf("Error setting up routes: %v", err)
	}

	// Run server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
}

func seedAccounts(cfg config.SeedConfig) []db.SeedAccount {
	return []db.SeedAccount{
		{
			Email:     cfg.AdminEmail,
			Password:  cfg.AdminPassword,
			FirstName: "Admin",
			LastName:  "Gymbokning",
			Role:      models.RoleAdmin,
		},
		{
			Email:     cfg.UserEmail,
			Password:  cfg.UserPassword,
			FirstName: "User",
			LastName:  "Gymbokning",
			Role:      models.RoleUser,
		},
	}
}

// corsConfig allows the configured origins, or every origin when none are set.
func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		middleware.RequestIDHeader,
	}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	config.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
	}
	return config
}
