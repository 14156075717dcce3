package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prevozi/carpool-backend/internal/config"
	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/handlers"
	"github.com/prevozi/carpool-backend/internal/logger"
	"github.com/prevozi/carpool-backend/internal/middleware"
	"github.com/prevozi/carpool-backend/internal/observability"
	"github.com/prevozi/carpool-backend/internal/services"
	"github.com/prevozi/carpool-backend/pkg/jwt"
	"github.com/prevozi/carpool-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, cfg.Server.LogLevel)
	log.Info("Starting carpool backend")
	log.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Info("Database connection established")

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	routeRepository := database.NewRouteRepository(db)
	rideRepository := database.NewRideRepository(db)
	searchRepository := database.NewSearchRepository(db)

	// Initialize services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator()
	metrics := observability.New()

	routeService := services.NewRouteService(
		routeRepository,
		rideRepository,
		userRepository,
		phoneValidator,
		metrics,
		log,
		cfg.Search.MaxPageSize,
	)
	rideService := services.NewRideService(
		routeRepository,
		rideRepository,
		userRepository,
		phoneValidator,
		metrics,
		log,
	)
	searchService := services.NewSearchService(
		searchRepository,
		metrics,
		log,
		cfg.Search.DefaultRadiusKm,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtService, phoneValidator, userRepository, cfg, log)
	routeHandler := handlers.NewRouteHandler(routeService, log)
	rideHandler := handlers.NewRideHandler(rideService, log)
	searchHandler := handlers.NewSearchHandler(searchService, log)

	// Set up router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(log, metrics))
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			me := auth.Group("")
			me.Use(middleware.AuthMiddleware(jwtService))
			{
				me.GET("/me", authHandler.Me)
				me.PATCH("/me", authHandler.UpdateMe)
			}
		}

		// Route routes (all protected)
		routes := v1.Group("/routes")
		routes.Use(middleware.AuthMiddleware(jwtService))
		{
			routes.POST("", routeHandler.CreateRoute)
			routes.GET("/mine", routeHandler.ListMine)
			routes.GET("/upcoming", routeHandler.ListUpcoming)
			routes.GET("/search", searchHandler.Search)
			routes.GET("/:id", routeHandler.GetRoute)
			routes.POST("/:id/cancel", routeHandler.CancelRoute)
			routes.DELETE("/:id", routeHandler.DeleteRoute)
			routes.GET("/:id/passengers", routeHandler.ListPassengers)

			routes.POST("/:id/signup", rideHandler.SignUp)
			routes.POST("/:id/cancel-ride", rideHandler.CancelRide)
			routes.GET("/:id/my-ride", rideHandler.MyRideStatus)
		}

		// Ride routes (protected)
		rides := v1.Group("/rides")
		rides.Use(middleware.AuthMiddleware(jwtService))
		{
			rides.GET("/mine", rideHandler.ListMine)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited successfully")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
