package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"course-market/internal/auth"
	"course-market/internal/config"
	"course-market/internal/database"
	"course-market/internal/handlers"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret, cfg.App.JWTRefreshSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database.GetDB())
	courseHandler := handlers.NewCourseHandler(database.GetDB())
	purchaseHandler := handlers.NewPurchaseHandler(database.GetDB())
	referralHandler := handlers.NewReferralHandler(database.GetDB())
	dashboardHandler := handlers.NewDashboardHandler(database.GetDB(), cfg.App.FrontendURL)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		cfg.App.FrontendURL,
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated profile route
	authProtected := router.Group("/api/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/profile", authHandler.GetProfile)
	}

	// Catalog routes: public, but purchase flags appear when a token is sent
	courseRoutes := router.Group("/api/courses")
	courseRoutes.Use(auth.OptionalAuthMiddleware())
	{
		courseRoutes.GET("", courseHandler.GetCourses)
		courseRoutes.GET("/latest", courseHandler.GetLatestCourses)
		courseRoutes.GET("/:id", courseHandler.GetCourseByID)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Purchase endpoints
		api.POST("/purchases", purchaseHandler.InitiatePurchase)
		api.POST("/purchases/:id/pay", purchaseHandler.PayPurchase)
		api.GET("/purchases", purchaseHandler.GetPurchases)

		// Referral endpoints
		api.GET("/referrals", referralHandler.GetReferrals)
		api.GET("/referrals/stats", referralHandler.GetReferralStats)

		// Dashboard endpoint
		api.GET("/dashboard", dashboardHandler.GetDashboard)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
