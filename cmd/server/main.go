package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"photofolio_api/internal/handlers"
	appMiddleware "photofolio_api/internal/middleware"
	"photofolio_api/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := services.CloseDB(db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Optional Redis cache for the public package listing
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed, caching disabled: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Optional storage for blog image uploads
	var storageSvc *services.StorageService
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	bucketName := os.Getenv("STORAGE_BUCKET")
	if credPath != "" && bucketName != "" {
		storageSvc, err = services.NewStorageService(context.Background(), credPath, bucketName)
		if err != nil {
			log.Printf("Warning: storage initialization failed, uploads disabled: %v", err)
			storageSvc = nil
		}
	} else {
		log.Println("Warning: storage not configured, uploads disabled")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	emailSvc := services.NewEmailService()
	gateway := services.NewStripeService()
	checkoutSvc := services.NewCheckoutService(
		db, gateway, emailSvc,
		os.Getenv("FRONTEND_URL"),
		os.Getenv("CHECKOUT_CURRENCY"),
	)
	dashboardSvc := services.NewDashboardService(db)
	postSvc := services.NewPostService(db)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = appMiddleware.JSONErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{frontendOrigin()},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db)
	packageHandler := handlers.NewPackageHandler(db, cache)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc, gateway)
	bookingHandler := handlers.NewBookingHandler(db, checkoutSvc)
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc)
	contactHandler := handlers.NewContactHandler(emailSvc)
	postHandler := handlers.NewPostHandler(postSvc)
	uploadHandler := handlers.NewUploadHandler(storageSvc)

	// Public routes
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.POST("/auth/google", authHandler.GoogleLogin)
	e.GET("/packages", packageHandler.List)
	e.GET("/packages/:id", packageHandler.Show)
	e.POST("/checkout/session", checkoutHandler.CreateSession)
	e.POST("/checkout/manual", checkoutHandler.CreateManual)
	e.POST("/webhooks/stripe", checkoutHandler.HandleStripeWebhook)
	e.POST("/contacts", contactHandler.Post)
	e.GET("/posts", postHandler.List)
	e.GET("/posts/related", postHandler.GetRelated)
	e.GET("/posts/:slug", postHandler.GetBySlug)

	// Admin routes
	admin := e.Group("", appMiddleware.RequireAuth(jwtSecret))
	admin.POST("/packages", packageHandler.Create)
	admin.PUT("/packages/:id", packageHandler.Update)
	admin.DELETE("/packages/:id", packageHandler.Delete)
	admin.GET("/bookings", bookingHandler.List)
	admin.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	admin.DELETE("/bookings/:id", bookingHandler.Delete)
	admin.GET("/dashboard/stats", dashboardHandler.Stats)
	admin.POST("/posts", postHandler.Create)
	admin.PUT("/posts/:id", postHandler.Update)
	admin.DELETE("/posts/:id", postHandler.Delete)
	admin.POST("/uploads/sign", uploadHandler.Sign)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}

func frontendOrigin() string {
	if origin := os.Getenv("FRONTEND_URL"); origin != "" {
		return origin
	}
	return "*"
}
