package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"gudangmitra/internal/caching"
	"gudangmitra/internal/handlers"
	"gudangmitra/internal/jobs"
	"gudangmitra/internal/jobs/background"
	"gudangmitra/internal/middleware"
	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"
	"gudangmitra/internal/services"
	"gudangmitra/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive restarts")
	}
	tokenTTL := envInt("TOKEN_TTL_SECONDS", 3600)
	refreshTTL := envInt("REFRESH_TTL_SECONDS", 7*24*3600)

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := envInt("REDIS_DB", 0)

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	itemRepo := repositories.NewItemRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	requestRepo := repositories.NewRequestRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	authSvc := services.NewAuthService(userRepo, cacheSvc, jwtSecret, tokenTTL, refreshTTL)
	userSvc := services.NewUserService(userRepo, minioSvc)
	inventorySvc := services.NewInventoryService(itemRepo, cacheSvc)
	categorySvc := services.NewCategoryService(categoryRepo, itemRepo)
	requestSvc := services.NewRequestService(requestRepo, userRepo, inventorySvc, cacheSvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	itemHandlers := handlers.NewItemHandlers(inventorySvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	requestHandlers := handlers.NewRequestHandlers(requestSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	alertSvc := jobs.NewLowStockAlertService(itemRepo)
	scheduler := background.NewJobScheduler(alertSvc)
	scheduler.Start()
	defer scheduler.Stop()

	// Echo instance
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Live)
	e.GET("/health/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for register/login)
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))
	protected.Use(middleware.RequireRevocationCheck(authSvc))

	protected.GET("/auth/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	// User routes
	protected.POST("/users", authHandlers.CreateUser, middleware.RequireRole(models.RoleAdmin))
	protected.GET("/users", userHandlers.ListUsers, middleware.RequireRole(models.RoleAdmin))
	protected.GET("/users/:id", userHandlers.GetUser)
	protected.PUT("/users/:id", userHandlers.UpdateUser, middleware.RequireRole(models.RoleAdmin))
	protected.DELETE("/users/:id", userHandlers.DeleteUser, middleware.RequireRole(models.RoleManager))
	protected.POST("/users/:id/avatar", userHandlers.UploadAvatar)

	// Item routes
	protected.GET("/items", itemHandlers.ListItems)
	protected.GET("/items/low-stock", itemHandlers.ListLowStock, middleware.RequireRole(models.RoleAdmin))
	protected.GET("/items/:id", itemHandlers.GetItem)
	protected.POST("/items", itemHandlers.CreateItem, middleware.RequireRole(models.RoleAdmin))
	protected.PUT("/items/:id", itemHandlers.UpdateItem, middleware.RequireRole(models.RoleAdmin))
	protected.POST("/items/:id/adjust", itemHandlers.AdjustStock, middleware.RequireRole(models.RoleAdmin))
	protected.DELETE("/items/:id", itemHandlers.DeleteItem, middleware.RequireRole(models.RoleManager))

	// Category routes
	protected.GET("/categories", categoryHandlers.ListCategories)
	protected.GET("/categories/:id", categoryHandlers.GetCategory)
	protected.POST("/categories", categoryHandlers.CreateCategory, middleware.RequireRole(models.RoleAdmin))
	protected.PUT("/categories/:id", categoryHandlers.UpdateCategory, middleware.RequireRole(models.RoleAdmin))
	protected.DELETE("/categories/:id", categoryHandlers.DeleteCategory, middleware.RequireRole(models.RoleAdmin))

	// Request routes
	protected.POST("/requests", requestHandlers.SubmitRequest)
	protected.GET("/requests", requestHandlers.ListRequests, middleware.RequireRole(models.RoleAdmin))
	protected.GET("/requests/mine", requestHandlers.ListMyRequests)
	protected.GET("/requests/:id", requestHandlers.GetRequest)
	protected.GET("/requests/:id/pdf", requestHandlers.ExportPDF)
	protected.PATCH("/requests/:id/status", requestHandlers.UpdateStatus, middleware.RequireRole(models.RoleAdmin))
	protected.POST("/requests/:id/delivered", requestHandlers.MarkDelivered, middleware.RequireRole(models.RoleAdmin))
	protected.DELETE("/requests/:id", requestHandlers.DeleteRequest)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Gudang Mitra server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
