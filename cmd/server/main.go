package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/saferoute/backend/internal/delivery/http"
	"github.com/saferoute/backend/internal/repository/postgres"
	"github.com/saferoute/backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Running without persistence")
		pool = nil
	} else {
		defer pool.Close()
		log.Println("Connected to PostgreSQL")
	}

	// Dependency Injection: Repositories
	var repo service.EventRepository
	if pool != nil {
		repo = postgres.NewPostgresRepository(pool)
	} else {
		repo = postgres.NewMockRepository()
	}

	// Dependency Injection: Services
	mlBridge := service.NewMLBridge(cfg.MLServiceURL)
	directions := service.NewOSRMDirections(cfg.OSRMBaseURL)
	optimizer := service.NewRouteOptimizer(mlBridge, directions)
	assistant := service.NewTemplateAssistant()
	notifier := service.NewLogNotifier()
	sessions := service.NewSessionManager(mlBridge, optimizer, assistant, notifier, repo)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "SafeRoute API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	http.SetupRoutes(app, sessions, mlBridge, repo)

	// Graceful shutdown
	go func() {
		port := cfg.Port
		if port == "" {
			port = "8080"
		}
		log.Printf("Server starting on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	sessions.WaitBackground()
	log.Println("Server exited gracefully")
}

type Config struct {
	DatabaseURL  string
	MLServiceURL string
	OSRMBaseURL  string
	Port         string
	Env          string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		MLServiceURL: getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		OSRMBaseURL:  getEnv("OSRM_URL", "https://router.project-osrm.org"),
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
