package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"mailprobe/config"
	"mailprobe/middleware"
	"mailprobe/models"
	"mailprobe/routes"
	"mailprobe/utils"
	"mailprobe/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "MAILPROBE: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry; reporting is a no-op without a DSN
	if dsn := config.AppConfig.SentryDSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Fatalf("Failed to initialize Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Seed the proxy pool and the bootstrap API key
	if err := models.SeedProxies(config.DB, config.AppConfig.ProxySeeds, utils.Encrypt); err != nil {
		logger.Fatalf("Failed to seed proxies: %v", err)
	}
	if err := seedBootstrapKey(logger); err != nil {
		logger.Fatalf("Failed to seed API key: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Health check endpoint; registered before the routes so it stays in
	// front of their not-found catch-all
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Setup routes and build the verification engine
	engine, err := routes.SetupRoutes(app, config.DB)
	if err != nil {
		logger.Fatalf("Failed to build verification engine: %v", err)
	}

	// Initialize and start the verification worker
	verifyWorker := worker.NewVerifyWorker(config.DB, engine, log.New(os.Stdout, "WORKER: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go verifyWorker.Start(ctx)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// seedBootstrapKey stores the API_KEY credential so a fresh install has
// one working key. Absent API_KEY, a key is generated and printed once.
func seedBootstrapKey(logger *log.Logger) error {
	if key := config.AppConfig.APIKey; key != "" {
		prefix, ok := utils.SplitAPIKey(key)
		if !ok {
			return fmt.Errorf("API_KEY must look like mp_<prefix>_<secret>; leave it unset to have one generated")
		}
		hash, err := utils.HashAPIKey(key)
		if err != nil {
			return err
		}
		return models.SeedAPIKey(config.DB, "bootstrap", prefix, hash)
	}

	var count int64
	if err := config.DB.Model(&models.APIKey{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	key, prefix, hash, err := utils.GenerateAPIKey()
	if err != nil {
		return err
	}
	if err := models.SeedAPIKey(config.DB, "bootstrap", prefix, hash); err != nil {
		return err
	}
	logger.Printf("Generated bootstrap API key (store it now, it is not shown again): %s", key)
	return nil
}
