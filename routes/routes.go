package routes

import (
	"log"
	"os"

	controller "mailprobe/controllers"
	"mailprobe/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires the HTTP surface and returns the shared engine so
// the worker can use the same verifier instance.
func SetupRoutes(app *fiber.App, db *gorm.DB) (*controller.Engine, error) {
	verifyLogger := log.New(os.Stdout, "VERIFY: ", log.Ldate|log.Ltime|log.Lshortfile)

	engine, err := controller.NewEngine(db, verifyLogger)
	if err != nil {
		return nil, err
	}

	cache := middleware.SharedStorage()
	verifyController := controller.NewVerifyController(db, engine, cache, verifyLogger)
	jobController := controller.NewJobController(db, log.New(os.Stdout, "JOB: ", log.LstdFlags))
	proxyController := controller.NewProxyController(db, engine, log.New(os.Stdout, "PROXY: ", log.LstdFlags))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group with versioning, key auth and rate limiting
	v1 := app.Group("/v1", middleware.APIKeyAuth(), middleware.RateLimiter(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	v1.Post("/check_email", verifyController.CheckEmail)

	v1.Post("/bulk", jobController.CreateJob)
	v1.Get("/bulk/:id", jobController.GetJob)
	v1.Get("/bulk/:id/results", jobController.GetJobResults)

	v1.Get("/proxies", proxyController.ListProxies)
	v1.Post("/proxies", proxyController.CreateProxy)
	v1.Delete("/proxies/:id", proxyController.DeleteProxy)

	// WebSocket route for job progress
	v1.Get("/bulk/:id/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(jobController.HandleJobProgressWS))

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("API routes initialized successfully")
	return engine, nil
}
