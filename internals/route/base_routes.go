package routes

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	database "rojasfit_backend/internals/databases"
)

const healthTimeout = 2 * time.Second

func BaseRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("RojasFit API")
	})

	// ❤️ Health check (anti-cold start)
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK
		if err := database.Ping(ctx, d.DB); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})

	app.Get("/health/detailed", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		dbOK := database.Ping(ctx, d.DB) == nil
		cacheOK := d.Cache != nil && d.Cache.Ping(ctx) == nil

		httpStatus := fiber.StatusOK
		if !dbOK {
			httpStatus = fiber.StatusServiceUnavailable
		}
		return c.Status(httpStatus).JSON(fiber.Map{
			"database": dbOK,
			"cache": fiber.Map{
				"kind": d.CacheKind,
				"ok":   cacheOK,
			},
			"storage":        d.StorageKind,
			"kafka":          d.KafkaOn,
			"mail":           d.MailOn,
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	})
}
