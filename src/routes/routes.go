package routes

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"market-sim/src/handlers"
	"market-sim/src/middleware"
)

func SetupRoutes(app *fiber.App, marketHandler *handlers.MarketHandler) {
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if os.Getenv("RATE_LIMIT_DISABLED") != "1" {
		maxRequests := 100
		if env := os.Getenv("RATE_LIMIT_MAX"); env != "" {
			if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
				maxRequests = parsed
			}
		}
		window := time.Second
		if env := os.Getenv("RATE_LIMIT_WINDOW"); env != "" {
			if parsed, err := time.ParseDuration(env); err == nil && parsed > 0 {
				window = parsed
			}
		}
		api.Use(middleware.NewRateLimiter(maxRequests, window).Middleware())
	}

	api.Get("/orderbook", marketHandler.GetOrderBook)
	api.Get("/state", marketHandler.GetState)
	api.Get("/trades", marketHandler.GetTrades)
	api.Get("/series", marketHandler.GetSeries)

	app.Get("/health", marketHandler.HealthCheck)
}
