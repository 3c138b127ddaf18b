package main

import (
	"bufio"
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"market-sim/src/handlers"
	"market-sim/src/logger"
	"market-sim/src/routes"
	"market-sim/src/sim"
)

func main() {
	logger.Init()
	defer logger.Close()

	log.Info().Msg("Initializing market simulation")

	cfg := sim.FromEnv()
	cfg.Signal = loadSignal(cfg.Seed)

	market := sim.New(cfg)

	instrument := os.Getenv("INSTRUMENT")
	if instrument == "" {
		instrument = "SIM"
	}
	marketHandler := handlers.NewMarketHandler(market, instrument)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, marketHandler)

	port := ":8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	serverError := make(chan error, 1)
	go func() {
		if err := app.Listen(port); err != nil {
			// edge case: ignore shutdown errors, only report real errors
			if err.Error() != "server is shutting down" {
				serverError <- err
			}
		}
	}()

	go runSimulation(market, marketHandler)

	log.Info().
		Str("port", port).
		Str("instrument", instrument).
		Strs("endpoints", []string{
			"GET /api/v1/orderbook",
			"GET /api/v1/state",
			"GET /api/v1/trades",
			"GET /api/v1/series",
			"GET /health",
		}).
		Msg("Market simulation started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", port).
			Str("hint", "Port may be already in use. Try: PORT=3000 go run main.go").
			Msg("Server failed to start")
	case <-quit:
		log.Info().Msg("Received shutdown signal, shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Msg("Shutdown timeout exceeded")
		} else {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}
}

// runSimulation drives the market one tick per interval until the sentiment
// signal is exhausted; the HTTP surface keeps serving the final state.
func runSimulation(market *sim.Market, marketHandler *handlers.MarketHandler) {
	tickInterval := 5 * time.Millisecond
	if env := os.Getenv("TICK_INTERVAL"); env != "" {
		if parsed, err := time.ParseDuration(env); err == nil && parsed > 0 {
			tickInterval = parsed
		}
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		result, ok := market.Tick()
		if !ok {
			state := market.State()
			log.Info().
				Int("ticks_completed", market.CurrentTick()).
				Float64("final_mid_price", state.MidPrice).
				Int64("final_spread", state.Spread).
				Int64("remaining_product", state.RemainingProduct).
				Msg("Simulation complete")
			return
		}
		marketHandler.Record(result)
	}
}

// loadSignal reads the sentiment sequence from SIGNAL_FILE (one value per
// line), falling back to a synthetic random walk of SIM_TICKS steps.
func loadSignal(seed int64) []float64 {
	if path := os.Getenv("SIGNAL_FILE"); path != "" {
		if signal, err := readSignalFile(path); err != nil {
			log.Error().Err(err).Str("signal_file", path).Msg("Failed to read signal file, using synthetic signal")
		} else {
			log.Info().Str("signal_file", path).Int("ticks", len(signal)).Msg("Sentiment signal loaded")
			return signal
		}
	}

	ticks := 500
	if env := os.Getenv("SIM_TICKS"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			ticks = parsed
		}
	}
	return syntheticSignal(ticks, seed)
}

func readSignalFile(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var signal []float64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		value, err := strconv.ParseFloat(line, 64)
		// edge case: interpolated sentiment exports may contain gaps
		if err != nil || math.IsNaN(value) {
			continue
		}
		signal = append(signal, value)
	}
	return signal, scanner.Err()
}

// syntheticSignal is a clamped random walk in [-1, 1], good enough to drive
// the sentiment-aware strategies without an external data file.
func syntheticSignal(ticks int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	signal := make([]float64, ticks)
	var value float64
	for i := range signal {
		value += rng.NormFloat64() * 0.1
		if value > 1 {
			value = 1
		}
		if value < -1 {
			value = -1
		}
		signal[i] = value
	}
	return signal
}
