package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed-window per-client limiter for the inspection API.
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	counters map[string]int
	windowID int64
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		counters:    make(map[string]int),
	}
}

// Allow counts one request for the client and reports whether it fits in the
// current window. Counters reset wholesale when the window rolls over.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	window := time.Now().UnixNano() / int64(rl.window)
	if window != rl.windowID {
		rl.windowID = window
		rl.counters = make(map[string]int)
	}

	if rl.counters[client] >= rl.maxRequests {
		return false
	}
	rl.counters[client]++
	return true
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		client := c.Get("X-Forwarded-For")
		if client == "" {
			client = c.IP()
		}

		if !rl.Allow(client) {
			log.Warn().
				Str("ip", client).
				Str("path", c.Path()).
				Msg("Rate limit exceeded")
			c.Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())+1))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded",
			})
		}

		return c.Next()
	}
}
