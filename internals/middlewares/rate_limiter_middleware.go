package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "rojasfit_backend/internals/helpers"
)

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(100, time.Minute, "Terlalu banyak permintaan. Silakan coba lagi nanti.")
}

// SubmitRateLimiter: POST /api/payments dan checkout (lebih ketat)
func SubmitRateLimiter() fiber.Handler {
	return newLimiter(10, time.Minute, "Terlalu banyak pengajuan pembayaran. Coba beberapa saat lagi.")
}
