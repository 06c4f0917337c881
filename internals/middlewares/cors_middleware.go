// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	cartController "rojasfit_backend/internals/features/finance/carts/controller"
)

// CorsMiddleware membuat middleware CORS dari daftar origin di config.
func CorsMiddleware(origins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, " + cartController.HeaderCartToken,
		ExposeHeaders:    "X-Request-ID, " + cartController.HeaderCartToken,
		AllowCredentials: true,
	})
}
