// file: internals/features/finance/carts/route/cart_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	cartController "rojasfit_backend/internals/features/finance/carts/controller"
	"rojasfit_backend/internals/features/finance/carts/service"
)

// CartRoutes: keranjang anonim (X-Cart-Token), checkout butuh login.
func CartRoutes(api fiber.Router, svc *service.CartService, users cartController.UserFinder, auth fiber.Handler) {
	ctl := cartController.NewCartController(svc, users)

	cart := api.Group("/cart")
	{
		cart.Post("/", ctl.Create)
		cart.Get("/", ctl.Get)
		cart.Delete("/", ctl.Clear)
		cart.Put("/items/:courseId", ctl.AddItem)
		cart.Delete("/items/:courseId", ctl.RemoveItem)
		cart.Post("/checkout", auth, ctl.Checkout)
	}
}
