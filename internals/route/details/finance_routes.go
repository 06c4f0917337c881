// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	courseRepo "rojasfit_backend/internals/features/catalog/courses/repository"
	accessRoute "rojasfit_backend/internals/features/finance/access/route"
	accessService "rojasfit_backend/internals/features/finance/access/service"
	cartController "rojasfit_backend/internals/features/finance/carts/controller"
	cartRoute "rojasfit_backend/internals/features/finance/carts/route"
	cartService "rojasfit_backend/internals/features/finance/carts/service"
	paymentRoute "rojasfit_backend/internals/features/finance/payments/route"
	paymentService "rojasfit_backend/internals/features/finance/payments/service"
)

type FinanceServices struct {
	Payments *paymentService.PaymentClaimService
	Access   *accessService.AccessService
	Carts    *cartService.CartService
	Courses  *courseRepo.CourseRepository
	Users    cartController.UserFinder
}

// FinanceRoutes: /courses/access harus terdaftar sebelum /courses/:slug.
func FinanceRoutes(api fiber.Router, s FinanceServices, auth, submitLimiter fiber.Handler) {
	accessRoute.AccessRoutes(api, s.Access, s.Courses, auth)

	api.Post("/payments", submitLimiter)
	api.Post("/cart/checkout", submitLimiter)
	paymentRoute.PaymentUserRoutes(api, s.Payments, auth)
	cartRoute.CartRoutes(api, s.Carts, s.Users, auth)
}

func FinanceAdminRoutes(admin fiber.Router, s FinanceServices) {
	paymentRoute.PaymentAdminRoutes(admin, s.Payments)
}
