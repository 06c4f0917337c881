// file: internals/features/finance/payments/route/payment_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	paymentController "rojasfit_backend/internals/features/finance/payments/controller"
	"rojasfit_backend/internals/features/finance/payments/service"
)

// PaymentUserRoutes: submit butuh login, status by email publik.
func PaymentUserRoutes(api fiber.Router, svc *service.PaymentClaimService, auth fiber.Handler) {
	ctl := paymentController.NewPaymentClaimController(svc)

	pay := api.Group("/payments")
	{
		pay.Get("/status", ctl.Status)  // GET  /api/payments/status?email=
		pay.Post("/", auth, ctl.Submit) // POST /api/payments
	}
}

// PaymentAdminRoutes expects a router already guarded by auth + admin role.
func PaymentAdminRoutes(admin fiber.Router, svc *service.PaymentClaimService) {
	ctl := paymentController.NewPaymentAdminController(svc)

	pay := admin.Group("/payments")
	{
		pay.Get("/", ctl.List)
		pay.Get("/:id", ctl.Get)
		pay.Post("/:id/confirm", ctl.Confirm)
		pay.Post("/:id/reject", ctl.Reject)
		pay.Post("/:id/regrant", ctl.Regrant)
	}
}
