// file: internals/features/stats/admin_stats/route/admin_stats_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	statsController "rojasfit_backend/internals/features/stats/admin_stats/controller"
	"rojasfit_backend/internals/features/stats/admin_stats/service"
)

// AdminStatsRoutes: admin sudah dijaga di group /api/admin.
func AdminStatsRoutes(admin fiber.Router, svc *service.AdminStatsService) {
	ctl := statsController.NewAdminStatsController(svc)
	admin.Get("/stats", ctl.Get) // GET /api/admin/stats
}
