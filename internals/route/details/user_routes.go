package details

import (
	"github.com/gofiber/fiber/v2"

	statsRoute "rojasfit_backend/internals/features/stats/admin_stats/route"
	statsService "rojasfit_backend/internals/features/stats/admin_stats/service"
	userController "rojasfit_backend/internals/features/users/users/controller"
	userRoute "rojasfit_backend/internals/features/users/users/route"
)

func UserRoutes(api fiber.Router, users userController.UserReader, auth fiber.Handler) {
	userRoute.UserUserRoutes(api, users, auth)
}

func UserAdminRoutes(admin fiber.Router, users userController.UserReader, stats *statsService.AdminStatsService) {
	userRoute.UserAdminRoutes(admin, users)
	statsRoute.AdminStatsRoutes(admin, stats)
}
