package details

import (
	"github.com/gofiber/fiber/v2"

	courseRoute "rojasfit_backend/internals/features/catalog/courses/route"
	courseService "rojasfit_backend/internals/features/catalog/courses/service"
)

func CatalogPublicRoutes(api fiber.Router, courses *courseService.CourseService, auth fiber.Handler) {
	courseRoute.CoursePublicRoutes(api, courses, auth)
}

func CatalogAdminRoutes(admin fiber.Router, courses *courseService.CourseService) {
	courseRoute.CourseAdminRoutes(admin, courses)
}
