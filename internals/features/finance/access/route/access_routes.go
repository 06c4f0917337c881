// file: internals/features/finance/access/route/access_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	accessController "rojasfit_backend/internals/features/finance/access/controller"
	"rojasfit_backend/internals/features/finance/access/service"
)

// AccessRoutes must be mounted before the catalog's /courses/:slug route.
func AccessRoutes(api fiber.Router, svc *service.AccessService, courses accessController.CourseReader, auth fiber.Handler) {
	ctl := accessController.NewAccessController(svc, courses)

	api.Get("/courses/access", ctl.Check)       // GET /api/courses/access?email=&courseId=
	api.Get("/me/courses", auth, ctl.MyCourses) // GET /api/me/courses
}
