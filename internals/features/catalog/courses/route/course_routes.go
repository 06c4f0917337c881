// file: internals/features/catalog/courses/route/course_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	courseController "rojasfit_backend/internals/features/catalog/courses/controller"
	"rojasfit_backend/internals/features/catalog/courses/service"
)

// CoursePublicRoutes: katalog publik + modul (butuh login).
func CoursePublicRoutes(api fiber.Router, svc *service.CourseService, auth fiber.Handler) {
	ctl := courseController.NewCourseController(svc)

	courses := api.Group("/courses")
	{
		courses.Get("/", ctl.List)
		courses.Get("/:slug", ctl.GetBySlug)
		courses.Get("/:slug/modules/:moduleId", auth, ctl.ViewModule)
	}
}

// CourseAdminRoutes expects a router already guarded by auth + admin role.
func CourseAdminRoutes(admin fiber.Router, svc *service.CourseService) {
	ctl := courseController.NewCourseAdminController(svc)

	courses := admin.Group("/courses")
	{
		courses.Get("/", ctl.List)
		courses.Post("/", ctl.Create)
		courses.Patch("/:id", ctl.Update)
		courses.Delete("/:id", ctl.Delete)

		courses.Get("/:id/modules", ctl.ListModules)
		courses.Post("/:id/modules", ctl.CreateModule)
		courses.Patch("/:id/modules/:moduleId", ctl.UpdateModule)
		courses.Delete("/:id/modules/:moduleId", ctl.DeleteModule)
		courses.Post("/:id/modules/:moduleId/video", ctl.UploadModuleVideo)
	}
}
