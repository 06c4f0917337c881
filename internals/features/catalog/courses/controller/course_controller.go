// file: internals/features/catalog/courses/controller/course_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	dto "rojasfit_backend/internals/features/catalog/courses/dto"
	"rojasfit_backend/internals/features/catalog/courses/service"
	helper "rojasfit_backend/internals/helpers"
)

type CourseController struct {
	Service *service.CourseService
}

func NewCourseController(svc *service.CourseService) *CourseController {
	return &CourseController{Service: svc}
}

/* =========================
   GET /api/courses?q=&page=&per_page=
========================= */

func (ctl *CourseController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 24, 100)
	rows, total, err := ctl.Service.ListActive(c.UserContext(), c.Query("q"), p.Offset, p.Limit)
	if err != nil {
		return writeCourseError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "ok", dto.FromCourses(rows), &pg)
}

/* =========================
   GET /api/courses/:slug
========================= */

func (ctl *CourseController) GetBySlug(c *fiber.Ctx) error {
	course, err := ctl.Service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromCourse(*course, false))
}

/* =========================
   GET /api/courses/:slug/modules/:moduleId   (login)
========================= */

func (ctl *CourseController) ViewModule(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	moduleID, err := parseIDParam(c, "moduleId")
	if err != nil {
		return err
	}

	course, mod, err := ctl.Service.ViewModule(c.UserContext(), c.Params("slug"), moduleID, uid, helper.IsAdmin(c))
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"courseId":    course.CourseID,
		"courseSlug":  course.CourseSlug,
		"courseTitle": course.CourseTitle,
		"module":      dto.FromModule(*mod, true),
	})
}
