// file: internals/features/catalog/courses/controller/course_admin_controller.go
package controller

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "rojasfit_backend/internals/features/catalog/courses/dto"
	"rojasfit_backend/internals/features/catalog/courses/service"
	helper "rojasfit_backend/internals/helpers"
)

type CourseAdminController struct {
	Service  *service.CourseService
	validate *validator.Validate
}

func NewCourseAdminController(svc *service.CourseService) *CourseAdminController {
	return &CourseAdminController{Service: svc, validate: helper.NewValidator()}
}

// parseBody: BodyParser + validator. ok=false berarti response error sudah ditulis.
func (ctl *CourseAdminController) parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.validate.Struct(out); err != nil {
		return false, helper.ValidationError(c, err)
	}
	return true, nil
}

/* =========================
   GET /api/admin/courses
========================= */

func (ctl *CourseAdminController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Service.ListAll(c.UserContext(), c.Query("q"), p.Offset, p.Limit)
	if err != nil {
		return writeCourseError(c, err)
	}
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "ok", dto.FromCourses(rows), &pg)
}

/* =========================
   POST /api/admin/courses
========================= */

func (ctl *CourseAdminController) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if ok, err := ctl.parseBody(c, &req); !ok {
		return err
	}
	if req.CoursePrice.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"coursePrice": {"must be greater than or equal to 0"}})
	}

	course, err := ctl.Service.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonCreated(c, "course created", dto.FromCourse(*course, true))
}

/* =========================
   PATCH /api/admin/courses/:id
========================= */

func (ctl *CourseAdminController) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if ok, err := ctl.parseBody(c, &req); !ok {
		return err
	}
	if req.CoursePrice != nil && req.CoursePrice.IsNegative() {
		return helper.JsonValidationError(c, map[string][]string{"coursePrice": {"must be greater than or equal to 0"}})
	}

	course, err := ctl.Service.Update(c.UserContext(), id, req.ToPatch())
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonUpdated(c, "course updated", dto.FromCourse(*course, true))
}

/* =========================
   DELETE /api/admin/courses/:id   (soft: deactivate)
========================= */

func (ctl *CourseAdminController) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := ctl.Service.Deactivate(c.UserContext(), id); err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonDeleted(c, "course deactivated", fiber.Map{"courseId": id})
}

/* =========================
   Modules
   /api/admin/courses/:id/modules[/:moduleId]
========================= */

func (ctl *CourseAdminController) ListModules(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	mods, err := ctl.Service.ListModules(c.UserContext(), id)
	if err != nil {
		return writeCourseError(c, err)
	}
	out := make([]dto.ModuleResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, dto.FromModule(m, true))
	}
	return helper.JsonOK(c, "ok", out)
}

func (ctl *CourseAdminController) CreateModule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateModuleRequest
	if ok, err := ctl.parseBody(c, &req); !ok {
		return err
	}
	mod, err := ctl.Service.CreateModule(c.UserContext(), id, req.ToInput())
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonCreated(c, "module created", dto.FromModule(*mod, true))
}

func (ctl *CourseAdminController) UpdateModule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	moduleID, err := parseIDParam(c, "moduleId")
	if err != nil {
		return err
	}
	var req dto.UpdateModuleRequest
	if ok, err := ctl.parseBody(c, &req); !ok {
		return err
	}
	mod, err := ctl.Service.UpdateModule(c.UserContext(), id, moduleID, req.ToPatch())
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonUpdated(c, "module updated", dto.FromModule(*mod, true))
}

func (ctl *CourseAdminController) DeleteModule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	moduleID, err := parseIDParam(c, "moduleId")
	if err != nil {
		return err
	}
	if err := ctl.Service.DeleteModule(c.UserContext(), id, moduleID); err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonDeleted(c, "module deleted", fiber.Map{"moduleId": moduleID})
}

/* =========================
   POST /api/admin/courses/:id/modules/:moduleId/video   (multipart: video)
========================= */

const videoUploadTimeout = 10 * time.Minute

func (ctl *CourseAdminController) UploadModuleVideo(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	moduleID, err := parseIDParam(c, "moduleId")
	if err != nil {
		return err
	}

	fh, err := c.FormFile("video")
	if err != nil || fh == nil {
		return writeCourseError(c, service.ErrVideoRequired)
	}
	src, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	// upload bisa lebih lama dari timeout request biasa
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.UserContext()), videoUploadTimeout)
	defer cancel()

	mod, err := ctl.Service.UploadModuleVideo(ctx, id, moduleID, service.VideoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        src,
	})
	if err != nil {
		return writeCourseError(c, err)
	}
	return helper.JsonUpdated(c, "video uploaded", fiber.Map{
		"module":   dto.FromModule(*mod, true),
		"videoUrl": mod.CourseModuleVideoURL,
		"fileName": fh.Filename,
		"fileSize": fh.Size,
	})
}
