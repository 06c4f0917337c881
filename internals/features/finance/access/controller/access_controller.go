// file: internals/features/finance/access/controller/access_controller.go
package controller

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	"rojasfit_backend/internals/features/finance/access/service"
	helper "rojasfit_backend/internals/helpers"
)

// CourseReader resolves catalog rows for "my courses".
type CourseReader interface {
	FindByIDs(ctx context.Context, ids []uint) ([]courseModel.Course, error)
}

type AccessController struct {
	Service *service.AccessService
	Courses CourseReader
}

func NewAccessController(svc *service.AccessService, courses CourseReader) *AccessController {
	return &AccessController{Service: svc, Courses: courses}
}

/* =========================
   Check access
   GET /api/courses/access?email=&courseId=
========================= */

func (ctl *AccessController) Check(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	rawCourse := strings.TrimSpace(c.Query("courseId"))

	fields := map[string][]string{}
	if email == "" {
		fields["email"] = []string{"is required"}
	}
	courseID, err := strconv.ParseUint(rawCourse, 10, 64)
	if err != nil || courseID == 0 {
		fields["courseId"] = []string{"must be a positive integer"}
	}
	if len(fields) > 0 {
		return helper.JsonValidationError(c, fields)
	}

	res, err := ctl.Service.CheckAccess(c.UserContext(), email, uint(courseID))
	if err != nil {
		log.Printf("[ERROR] check access email=%s course=%d: %v", email, courseID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to check access")
	}
	return helper.JsonOK(c, "ok", res)
}

/* =========================
   My courses
   GET /api/me/courses
========================= */

type MyCourse struct {
	CourseID    uint      `json:"courseId"`
	CourseSlug  string    `json:"courseSlug"`
	CourseTitle string    `json:"courseTitle"`
	PaymentID   uint      `json:"paymentId"`
	GrantedAt   time.Time `json:"grantedAt"`
}

func (ctl *AccessController) MyCourses(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	grants, err := ctl.Service.GrantsForUser(c.UserContext(), uid)
	if err != nil {
		log.Printf("[ERROR] list grants user=%d: %v", uid, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to load courses")
	}
	if len(grants) == 0 {
		return helper.JsonOK(c, "ok", []MyCourse{})
	}

	ids := make([]uint, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.CourseAccessGrantCourseID)
	}
	courses, err := ctl.Courses.FindByIDs(c.UserContext(), ids)
	if err != nil {
		log.Printf("[ERROR] load granted courses user=%d: %v", uid, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to load courses")
	}
	byID := make(map[uint]courseModel.Course, len(courses))
	for _, co := range courses {
		byID[co.CourseID] = co
	}

	out := make([]MyCourse, 0, len(grants))
	for _, g := range grants {
		co, ok := byID[g.CourseAccessGrantCourseID]
		if !ok {
			continue
		}
		out = append(out, MyCourse{
			CourseID:    co.CourseID,
			CourseSlug:  co.CourseSlug,
			CourseTitle: co.CourseTitle,
			PaymentID:   g.CourseAccessGrantPaymentID,
			GrantedAt:   g.CourseAccessGrantGrantedAt,
		})
	}
	return helper.JsonOK(c, "ok", out)
}
