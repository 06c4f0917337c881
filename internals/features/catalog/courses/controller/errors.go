package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/features/catalog/courses/service"
	helper "rojasfit_backend/internals/helpers"
)

func writeCourseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrModuleNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "module not found")
	case errors.Is(err, service.ErrVideoRequired),
		errors.Is(err, service.ErrVideoType),
		errors.Is(err, service.ErrVideoTooLarge):
		return helper.JsonValidationError(c, map[string][]string{"video": {err.Error()}})
	case errors.Is(err, service.ErrStorageDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrModuleLocked):
		return helper.JsonErrorCode(c, fiber.StatusForbidden, "COURSE_NOT_PURCHASED", "this module requires purchasing the course")
	}
	status, msg := helper.MapPGError(err)
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return helper.JsonError(c, status, msg)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
