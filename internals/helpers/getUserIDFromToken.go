package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/constants"
)

// GetUserIDFromToken ambil user_id dari c.Locals("user_id").
// Return 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uint, error) {
	v := c.Locals(constants.LocalUserID)
	if v == nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
	}

	switch t := v.(type) {
	case uint:
		if t == 0 {
			return 0, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "invalid user id in token")
		}
		return uint(id), nil
	default:
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid user id in token")
	}
}

// GetRoleFromToken returns the role stored by the auth middleware, or "".
func GetRoleFromToken(c *fiber.Ctx) string {
	role, _ := c.Locals(constants.LocalUserRole).(string)
	return role
}

// GetUserEmailFromToken returns the account email stored by the auth middleware, or "".
func GetUserEmailFromToken(c *fiber.Ctx) string {
	email, _ := c.Locals(constants.LocalUserEmail).(string)
	return email
}

func IsAdmin(c *fiber.Ctx) bool {
	return GetRoleFromToken(c) == constants.RoleAdmin
}
