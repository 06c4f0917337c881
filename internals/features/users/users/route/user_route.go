package routes

import (
	"github.com/gofiber/fiber/v2"

	userController "rojasfit_backend/internals/features/users/users/controller"
)

// UserUserRoutes: data diri (JWT).
func UserUserRoutes(api fiber.Router, users userController.UserReader, auth fiber.Handler) {
	selfCtrl := userController.NewUserSelfController(users)
	api.Get("/users/me", auth, selfCtrl.GetMe) // GET /api/users/me
}

// UserAdminRoutes: admin sudah dijaga di group /api/admin.
func UserAdminRoutes(admin fiber.Router, users userController.UserReader) {
	ctl := userController.NewAdminUserController(users)
	admin.Get("/users", ctl.ListUsers) // GET /api/admin/users
}
