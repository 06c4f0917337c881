// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/constants"
	userModel "rojasfit_backend/internals/features/users/users/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
)

// ActiveUserFinder loads the account behind a token.
type ActiveUserFinder interface {
	FindByID(ctx context.Context, id uint) (*userModel.User, error)
}

const expirySkew = 30 * time.Second

func AuthMiddleware(users ActiveUserFinder, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Ambil Authorization (atau cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		// 2) Parse & verifikasi JWT
		if secret == "" {
			log.Println("[ERROR] JWT_SECRET kosong")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}
		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			log.Println("[WARN] Gagal parse token:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		// 3) Validasi exp
		if err := validateTokenExpiry(claims, expirySkew); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 4) Ambil user_id & validasi user aktif
		userID, err := extractUserID(claims)
		if err != nil {
			log.Println("[WARN] user_id:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		user, err := users.FindByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			log.Println("[ERROR] load user:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		if !user.UserIsActive {
			return fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan")
		}

		// 5) Simpan ke context. Role diambil dari database, bukan dari token.
		c.Locals(constants.LocalUserID, user.UserID)
		c.Locals(constants.LocalUserRole, user.UserRole)
		c.Locals(constants.LocalUserName, user.UserName)
		c.Locals(constants.LocalUserEmail, user.UserEmail)
		return c.Next()
	}
}
