package controller

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	userdto "rojasfit_backend/internals/features/users/users/dto"
	userModel "rojasfit_backend/internals/features/users/users/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	helper "rojasfit_backend/internals/helpers"
)

type UserReader interface {
	FindByID(ctx context.Context, id uint) (*userModel.User, error)
	List(ctx context.Context, q string, offset, limit int) ([]userRepo.UserWithGrantCount, int64, error)
}

type AdminUserController struct {
	Users UserReader
}

func NewAdminUserController(users UserReader) *AdminUserController {
	return &AdminUserController{Users: users}
}

// GET /api/admin/users
// Query:
//   q=namaOrEmail (opsional)
//   id=123 (opsional; detail satu user)
//   page, per_page

func (ac *AdminUserController) ListUsers(c *fiber.Ctx) error {
	// DETAIL via ?id=...
	if raw := strings.TrimSpace(c.Query("id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
		}
		u, err := ac.Users.FindByID(c.UserContext(), uint(id))
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
			}
			log.Println("[ERROR] GetUserByID:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil user")
		}
		return helper.JsonOK(c, "User fetched successfully", userdto.FromModel(u))
	}

	// LIST / SEARCH via ?q=
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ac.Users.List(c.UserContext(), c.Query("q"), p.Offset, p.Limit)
	if err != nil {
		log.Println("[ERROR] ListUsers:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data pengguna")
	}
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "ok", userdto.FromRows(rows), &pg)
}

/* =========================
   GET /api/users/me
========================= */

type UserSelfController struct {
	Users UserReader
}

func NewUserSelfController(users UserReader) *UserSelfController {
	return &UserSelfController{Users: users}
}

func (sc *UserSelfController) GetMe(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	u, err := sc.Users.FindByID(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
		}
		log.Println("[ERROR] GetMe:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil user")
	}
	return helper.JsonOK(c, "ok", userdto.FromModel(u))
}
