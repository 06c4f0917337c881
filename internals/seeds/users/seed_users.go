package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"rojasfit_backend/internals/constants"
	userModel "rojasfit_backend/internals/features/users/users/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
)

type UserSeed struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SeedAdmin creates the admin account or promotes an existing one.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, name string) (*userModel.User, error) {
	repo := userRepo.NewUserRepository(db)
	u, err := repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, userRepo.ErrUserNotFound):
		if strings.TrimSpace(name) == "" {
			name = "Admin"
		}
		u = &userModel.User{UserEmail: email, UserName: name, UserRole: constants.RoleAdmin, UserIsActive: true}
		if err := repo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		log.Printf("✅ Admin '%s' dibuat (id=%d)", u.UserEmail, u.UserID)
		return u, nil
	case err != nil:
		return nil, err
	}

	if u.UserRole != constants.RoleAdmin || !u.UserIsActive {
		if err := db.WithContext(ctx).Model(u).Updates(map[string]any{
			"user_role":      constants.RoleAdmin,
			"user_is_active": true,
		}).Error; err != nil {
			return nil, fmt.Errorf("promote admin: %w", err)
		}
		u.UserRole, u.UserIsActive = constants.RoleAdmin, true
		log.Printf("✅ User '%s' dijadikan admin", u.UserEmail)
	} else {
		log.Printf("ℹ️ Admin '%s' sudah ada, dilewati.", u.UserEmail)
	}
	return u, nil
}

// SeedUsersFromJSON inserts users that do not exist yet. Returns the number inserted.
func SeedUsersFromJSON(ctx context.Context, db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Membaca file user:", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []UserSeed
	if err := sonic.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}

	repo := userRepo.NewUserRepository(db)
	inserted := 0
	for _, data := range inputs {
		if _, err := repo.FindByEmail(ctx, data.Email); err == nil {
			log.Printf("ℹ️ User dengan email '%s' sudah ada, dilewati.", data.Email)
			continue
		} else if !errors.Is(err, userRepo.ErrUserNotFound) {
			return inserted, err
		}
		u := &userModel.User{UserEmail: data.Email, UserName: data.UserName, UserRole: data.Role, UserIsActive: true}
		if err := repo.Create(ctx, u); err != nil {
			log.Printf("❌ Gagal insert user '%s': %v", data.Email, err)
			continue
		}
		inserted++
	}
	return inserted, nil
}
