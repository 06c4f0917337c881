// internals/features/users/users/repository/user_repository.go
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"rojasfit_backend/internals/constants"
	userModel "rojasfit_backend/internals/features/users/users/model"
	helper "rojasfit_backend/internals/helpers"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindByEmail is case-insensitive. Returns ErrUserNotFound when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*userModel.User, error) {
	email = userModel.NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}
	var u userModel.User
	err := r.DB.WithContext(ctx).
		Where("LOWER(user_email) = ?", email).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*userModel.User, error) {
	var u userModel.User
	err := r.DB.WithContext(ctx).First(&u, "user_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userModel.User) error {
	u.UserEmail = userModel.NormalizeEmail(u.UserEmail)
	if u.UserRole == "" {
		u.UserRole = constants.RoleUser
	}
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// UserWithGrantCount is a row of the admin user listing.
type UserWithGrantCount struct {
	userModel.User
	GrantCount int64 `gorm:"column:grant_count" json:"grantCount"`
}

// List pages through users, newest first, filtered by name/email substring.
func (r *UserRepository) List(ctx context.Context, q string, offset, limit int) ([]UserWithGrantCount, int64, error) {
	q = strings.TrimSpace(strings.ToLower(q))
	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&userModel.User{})
		if q != "" {
			like := "%" + q + "%"
			tx = tx.Where("LOWER(user_email) LIKE ? OR LOWER(user_name) LIKE ?", like, like)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]UserWithGrantCount, 0, limit)
	err := base().
		Select("users.*, (SELECT COUNT(*) FROM course_access_grants g WHERE g.course_access_grant_user_id = users.user_id) AS grant_count").
		Order("user_created_at DESC, user_id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&userModel.User{}).Count(&n).Error
	return n, err
}
