package dto

import (
	"time"

	userModel "rojasfit_backend/internals/features/users/users/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
)

type UserResponse struct {
	UserID    uint      `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	UserRole  string    `json:"userRole"`
	IsActive  bool      `json:"userIsActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModel(u *userModel.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		UserID:    u.UserID,
		UserName:  u.UserName,
		UserEmail: u.UserEmail,
		UserRole:  u.UserRole,
		IsActive:  u.UserIsActive,
		CreatedAt: u.CreatedAt,
	}
}

// AdminUserItem: satu baris listing admin, plus jumlah kursus yang dimiliki.
type AdminUserItem struct {
	UserResponse
	GrantCount int64 `json:"grantCount"`
}

func FromRows(rows []userRepo.UserWithGrantCount) []AdminUserItem {
	out := make([]AdminUserItem, 0, len(rows))
	for i := range rows {
		out = append(out, AdminUserItem{
			UserResponse: *FromModel(&rows[i].User),
			GrantCount:   rows[i].GrantCount,
		})
	}
	return out
}
