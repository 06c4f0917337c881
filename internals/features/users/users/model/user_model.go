package model

import (
	"strings"
	"time"
)

// User merepresentasikan tabel users. Password/login dikelola di luar service ini.
type User struct {
	UserID       uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"userId"`
	UserName     string    `gorm:"column:user_name;size:120;not null" json:"userName"`
	UserEmail    string    `gorm:"column:user_email;size:255;not null;uniqueIndex:uq_users_email" json:"userEmail"`
	UserRole     string    `gorm:"column:user_role;size:20;not null;default:user" json:"userRole"`
	UserIsActive bool      `gorm:"column:user_is_active;not null;default:true" json:"userIsActive"`
	CreatedAt    time.Time `gorm:"column:user_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail is the canonical form used for every email lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
