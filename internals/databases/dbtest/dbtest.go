// Package dbtest opens throwaway SQLite databases with the production schema.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "rojasfit_backend/internals/databases"
	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	userModel "rojasfit_backend/internals/features/users/users/model"
)

// Open returns a migrated database stored under t.TempDir().
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection: concurrent writers queue instead of failing with SQLITE_BUSY.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func SeedUser(t testing.TB, db *gorm.DB, email, name string) *userModel.User {
	t.Helper()
	u := &userModel.User{UserEmail: email, UserName: name, UserRole: "user", UserIsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

// SeedCourse creates a course; inactive courses are created then hidden.
func SeedCourse(t testing.TB, db *gorm.DB, title string, price string, active bool) *courseModel.Course {
	t.Helper()
	c := &courseModel.Course{
		CourseSlug:     slugPart(title),
		CourseTitle:    title,
		CoursePrice:    decimal.RequireFromString(price),
		CourseIsActive: true,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course %s: %v", title, err)
	}
	if !active {
		if err := db.Model(c).Update("course_is_active", false).Error; err != nil {
			t.Fatalf("deactivate course %s: %v", title, err)
		}
		c.CourseIsActive = false
	}
	return c
}

func slugPart(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+32)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
