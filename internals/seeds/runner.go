package seeds

import (
	"context"
	"log"
	"path/filepath"

	"gorm.io/gorm"

	courses "rojasfit_backend/internals/seeds/courses"
	users "rojasfit_backend/internals/seeds/users"
)

// RunAllSeeds loads the JSON fixtures under dir (default internals/seeds).
func RunAllSeeds(ctx context.Context, db *gorm.DB, dir string) error {
	if dir == "" {
		dir = "internals/seeds"
	}

	//* User
	n, err := users.SeedUsersFromJSON(ctx, db, filepath.Join(dir, "users", "data_users.json"))
	if err != nil {
		return err
	}
	log.Printf("[INFO] seeded %d users", n)

	//* Courses + modules
	n, err = courses.SeedCoursesFromJSON(ctx, db, filepath.Join(dir, "courses", "data_courses.json"))
	if err != nil {
		return err
	}
	log.Printf("[INFO] seeded %d courses", n)
	return nil
}
