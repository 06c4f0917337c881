package courses

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	courseRepo "rojasfit_backend/internals/features/catalog/courses/repository"
	courseService "rojasfit_backend/internals/features/catalog/courses/service"
)

type ModuleSeed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Duration    string `json:"duration"`
	IsFree      bool   `json:"is_free"`
}

type CourseSeed struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	Level       string          `json:"level"`
	Modules     []ModuleSeed    `json:"modules"`
}

// SeedCoursesFromJSON creates courses whose title is not taken yet, with their
// modules in file order. Returns the number of courses inserted.
func SeedCoursesFromJSON(ctx context.Context, db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Membaca file course:", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []CourseSeed
	if err := sonic.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}

	svc := courseService.NewCourseService(courseRepo.NewCourseRepository(db), nil)
	inserted := 0
	for _, data := range inputs {
		var n int64
		if err := db.WithContext(ctx).Model(&courseModel.Course{}).
			Where("LOWER(course_title) = LOWER(?)", data.Title).
			Count(&n).Error; err != nil {
			return inserted, err
		}
		if n > 0 {
			log.Printf("ℹ️ Course '%s' sudah ada, dilewati.", data.Title)
			continue
		}

		c, err := svc.Create(ctx, courseService.CourseInput{
			Title:       data.Title,
			Description: data.Description,
			Price:       data.Price,
			ImageURL:    data.ImageURL,
			Level:       data.Level,
			IsActive:    true,
		})
		if err != nil {
			return inserted, fmt.Errorf("course %q: %w", data.Title, err)
		}
		for i, m := range data.Modules {
			if _, err := svc.CreateModule(ctx, c.CourseID, courseService.ModuleInput{
				Title:       m.Title,
				Description: m.Description,
				VideoURL:    m.VideoURL,
				Duration:    m.Duration,
				IsFree:      m.IsFree,
				OrderIndex:  i + 1,
			}); err != nil {
				return inserted, fmt.Errorf("course %q module %d: %w", data.Title, i+1, err)
			}
		}
		inserted++
	}
	return inserted, nil
}
