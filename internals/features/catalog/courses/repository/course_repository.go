package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	helper "rojasfit_backend/internals/helpers"
)

const slugMaxLen = 160

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("module not found")
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

/* ====================== COURSES ====================== */

// FindActiveByIDs returns the active courses among ids, keyed by id.
// Missing or inactive ids are simply absent from the map.
func (r *CourseRepository) FindActiveByIDs(ctx context.Context, ids []uint) (map[uint]courseModel.Course, error) {
	out := make(map[uint]courseModel.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []courseModel.Course
	if err := r.DB.WithContext(ctx).
		Where("course_id IN ? AND course_is_active = ?", ids, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.CourseID] = c
	}
	return out, nil
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []uint) ([]courseModel.Course, error) {
	var rows []courseModel.Course
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.DB.WithContext(ctx).
		Where("course_id IN ?", ids).
		Order("course_title ASC").
		Find(&rows).Error
	return rows, err
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*courseModel.Course, error) {
	var c courseModel.Course
	err := r.DB.WithContext(ctx).First(&c, "course_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindActiveBySlug loads an active course with its modules in order.
func (r *CourseRepository) FindActiveBySlug(ctx context.Context, slug string) (*courseModel.Course, error) {
	var c courseModel.Course
	err := r.DB.WithContext(ctx).
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("course_module_order_index ASC, course_module_id ASC")
		}).
		Where("LOWER(course_slug) = ? AND course_is_active = ?", strings.ToLower(strings.TrimSpace(slug)), true).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type ListFilter struct {
	Q             string
	IncludeHidden bool
	Offset        int
	Limit         int
}

func (r *CourseRepository) List(ctx context.Context, f ListFilter) ([]courseModel.Course, int64, error) {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&courseModel.Course{})
		if !f.IncludeHidden {
			tx = tx.Where("course_is_active = ?", true)
		}
		if q != "" {
			tx = tx.Where("LOWER(course_title) LIKE ?", "%"+q+"%")
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []courseModel.Course
	tx := base().Order("course_created_at DESC, course_id DESC")
	if f.Limit > 0 {
		tx = tx.Offset(f.Offset).Limit(f.Limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UniqueSlug derives a slug from title that no other course uses.
func (r *CourseRepository) UniqueSlug(ctx context.Context, title string, exceptID uint) (string, error) {
	return helper.EnsureUniqueSlugCI(ctx, r.DB, "courses", "course_slug", "course_id",
		helper.Slugify(title, slugMaxLen), exceptID, slugMaxLen)
}

// Create inserts the course. course_is_active defaults to true in the
// schema, so an inactive course is hidden right after the insert.
func (r *CourseRepository) Create(ctx context.Context, c *courseModel.Course) error {
	active := c.CourseIsActive
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if !active {
			c.CourseIsActive = false
			return tx.Model(c).Update("course_is_active", false).Error
		}
		return nil
	})
}

func (r *CourseRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&courseModel.Course{}).
		Where("course_id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// Deactivate hides the course. Rows are never deleted because claims and grants reference them.
func (r *CourseRepository) Deactivate(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]any{"course_is_active": false})
}

func (r *CourseRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&courseModel.Course{}).
		Where("course_is_active = ?", true).Count(&n).Error
	return n, err
}

/* ====================== MODULES ====================== */

func (r *CourseRepository) ListModules(ctx context.Context, courseID uint) ([]courseModel.CourseModule, error) {
	var rows []courseModel.CourseModule
	err := r.DB.WithContext(ctx).
		Where("course_module_course_id = ?", courseID).
		Order("course_module_order_index ASC, course_module_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *CourseRepository) FindModule(ctx context.Context, courseID, moduleID uint) (*courseModel.CourseModule, error) {
	var m courseModel.CourseModule
	err := r.DB.WithContext(ctx).
		First(&m, "course_module_id = ? AND course_module_course_id = ?", moduleID, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateModule appends the module at the end when OrderIndex is zero.
func (r *CourseRepository) CreateModule(ctx context.Context, m *courseModel.CourseModule) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.CourseModuleOrderIndex == 0 {
			var maxIdx *int
			if err := tx.Model(&courseModel.CourseModule{}).
				Where("course_module_course_id = ?", m.CourseModuleCourseID).
				Select("MAX(course_module_order_index)").
				Scan(&maxIdx).Error; err != nil {
				return err
			}
			m.CourseModuleOrderIndex = 1
			if maxIdx != nil {
				m.CourseModuleOrderIndex = *maxIdx + 1
			}
		}
		return tx.Create(m).Error
	})
}

func (r *CourseRepository) UpdateModule(ctx context.Context, courseID, moduleID uint, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&courseModel.CourseModule{}).
		Where("course_module_id = ? AND course_module_course_id = ?", moduleID, courseID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrModuleNotFound
	}
	return nil
}

func (r *CourseRepository) DeleteModule(ctx context.Context, courseID, moduleID uint) error {
	res := r.DB.WithContext(ctx).
		Where("course_module_id = ? AND course_module_course_id = ?", moduleID, courseID).
		Delete(&courseModel.CourseModule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrModuleNotFound
	}
	return nil
}
