package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rojasfit_backend/internals/constants"
	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	courseRepo "rojasfit_backend/internals/features/catalog/courses/repository"
	accessService "rojasfit_backend/internals/features/finance/access/service"
	"rojasfit_backend/internals/storage"
)

var (
	ErrCourseNotFound = courseRepo.ErrCourseNotFound
	ErrModuleNotFound = courseRepo.ErrModuleNotFound
	ErrModuleLocked   = errors.New("module requires purchase")

	ErrVideoRequired   = errors.New("video file is required")
	ErrVideoType       = errors.New("only MP4, WebM, OGG, AVI and MOV videos are allowed")
	ErrVideoTooLarge   = errors.New("video file is too large")
	ErrStorageDisabled = errors.New("video storage is not configured")
)

const DefaultVideoMaxBytes = 100 << 20

// AccessChecker answers grant lookups for the module gate.
type AccessChecker interface {
	CheckAccessByUserID(ctx context.Context, userID, courseID uint) (accessService.AccessResult, error)
}

type CourseService struct {
	Repo   *courseRepo.CourseRepository
	Access AccessChecker

	// Videos is optional; nil disables module video uploads.
	Videos        storage.Store
	VideoMaxBytes int64

	now func() time.Time
}

func NewCourseService(repo *courseRepo.CourseRepository, access AccessChecker) *CourseService {
	return &CourseService{Repo: repo, Access: access, VideoMaxBytes: DefaultVideoMaxBytes, now: time.Now}
}

/* ====================== PUBLIC ====================== */

func (s *CourseService) ListActive(ctx context.Context, q string, offset, limit int) ([]courseModel.Course, int64, error) {
	return s.Repo.List(ctx, courseRepo.ListFilter{Q: q, Offset: offset, Limit: limit})
}

func (s *CourseService) GetBySlug(ctx context.Context, slug string) (*courseModel.Course, error) {
	return s.Repo.FindActiveBySlug(ctx, slug)
}

// ViewModule returns a module of an active course. Free modules are open to
// every logged in user; the rest need a grant. Admins see everything.
func (s *CourseService) ViewModule(ctx context.Context, slug string, moduleID, userID uint, isAdmin bool) (*courseModel.Course, *courseModel.CourseModule, error) {
	course, err := s.Repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	var mod *courseModel.CourseModule
	for i := range course.Modules {
		if course.Modules[i].CourseModuleID == moduleID {
			mod = &course.Modules[i]
			break
		}
	}
	if mod == nil {
		return nil, nil, ErrModuleNotFound
	}
	if mod.CourseModuleIsFree || isAdmin {
		return course, mod, nil
	}

	res, err := s.Access.CheckAccessByUserID(ctx, userID, course.CourseID)
	if err != nil {
		return nil, nil, fmt.Errorf("check access: %w", err)
	}
	if !res.HasAccess {
		return nil, nil, ErrModuleLocked
	}
	return course, mod, nil
}

/* ====================== ADMIN: COURSES ====================== */

type CourseInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    *string
	Level       string
	IsActive    bool
}

func (s *CourseService) ListAll(ctx context.Context, q string, offset, limit int) ([]courseModel.Course, int64, error) {
	return s.Repo.List(ctx, courseRepo.ListFilter{Q: q, IncludeHidden: true, Offset: offset, Limit: limit})
}

func (s *CourseService) Create(ctx context.Context, in CourseInput) (*courseModel.Course, error) {
	slug, err := s.Repo.UniqueSlug(ctx, in.Title, 0)
	if err != nil {
		return nil, fmt.Errorf("slug: %w", err)
	}
	c := &courseModel.Course{
		CourseSlug:        slug,
		CourseTitle:       strings.TrimSpace(in.Title),
		CourseDescription: in.Description,
		CoursePrice:       in.Price,
		CourseImageURL:    in.ImageURL,
		CourseLevel:       strings.TrimSpace(in.Level),
		CourseIsActive:    in.IsActive,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("[INFO] course %d created slug=%s", c.CourseID, c.CourseSlug)
	return c, nil
}

// CoursePatch holds only the fields being changed.
type CoursePatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Level       *string
	IsActive    *bool
}

func (s *CourseService) Update(ctx context.Context, id uint, p CoursePatch) (*courseModel.Course, error) {
	if _, err := s.Repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		slug, err := s.Repo.UniqueSlug(ctx, title, id)
		if err != nil {
			return nil, fmt.Errorf("slug: %w", err)
		}
		fields["course_title"] = title
		fields["course_slug"] = slug
	}
	if p.Description != nil {
		fields["course_description"] = *p.Description
	}
	if p.Price != nil {
		fields["course_price"] = *p.Price
	}
	if p.ImageURL != nil {
		if strings.TrimSpace(*p.ImageURL) == "" {
			fields["course_image_url"] = nil
		} else {
			fields["course_image_url"] = strings.TrimSpace(*p.ImageURL)
		}
	}
	if p.Level != nil {
		fields["course_level"] = strings.TrimSpace(*p.Level)
	}
	if p.IsActive != nil {
		fields["course_is_active"] = *p.IsActive
	}

	if len(fields) > 0 {
		if err := s.Repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Repo.FindByID(ctx, id)
}

// Deactivate hides a course from the catalog and from new claims.
// Existing grants keep working.
func (s *CourseService) Deactivate(ctx context.Context, id uint) error {
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		return err
	}
	log.Printf("[INFO] course %d deactivated", id)
	return nil
}

/* ====================== ADMIN: MODULES ====================== */

type ModuleInput struct {
	Title       string
	Description string
	VideoURL    string
	Duration    string
	IsFree      bool
	OrderIndex  int
}

func normalizeVideoURL(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return courseModel.NoVideoURL
	}
	return v
}

func (s *CourseService) ListModules(ctx context.Context, courseID uint) ([]courseModel.CourseModule, error) {
	if _, err := s.Repo.FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.Repo.ListModules(ctx, courseID)
}

func (s *CourseService) CreateModule(ctx context.Context, courseID uint, in ModuleInput) (*courseModel.CourseModule, error) {
	if _, err := s.Repo.FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	m := &courseModel.CourseModule{
		CourseModuleCourseID:    courseID,
		CourseModuleTitle:       strings.TrimSpace(in.Title),
		CourseModuleDescription: in.Description,
		CourseModuleVideoURL:    normalizeVideoURL(in.VideoURL),
		CourseModuleDuration:    strings.TrimSpace(in.Duration),
		CourseModuleIsFree:      in.IsFree,
		CourseModuleOrderIndex:  in.OrderIndex,
	}
	if err := s.Repo.CreateModule(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

type ModulePatch struct {
	Title       *string
	Description *string
	VideoURL    *string
	Duration    *string
	IsFree      *bool
	OrderIndex  *int
}

func (s *CourseService) UpdateModule(ctx context.Context, courseID, moduleID uint, p ModulePatch) (*courseModel.CourseModule, error) {
	fields := map[string]any{}
	if p.Title != nil {
		fields["course_module_title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		fields["course_module_description"] = *p.Description
	}
	if p.VideoURL != nil {
		fields["course_module_video_url"] = normalizeVideoURL(*p.VideoURL)
	}
	if p.Duration != nil {
		fields["course_module_duration"] = strings.TrimSpace(*p.Duration)
	}
	if p.IsFree != nil {
		fields["course_module_is_free"] = *p.IsFree
	}
	if p.OrderIndex != nil {
		fields["course_module_order_index"] = *p.OrderIndex
	}
	if len(fields) > 0 {
		if err := s.Repo.UpdateModule(ctx, courseID, moduleID, fields); err != nil {
			return nil, err
		}
	}
	return s.Repo.FindModule(ctx, courseID, moduleID)
}

func (s *CourseService) DeleteModule(ctx context.Context, courseID, moduleID uint) error {
	return s.Repo.DeleteModule(ctx, courseID, moduleID)
}

/* ====================== VIDEO UPLOAD ====================== */

// VideoUpload is one multipart file as received by the admin controller.
type VideoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func checkVideo(v VideoUpload, limit int64) (string, error) {
	if v.Body == nil || v.Size <= 0 {
		return "", ErrVideoRequired
	}
	if constants.DetectFileTypeFromExt(v.Filename) != constants.FileTypeVideo {
		return "", ErrVideoType
	}
	ct := strings.ToLower(strings.TrimSpace(v.ContentType))
	if ct != "" && ct != "application/octet-stream" && !strings.HasPrefix(ct, "video/") {
		return "", ErrVideoType
	}
	if v.Size > limit {
		return "", fmt.Errorf("%w (max %dMB)", ErrVideoTooLarge, limit>>20)
	}
	return constants.VideoContentType(v.Filename), nil
}

// UploadModuleVideo stores the file and points the module's video URL at it.
func (s *CourseService) UploadModuleVideo(ctx context.Context, courseID, moduleID uint, v VideoUpload) (*courseModel.CourseModule, error) {
	if _, err := s.Repo.FindModule(ctx, courseID, moduleID); err != nil {
		return nil, err
	}
	limit := s.VideoMaxBytes
	if limit <= 0 {
		limit = DefaultVideoMaxBytes
	}
	contentType, err := checkVideo(v, limit)
	if err != nil {
		return nil, err
	}
	if s.Videos == nil {
		return nil, ErrStorageDisabled
	}

	key := storage.ObjectKey(fmt.Sprintf("videos/course-%d", courseID), v.Filename, s.now())
	url, err := s.Videos.Put(ctx, key, v.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}
	if err := s.Repo.UpdateModule(ctx, courseID, moduleID, map[string]any{"course_module_video_url": url}); err != nil {
		log.Printf("[WARN] video %s stored but module %d not updated: %v", url, moduleID, err)
		return nil, err
	}
	log.Printf("[INFO] video uploaded for module %d: %s (%.2fMB)", moduleID, url, float64(v.Size)/(1<<20))
	return s.Repo.FindModule(ctx, courseID, moduleID)
}
