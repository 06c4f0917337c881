// file: internals/features/catalog/courses/dto/course_dto.go
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	"rojasfit_backend/internals/features/catalog/courses/service"
	helper "rojasfit_backend/internals/helpers"
)

/* =========================================================
   REQUEST: Course
   ========================================================= */

type CreateCourseRequest struct {
	CourseTitle       string          `json:"courseTitle"       validate:"required,max=200"`
	CourseDescription string          `json:"courseDescription" validate:"max=20000"`
	CoursePrice       decimal.Decimal `json:"coursePrice"`
	CourseImageURL    *string         `json:"courseImageUrl"    validate:"omitempty,url"`
	CourseLevel       string          `json:"courseLevel"       validate:"max=40"`
	CourseIsActive    *bool           `json:"courseIsActive"`
}

func (r CreateCourseRequest) ToInput() service.CourseInput {
	active := true
	if r.CourseIsActive != nil {
		active = *r.CourseIsActive
	}
	return service.CourseInput{
		Title:       r.CourseTitle,
		Description: r.CourseDescription,
		Price:       r.CoursePrice,
		ImageURL:    r.CourseImageURL,
		Level:       r.CourseLevel,
		IsActive:    active,
	}
}

type UpdateCourseRequest struct {
	CourseTitle       *string          `json:"courseTitle"       validate:"omitempty,min=1,max=200"`
	CourseDescription *string          `json:"courseDescription" validate:"omitempty,max=20000"`
	CoursePrice       *decimal.Decimal `json:"coursePrice"`
	CourseImageURL    *string          `json:"courseImageUrl"`
	CourseLevel       *string          `json:"courseLevel"       validate:"omitempty,max=40"`
	CourseIsActive    *bool            `json:"courseIsActive"`
}

func (r UpdateCourseRequest) ToPatch() service.CoursePatch {
	return service.CoursePatch{
		Title:       r.CourseTitle,
		Description: r.CourseDescription,
		Price:       r.CoursePrice,
		ImageURL:    r.CourseImageURL,
		Level:       r.CourseLevel,
		IsActive:    r.CourseIsActive,
	}
}

/* =========================================================
   REQUEST: Module
   ========================================================= */

type CreateModuleRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=20000"`
	VideoURL    string `json:"videoUrl"    validate:"omitempty,url"`
	Duration    string `json:"duration"    validate:"max=40"`
	IsFree      bool   `json:"isFree"`
	OrderIndex  int    `json:"orderIndex"  validate:"min=0"`
}

func (r CreateModuleRequest) ToInput() service.ModuleInput {
	return service.ModuleInput{
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		Duration:    r.Duration,
		IsFree:      r.IsFree,
		OrderIndex:  r.OrderIndex,
	}
}

type UpdateModuleRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=20000"`
	VideoURL    *string `json:"videoUrl"`
	Duration    *string `json:"duration"    validate:"omitempty,max=40"`
	IsFree      *bool   `json:"isFree"`
	OrderIndex  *int    `json:"orderIndex"  validate:"omitempty,min=0"`
}

func (r UpdateModuleRequest) ToPatch() service.ModulePatch {
	return service.ModulePatch{
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		Duration:    r.Duration,
		IsFree:      r.IsFree,
		OrderIndex:  r.OrderIndex,
	}
}

/* =========================================================
   RESPONSES
   ========================================================= */

type ModuleResponse struct {
	ModuleID    uint   `json:"moduleId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl,omitempty"`
	HasVideo    bool   `json:"hasVideo"`
	Duration    string `json:"duration"`
	IsFree      bool   `json:"isFree"`
	OrderIndex  int    `json:"orderIndex"`
}

// FromModule; showVideo=false hides the URL of paid modules.
func FromModule(m courseModel.CourseModule, showVideo bool) ModuleResponse {
	out := ModuleResponse{
		ModuleID:    m.CourseModuleID,
		Title:       m.CourseModuleTitle,
		Description: m.CourseModuleDescription,
		HasVideo:    m.HasVideo(),
		Duration:    m.CourseModuleDuration,
		IsFree:      m.CourseModuleIsFree,
		OrderIndex:  m.CourseModuleOrderIndex,
	}
	if showVideo || m.CourseModuleIsFree {
		out.VideoURL = m.CourseModuleVideoURL
	}
	return out
}

type CourseResponse struct {
	CourseID              uint             `json:"courseId"`
	CourseSlug            string           `json:"courseSlug"`
	CourseTitle           string           `json:"courseTitle"`
	CourseDescription     string           `json:"courseDescription"`
	CourseDescriptionHTML string           `json:"courseDescriptionHtml"`
	CoursePrice           decimal.Decimal  `json:"coursePrice"`
	CourseImageURL        *string          `json:"courseImageUrl,omitempty"`
	CourseLevel           string           `json:"courseLevel"`
	CourseIsActive        bool             `json:"courseIsActive"`
	Modules               []ModuleResponse `json:"modules,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

func FromCourse(c courseModel.Course, showVideo bool) CourseResponse {
	out := CourseResponse{
		CourseID:              c.CourseID,
		CourseSlug:            c.CourseSlug,
		CourseTitle:           c.CourseTitle,
		CourseDescription:     c.CourseDescription,
		CourseDescriptionHTML: helper.RenderMarkdown(c.CourseDescription),
		CoursePrice:           c.CoursePrice,
		CourseImageURL:        c.CourseImageURL,
		CourseLevel:           c.CourseLevel,
		CourseIsActive:        c.CourseIsActive,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
	if len(c.Modules) > 0 {
		out.Modules = make([]ModuleResponse, 0, len(c.Modules))
		for _, m := range c.Modules {
			out.Modules = append(out.Modules, FromModule(m, showVideo))
		}
	}
	return out
}

func FromCourses(rows []courseModel.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, FromCourse(c, false))
	}
	return out
}
