package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	CourseID          uint            `gorm:"column:course_id;primaryKey;autoIncrement" json:"courseId"`
	CourseSlug        string          `gorm:"column:course_slug;size:160;not null;uniqueIndex:uq_courses_slug" json:"courseSlug"`
	CourseTitle       string          `gorm:"column:course_title;size:200;not null" json:"courseTitle"`
	CourseDescription string          `gorm:"column:course_description;type:text" json:"courseDescription"`
	CoursePrice       decimal.Decimal `gorm:"column:course_price;type:numeric(12,2);not null;default:0" json:"coursePrice"`
	CourseImageURL    *string         `gorm:"column:course_image_url" json:"courseImageUrl,omitempty"`
	CourseLevel       string          `gorm:"column:course_level;size:40" json:"courseLevel"`
	CourseIsActive    bool            `gorm:"column:course_is_active;not null;default:true;index" json:"courseIsActive"`

	Modules []CourseModule `gorm:"foreignKey:CourseModuleCourseID;references:CourseID" json:"modules,omitempty"`

	CreatedAt time.Time `gorm:"column:course_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:course_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Course) TableName() string { return "courses" }
