package model

import "time"

// NoVideoURL marks a module whose video has not been uploaded yet.
const NoVideoURL = "sin_video"

type CourseModule struct {
	CourseModuleID          uint   `gorm:"column:course_module_id;primaryKey;autoIncrement" json:"moduleId"`
	CourseModuleCourseID    uint   `gorm:"column:course_module_course_id;not null;index:idx_course_modules_course_order,priority:1" json:"courseId"`
	CourseModuleTitle       string `gorm:"column:course_module_title;size:200;not null" json:"title"`
	CourseModuleDescription string `gorm:"column:course_module_description;type:text;not null" json:"description"`
	CourseModuleVideoURL    string `gorm:"column:course_module_video_url;not null;default:sin_video" json:"videoUrl"`
	CourseModuleDuration    string `gorm:"column:course_module_duration;size:40;not null" json:"duration"`
	CourseModuleIsFree      bool   `gorm:"column:course_module_is_free;not null;default:false" json:"isFree"`
	CourseModuleOrderIndex  int    `gorm:"column:course_module_order_index;not null;default:0;index:idx_course_modules_course_order,priority:2" json:"orderIndex"`

	CreatedAt time.Time `gorm:"column:course_module_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:course_module_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (CourseModule) TableName() string { return "course_modules" }

func (m *CourseModule) HasVideo() bool {
	return m.CourseModuleVideoURL != "" && m.CourseModuleVideoURL != NoVideoURL
}
