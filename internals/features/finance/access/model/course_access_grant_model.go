package model

import "time"

// CourseAccessGrant: satu baris per (user, course). Unique index is the
// idempotency guard for concurrent confirmations.
type CourseAccessGrant struct {
	CourseAccessGrantID        uint      `gorm:"column:course_access_grant_id;primaryKey;autoIncrement" json:"grantId"`
	CourseAccessGrantUserID    uint      `gorm:"column:course_access_grant_user_id;not null;uniqueIndex:uq_course_access_grants_user_course,priority:1" json:"userId"`
	CourseAccessGrantCourseID  uint      `gorm:"column:course_access_grant_course_id;not null;uniqueIndex:uq_course_access_grants_user_course,priority:2;index" json:"courseId"`
	CourseAccessGrantPaymentID uint      `gorm:"column:course_access_grant_payment_id;not null;index" json:"paymentId"`
	CourseAccessGrantGrantedAt time.Time `gorm:"column:course_access_grant_granted_at;not null" json:"grantedAt"`
}

func (CourseAccessGrant) TableName() string { return "course_access_grants" }
