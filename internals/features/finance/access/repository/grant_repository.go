package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	accessModel "rojasfit_backend/internals/features/finance/access/model"
)

var ErrGrantNotFound = errors.New("grant not found")

type GrantRepository struct {
	DB *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{DB: db}
}

// GrantIfAbsent inserts (userID, courseID) unless a grant already exists.
// The bool reports whether this call created the row.
func (r *GrantRepository) GrantIfAbsent(ctx context.Context, userID, courseID, paymentID uint) (bool, error) {
	g := accessModel.CourseAccessGrant{
		CourseAccessGrantUserID:    userID,
		CourseAccessGrantCourseID:  courseID,
		CourseAccessGrantPaymentID: paymentID,
		CourseAccessGrantGrantedAt: time.Now().UTC(),
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_access_grant_user_id"}, {Name: "course_access_grant_course_id"}},
			DoNothing: true,
		}).
		Create(&g)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GrantRepository) Find(ctx context.Context, userID, courseID uint) (*accessModel.CourseAccessGrant, error) {
	var g accessModel.CourseAccessGrant
	err := r.DB.WithContext(ctx).
		Where("course_access_grant_user_id = ? AND course_access_grant_course_id = ?", userID, courseID).
		Take(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGrantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GrantRepository) ListByUser(ctx context.Context, userID uint) ([]accessModel.CourseAccessGrant, error) {
	var rows []accessModel.CourseAccessGrant
	err := r.DB.WithContext(ctx).
		Where("course_access_grant_user_id = ?", userID).
		Order("course_access_grant_granted_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GrantRepository) ListByPayment(ctx context.Context, paymentID uint) ([]accessModel.CourseAccessGrant, error) {
	var rows []accessModel.CourseAccessGrant
	err := r.DB.WithContext(ctx).
		Where("course_access_grant_payment_id = ?", paymentID).
		Order("course_access_grant_course_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GrantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&accessModel.CourseAccessGrant{}).Count(&n).Error
	return n, err
}
