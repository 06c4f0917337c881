package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
)

var ErrClaimNotFound = errors.New("payment claim not found")

type PaymentClaimRepository struct {
	DB *gorm.DB
}

func NewPaymentClaimRepository(db *gorm.DB) *PaymentClaimRepository {
	return &PaymentClaimRepository{DB: db}
}

func preloadItems(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("payment_claim_item_position ASC")
	})
}

// Create inserts the claim and its items in one transaction.
func (r *PaymentClaimRepository) Create(ctx context.Context, claim *paymentModel.PaymentClaim, ev *paymentModel.PaymentReviewEvent) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(claim).Error; err != nil {
			return err
		}
		if ev != nil {
			ev.PaymentReviewEventClaimID = claim.PaymentClaimID
			if err := tx.Create(ev).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PaymentClaimRepository) FindByID(ctx context.Context, id uint) (*paymentModel.PaymentClaim, error) {
	var c paymentModel.PaymentClaim
	err := preloadItems(r.DB.WithContext(ctx)).
		First(&c, "payment_claim_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Transition moves a claim from one status to another with a conditional
// update. It returns false when the claim was no longer in `from`.
func (r *PaymentClaimRepository) Transition(ctx context.Context, id uint, from, to string, reviewer *uint, ev *paymentModel.PaymentReviewEvent) (bool, error) {
	moved := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&paymentModel.PaymentClaim{}).
			Where("payment_claim_id = ? AND payment_claim_status = ?", id, from).
			Updates(map[string]any{
				"payment_claim_status":      to,
				"payment_claim_reviewed_at": now,
				"payment_claim_reviewed_by": reviewer,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		moved = true
		if ev != nil {
			ev.PaymentReviewEventClaimID = id
			return tx.Create(ev).Error
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// ListByEmail returns the email's claims in the given statuses, newest first.
func (r *PaymentClaimRepository) ListByEmail(ctx context.Context, email string, statuses ...string) ([]paymentModel.PaymentClaim, error) {
	rows := []paymentModel.PaymentClaim{}
	tx := preloadItems(r.DB.WithContext(ctx)).
		Omit("payment_claim_proof").
		Where("LOWER(payment_claim_user_email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if len(statuses) > 0 {
		tx = tx.Where("payment_claim_status IN ?", statuses)
	}
	err := tx.Order("payment_claim_created_at DESC, payment_claim_id DESC").Find(&rows).Error
	return rows, err
}

// HasOpenOrConfirmedItem reports whether email has a pending or confirmed
// claim containing courseID.
func (r *PaymentClaimRepository) HasOpenOrConfirmedItem(ctx context.Context, email string, courseID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table("payment_claim_items AS i").
		Joins("JOIN payment_claims AS c ON c.payment_claim_id = i.payment_claim_item_claim_id").
		Where("LOWER(c.payment_claim_user_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Where("c.payment_claim_status IN ?", []string{paymentModel.PaymentStatusPending, paymentModel.PaymentStatusConfirmed}).
		Where("i.payment_claim_item_course_id = ?", courseID).
		Count(&n).Error
	return n > 0, err
}

type ListFilter struct {
	Status string
	Q      string
	Offset int
	Limit  int
}

// List is the admin listing, newest first. Proof payloads are not loaded.
func (r *PaymentClaimRepository) List(ctx context.Context, f ListFilter) ([]paymentModel.PaymentClaim, int64, error) {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&paymentModel.PaymentClaim{})
		if f.Status != "" {
			tx = tx.Where("payment_claim_status = ?", f.Status)
		}
		if q != "" {
			like := "%" + q + "%"
			tx = tx.Where("LOWER(payment_claim_user_email) LIKE ? OR LOWER(payment_claim_user_name) LIKE ? OR LOWER(payment_claim_reference_number) LIKE ?", like, like, like)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []paymentModel.PaymentClaim{}
	err := preloadItems(base()).
		Omit("payment_claim_proof").
		Order("payment_claim_created_at DESC, payment_claim_id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *PaymentClaimRepository) AddEvent(ctx context.Context, ev *paymentModel.PaymentReviewEvent) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *PaymentClaimRepository) ListEvents(ctx context.Context, claimID uint) ([]paymentModel.PaymentReviewEvent, error) {
	rows := []paymentModel.PaymentReviewEvent{}
	err := r.DB.WithContext(ctx).
		Where("payment_review_event_claim_id = ?", claimID).
		Order("payment_review_event_created_at ASC, payment_review_event_id ASC").
		Find(&rows).Error
	return rows, err
}

// ListConfirmedMissingGrants finds confirmed claims whose purchaser exists and
// has at least one active course item without a grant.
func (r *PaymentClaimRepository) ListConfirmedMissingGrants(ctx context.Context, limit int) ([]uint, error) {
	ids := []uint{}
	err := r.DB.WithContext(ctx).
		Table("payment_claims AS c").
		Select("DISTINCT c.payment_claim_id").
		Joins("JOIN payment_claim_items AS i ON i.payment_claim_item_claim_id = c.payment_claim_id").
		Joins("JOIN courses AS co ON co.course_id = i.payment_claim_item_course_id AND co.course_is_active = ?", true).
		Joins("JOIN users AS u ON LOWER(u.user_email) = LOWER(c.payment_claim_user_email)").
		Joins("LEFT JOIN course_access_grants AS g ON g.course_access_grant_user_id = u.user_id AND g.course_access_grant_course_id = i.payment_claim_item_course_id").
		Where("c.payment_claim_status = ?", paymentModel.PaymentStatusConfirmed).
		Where("g.course_access_grant_id IS NULL").
		Order("c.payment_claim_id ASC").
		Limit(limit).
		Pluck("c.payment_claim_id", &ids).Error
	return ids, err
}

type StatusCount struct {
	Status string `gorm:"column:payment_claim_status"`
	Count  int64  `gorm:"column:n"`
}

func (r *PaymentClaimRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []StatusCount
	if err := r.DB.WithContext(ctx).Model(&paymentModel.PaymentClaim{}).
		Select("payment_claim_status, COUNT(*) AS n").
		Group("payment_claim_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[string]int64{
		paymentModel.PaymentStatusPending:   0,
		paymentModel.PaymentStatusConfirmed: 0,
		paymentModel.PaymentStatusRejected:  0,
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// ConfirmedAmounts returns the totals of confirmed claims; summing happens in
// decimal on the caller side to stay exact across drivers.
func (r *PaymentClaimRepository) ConfirmedAmounts(ctx context.Context) ([]paymentModel.PaymentClaim, error) {
	rows := []paymentModel.PaymentClaim{}
	err := r.DB.WithContext(ctx).
		Select("payment_claim_id", "payment_claim_total_amount").
		Where("payment_claim_status = ?", paymentModel.PaymentStatusConfirmed).
		Find(&rows).Error
	return rows, err
}
