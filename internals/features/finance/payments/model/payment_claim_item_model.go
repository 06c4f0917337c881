package model

import "github.com/shopspring/decimal"

// PaymentClaimItem: satu baris per course dalam satu claim.
type PaymentClaimItem struct {
	PaymentClaimItemID          uint            `gorm:"column:payment_claim_item_id;primaryKey;autoIncrement" json:"itemId"`
	PaymentClaimItemClaimID     uint            `gorm:"column:payment_claim_item_claim_id;not null;uniqueIndex:uq_payment_claim_items_claim_course,priority:1" json:"paymentId"`
	PaymentClaimItemCourseID    uint            `gorm:"column:payment_claim_item_course_id;not null;uniqueIndex:uq_payment_claim_items_claim_course,priority:2;index" json:"courseId"`
	PaymentClaimItemCourseTitle string          `gorm:"column:payment_claim_item_course_title;size:200;not null" json:"courseTitle"`
	PaymentClaimItemPrice       decimal.Decimal `gorm:"column:payment_claim_item_price;type:numeric(12,2);not null;default:0" json:"price"`
	PaymentClaimItemPosition    int             `gorm:"column:payment_claim_item_position;not null" json:"position"`
}

func (PaymentClaimItem) TableName() string { return "payment_claim_items" }
