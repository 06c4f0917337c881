package model

import (
	"time"

	"github.com/shopspring/decimal"
)

/* ===================== Enums (string) ===================== */

const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusRejected  = "rejected"
)

// Known methods. The column accepts any non-empty value.
const (
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodMobilePayment = "mobile_payment"
	PaymentMethodOther         = "other"
)

/* ===================== Model ===================== */

type PaymentClaim struct {
	PaymentClaimID uint `gorm:"column:payment_claim_id;primaryKey;autoIncrement" json:"paymentId"`

	// Identitas pembeli (denormalized; email is the durable lookup key)
	PaymentClaimUserID    *uint  `gorm:"column:payment_claim_user_id;index" json:"userId,omitempty"`
	PaymentClaimUserEmail string `gorm:"column:payment_claim_user_email;size:255;not null;index:idx_payment_claims_email_status,priority:1" json:"userEmail"`
	PaymentClaimUserName  string `gorm:"column:payment_claim_user_name;size:120;not null" json:"userName"`

	PaymentClaimTotalAmount decimal.Decimal `gorm:"column:payment_claim_total_amount;type:numeric(12,2);not null" json:"totalAmount"`
	PaymentClaimMethod      string          `gorm:"column:payment_claim_method;size:40;not null" json:"paymentMethod"`

	PaymentClaimProof           *string `gorm:"column:payment_claim_proof;type:text" json:"paymentProof,omitempty"`
	PaymentClaimReferenceNumber *string `gorm:"column:payment_claim_reference_number;size:120" json:"referenceNumber,omitempty"`
	PaymentClaimNotes           *string `gorm:"column:payment_claim_notes;type:text" json:"additionalNotes,omitempty"`

	PaymentClaimStatus     string     `gorm:"column:payment_claim_status;size:20;not null;default:pending;index:idx_payment_claims_email_status,priority:2" json:"status"`
	PaymentClaimReviewedAt *time.Time `gorm:"column:payment_claim_reviewed_at" json:"reviewedAt,omitempty"`
	PaymentClaimReviewedBy *uint      `gorm:"column:payment_claim_reviewed_by" json:"reviewedBy,omitempty"`

	Items []PaymentClaimItem `gorm:"foreignKey:PaymentClaimItemClaimID;references:PaymentClaimID" json:"items"`

	CreatedAt time.Time `gorm:"column:payment_claim_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:payment_claim_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (PaymentClaim) TableName() string { return "payment_claims" }

/* ===================== Helpers ===================== */

func (p *PaymentClaim) IsPending() bool { return p.PaymentClaimStatus == PaymentStatusPending }

// IsTerminal: confirmed and rejected never transition again.
func (p *PaymentClaim) IsTerminal() bool {
	return p.PaymentClaimStatus == PaymentStatusConfirmed || p.PaymentClaimStatus == PaymentStatusRejected
}

// CourseIDs returns item course ids in submission order.
func (p *PaymentClaim) CourseIDs() []uint {
	out := make([]uint, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.PaymentClaimItemCourseID)
	}
	return out
}

func (p *PaymentClaim) CourseTitles() []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.PaymentClaimItemCourseTitle)
	}
	return out
}
