package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ReviewActionSubmitted = "submitted"
	ReviewActionConfirmed = "confirmed"
	ReviewActionRejected  = "rejected"
	ReviewActionRegranted = "regranted"
)

// PaymentReviewEvent is the audit trail of a claim's lifecycle.
type PaymentReviewEvent struct {
	PaymentReviewEventID      uint           `gorm:"column:payment_review_event_id;primaryKey;autoIncrement" json:"eventId"`
	PaymentReviewEventClaimID uint           `gorm:"column:payment_review_event_claim_id;not null;index" json:"paymentId"`
	PaymentReviewEventAction  string         `gorm:"column:payment_review_event_action;size:20;not null" json:"action"`
	PaymentReviewEventActorID *uint          `gorm:"column:payment_review_event_actor_id" json:"actorId,omitempty"`
	PaymentReviewEventPayload datatypes.JSON `gorm:"column:payment_review_event_payload" json:"payload,omitempty"`
	CreatedAt                 time.Time      `gorm:"column:payment_review_event_created_at;autoCreateTime" json:"createdAt"`
}

func (PaymentReviewEvent) TableName() string { return "payment_review_events" }
