package events

import (
	"context"
	"strconv"
	"time"
)

const (
	PaymentSubmitted = "payment.submitted"
	PaymentConfirmed = "payment.confirmed"
	PaymentRejected  = "payment.rejected"
	PaymentRegranted = "payment.regranted"
)

type PaymentEvent struct {
	Type           string    `json:"type"`
	PaymentID      uint      `json:"paymentId"`
	UserEmail      string    `json:"userEmail"`
	CourseIDs      []uint    `json:"courseIds"`
	CoursesGranted int       `json:"coursesGranted,omitempty"`
	ReviewedBy     *uint     `json:"reviewedBy,omitempty"`
	At             time.Time `json:"at"`
}

func (e PaymentEvent) Key() string {
	return strconv.FormatUint(uint64(e.PaymentID), 10)
}

// Publisher is best effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev PaymentEvent) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, PaymentEvent) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
