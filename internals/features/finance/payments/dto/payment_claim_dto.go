// file: internals/features/finance/payments/dto/payment_claim_dto.go
package dto

import (
	"github.com/shopspring/decimal"

	accessModel "rojasfit_backend/internals/features/finance/access/model"
	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
	"rojasfit_backend/internals/features/finance/payments/service"
)

/* =========================================================
   REQUEST: Submit
   POST /api/payments
   ========================================================= */

// Field presence is checked by the service so every missing field is
// reported with its own name, including a nil userId or totalAmount.
type SubmitPaymentRequest struct {
	UserID          *uint            `json:"userId"`
	UserEmail       string           `json:"userEmail"`
	UserName        string           `json:"userName"`
	CourseIDs       []uint           `json:"courseIds"`
	CourseTitles    []string         `json:"courseTitles"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	PaymentMethod   string           `json:"paymentMethod"`
	PaymentProof    *string          `json:"paymentProof"`
	ReferenceNumber *string          `json:"referenceNumber"`
	AdditionalNotes *string          `json:"additionalNotes"`
}

func (r SubmitPaymentRequest) ToInput() service.SubmitInput {
	return service.SubmitInput{
		UserID:          r.UserID,
		UserEmail:       r.UserEmail,
		UserName:        r.UserName,
		CourseIDs:       r.CourseIDs,
		CourseTitles:    r.CourseTitles,
		TotalAmount:     r.TotalAmount,
		PaymentMethod:   r.PaymentMethod,
		PaymentProof:    r.PaymentProof,
		ReferenceNumber: r.ReferenceNumber,
		AdditionalNotes: r.AdditionalNotes,
	}
}

/* =========================================================
   REQUEST: Reject
   POST /api/admin/payments/:id/reject
   ========================================================= */

type RejectPaymentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

/* =========================================================
   RESPONSES
   ========================================================= */

type SubmitPaymentResponse struct {
	PaymentID uint   `json:"paymentId"`
	Status    string `json:"status"`
}

type PaymentStatusResponse struct {
	Pending   []paymentModel.PaymentClaim `json:"pending"`
	Confirmed []paymentModel.PaymentClaim `json:"confirmed"`
}

type ConfirmPaymentResponse struct {
	Payment          *paymentModel.PaymentClaim `json:"payment"`
	CoursesGranted   int                        `json:"coursesGranted"`
	SkippedCourseIDs []uint                     `json:"skippedCourseIds,omitempty"`
	FailedCourseIDs  []uint                     `json:"failedCourseIds,omitempty"`
}

func FromConfirmResult(res *service.ConfirmResult) ConfirmPaymentResponse {
	return ConfirmPaymentResponse{
		Payment:          res.Claim,
		CoursesGranted:   res.CoursesGranted,
		SkippedCourseIDs: res.Skipped,
		FailedCourseIDs:  res.Failed,
	}
}

type PaymentDetailResponse struct {
	Payment *paymentModel.PaymentClaim        `json:"payment"`
	History []paymentModel.PaymentReviewEvent `json:"history"`
	Grants  []accessModel.CourseAccessGrant   `json:"grants"`
}

func FromClaimDetail(d *service.ClaimDetail) PaymentDetailResponse {
	out := PaymentDetailResponse{Payment: d.Claim, History: d.History, Grants: d.Grants}
	if out.Grants == nil {
		out.Grants = []accessModel.CourseAccessGrant{}
	}
	return out
}
