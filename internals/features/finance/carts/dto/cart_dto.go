package dto

import "rojasfit_backend/internals/features/finance/carts/service"

// CheckoutRequest: userId dan email selalu dari akun yang login.
type CheckoutRequest struct {
	UserName        string  `json:"userName"        validate:"omitempty,max=120"`
	PaymentMethod   string  `json:"paymentMethod"   validate:"required,max=40"`
	PaymentProof    *string `json:"paymentProof"`
	ReferenceNumber *string `json:"referenceNumber" validate:"omitempty,max=120"`
	AdditionalNotes *string `json:"additionalNotes" validate:"omitempty,max=2000"`
}

func (r CheckoutRequest) ToInput(userID uint, email, name string) service.CheckoutInput {
	return service.CheckoutInput{
		UserID:          userID,
		UserEmail:       email,
		UserName:        name,
		PaymentMethod:   r.PaymentMethod,
		PaymentProof:    r.PaymentProof,
		ReferenceNumber: r.ReferenceNumber,
		AdditionalNotes: r.AdditionalNotes,
	}
}
