package service

import (
	"errors"
	"fmt"

	paymentRepo "rojasfit_backend/internals/features/finance/payments/repository"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
)

var (
	ErrClaimNotFound    = paymentRepo.ErrClaimNotFound
	ErrUserNotFound     = userRepo.ErrUserNotFound
	ErrAlreadyProcessed = errors.New("payment already processed")
	ErrNotConfirmed     = errors.New("payment is not confirmed")
	ErrAlreadyClaimed   = errors.New("course already pending or purchased")
)

// ValidationError names the offending field of a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// AlreadyProcessedError carries the claim's current status.
type AlreadyProcessedError struct {
	Status string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("payment already %s", e.Status)
}

func (e *AlreadyProcessedError) Unwrap() error { return ErrAlreadyProcessed }
