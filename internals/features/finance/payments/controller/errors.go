package controller

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/features/finance/payments/service"
	helper "rojasfit_backend/internals/helpers"
)

// writeServiceError renders payment service errors with the standard envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	var ap *service.AlreadyProcessedError

	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, map[string][]string{ve.Field: {ve.Message}})
	case errors.Is(err, service.ErrClaimNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "payment not found")
	case errors.Is(err, service.ErrUserNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "no user registered with the payment email")
	case errors.As(err, &ap):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "ALREADY_PROCESSED", ap.Error())
	case errors.Is(err, service.ErrAlreadyClaimed):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "ALREADY_PURCHASED", err.Error())
	case errors.Is(err, service.ErrNotConfirmed):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "NOT_CONFIRMED", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return helper.JsonError(c, fiber.StatusGatewayTimeout, "request timed out")
	}

	status, msg := helper.MapPGError(err)
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return helper.JsonError(c, status, msg)
}
