// file: internals/features/finance/payments/controller/payment_claim_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	dto "rojasfit_backend/internals/features/finance/payments/dto"
	"rojasfit_backend/internals/features/finance/payments/service"
	userModel "rojasfit_backend/internals/features/users/users/model"
	helper "rojasfit_backend/internals/helpers"
)

/* =========================
   Controller
========================= */

type PaymentClaimController struct {
	Service *service.PaymentClaimService
}

func NewPaymentClaimController(svc *service.PaymentClaimService) *PaymentClaimController {
	return &PaymentClaimController{Service: svc}
}

/* =========================
   Submit
   POST /api/payments
========================= */

func (ctl *PaymentClaimController) Submit(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.SubmitPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}

	// userId dan userEmail ikut token; admin boleh submit atas nama user lain
	admin := helper.IsAdmin(c)
	switch {
	case req.UserID == nil:
		req.UserID = &uid
	case *req.UserID != uid && !admin:
		return helper.JsonError(c, fiber.StatusForbidden, "userId does not match the logged in user")
	}
	if !admin {
		email := helper.GetUserEmailFromToken(c)
		if email == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "account email unknown, please log in again")
		}
		if strings.TrimSpace(req.UserEmail) == "" {
			req.UserEmail = email
		} else if userModel.NormalizeEmail(req.UserEmail) != userModel.NormalizeEmail(email) {
			return helper.JsonError(c, fiber.StatusForbidden, "userEmail does not match the logged in user")
		}
	}

	in := req.ToInput()
	in.RefuseClaimed = !admin
	claim, err := ctl.Service.Submit(c.UserContext(), in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonCreated(c, "payment submitted, waiting for review", dto.SubmitPaymentResponse{
		PaymentID: claim.PaymentClaimID,
		Status:    claim.PaymentClaimStatus,
	})
}

/* =========================
   Status by email
   GET /api/payments/status?email=
========================= */

func (ctl *PaymentClaimController) Status(c *fiber.Ctx) error {
	pending, confirmed, err := ctl.Service.StatusByEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.PaymentStatusResponse{
		Pending:   pending,
		Confirmed: confirmed,
	})
}
