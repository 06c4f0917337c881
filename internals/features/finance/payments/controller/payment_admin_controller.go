// file: internals/features/finance/payments/controller/payment_admin_controller.go
package controller

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "rojasfit_backend/internals/features/finance/payments/dto"
	paymentRepo "rojasfit_backend/internals/features/finance/payments/repository"
	"rojasfit_backend/internals/features/finance/payments/service"
	helper "rojasfit_backend/internals/helpers"
)

type PaymentAdminController struct {
	Service  *service.PaymentClaimService
	validate *validator.Validate
}

func NewPaymentAdminController(svc *service.PaymentClaimService) *PaymentAdminController {
	return &PaymentAdminController{Service: svc, validate: helper.NewValidator()}
}

/* =========================
   Utils
========================= */

func parseClaimID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params("id")), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}
	return uint(id), nil
}

// reviewerID: admin yang sedang login (nil kalau tidak ada di token)
func reviewerID(c *fiber.Ctx) *uint {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return nil
	}
	return &uid
}

/* =========================
   List
   GET /api/admin/payments?status=&q=&page=&per_page=
========================= */

func (ctl *PaymentAdminController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctl.Service.List(c.UserContext(), paymentRepo.ListFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Q:      c.Query("q"),
		Offset: p.Offset,
		Limit:  p.Limit,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "ok", rows, &pg)
}

/* =========================
   Detail
   GET /api/admin/payments/:id
========================= */

func (ctl *PaymentAdminController) Get(c *fiber.Ctx) error {
	id, err := parseClaimID(c)
	if err != nil {
		return err
	}
	detail, err := ctl.Service.Get(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromClaimDetail(detail))
}

/* =========================
   Confirm
   POST /api/admin/payments/:id/confirm
========================= */

func (ctl *PaymentAdminController) Confirm(c *fiber.Ctx) error {
	id, err := parseClaimID(c)
	if err != nil {
		return err
	}
	res, err := ctl.Service.Confirm(c.UserContext(), id, reviewerID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "payment confirmed", dto.FromConfirmResult(res))
}

/* =========================
   Reject
   POST /api/admin/payments/:id/reject
========================= */

func (ctl *PaymentAdminController) Reject(c *fiber.Ctx) error {
	id, err := parseClaimID(c)
	if err != nil {
		return err
	}

	// body opsional
	var req dto.RejectPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := ctl.validate.Struct(&req); err != nil {
			return helper.ValidationError(c, err)
		}
	}

	claim, err := ctl.Service.Reject(c.UserContext(), id, reviewerID(c), req.Reason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "payment rejected", fiber.Map{"payment": claim})
}

/* =========================
   Regrant
   POST /api/admin/payments/:id/regrant
========================= */

func (ctl *PaymentAdminController) Regrant(c *fiber.Ctx) error {
	id, err := parseClaimID(c)
	if err != nil {
		return err
	}
	res, err := ctl.Service.Regrant(c.UserContext(), id, reviewerID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "grants re-applied", dto.FromConfirmResult(res))
}
