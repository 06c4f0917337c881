// file: internals/features/finance/carts/controller/cart_controller.go
package controller

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "rojasfit_backend/internals/features/finance/carts/dto"
	"rojasfit_backend/internals/features/finance/carts/service"
	paymentService "rojasfit_backend/internals/features/finance/payments/service"
	userModel "rojasfit_backend/internals/features/users/users/model"
	helper "rojasfit_backend/internals/helpers"
)

const HeaderCartToken = "X-Cart-Token"

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*userModel.User, error)
}

type CartController struct {
	Service  *service.CartService
	Users    UserFinder
	validate *validator.Validate
}

func NewCartController(svc *service.CartService, users UserFinder) *CartController {
	return &CartController{Service: svc, Users: users, validate: helper.NewValidator()}
}

/* =========================
   Utils
========================= */

func cartToken(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(HeaderCartToken))
}

func parseCourseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params("courseId")), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid courseId")
	}
	return uint(id), nil
}

func writeCartError(c *fiber.Ctx, err error) error {
	var ve *paymentService.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return helper.JsonError(c, fiber.StatusBadRequest, "missing or invalid "+HeaderCartToken+" header")
	case errors.Is(err, service.ErrCourseUnavailable):
		return helper.JsonError(c, fiber.StatusNotFound, "course not available")
	case errors.Is(err, service.ErrAlreadyPurchased):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "ALREADY_PURCHASED", err.Error())
	case errors.Is(err, service.ErrCartEmpty):
		return helper.JsonError(c, fiber.StatusBadRequest, "cart is empty")
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, map[string][]string{ve.Field: {ve.Message}})
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
}

/* =========================
   POST /api/cart   (issue token)
========================= */

func (ctl *CartController) Create(c *fiber.Ctx) error {
	if tok := cartToken(c); tok != "" {
		if cart, err := ctl.Service.Get(c.UserContext(), tok); err == nil {
			return helper.JsonOK(c, "ok", cart)
		}
	}
	tok := service.NewToken()
	cart, err := ctl.Service.Get(c.UserContext(), tok)
	if err != nil {
		return writeCartError(c, err)
	}
	c.Set(HeaderCartToken, cart.Token)
	return helper.JsonCreated(c, "cart created", cart)
}

/* =========================
   GET /api/cart
========================= */

func (ctl *CartController) Get(c *fiber.Ctx) error {
	cart, err := ctl.Service.Get(c.UserContext(), cartToken(c))
	if err != nil {
		return writeCartError(c, err)
	}
	return helper.JsonOK(c, "ok", cart)
}

/* =========================
   PUT /api/cart/items/:courseId?email=
========================= */

func (ctl *CartController) AddItem(c *fiber.Ctx) error {
	courseID, err := parseCourseID(c)
	if err != nil {
		return err
	}
	cart, err := ctl.Service.Add(c.UserContext(), cartToken(c), courseID, c.Query("email"))
	if err != nil {
		return writeCartError(c, err)
	}
	return helper.JsonUpdated(c, "course added", cart)
}

/* =========================
   DELETE /api/cart/items/:courseId
========================= */

func (ctl *CartController) RemoveItem(c *fiber.Ctx) error {
	courseID, err := parseCourseID(c)
	if err != nil {
		return err
	}
	cart, err := ctl.Service.Remove(c.UserContext(), cartToken(c), courseID)
	if err != nil {
		return writeCartError(c, err)
	}
	return helper.JsonUpdated(c, "course removed", cart)
}

/* =========================
   DELETE /api/cart
========================= */

func (ctl *CartController) Clear(c *fiber.Ctx) error {
	if err := ctl.Service.Clear(c.UserContext(), cartToken(c)); err != nil {
		return writeCartError(c, err)
	}
	return helper.JsonDeleted(c, "cart cleared", nil)
}

/* =========================
   POST /api/cart/checkout   (login)
========================= */

func (ctl *CartController) Checkout(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := ctl.validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := ctl.Users.FindByID(c.UserContext(), uid)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "account not found")
	}
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = user.UserName
	}

	claim, err := ctl.Service.Checkout(c.UserContext(), cartToken(c), req.ToInput(uid, user.UserEmail, name))
	if err != nil {
		return writeCartError(c, err)
	}
	return helper.JsonCreated(c, "payment submitted, waiting for review", fiber.Map{
		"paymentId": claim.PaymentClaimID,
		"status":    claim.PaymentClaimStatus,
	})
}
