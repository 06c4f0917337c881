package middlewares

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	helper "rojasfit_backend/internals/helpers"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(50 * time.Millisecond))
	app.Get("/slow", func(c *fiber.Ctx) error {
		select {
		case <-c.UserContext().Done():
			if errors.Is(c.UserContext().Err(), context.DeadlineExceeded) {
				return c.SendStatus(fiber.StatusGatewayTimeout)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		case <-time.After(time.Second):
			return c.SendStatus(fiber.StatusOK)
		}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/slow", nil), 2000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID generated")
	}

	req := httptest.NewRequest("GET", "/slow", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, _ = app.Test(req, 2000)
	if got := resp.Header.Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want caller's id", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	app.Use(RecoveryMiddleware())
	app.Get("/boom", func(*fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestSubmitRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/pay", SubmitRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	var last int
	for i := 0; i < 11; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/pay", nil))
		if err != nil {
			t.Fatal(err)
		}
		last = resp.StatusCode
	}
	if last != fiber.StatusTooManyRequests {
		t.Errorf("11th request status = %d, want 429", last)
	}
}
