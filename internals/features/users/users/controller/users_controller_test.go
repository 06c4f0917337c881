package controller_test

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/constants"
	"rojasfit_backend/internals/databases/dbtest"
	accessModel "rojasfit_backend/internals/features/finance/access/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	userRoutes "rojasfit_backend/internals/features/users/users/route"
	helper "rojasfit_backend/internals/helpers"
)

type listBody struct {
	Success    bool             `json:"success"`
	Data       []map[string]any `json:"data"`
	Pagination struct {
		Total   int64 `json:"total"`
		HasNext bool  `json:"has_next"`
	} `json:"pagination"`
}

func newApp(t *testing.T) (*fiber.App, uint) {
	t.Helper()
	db := dbtest.Open(t)
	ana := dbtest.SeedUser(t, db, "ana@x.com", "Ana Rojas")
	dbtest.SeedUser(t, db, "bo@x.com", "Bo")
	dbtest.SeedUser(t, db, "carla@x.com", "Carla")
	yoga := dbtest.SeedCourse(t, db, "Yoga", "50", true)
	if err := db.Create(&accessModel.CourseAccessGrant{
		CourseAccessGrantUserID:    ana.UserID,
		CourseAccessGrantCourseID:  yoga.CourseID,
		CourseAccessGrantPaymentID: 1,
		CourseAccessGrantGrantedAt: time.Now(),
	}).Error; err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	users := userRepo.NewUserRepository(db)
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler, JSONEncoder: sonic.Marshal, JSONDecoder: sonic.Unmarshal})
	auth := func(c *fiber.Ctx) error {
		if c.Get("X-Test-User") == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - No token provided")
		}
		c.Locals(constants.LocalUserID, ana.UserID)
		return c.Next()
	}
	api := app.Group("/api")
	userRoutes.UserUserRoutes(api, users, auth)
	userRoutes.UserAdminRoutes(api.Group("/admin"), users)
	return app, ana.UserID
}

func TestAdminListUsers(t *testing.T) {
	app, anaID := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/users?per_page=2", nil))
	if err != nil {
		t.Fatal(err)
	}
	var body listBody
	raw, _ := io.ReadAll(resp.Body)
	if err := sonic.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	if resp.StatusCode != 200 || len(body.Data) != 2 || body.Pagination.Total != 3 || !body.Pagination.HasNext {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/admin/users?q=ROJAS", nil))
	raw, _ = io.ReadAll(resp.Body)
	body = listBody{}
	_ = sonic.Unmarshal(raw, &body)
	if len(body.Data) != 1 || body.Data[0]["grantCount"] != float64(1) {
		t.Fatalf("search body=%s", raw)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/admin/users?id=%d", anaID), nil))
	if resp.StatusCode != 200 {
		t.Errorf("detail status = %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/admin/users?id=999", nil))
	if resp.StatusCode != 404 {
		t.Errorf("missing user status = %d, want 404", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/admin/users?id=abc", nil))
	if resp.StatusCode != 400 {
		t.Errorf("bad id status = %d, want 400", resp.StatusCode)
	}
}

func TestGetMe(t *testing.T) {
	app, _ := newApp(t)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/users/me", nil))
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous status = %d, want 401", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("X-Test-User", "1")
	resp, _ = app.Test(req)
	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Data map[string]any `json:"data"`
	}
	_ = sonic.Unmarshal(raw, &body)
	if resp.StatusCode != 200 || body.Data["userEmail"] != "ana@x.com" {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
}
