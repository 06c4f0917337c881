package controller_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/constants"
	"rojasfit_backend/internals/databases/dbtest"
	courseRepo "rojasfit_backend/internals/features/catalog/courses/repository"
	accessRepo "rojasfit_backend/internals/features/finance/access/repository"
	paymentRepo "rojasfit_backend/internals/features/finance/payments/repository"
	paymentRoute "rojasfit_backend/internals/features/finance/payments/route"
	"rojasfit_backend/internals/features/finance/payments/service"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	helper "rojasfit_backend/internals/helpers"
)

type envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Data      map[string]any      `json:"data"`
}

// fakeAuth trusts X-Test-User / X-Test-Role / X-Test-Email instead of a JWT.
func fakeAuth(c *fiber.Ctx) error {
	uid := c.Get("X-Test-User")
	if uid == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - No token provided")
	}
	id, _ := strconv.ParseUint(uid, 10, 64)
	c.Locals(constants.LocalUserID, uint(id))
	email := c.Get("X-Test-Email")
	if email == "" {
		email = "ana@x.com"
	}
	c.Locals(constants.LocalUserEmail, email)
	role := c.Get("X-Test-Role")
	if role == "" {
		role = constants.RoleUser
	}
	c.Locals(constants.LocalUserRole, role)
	return c.Next()
}

type fixture struct {
	app      *fiber.App
	userID   uint
	yogaID   uint
	cardioID uint
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	user := dbtest.SeedUser(t, db, "ana@x.com", "Ana")
	yoga := dbtest.SeedCourse(t, db, "Yoga Flow", "50", true)
	cardio := dbtest.SeedCourse(t, db, "Cardio HIIT", "40", true)

	svc := service.NewPaymentClaimService(
		paymentRepo.NewPaymentClaimRepository(db),
		accessRepo.NewGrantRepository(db),
		userRepo.NewUserRepository(db),
		courseRepo.NewCourseRepository(db),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: helper.ErrorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})
	api := app.Group("/api")
	paymentRoute.PaymentUserRoutes(api, svc, fakeAuth)
	paymentRoute.PaymentAdminRoutes(api.Group("/admin", fakeAuth), svc)

	return fixture{app: app, userID: user.UserID, yogaID: yoga.CourseID, cardioID: cardio.CourseID}
}

func (f fixture) do(t *testing.T, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, env
}

func (f fixture) userHeaders() map[string]string {
	return map[string]string{"X-Test-User": fmt.Sprint(f.userID)}
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Test-User": "900", "X-Test-Role": constants.RoleAdmin}
}

func (f fixture) submitBody(titles string) string {
	return fmt.Sprintf(`{
		"userEmail": "Ana@X.com",
		"userName": "Ana",
		"courseIds": [%d, %d],
		"courseTitles": %s,
		"totalAmount": 90,
		"paymentMethod": "bank_transfer",
		"referenceNumber": "OP-1"
	}`, f.yogaID, f.cardioID, titles)
}

func (f fixture) submit(t *testing.T) uint {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/api/payments", f.submitBody(`["Yoga Flow","Cardio HIIT"]`), f.userHeaders())
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d (%s)", status, env.Message)
	}
	return uint(env.Data["paymentId"].(float64))
}

func TestSubmitPaymentHTTP(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name       string
		body       string
		headers    map[string]string
		wantStatus int
		wantField  string
	}{
		{"valid claim", f.submitBody(`["Yoga Flow","Cardio HIIT"]`), f.userHeaders(), http.StatusCreated, ""},
		{"not logged in", f.submitBody(`["Yoga Flow","Cardio HIIT"]`), nil, http.StatusUnauthorized, ""},
		{"list lengths differ", f.submitBody(`["Yoga Flow"]`), f.userHeaders(), http.StatusBadRequest, "courseTitles"},
		{"broken json", `{"userEmail":`, f.userHeaders(), http.StatusBadRequest, ""},
		{
			"other user's id",
			strings.Replace(f.submitBody(`["Yoga Flow","Cardio HIIT"]`), `"userName"`, `"userId": 4242, "userName"`, 1),
			f.userHeaders(),
			http.StatusForbidden,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, http.MethodPost, "/api/payments", tt.body, tt.headers)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", status, tt.wantStatus, env.Message)
			}
			if tt.wantField != "" {
				if _, ok := env.Errors[tt.wantField]; !ok {
					t.Errorf("errors = %v, want key %q", env.Errors, tt.wantField)
				}
			}
			if tt.wantStatus == http.StatusCreated {
				if env.Data["paymentId"] == nil || env.Data["status"] != "pending" {
					t.Errorf("data = %v, want paymentId and pending status", env.Data)
				}
			}
		})
	}
}

func TestSubmitBindsAccountEmailHTTP(t *testing.T) {
	f := setup(t)
	yogaOnly := func(email string) string {
		return fmt.Sprintf(`{%s"userName":"Ana","courseIds":[%d],"courseTitles":["Yoga Flow"],"totalAmount":50,"paymentMethod":"yape"}`, email, f.yogaID)
	}

	status, env := f.do(t, http.MethodPost, "/api/payments", yogaOnly(`"userEmail":"bo@x.com",`), f.userHeaders())
	if status != http.StatusForbidden {
		t.Fatalf("claim for another email = %d (%s), want 403", status, env.Message)
	}

	status, env = f.do(t, http.MethodPost, "/api/payments", yogaOnly(""), f.userHeaders())
	if status != http.StatusCreated {
		t.Fatalf("claim without email = %d (%s)", status, env.Message)
	}
	_, env = f.do(t, http.MethodGet, "/api/payments/status?email=ana@x.com", "", nil)
	if pending := env.Data["pending"].([]any); len(pending) != 1 {
		t.Fatalf("pending for account email = %v, want the new claim", pending)
	}

	status, env = f.do(t, http.MethodPost, "/api/payments", yogaOnly(`"userEmail":"ANA@x.com",`), f.userHeaders())
	if status != http.StatusConflict || env.ErrorCode != "ALREADY_PURCHASED" {
		t.Fatalf("second claim for a pending course = %d %s, want 409 ALREADY_PURCHASED", status, env.ErrorCode)
	}

	admin := adminHeaders()
	status, env = f.do(t, http.MethodPost, "/api/payments",
		strings.Replace(yogaOnly(`"userEmail":"ana@x.com",`), `"userName"`, fmt.Sprintf(`"userId": %d, "userName"`, f.userID), 1), admin)
	if status != http.StatusCreated {
		t.Errorf("admin claim on behalf of the user = %d (%s), want 201", status, env.Message)
	}
}

func TestReviewPaymentHTTP(t *testing.T) {
	f := setup(t)
	id := f.submit(t)
	base := fmt.Sprintf("/api/admin/payments/%d", id)

	status, env := f.do(t, http.MethodGet, "/api/payments/status?email=ana@x.com", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status query = %d", status)
	}
	if pending := env.Data["pending"].([]any); len(pending) != 1 {
		t.Fatalf("pending = %v, want 1 claim", pending)
	}

	status, env = f.do(t, http.MethodGet, base, "", adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("detail before review = %d (%s)", status, env.Message)
	}
	if grants, ok := env.Data["grants"].([]any); !ok || len(grants) != 0 {
		t.Errorf("grants before review = %v, want empty list", env.Data["grants"])
	}

	status, env = f.do(t, http.MethodPost, base+"/confirm", "", adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("confirm = %d (%s)", status, env.Message)
	}
	if got := env.Data["coursesGranted"]; got != float64(2) {
		t.Errorf("coursesGranted = %v, want 2", got)
	}
	payment := env.Data["payment"].(map[string]any)
	if payment["status"] != "confirmed" {
		t.Errorf("payment.status = %v, want confirmed", payment["status"])
	}

	status, env = f.do(t, http.MethodPost, base+"/confirm", "", adminHeaders())
	if status != http.StatusConflict || env.ErrorCode != "ALREADY_PROCESSED" {
		t.Errorf("second confirm = %d %s, want 409 ALREADY_PROCESSED", status, env.ErrorCode)
	}

	status, _ = f.do(t, http.MethodPost, base+"/reject", `{"reason":"late"}`, adminHeaders())
	if status != http.StatusConflict {
		t.Errorf("reject after confirm = %d, want 409", status)
	}

	status, env = f.do(t, http.MethodGet, "/api/payments/status?email=ana@x.com", "", nil)
	if status != http.StatusOK || len(env.Data["confirmed"].([]any)) != 1 || len(env.Data["pending"].([]any)) != 0 {
		t.Errorf("status after confirm = %d %v", status, env.Data)
	}

	status, env = f.do(t, http.MethodGet, base, "", adminHeaders())
	if status != http.StatusOK || len(env.Data["history"].([]any)) != 2 {
		t.Errorf("detail = %d %v, want two history entries", status, env.Data)
	}
	grants, _ := env.Data["grants"].([]any)
	if len(grants) != 2 {
		t.Fatalf("detail grants = %v, want the two courses of the claim", env.Data["grants"])
	}
	for _, g := range grants {
		if pid := g.(map[string]any)["paymentId"]; pid != float64(id) {
			t.Errorf("grant paymentId = %v, want %d", pid, id)
		}
	}
}

func TestAdminPaymentErrorsHTTP(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"unknown payment", http.MethodPost, "/api/admin/payments/999/confirm", http.StatusNotFound},
		{"non numeric id", http.MethodPost, "/api/admin/payments/abc/reject", http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/api/admin/payments?status=paid", http.StatusBadRequest},
		{"status without email", http.MethodGet, "/api/payments/status", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, tt.method, tt.path, "", adminHeaders())
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", status, tt.wantStatus, env.Message)
			}
			if env.Success {
				t.Error("success = true on an error response")
			}
		})
	}
}

func TestAdminListPaginatesHTTP(t *testing.T) {
	f := setup(t)
	f.submit(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/payments?status=pending&per_page=5", nil)
	for k, v := range adminHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Data       []map[string]any  `json:"data"`
		Pagination helper.Pagination `json:"pagination"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := sonic.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(body.Data) != 1 {
		t.Fatalf("list = %d with %d rows", resp.StatusCode, len(body.Data))
	}
	if body.Pagination.Total != 1 || body.Pagination.PerPage != 5 {
		t.Errorf("pagination = %+v", body.Pagination)
	}
	if _, leaked := body.Data[0]["paymentProof"]; leaked {
		t.Error("list leaked payment proof")
	}
}
