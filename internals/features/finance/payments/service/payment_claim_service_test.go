package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rojasfit_backend/internals/caches"
	"rojasfit_backend/internals/databases/dbtest"
	"rojasfit_backend/internals/events"
	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	courseRepo "rojasfit_backend/internals/features/catalog/courses/repository"
	accessModel "rojasfit_backend/internals/features/finance/access/model"
	accessRepo "rojasfit_backend/internals/features/finance/access/repository"
	accessService "rojasfit_backend/internals/features/finance/access/service"
	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
	paymentRepo "rojasfit_backend/internals/features/finance/payments/repository"
	userModel "rojasfit_backend/internals/features/users/users/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	helper "rojasfit_backend/internals/helpers"
	"rojasfit_backend/internals/notifications"

	"gorm.io/gorm"
)

/* ========================= fakes ========================= */

type fakeMailer struct {
	mu   sync.Mutex
	sent []notifications.Message
}

func (m *fakeMailer) Send(_ context.Context, msg notifications.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.Subject)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.PaymentEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev events.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingGrants fails inserts for one course and delegates the rest.
type failingGrants struct {
	GrantStore
	failCourse uint
}

func (f failingGrants) GrantIfAbsent(ctx context.Context, userID, courseID, paymentID uint) (bool, error) {
	if courseID == f.failCourse {
		return false, errors.New("connection reset")
	}
	return f.GrantStore.GrantIfAbsent(ctx, userID, courseID, paymentID)
}

// stuckClaims reports every conditional transition as a no-op.
type stuckClaims struct {
	ClaimStore
}

func (stuckClaims) Transition(context.Context, uint, string, string, *uint, *paymentModel.PaymentReviewEvent) (bool, error) {
	return false, nil
}

/* ========================= harness ========================= */

type harness struct {
	db      *gorm.DB
	svc     *PaymentClaimService
	access  *accessService.AccessService
	grants  *accessRepo.GrantRepository
	mailer  *fakeMailer
	pub     *fakePublisher
	user    *userModel.User
	yoga    *courseModel.Course
	pilates *courseModel.Course
	cardio  *courseModel.Course
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.Open(t)

	h := &harness{
		db:      db,
		mailer:  &fakeMailer{},
		pub:     &fakePublisher{},
		user:    dbtest.SeedUser(t, db, "u@x.com", "Ana Rojas"),
		yoga:    dbtest.SeedCourse(t, db, "Yoga Flow", "50", true),
		pilates: dbtest.SeedCourse(t, db, "Pilates Core", "75.50", true),
		cardio:  dbtest.SeedCourse(t, db, "Cardio HIIT", "40", true),
	}

	users := userRepo.NewUserRepository(db)
	h.grants = accessRepo.NewGrantRepository(db)
	h.access = accessService.NewAccessService(users, h.grants, caches.NewMemoryStore(), time.Minute)

	h.svc = NewPaymentClaimService(
		paymentRepo.NewPaymentClaimRepository(db),
		h.grants,
		users,
		courseRepo.NewCourseRepository(db),
	)
	h.svc.Events = h.pub
	h.svc.Mailer = h.mailer
	h.svc.Access = h.access
	h.svc.AdminEmail = "admin@rojasfit.com"
	return h
}

func (h *harness) input(courses ...*courseModel.Course) SubmitInput {
	uid := h.user.UserID
	total := decimal.Zero
	ids := make([]uint, 0, len(courses))
	titles := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.CourseID)
		titles = append(titles, c.CourseTitle)
		total = total.Add(c.CoursePrice)
	}
	ref := "OP-778899"
	return SubmitInput{
		UserID:          &uid,
		UserEmail:       h.user.UserEmail,
		UserName:        h.user.UserName,
		CourseIDs:       ids,
		CourseTitles:    titles,
		TotalAmount:     &total,
		PaymentMethod:   paymentModel.PaymentMethodBankTransfer,
		ReferenceNumber: &ref,
	}
}

func (h *harness) submit(t *testing.T, courses ...*courseModel.Course) *paymentModel.PaymentClaim {
	t.Helper()
	claim, err := h.svc.Submit(context.Background(), h.input(courses...))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return claim
}

func (h *harness) grantCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(&accessModel.CourseAccessGrant{}).Count(&n).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}
	return n
}

func assertAlreadyProcessed(t *testing.T, err error, wantStatus string) {
	t.Helper()
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
	}
	var ap *AlreadyProcessedError
	if !errors.As(err, &ap) || ap.Status != wantStatus {
		t.Fatalf("err = %v, want AlreadyProcessedError{Status:%q}", err, wantStatus)
	}
}

/* ========================= submit ========================= */

func TestSubmitValidation(t *testing.T) {
	h := newHarness(t)
	hidden := dbtest.SeedCourse(t, h.db, "Old Program", "10", false)

	tests := []struct {
		name      string
		mutate    func(in *SubmitInput)
		wantField string
	}{
		{"missing user id", func(in *SubmitInput) { in.UserID = nil }, "userId"},
		{"missing email", func(in *SubmitInput) { in.UserEmail = "  " }, "userEmail"},
		{"malformed email", func(in *SubmitInput) { in.UserEmail = "not-an-email" }, "userEmail"},
		{"missing name", func(in *SubmitInput) { in.UserName = "" }, "userName"},
		{"empty course ids", func(in *SubmitInput) { in.CourseIDs = []uint{}; in.CourseTitles = []string{} }, "courseIds"},
		{"missing titles", func(in *SubmitInput) { in.CourseTitles = nil }, "courseTitles"},
		{
			"three ids but two titles",
			func(in *SubmitInput) {
				in.CourseIDs = []uint{h.yoga.CourseID, h.pilates.CourseID, h.cardio.CourseID}
				in.CourseTitles = []string{"A", "B"}
			},
			"courseTitles",
		},
		{"missing total", func(in *SubmitInput) { in.TotalAmount = nil }, "totalAmount"},
		{"zero total", func(in *SubmitInput) { z := decimal.Zero; in.TotalAmount = &z }, "totalAmount"},
		{"total with three decimals", func(in *SubmitInput) { v := decimal.RequireFromString("10.005"); in.TotalAmount = &v }, "totalAmount"},
		{"total too large for numeric(12,2)", func(in *SubmitInput) { v := decimal.New(1, 10); in.TotalAmount = &v }, "totalAmount"},
		{"missing method", func(in *SubmitInput) { in.PaymentMethod = " " }, "paymentMethod"},
		{
			"duplicate course",
			func(in *SubmitInput) {
				in.CourseIDs = []uint{h.yoga.CourseID, h.yoga.CourseID}
				in.CourseTitles = []string{"A", "A"}
			},
			"courseIds",
		},
		{
			"inactive course",
			func(in *SubmitInput) {
				in.CourseIDs = []uint{hidden.CourseID}
				in.CourseTitles = []string{hidden.CourseTitle}
			},
			"courseIds",
		},
		{
			"unknown course",
			func(in *SubmitInput) {
				in.CourseIDs = []uint{9999}
				in.CourseTitles = []string{"Ghost"}
			},
			"courseIds",
		},
		{"blank title", func(in *SubmitInput) { in.CourseTitles = []string{" "} }, "courseTitles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := h.input(h.yoga)
			tt.mutate(&in)

			claim, err := h.svc.Submit(context.Background(), in)
			if claim != nil {
				t.Fatalf("Submit returned claim %+v, want nil", claim)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (%v)", ve.Field, tt.wantField, err)
			}
		})
	}

	var n int64
	h.db.Model(&paymentModel.PaymentClaim{}).Count(&n)
	if n != 0 {
		t.Errorf("claims stored after invalid submissions = %d, want 0", n)
	}
}

func TestSubmitMatchedListsCreatesPendingClaim(t *testing.T) {
	h := newHarness(t)
	in := h.input(h.pilates, h.yoga)
	in.UserEmail = "  U@X.com "

	claim, err := h.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if claim.PaymentClaimID == 0 {
		t.Fatal("claim id not assigned")
	}

	stored, err := h.svc.Claims.FindByID(context.Background(), claim.PaymentClaimID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.PaymentClaimStatus != paymentModel.PaymentStatusPending {
		t.Errorf("status = %q, want pending", stored.PaymentClaimStatus)
	}
	if stored.PaymentClaimUserEmail != "u@x.com" {
		t.Errorf("email = %q, want normalized u@x.com", stored.PaymentClaimUserEmail)
	}
	if got := stored.CourseIDs(); len(got) != 2 || got[0] != h.pilates.CourseID || got[1] != h.yoga.CourseID {
		t.Errorf("course ids = %v, want submission order [%d %d]", got, h.pilates.CourseID, h.yoga.CourseID)
	}
	if !stored.Items[0].PaymentClaimItemPrice.Equal(decimal.RequireFromString("75.5")) {
		t.Errorf("item price = %s, want catalog price 75.5", stored.Items[0].PaymentClaimItemPrice)
	}
	if !stored.PaymentClaimTotalAmount.Equal(decimal.RequireFromString("125.5")) {
		t.Errorf("total = %s, want 125.5", stored.PaymentClaimTotalAmount)
	}
	if n := h.grantCount(t); n != 0 {
		t.Errorf("grants after submit = %d, want 0", n)
	}
	if got := h.pub.types(); len(got) != 1 || got[0] != events.PaymentSubmitted {
		t.Errorf("events = %v, want [payment.submitted]", got)
	}
	if got := h.mailer.subjects(); len(got) != 2 {
		t.Errorf("mails = %v, want user receipt and admin notice", got)
	}
}

func TestSubmitRejectsOversizedProof(t *testing.T) {
	for _, proofErr := range []error{helper.ErrProofTooLarge, helper.ErrProofTooManyPixels} {
		t.Run(proofErr.Error(), func(t *testing.T) {
			h := newHarness(t)
			h.svc.NormalizeProof = func(string) (string, error) {
				return "", fmt.Errorf("%w: 12000x12000", proofErr)
			}

			in := h.input(h.yoga)
			proof := "aGVsbG8="
			in.PaymentProof = &proof

			_, err := h.svc.Submit(context.Background(), in)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != "paymentProof" {
				t.Fatalf("err = %v, want paymentProof validation error", err)
			}
		})
	}
}

func TestSubmitRefuseClaimed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.submit(t, h.yoga)

	in := h.input(h.cardio, h.yoga)
	in.RefuseClaimed = true
	if _, err := h.svc.Submit(ctx, in); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("err = %v, want ErrAlreadyClaimed", err)
	}

	in.RefuseClaimed = false
	if _, err := h.svc.Submit(ctx, in); err != nil {
		t.Fatalf("Submit without the check: %v", err)
	}

	// rejected claims do not count
	h2 := newHarness(t)
	rejected := h2.submit(t, h2.yoga)
	if _, err := h2.svc.Reject(ctx, rejected.PaymentClaimID, nil, "blurry"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	again := h2.input(h2.yoga)
	again.RefuseClaimed = true
	if _, err := h2.svc.Submit(ctx, again); err != nil {
		t.Errorf("resubmit after rejection: %v", err)
	}
}

/* ========================= confirm / reject ========================= */

func TestConfirmGrantsOnlyNewCourses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// An earlier, unrelated claim already gave yoga.
	if _, err := h.grants.GrantIfAbsent(ctx, h.user.UserID, h.yoga.CourseID, 999); err != nil {
		t.Fatalf("pre-grant: %v", err)
	}
	claim := h.submit(t, h.yoga, h.pilates)

	res, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.CoursesGranted != 1 {
		t.Errorf("CoursesGranted = %d, want 1", res.CoursesGranted)
	}
	if res.Claim.PaymentClaimStatus != paymentModel.PaymentStatusConfirmed {
		t.Errorf("returned status = %q, want confirmed", res.Claim.PaymentClaimStatus)
	}
	if n := h.grantCount(t); n != 2 {
		t.Errorf("grant rows = %d, want 2", n)
	}

	g, err := h.grants.Find(ctx, h.user.UserID, h.yoga.CourseID)
	if err != nil {
		t.Fatalf("Find yoga grant: %v", err)
	}
	if g.CourseAccessGrantPaymentID != 999 {
		t.Errorf("yoga grant provenance = %d, want original 999", g.CourseAccessGrantPaymentID)
	}
}

func TestGrantIfAbsentIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.grants.GrantIfAbsent(ctx, h.user.UserID, h.cardio.CourseID, 1)
	if err != nil || !first {
		t.Fatalf("first grant = %v, %v; want true, nil", first, err)
	}
	second, err := h.grants.GrantIfAbsent(ctx, h.user.UserID, h.cardio.CourseID, 2)
	if err != nil || second {
		t.Fatalf("second grant = %v, %v; want false, nil", second, err)
	}
	if n := h.grantCount(t); n != 1 {
		t.Fatalf("grant rows = %d, want 1", n)
	}
}

func TestConfirmTwiceFailsWithAlreadyProcessed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	claim := h.submit(t, h.yoga, h.cardio)

	res, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil)
	if err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	if res.CoursesGranted != 2 {
		t.Fatalf("first CoursesGranted = %d, want 2", res.CoursesGranted)
	}

	res2, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil)
	if res2 != nil {
		t.Fatalf("second Confirm result = %+v, want nil", res2)
	}
	assertAlreadyProcessed(t, err, paymentModel.PaymentStatusConfirmed)
	if n := h.grantCount(t); n != 2 {
		t.Errorf("grant rows = %d, want 2", n)
	}
}

func TestReviewTransitionsAreTerminal(t *testing.T) {
	tests := []struct {
		name       string
		first      string
		second     string
		wantStatus string
	}{
		{"rejected claim cannot be confirmed", "reject", "confirm", paymentModel.PaymentStatusRejected},
		{"confirmed claim cannot be rejected", "confirm", "reject", paymentModel.PaymentStatusConfirmed},
		{"rejected claim cannot be rejected again", "reject", "reject", paymentModel.PaymentStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			claim := h.submit(t, h.yoga)

			do := func(action string) error {
				if action == "confirm" {
					_, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil)
					return err
				}
				_, err := h.svc.Reject(ctx, claim.PaymentClaimID, nil, "receipt unreadable")
				return err
			}

			if err := do(tt.first); err != nil {
				t.Fatalf("%s: %v", tt.first, err)
			}
			assertAlreadyProcessed(t, do(tt.second), tt.wantStatus)

			stored, _ := h.svc.Claims.FindByID(ctx, claim.PaymentClaimID)
			if stored.PaymentClaimStatus != tt.wantStatus {
				t.Errorf("stored status = %q, want %q", stored.PaymentClaimStatus, tt.wantStatus)
			}
		})
	}
}

func TestRejectTouchesNoGrants(t *testing.T) {
	h := newHarness(t)
	claim := h.submit(t, h.yoga)

	got, err := h.svc.Reject(context.Background(), claim.PaymentClaimID, nil, "")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.PaymentClaimStatus != paymentModel.PaymentStatusRejected || got.PaymentClaimReviewedAt == nil {
		t.Errorf("rejected claim = %+v", got)
	}
	if n := h.grantCount(t); n != 0 {
		t.Errorf("grant rows = %d, want 0", n)
	}
	if types := h.pub.types(); types[len(types)-1] != events.PaymentRejected {
		t.Errorf("last event = %v, want payment.rejected", types)
	}
}

func TestConfirmMissingClaimOrUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Confirm(ctx, 4242, nil); !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("unknown claim: err = %v, want ErrClaimNotFound", err)
	}
	if _, err := h.svc.Reject(ctx, 4242, nil, ""); !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("unknown claim reject: err = %v, want ErrClaimNotFound", err)
	}

	claim := h.submit(t, h.yoga)
	if err := h.db.Where("user_id = ?", h.user.UserID).Delete(&userModel.User{}).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("deleted user: err = %v, want ErrUserNotFound", err)
	}
	stored, _ := h.svc.Claims.FindByID(ctx, claim.PaymentClaimID)
	if stored.PaymentClaimStatus != paymentModel.PaymentStatusPending {
		t.Errorf("status after failed confirm = %q, want pending", stored.PaymentClaimStatus)
	}
}

func TestConcurrentConfirmOnlyOneWins(t *testing.T) {
	h := newHarness(t)
	claim := h.submit(t, h.yoga, h.pilates)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		processed int
		granted   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.svc.Confirm(context.Background(), claim.PaymentClaimID, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
				granted += res.CoursesGranted
			case errors.Is(err, ErrAlreadyProcessed):
				processed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || processed != workers-1 {
		t.Fatalf("wins = %d, already processed = %d; want 1 and %d", wins, processed, workers-1)
	}
	if granted != 2 {
		t.Errorf("total granted = %d, want 2", granted)
	}
	if n := h.grantCount(t); n != 2 {
		t.Errorf("grant rows = %d, want 2", n)
	}
}

func TestConfirmPartialGrantFailureKeepsClaimConfirmed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	claim := h.submit(t, h.yoga, h.pilates, h.cardio)

	store := h.svc.Grants
	h.svc.Grants = failingGrants{GrantStore: store, failCourse: h.pilates.CourseID}

	res, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil)
	if err != nil {
		t.Fatalf("Confirm with a failing grant must not fail: %v", err)
	}
	if res.CoursesGranted != 2 {
		t.Errorf("CoursesGranted = %d, want 2", res.CoursesGranted)
	}
	if len(res.Failed) != 1 || res.Failed[0] != h.pilates.CourseID {
		t.Errorf("Failed = %v, want [%d]", res.Failed, h.pilates.CourseID)
	}
	stored, _ := h.svc.Claims.FindByID(ctx, claim.PaymentClaimID)
	if stored.PaymentClaimStatus != paymentModel.PaymentStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", stored.PaymentClaimStatus)
	}

	h.svc.Grants = store
	again, err := h.svc.Regrant(ctx, claim.PaymentClaimID, nil)
	if err != nil {
		t.Fatalf("Regrant: %v", err)
	}
	if again.CoursesGranted != 1 {
		t.Errorf("Regrant CoursesGranted = %d, want 1", again.CoursesGranted)
	}
	if n := h.grantCount(t); n != 3 {
		t.Errorf("grant rows = %d, want 3", n)
	}
}

func TestConfirmSkipsCourseDeactivatedAfterSubmission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	claim := h.submit(t, h.yoga, h.cardio)

	if err := h.db.Model(h.cardio).Update("course_is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	res, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.CoursesGranted != 1 || len(res.Skipped) != 1 || res.Skipped[0] != h.cardio.CourseID {
		t.Errorf("result = granted %d skipped %v, want 1 and [%d]", res.CoursesGranted, res.Skipped, h.cardio.CourseID)
	}
}

func TestRegrantRequiresConfirmedClaim(t *testing.T) {
	h := newHarness(t)
	claim := h.submit(t, h.yoga)

	if _, err := h.svc.Regrant(context.Background(), claim.PaymentClaimID, nil); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("err = %v, want ErrNotConfirmed", err)
	}
}

func TestReconcileMissingGrants(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	claim := h.submit(t, h.yoga, h.pilates)

	store := h.svc.Grants
	h.svc.Grants = failingGrants{GrantStore: store, failCourse: h.yoga.CourseID}
	if _, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	h.svc.Grants = store

	rep, err := h.svc.ReconcileMissingGrants(ctx, 50)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Claims != 1 || rep.Granted != 1 || rep.Errors != 0 {
		t.Errorf("first run = %+v, want 1 claim, 1 granted", rep)
	}

	rep, err = h.svc.ReconcileMissingGrants(ctx, 50)
	if err != nil {
		t.Fatalf("Reconcile again: %v", err)
	}
	if rep.Claims != 0 {
		t.Errorf("second run = %+v, want nothing to do", rep)
	}
}

/* ========================= queries ========================= */

func TestAccessGatingScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.access.CheckAccess(ctx, "nobody@x.com", h.yoga.CourseID)
	if err != nil || res.HasAccess {
		t.Fatalf("unknown user: %+v, %v; want no access, nil", res, err)
	}

	res, _ = h.access.CheckAccess(ctx, "u@x.com", h.yoga.CourseID)
	if res.HasAccess {
		t.Fatal("user without claims has access")
	}

	claim := h.submit(t, h.yoga)
	res, _ = h.access.CheckAccess(ctx, "u@x.com", h.yoga.CourseID)
	if res.HasAccess {
		t.Fatal("pending claim granted access")
	}

	if _, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	res, err = h.access.CheckAccess(ctx, "U@X.COM", h.yoga.CourseID)
	if err != nil {
		t.Fatalf("CheckAccess: %v", err)
	}
	if !res.HasAccess || res.PaymentID == nil || *res.PaymentID != claim.PaymentClaimID || res.GrantedAt == nil {
		t.Fatalf("after confirm = %+v, want access via payment %d", res, claim.PaymentClaimID)
	}
}

func TestStatusByEmailPartition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pendingClaim := h.submit(t, h.yoga)
	confirmedClaim := h.submit(t, h.pilates)
	rejectedClaim := h.submit(t, h.cardio)

	if _, err := h.svc.Confirm(ctx, confirmedClaim.PaymentClaimID, nil); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := h.svc.Reject(ctx, rejectedClaim.PaymentClaimID, nil, ""); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	pending, confirmed, err := h.svc.StatusByEmail(ctx, "u@x.com")
	if err != nil {
		t.Fatalf("StatusByEmail: %v", err)
	}
	if len(pending) != 1 || pending[0].PaymentClaimID != pendingClaim.PaymentClaimID {
		t.Errorf("pending = %v, want only claim %d", pending, pendingClaim.PaymentClaimID)
	}
	if len(confirmed) != 1 || confirmed[0].PaymentClaimID != confirmedClaim.PaymentClaimID {
		t.Errorf("confirmed = %v, want only claim %d", confirmed, confirmedClaim.PaymentClaimID)
	}

	blocked, _ := h.svc.IsCourseBlocked(ctx, "u@x.com", h.cardio.CourseID)
	if blocked {
		t.Error("rejected claim blocks resubmission")
	}
	blocked, _ = h.svc.IsCourseBlocked(ctx, "u@x.com", h.yoga.CourseID)
	if !blocked {
		t.Error("pending claim does not block resubmission")
	}

	if _, _, err := h.svc.StatusByEmail(ctx, " "); err == nil {
		t.Error("empty email: want validation error")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.submit(t, h.yoga)
	h.submit(t, h.pilates)
	if _, err := h.svc.Confirm(ctx, a.PaymentClaimID, nil); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	rows, total, err := h.svc.List(ctx, paymentRepo.ListFilter{Status: paymentModel.PaymentStatusPending, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].PaymentClaimStatus != paymentModel.PaymentStatusPending {
		t.Errorf("pending list = %d rows, total %d", len(rows), total)
	}

	if _, _, err := h.svc.List(ctx, paymentRepo.ListFilter{Status: "paid"}); err == nil {
		t.Error("unknown status filter: want validation error")
	}

	detail, err := h.svc.Get(ctx, a.PaymentClaimID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	evs := detail.History
	if len(evs) != 2 || evs[0].PaymentReviewEventAction != paymentModel.ReviewActionSubmitted || evs[1].PaymentReviewEventAction != paymentModel.ReviewActionConfirmed {
		t.Errorf("review events = %+v, want submitted then confirmed", evs)
	}
	if len(detail.Grants) != 1 || detail.Grants[0].CourseAccessGrantCourseID != h.yoga.CourseID {
		t.Errorf("detail grants = %+v, want the yoga grant", detail.Grants)
	}
}

func TestReviewNoopTransitionOnPendingClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	claim := h.submit(t, h.yoga)
	h.svc.Claims = stuckClaims{ClaimStore: h.svc.Claims}

	for name, review := range map[string]func() error{
		"confirm": func() error { _, err := h.svc.Confirm(ctx, claim.PaymentClaimID, nil); return err },
		"reject":  func() error { _, err := h.svc.Reject(ctx, claim.PaymentClaimID, nil, ""); return err },
	} {
		err := review()
		var ap *AlreadyProcessedError
		if err == nil || errors.As(err, &ap) {
			t.Errorf("%s on a still pending claim = %v, want a plain error", name, err)
		}
	}
	if n := h.grantCount(t); n != 0 {
		t.Errorf("grants = %d, want 0", n)
	}
}
