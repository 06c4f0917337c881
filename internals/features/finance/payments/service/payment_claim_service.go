package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"rojasfit_backend/internals/events"
	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	accessModel "rojasfit_backend/internals/features/finance/access/model"
	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
	paymentRepo "rojasfit_backend/internals/features/finance/payments/repository"
	userModel "rojasfit_backend/internals/features/users/users/model"
	helper "rojasfit_backend/internals/helpers"
	"rojasfit_backend/internals/notifications"
)

/* =======================================================================
   Collaborators
======================================================================= */

type ClaimStore interface {
	Create(ctx context.Context, claim *paymentModel.PaymentClaim, ev *paymentModel.PaymentReviewEvent) error
	FindByID(ctx context.Context, id uint) (*paymentModel.PaymentClaim, error)
	Transition(ctx context.Context, id uint, from, to string, reviewer *uint, ev *paymentModel.PaymentReviewEvent) (bool, error)
	ListByEmail(ctx context.Context, email string, statuses ...string) ([]paymentModel.PaymentClaim, error)
	HasOpenOrConfirmedItem(ctx context.Context, email string, courseID uint) (bool, error)
	List(ctx context.Context, f paymentRepo.ListFilter) ([]paymentModel.PaymentClaim, int64, error)
	AddEvent(ctx context.Context, ev *paymentModel.PaymentReviewEvent) error
	ListEvents(ctx context.Context, claimID uint) ([]paymentModel.PaymentReviewEvent, error)
	ListConfirmedMissingGrants(ctx context.Context, limit int) ([]uint, error)
}

type GrantStore interface {
	GrantIfAbsent(ctx context.Context, userID, courseID, paymentID uint) (bool, error)
	ListByPayment(ctx context.Context, paymentID uint) ([]accessModel.CourseAccessGrant, error)
}

type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*userModel.User, error)
}

type CourseLookup interface {
	FindActiveByIDs(ctx context.Context, ids []uint) (map[uint]courseModel.Course, error)
}

// AccessInvalidator drops cached access answers after new grants.
type AccessInvalidator interface {
	Invalidate(ctx context.Context, userID uint, courseIDs ...uint)
}

/* =======================================================================
   Service
======================================================================= */

type PaymentClaimService struct {
	Claims  ClaimStore
	Grants  GrantStore
	Users   UserLookup
	Courses CourseLookup

	Access     AccessInvalidator
	Events     events.Publisher
	Mailer     notifications.Mailer
	AdminEmail string

	NormalizeProof func(raw string) (string, error)

	validate *validator.Validate
	now      func() time.Time
}

func NewPaymentClaimService(claims ClaimStore, grants GrantStore, users UserLookup, courses CourseLookup) *PaymentClaimService {
	return &PaymentClaimService{
		Claims:         claims,
		Grants:         grants,
		Users:          users,
		Courses:        courses,
		Events:         events.NoopPublisher{},
		Mailer:         notifications.LogMailer{},
		NormalizeProof: helper.NormalizeProofImage,
		validate:       validator.New(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// maxTotalAmount is the first value numeric(12,2) cannot hold.
var maxTotalAmount = decimal.New(1, 10)

// SubmitInput is a payment claim as sent by the storefront.
type SubmitInput struct {
	UserID          *uint
	UserEmail       string
	UserName        string
	CourseIDs       []uint
	CourseTitles    []string
	TotalAmount     *decimal.Decimal
	PaymentMethod   string
	PaymentProof    *string
	ReferenceNumber *string
	AdditionalNotes *string

	// RefuseClaimed fails the submission with ErrAlreadyClaimed when the
	// email already has one of the courses pending or confirmed.
	RefuseClaimed bool
}

// ConfirmResult reports the outcome of a grant fan-out.
type ConfirmResult struct {
	Claim          *paymentModel.PaymentClaim
	CoursesGranted int
	// Skipped are courses no longer active at review time.
	Skipped []uint
	// Failed are courses whose grant insert errored.
	Failed []uint
}

/* =======================================================================
   Submit
======================================================================= */

func (s *PaymentClaimService) validateSubmit(in *SubmitInput) error {
	in.UserEmail = userModel.NormalizeEmail(in.UserEmail)
	in.UserName = strings.TrimSpace(in.UserName)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.CourseTitles = append([]string(nil), in.CourseTitles...)

	switch {
	case in.UserID == nil || *in.UserID == 0:
		return invalid("userId", "is required")
	case in.UserEmail == "":
		return invalid("userEmail", "is required")
	case s.validate.Var(in.UserEmail, "email") != nil:
		return invalid("userEmail", "must be a valid email")
	case in.UserName == "":
		return invalid("userName", "is required")
	case len(in.CourseIDs) == 0:
		return invalid("courseIds", "must contain at least one course")
	case len(in.CourseTitles) == 0:
		return invalid("courseTitles", "is required")
	case len(in.CourseIDs) != len(in.CourseTitles):
		return invalid("courseTitles", fmt.Sprintf("has %d entries but courseIds has %d", len(in.CourseTitles), len(in.CourseIDs)))
	case in.TotalAmount == nil:
		return invalid("totalAmount", "is required")
	case !in.TotalAmount.IsPositive():
		return invalid("totalAmount", "must be greater than 0")
	case !in.TotalAmount.Equal(in.TotalAmount.Truncate(2)):
		return invalid("totalAmount", "must have at most 2 decimal places")
	case !in.TotalAmount.LessThan(maxTotalAmount):
		return invalid("totalAmount", "must be less than 10000000000")
	case in.PaymentMethod == "":
		return invalid("paymentMethod", "is required")
	case len(in.PaymentMethod) > 40:
		return invalid("paymentMethod", "must be at most 40 characters")
	}

	seen := make(map[uint]struct{}, len(in.CourseIDs))
	for i, id := range in.CourseIDs {
		if id == 0 {
			return invalid("courseIds", fmt.Sprintf("entry %d is not a valid course id", i))
		}
		if _, dup := seen[id]; dup {
			return invalid("courseIds", fmt.Sprintf("course %d is listed twice", id))
		}
		seen[id] = struct{}{}
		in.CourseTitles[i] = strings.TrimSpace(in.CourseTitles[i])
		if in.CourseTitles[i] == "" {
			return invalid("courseTitles", fmt.Sprintf("entry %d is empty", i))
		}
	}
	return nil
}

// Submit validates and records a pending claim. No access is granted here.
func (s *PaymentClaimService) Submit(ctx context.Context, in SubmitInput) (*paymentModel.PaymentClaim, error) {
	if err := s.validateSubmit(&in); err != nil {
		return nil, err
	}

	active, err := s.Courses.FindActiveByIDs(ctx, in.CourseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	for _, id := range in.CourseIDs {
		if _, ok := active[id]; !ok {
			return nil, invalid("courseIds", fmt.Sprintf("course %d is not available", id))
		}
	}
	if in.RefuseClaimed {
		for _, id := range in.CourseIDs {
			claimed, err := s.IsCourseBlocked(ctx, in.UserEmail, id)
			if err != nil {
				return nil, fmt.Errorf("check purchases: %w", err)
			}
			if claimed {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyClaimed, active[id].CourseTitle)
			}
		}
	}

	var proof *string
	if in.PaymentProof != nil && strings.TrimSpace(*in.PaymentProof) != "" {
		normalized, err := s.NormalizeProof(*in.PaymentProof)
		if errors.Is(err, helper.ErrProofTooLarge) {
			return nil, invalid("paymentProof", "must be at most 8MB")
		}
		if errors.Is(err, helper.ErrProofTooManyPixels) {
			return nil, invalid("paymentProof", "image must be at most 40 megapixels")
		}
		if err != nil {
			return nil, fmt.Errorf("normalize proof: %w", err)
		}
		proof = &normalized
	}

	claim := &paymentModel.PaymentClaim{
		PaymentClaimUserID:          in.UserID,
		PaymentClaimUserEmail:       in.UserEmail,
		PaymentClaimUserName:        in.UserName,
		PaymentClaimTotalAmount:     *in.TotalAmount,
		PaymentClaimMethod:          in.PaymentMethod,
		PaymentClaimProof:           proof,
		PaymentClaimReferenceNumber: trimPtr(in.ReferenceNumber),
		PaymentClaimNotes:           trimPtr(in.AdditionalNotes),
		PaymentClaimStatus:          paymentModel.PaymentStatusPending,
		Items:                       make([]paymentModel.PaymentClaimItem, 0, len(in.CourseIDs)),
	}
	for i, id := range in.CourseIDs {
		claim.Items = append(claim.Items, paymentModel.PaymentClaimItem{
			PaymentClaimItemCourseID:    id,
			PaymentClaimItemCourseTitle: in.CourseTitles[i],
			PaymentClaimItemPrice:       active[id].CoursePrice,
			PaymentClaimItemPosition:    i,
		})
	}

	ev := s.newEvent(paymentModel.ReviewActionSubmitted, in.UserID, map[string]any{
		"courseIds":     in.CourseIDs,
		"totalAmount":   in.TotalAmount.String(),
		"paymentMethod": in.PaymentMethod,
	})
	if err := s.Claims.Create(ctx, claim, ev); err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}
	log.Printf("[INFO] payment claim %d submitted by %s (%d courses, total %s)",
		claim.PaymentClaimID, claim.PaymentClaimUserEmail, len(claim.Items), claim.PaymentClaimTotalAmount)

	s.publish(ctx, events.PaymentSubmitted, claim, 0, in.UserID)
	s.mail(ctx, claim, 0, notifications.ClaimReceived)
	if s.AdminEmail != "" {
		s.mail(ctx, claim, 0, func(d notifications.ClaimMail) (notifications.Message, error) {
			return notifications.AdminNewClaim(s.AdminEmail, d)
		})
	}
	return claim, nil
}

/* =======================================================================
   Review
======================================================================= */

// Confirm moves a pending claim to confirmed and grants every course in it.
// Grant failures after the status commit are logged and reported in the
// result, never rolled back.
func (s *PaymentClaimService) Confirm(ctx context.Context, id uint, reviewer *uint) (*ConfirmResult, error) {
	claim, err := s.Claims.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claim.IsPending() {
		return nil, &AlreadyProcessedError{Status: claim.PaymentClaimStatus}
	}

	user, err := s.Users.FindByEmail(ctx, claim.PaymentClaimUserEmail)
	if err != nil {
		return nil, err
	}

	ev := s.newEvent(paymentModel.ReviewActionConfirmed, reviewer, map[string]any{
		"userId":    user.UserID,
		"courseIds": claim.CourseIDs(),
	})
	moved, err := s.Claims.Transition(ctx, id, paymentModel.PaymentStatusPending, paymentModel.PaymentStatusConfirmed, reviewer, ev)
	if err != nil {
		return nil, fmt.Errorf("confirm claim %d: %w", id, err)
	}
	if !moved {
		return nil, s.lostRace(ctx, id)
	}

	now := s.now()
	claim.PaymentClaimStatus = paymentModel.PaymentStatusConfirmed
	claim.PaymentClaimReviewedAt = &now
	claim.PaymentClaimReviewedBy = reviewer
	claim.UpdatedAt = now

	res := s.fanOut(ctx, claim, user.UserID)
	log.Printf("[INFO] payment claim %d confirmed: %d/%d courses newly granted to user %d",
		id, res.CoursesGranted, len(claim.Items), user.UserID)

	s.publish(ctx, events.PaymentConfirmed, claim, res.CoursesGranted, reviewer)
	s.mail(ctx, claim, res.CoursesGranted, notifications.ClaimConfirmed)
	return res, nil
}

// Reject moves a pending claim to rejected. Grants are never touched.
func (s *PaymentClaimService) Reject(ctx context.Context, id uint, reviewer *uint, reason string) (*paymentModel.PaymentClaim, error) {
	claim, err := s.Claims.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claim.IsPending() {
		return nil, &AlreadyProcessedError{Status: claim.PaymentClaimStatus}
	}

	payload := map[string]any{}
	if reason = strings.TrimSpace(reason); reason != "" {
		payload["reason"] = reason
	}
	ev := s.newEvent(paymentModel.ReviewActionRejected, reviewer, payload)
	moved, err := s.Claims.Transition(ctx, id, paymentModel.PaymentStatusPending, paymentModel.PaymentStatusRejected, reviewer, ev)
	if err != nil {
		return nil, fmt.Errorf("reject claim %d: %w", id, err)
	}
	if !moved {
		return nil, s.lostRace(ctx, id)
	}

	now := s.now()
	claim.PaymentClaimStatus = paymentModel.PaymentStatusRejected
	claim.PaymentClaimReviewedAt = &now
	claim.PaymentClaimReviewedBy = reviewer
	claim.UpdatedAt = now
	log.Printf("[INFO] payment claim %d rejected", id)

	s.publish(ctx, events.PaymentRejected, claim, 0, reviewer)
	s.mail(ctx, claim, 0, notifications.ClaimRejected)
	return claim, nil
}

// Regrant re-applies the grants of a confirmed claim. Safe to repeat.
func (s *PaymentClaimService) Regrant(ctx context.Context, id uint, actor *uint) (*ConfirmResult, error) {
	claim, err := s.Claims.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.PaymentClaimStatus != paymentModel.PaymentStatusConfirmed {
		return nil, ErrNotConfirmed
	}
	user, err := s.Users.FindByEmail(ctx, claim.PaymentClaimUserEmail)
	if err != nil {
		return nil, err
	}

	res := s.fanOut(ctx, claim, user.UserID)
	if res.CoursesGranted > 0 {
		ev := s.newEvent(paymentModel.ReviewActionRegranted, actor, map[string]any{
			"userId":         user.UserID,
			"coursesGranted": res.CoursesGranted,
		})
		if err := s.Claims.AddEvent(ctx, ev); err != nil {
			log.Printf("[WARN] payment claim %d: audit regrant: %v", id, err)
		}
		s.publish(ctx, events.PaymentRegranted, claim, res.CoursesGranted, actor)
	}
	log.Printf("[INFO] payment claim %d regrant: %d courses newly granted", id, res.CoursesGranted)
	return res, nil
}

func (s *PaymentClaimService) fanOut(ctx context.Context, claim *paymentModel.PaymentClaim, userID uint) *ConfirmResult {
	res := &ConfirmResult{Claim: claim}
	ids := claim.CourseIDs()

	active, err := s.Courses.FindActiveByIDs(ctx, ids)
	if err != nil {
		// Claim was validated on submission; grant everything rather than block.
		log.Printf("[WARN] payment claim %d: course re-validation failed, granting all: %v", claim.PaymentClaimID, err)
		active = nil
	}

	granted := make([]uint, 0, len(ids))
	for _, courseID := range ids {
		if active != nil {
			if _, ok := active[courseID]; !ok {
				log.Printf("[WARN] payment claim %d: course %d no longer active, not granted", claim.PaymentClaimID, courseID)
				res.Skipped = append(res.Skipped, courseID)
				continue
			}
		}
		inserted, err := s.Grants.GrantIfAbsent(ctx, userID, courseID, claim.PaymentClaimID)
		if err != nil {
			log.Printf("[WARN] payment claim %d: grant course %d to user %d failed: %v", claim.PaymentClaimID, courseID, userID, err)
			res.Failed = append(res.Failed, courseID)
			continue
		}
		if inserted {
			res.CoursesGranted++
			granted = append(granted, courseID)
		}
	}

	if len(res.Failed) > 0 {
		log.Printf("[ERROR] payment claim %d: partial grant failure, courses %v not granted; run regrant to retry",
			claim.PaymentClaimID, res.Failed)
	}
	if s.Access != nil && len(granted) > 0 {
		s.Access.Invalidate(ctx, userID, granted...)
	}
	return res
}

// lostRace reloads the claim after a conditional update matched no row.
func (s *PaymentClaimService) lostRace(ctx context.Context, id uint) error {
	current, err := s.Claims.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsTerminal() {
		return fmt.Errorf("payment claim %d still %s after conditional update", id, current.PaymentClaimStatus)
	}
	return &AlreadyProcessedError{Status: current.PaymentClaimStatus}
}

/* =======================================================================
   Queries
======================================================================= */

// StatusByEmail partitions the email's claims. Rejected claims are in neither list.
func (s *PaymentClaimService) StatusByEmail(ctx context.Context, email string) (pending, confirmed []paymentModel.PaymentClaim, err error) {
	email = userModel.NormalizeEmail(email)
	if email == "" {
		return nil, nil, invalid("email", "is required")
	}
	rows, err := s.Claims.ListByEmail(ctx, email, paymentModel.PaymentStatusPending, paymentModel.PaymentStatusConfirmed)
	if err != nil {
		return nil, nil, err
	}
	pending = []paymentModel.PaymentClaim{}
	confirmed = []paymentModel.PaymentClaim{}
	for _, c := range rows {
		switch c.PaymentClaimStatus {
		case paymentModel.PaymentStatusPending:
			pending = append(pending, c)
		case paymentModel.PaymentStatusConfirmed:
			confirmed = append(confirmed, c)
		}
	}
	return pending, confirmed, nil
}

// IsCourseBlocked reports whether email already has courseID pending or confirmed.
func (s *PaymentClaimService) IsCourseBlocked(ctx context.Context, email string, courseID uint) (bool, error) {
	email = userModel.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	return s.Claims.HasOpenOrConfirmedItem(ctx, email, courseID)
}

// ClaimDetail is one claim with its audit trail and the grants recorded
// against it. Courses the user already owned keep their older payment id.
type ClaimDetail struct {
	Claim   *paymentModel.PaymentClaim
	History []paymentModel.PaymentReviewEvent
	Grants  []accessModel.CourseAccessGrant
}

func (s *PaymentClaimService) Get(ctx context.Context, id uint) (*ClaimDetail, error) {
	claim, err := s.Claims.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	evs, err := s.Claims.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	grants, err := s.Grants.ListByPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClaimDetail{Claim: claim, History: evs, Grants: grants}, nil
}

func (s *PaymentClaimService) List(ctx context.Context, f paymentRepo.ListFilter) ([]paymentModel.PaymentClaim, int64, error) {
	switch f.Status {
	case "", paymentModel.PaymentStatusPending, paymentModel.PaymentStatusConfirmed, paymentModel.PaymentStatusRejected:
	default:
		return nil, 0, invalid("status", "must be one of pending, confirmed, rejected")
	}
	return s.Claims.List(ctx, f)
}

/* =======================================================================
   Reconciliation
======================================================================= */

type ReconcileReport struct {
	Claims  int
	Granted int
	Errors  int
}

// ReconcileMissingGrants re-applies grants for confirmed claims that are
// missing some. Per-claim errors are counted, not returned.
func (s *PaymentClaimService) ReconcileMissingGrants(ctx context.Context, limit int) (ReconcileReport, error) {
	var rep ReconcileReport
	if limit <= 0 {
		limit = 100
	}
	ids, err := s.Claims.ListConfirmedMissingGrants(ctx, limit)
	if err != nil {
		return rep, fmt.Errorf("list confirmed claims missing grants: %w", err)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Claims++
		res, err := s.Regrant(ctx, id, nil)
		if err != nil {
			log.Printf("[WARN] reconcile claim %d: %v", id, err)
			rep.Errors++
			continue
		}
		rep.Granted += res.CoursesGranted
		rep.Errors += len(res.Failed)
	}
	return rep, nil
}

/* =======================================================================
   Side effects (best effort)
======================================================================= */

func (s *PaymentClaimService) newEvent(action string, actor *uint, payload map[string]any) *paymentModel.PaymentReviewEvent {
	ev := &paymentModel.PaymentReviewEvent{
		PaymentReviewEventAction:  action,
		PaymentReviewEventActorID: actor,
	}
	if len(payload) > 0 {
		if raw, err := sonic.Marshal(payload); err == nil {
			ev.PaymentReviewEventPayload = datatypes.JSON(raw)
		}
	}
	return ev
}

func (s *PaymentClaimService) publish(ctx context.Context, typ string, claim *paymentModel.PaymentClaim, granted int, actor *uint) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.PaymentEvent{
		Type:           typ,
		PaymentID:      claim.PaymentClaimID,
		UserEmail:      claim.PaymentClaimUserEmail,
		CourseIDs:      claim.CourseIDs(),
		CoursesGranted: granted,
		ReviewedBy:     actor,
		At:             s.now(),
	})
	if err != nil {
		log.Printf("[WARN] publish %s for claim %d: %v", typ, claim.PaymentClaimID, err)
	}
}

func (s *PaymentClaimService) mail(ctx context.Context, claim *paymentModel.PaymentClaim, granted int, build func(notifications.ClaimMail) (notifications.Message, error)) {
	if s.Mailer == nil {
		return
	}
	ref := ""
	if claim.PaymentClaimReferenceNumber != nil {
		ref = *claim.PaymentClaimReferenceNumber
	}
	msg, err := build(notifications.ClaimMail{
		PaymentID:      claim.PaymentClaimID,
		UserName:       claim.PaymentClaimUserName,
		UserEmail:      claim.PaymentClaimUserEmail,
		CourseTitles:   claim.CourseTitles(),
		TotalAmount:    claim.PaymentClaimTotalAmount,
		PaymentMethod:  claim.PaymentClaimMethod,
		Reference:      ref,
		CoursesGranted: granted,
	})
	if err != nil {
		log.Printf("[WARN] build mail for claim %d: %v", claim.PaymentClaimID, err)
		return
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		log.Printf("[WARN] send mail %q for claim %d: %v", msg.Subject, claim.PaymentClaimID, err)
	}
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
