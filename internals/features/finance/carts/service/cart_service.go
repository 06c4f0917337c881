package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rojasfit_backend/internals/caches"
	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
	paymentService "rojasfit_backend/internals/features/finance/payments/service"
)

var (
	ErrInvalidToken      = errors.New("invalid cart token")
	ErrCourseUnavailable = errors.New("course not available")
	ErrAlreadyPurchased  = errors.New("course already pending or purchased")
	ErrCartEmpty         = errors.New("cart is empty")
)

const DefaultTTL = 7 * 24 * time.Hour

type CourseLookup interface {
	FindActiveByIDs(ctx context.Context, ids []uint) (map[uint]courseModel.Course, error)
}

// PurchaseBlocker reports courses the email already has pending or confirmed.
type PurchaseBlocker interface {
	IsCourseBlocked(ctx context.Context, email string, courseID uint) (bool, error)
}

type ClaimSubmitter interface {
	Submit(ctx context.Context, in paymentService.SubmitInput) (*paymentModel.PaymentClaim, error)
}

type CartService struct {
	Store    caches.Store
	Courses  CourseLookup
	Blocker  PurchaseBlocker
	Payments ClaimSubmitter
	TTL      time.Duration
}

func NewCartService(store caches.Store, courses CourseLookup, blocker PurchaseBlocker, payments ClaimSubmitter, ttl time.Duration) *CartService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CartService{Store: store, Courses: courses, Blocker: blocker, Payments: payments, TTL: ttl}
}

type CartItem struct {
	CourseID    uint            `json:"courseId"`
	CourseSlug  string          `json:"courseSlug"`
	CourseTitle string          `json:"courseTitle"`
	Price       decimal.Decimal `json:"price"`
}

type Cart struct {
	Token string          `json:"token"`
	Items []CartItem      `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func (c *Cart) CourseIDs() []uint {
	out := make([]uint, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, it.CourseID)
	}
	return out
}

// NewToken issues an opaque cart token.
func NewToken() string { return uuid.NewString() }

func cartKey(token string) (string, error) {
	token = strings.TrimSpace(token)
	if _, err := uuid.Parse(token); err != nil {
		return "", ErrInvalidToken
	}
	return "cart:" + strings.ToLower(token), nil
}

// Get loads the cart and refreshes its TTL. Courses that were deactivated
// since they were added are dropped from the cart.
func (s *CartService) Get(ctx context.Context, token string) (*Cart, error) {
	key, err := cartKey(token)
	if err != nil {
		return nil, err
	}
	members, err := s.Store.SMembers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	cart := &Cart{Token: strings.ToLower(strings.TrimSpace(token)), Items: []CartItem{}, Total: decimal.Zero}
	if len(members) == 0 {
		return cart, nil
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	active, err := s.Courses.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}

	var stale []string
	for _, id := range ids {
		co, ok := active[id]
		if !ok {
			stale = append(stale, strconv.FormatUint(uint64(id), 10))
			continue
		}
		cart.Items = append(cart.Items, CartItem{
			CourseID:    co.CourseID,
			CourseSlug:  co.CourseSlug,
			CourseTitle: co.CourseTitle,
			Price:       co.CoursePrice,
		})
		cart.Total = cart.Total.Add(co.CoursePrice)
	}
	cart.Count = len(cart.Items)

	if len(stale) > 0 {
		if err := s.Store.SRem(ctx, key, stale...); err != nil {
			log.Printf("[WARN] cart %s: drop stale courses %v: %v", key, stale, err)
		}
	}
	if err := s.Store.SAdd(ctx, key, s.TTL); err != nil {
		log.Printf("[WARN] cart %s: refresh ttl: %v", key, err)
	}
	return cart, nil
}

// Add puts a course in the cart. Adding twice is a no-op. When email is
// given, courses it already has pending or confirmed are refused.
func (s *CartService) Add(ctx context.Context, token string, courseID uint, email string) (*Cart, error) {
	key, err := cartKey(token)
	if err != nil {
		return nil, err
	}
	active, err := s.Courses.FindActiveByIDs(ctx, []uint{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if _, ok := active[courseID]; !ok {
		return nil, ErrCourseUnavailable
	}
	if email = strings.TrimSpace(email); email != "" && s.Blocker != nil {
		blocked, err := s.Blocker.IsCourseBlocked(ctx, email, courseID)
		if err != nil {
			return nil, fmt.Errorf("check purchases: %w", err)
		}
		if blocked {
			return nil, ErrAlreadyPurchased
		}
	}
	if err := s.Store.SAdd(ctx, key, s.TTL, strconv.FormatUint(uint64(courseID), 10)); err != nil {
		return nil, fmt.Errorf("write cart: %w", err)
	}
	return s.Get(ctx, token)
}

// Remove takes a course out of the cart. Removing an absent course is a no-op.
func (s *CartService) Remove(ctx context.Context, token string, courseID uint) (*Cart, error) {
	key, err := cartKey(token)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SRem(ctx, key, strconv.FormatUint(uint64(courseID), 10)); err != nil {
		return nil, fmt.Errorf("write cart: %w", err)
	}
	return s.Get(ctx, token)
}

func (s *CartService) Clear(ctx context.Context, token string) error {
	key, err := cartKey(token)
	if err != nil {
		return err
	}
	return s.Store.Del(ctx, key)
}

type CheckoutInput struct {
	UserID          uint
	UserEmail       string
	UserName        string
	PaymentMethod   string
	PaymentProof    *string
	ReferenceNumber *string
	AdditionalNotes *string
}

// Checkout submits the cart as one payment claim priced from the catalog,
// then empties the cart.
func (s *CartService) Checkout(ctx context.Context, token string, in CheckoutInput) (*paymentModel.PaymentClaim, error) {
	cart, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	titles := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		if s.Blocker != nil {
			blocked, err := s.Blocker.IsCourseBlocked(ctx, in.UserEmail, it.CourseID)
			if err != nil {
				return nil, fmt.Errorf("check purchases: %w", err)
			}
			if blocked {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyPurchased, it.CourseTitle)
			}
		}
		titles = append(titles, it.CourseTitle)
	}
	uid := in.UserID
	total := cart.Total

	claim, err := s.Payments.Submit(ctx, paymentService.SubmitInput{
		UserID:          &uid,
		UserEmail:       in.UserEmail,
		UserName:        in.UserName,
		CourseIDs:       cart.CourseIDs(),
		CourseTitles:    titles,
		TotalAmount:     &total,
		PaymentMethod:   in.PaymentMethod,
		PaymentProof:    in.PaymentProof,
		ReferenceNumber: in.ReferenceNumber,
		AdditionalNotes: in.AdditionalNotes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Clear(ctx, token); err != nil {
		log.Printf("[WARN] cart checkout claim=%d: clear cart: %v", claim.PaymentClaimID, err)
	}
	return claim, nil
}
