package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"

	"rojasfit_backend/internals/caches"
	accessModel "rojasfit_backend/internals/features/finance/access/model"
	accessRepo "rojasfit_backend/internals/features/finance/access/repository"
	userModel "rojasfit_backend/internals/features/users/users/model"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
)

type GrantReader interface {
	Find(ctx context.Context, userID, courseID uint) (*accessModel.CourseAccessGrant, error)
	ListByUser(ctx context.Context, userID uint) ([]accessModel.CourseAccessGrant, error)
}

type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*userModel.User, error)
}

// AccessResult is the answer for one (user, course) pair.
type AccessResult struct {
	HasAccess bool       `json:"hasAccess"`
	PaymentID *uint      `json:"paymentId,omitempty"`
	GrantedAt *time.Time `json:"grantedAt,omitempty"`
}

type AccessService struct {
	Users  UserLookup
	Grants GrantReader
	// Cache is optional; nil disables caching.
	Cache caches.Store
	TTL   time.Duration
}

func NewAccessService(users UserLookup, grants GrantReader, cache caches.Store, ttl time.Duration) *AccessService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AccessService{Users: users, Grants: grants, Cache: cache, TTL: ttl}
}

func cacheKey(userID, courseID uint) string {
	return fmt.Sprintf("access:%d:%d", userID, courseID)
}

// CheckAccess answers whether the user behind email may view courseID.
// Unknown users simply have no access.
func (s *AccessService) CheckAccess(ctx context.Context, email string, courseID uint) (AccessResult, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, userRepo.ErrUserNotFound) {
		return AccessResult{}, nil
	}
	if err != nil {
		return AccessResult{}, err
	}
	return s.CheckAccessByUserID(ctx, user.UserID, courseID)
}

func (s *AccessService) CheckAccessByUserID(ctx context.Context, userID, courseID uint) (AccessResult, error) {
	key := cacheKey(userID, courseID)
	if s.Cache != nil {
		if raw, ok, err := s.Cache.Get(ctx, key); err != nil {
			log.Printf("[WARN] access cache get %s: %v", key, err)
		} else if ok {
			var res AccessResult
			if err := sonic.UnmarshalString(raw, &res); err == nil {
				return res, nil
			}
		}
	}

	res := AccessResult{}
	g, err := s.Grants.Find(ctx, userID, courseID)
	switch {
	case errors.Is(err, accessRepo.ErrGrantNotFound):
	case err != nil:
		return AccessResult{}, err
	default:
		pid := g.CourseAccessGrantPaymentID
		at := g.CourseAccessGrantGrantedAt
		res = AccessResult{HasAccess: true, PaymentID: &pid, GrantedAt: &at}
	}

	if s.Cache != nil {
		if raw, err := sonic.MarshalString(res); err == nil {
			if err := s.Cache.Set(ctx, key, raw, s.TTL); err != nil {
				log.Printf("[WARN] access cache set %s: %v", key, err)
			}
		}
	}
	return res, nil
}

// Invalidate drops cached answers so new grants are visible immediately.
func (s *AccessService) Invalidate(ctx context.Context, userID uint, courseIDs ...uint) {
	if s.Cache == nil || len(courseIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, cacheKey(userID, id))
	}
	if err := s.Cache.Del(ctx, keys...); err != nil {
		log.Printf("[WARN] access cache invalidate user=%d: %v", userID, err)
	}
}

// GrantsForUser lists the courses the user holds grants for.
func (s *AccessService) GrantsForUser(ctx context.Context, userID uint) ([]accessModel.CourseAccessGrant, error) {
	return s.Grants.ListByUser(ctx, userID)
}
