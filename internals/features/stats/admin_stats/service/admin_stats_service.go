package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
)

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

type CourseCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type ClaimStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	ConfirmedAmounts(ctx context.Context) ([]paymentModel.PaymentClaim, error)
}

type GrantCounter interface {
	Count(ctx context.Context) (int64, error)
}

type AdminStats struct {
	TotalUsers       int64            `json:"totalUsers"`
	ActiveCourses    int64            `json:"activeCourses"`
	Payments         map[string]int64 `json:"payments"`
	ConfirmedRevenue decimal.Decimal  `json:"confirmedRevenue"`
	TotalGrants      int64            `json:"totalGrants"`
	GeneratedAt      time.Time        `json:"generatedAt"`
}

type AdminStatsService struct {
	Users   UserCounter
	Courses CourseCounter
	Claims  ClaimStats
	Grants  GrantCounter

	now func() time.Time
}

func NewAdminStatsService(users UserCounter, courses CourseCounter, claims ClaimStats, grants GrantCounter) *AdminStatsService {
	return &AdminStatsService{Users: users, Courses: courses, Claims: claims, Grants: grants, now: time.Now}
}

// Snapshot reads every counter once. Revenue only counts confirmed claims.
func (s *AdminStatsService) Snapshot(ctx context.Context) (*AdminStats, error) {
	out := &AdminStats{ConfirmedRevenue: decimal.Zero, GeneratedAt: s.now().UTC()}

	var err error
	if out.TotalUsers, err = s.Users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if out.ActiveCourses, err = s.Courses.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	if out.Payments, err = s.Claims.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}
	if out.TotalGrants, err = s.Grants.Count(ctx); err != nil {
		return nil, fmt.Errorf("count grants: %w", err)
	}

	confirmed, err := s.Claims.ConfirmedAmounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	for _, c := range confirmed {
		out.ConfirmedRevenue = out.ConfirmedRevenue.Add(c.PaymentClaimTotalAmount)
	}
	return out, nil
}
