package services

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
)

const (
	recentActivityCount = 10
	growthMonths        = 6
	topEmployerCount    = 5
)

// AdminService answers the dashboard and analytics pages
type AdminService struct {
	stats    repositories.StatsRepository
	activity *ActivityService
	now      Clock
	logger   zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(repos *repositories.Repositories, activity *ActivityService, now Clock, logger zerolog.Logger) *AdminService {
	return &AdminService{
		stats:    repos.Stats,
		activity: activity,
		now:      now,
		logger:   logger,
	}
}

func (s *AdminService) recent(ctx context.Context) ([]models.ActivityLog, error) {
	entries, _, err := s.activity.List(ctx, models.Page{Number: 1, Size: recentActivityCount})
	return entries, err
}

// Dashboard returns the headline counters and the latest activity
func (s *AdminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.recent(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{Totals: totals, RecentActivities: recent}, nil
}

// growthSince returns the first day of the month growthMonths-1 months before now
func growthSince(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m-(growthMonths-1), 1, 0, 0, 0, 0, now.Location())
}

// SuccessRate returns accepted/total as a percentage rounded to one decimal
func SuccessRate(total, accepted int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(accepted)*1000/float64(total)) / 10
}

// Analytics gathers every breakdown shown on the analytics page
func (s *AdminService) Analytics(ctx context.Context) (*dto.AnalyticsResponse, error) {
	resp := &dto.AnalyticsResponse{Success: true}
	var err error

	if resp.Totals, err = s.stats.Totals(ctx); err != nil {
		return nil, err
	}
	if resp.RoleDistribution, err = s.stats.RoleDistribution(ctx); err != nil {
		return nil, err
	}
	if resp.UserGrowth, err = s.stats.MonthlySignups(ctx, growthSince(s.now())); err != nil {
		return nil, err
	}
	total, accepted, err := s.stats.ApplicationOutcome(ctx)
	if err != nil {
		return nil, err
	}
	resp.SuccessRate = SuccessRate(total, accepted)
	if resp.JobsByType, err = s.stats.JobsByType(ctx); err != nil {
		return nil, err
	}
	if resp.EventsByType, err = s.stats.EventsByType(ctx); err != nil {
		return nil, err
	}
	if resp.TopEmployers, err = s.stats.TopEmployers(ctx, topEmployerCount); err != nil {
		return nil, err
	}
	if resp.RecentActivities, err = s.recent(ctx); err != nil {
		return nil, err
	}
	return resp, nil
}

// Activities returns the audit log
func (s *AdminService) Activities(ctx context.Context, page models.Page) ([]models.ActivityLog, int64, error) {
	return s.activity.List(ctx, page)
}
