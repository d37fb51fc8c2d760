package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

// settingsCacheTTL bounds how stale the maintenance flag may be on a busy server
const settingsCacheTTL = 5 * time.Second

// SettingsService reads and writes the site settings
type SettingsService struct {
	repo     repositories.SettingsRepository
	activity *ActivityService
	now      Clock
	logger   zerolog.Logger

	mu       sync.Mutex
	cached   *models.SystemSettings
	cachedAt time.Time
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo repositories.SettingsRepository, activity *ActivityService, now Clock, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		activity: activity,
		now:      now,
		logger:   logger,
	}
}

// Get returns the current settings
func (s *SettingsService) Get(ctx context.Context) (*models.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.cachedAt) < settingsCacheTTL {
		cp := *s.cached
		return &cp, nil
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.cached, s.cachedAt = settings, s.now()
	cp := *settings
	return &cp, nil
}

// MaintenanceMode reports whether the site is in maintenance. Lookup errors count as off.
func (s *SettingsService) MaintenanceMode(ctx context.Context) bool {
	settings, err := s.Get(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read settings")
		return false
	}
	return settings.MaintenanceMode
}

// Update saves new settings. A missing maintenance flag keeps the current value.
func (s *SettingsService) Update(ctx context.Context, admin *models.User, req *dto.SettingsRequest) (*models.SystemSettings, error) {
	name := strings.TrimSpace(req.SiteName)
	if name == "" {
		return nil, apperrors.NewValidationError("siteName", "site name is required")
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.SiteName = name
	current.SiteDescription = strings.TrimSpace(req.SiteDescription)
	if req.MaintenanceMode != nil {
		current.MaintenanceMode = *req.MaintenanceMode
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached, s.cachedAt = nil, time.Time{}
	s.mu.Unlock()

	s.activity.Record(ctx, admin.ID, ActionSettingsUpdate, "Updated site settings")
	return current, nil
}
