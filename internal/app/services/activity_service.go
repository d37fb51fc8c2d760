package services

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
)

// Activity actions written to the audit log
const (
	ActionRegister          = "user.register"
	ActionLogin             = "user.login"
	ActionLogout            = "user.logout"
	ActionPasswordChange    = "user.password_change"
	ActionPasswordReset     = "user.password_reset"
	ActionProfileUpdate     = "profile.update"
	ActionPostCreate        = "post.create"
	ActionPostUpdate        = "post.update"
	ActionPostDelete        = "post.delete"
	ActionPostConfirm       = "post.confirm"
	ActionPostImport        = "post.import"
	ActionJobCreate         = "job.create"
	ActionJobUpdate         = "job.update"
	ActionJobDelete         = "job.delete"
	ActionJobConfirm        = "job.confirm"
	ActionJobApply          = "job.apply"
	ActionApplicationStatus = "application.status"
	ActionEventCreate       = "event.create"
	ActionEventUpdate       = "event.update"
	ActionEventDelete       = "event.delete"
	ActionEventConfirm      = "event.confirm"
	ActionEventRegister     = "event.register"
	ActionConnectionAccept  = "connection.accept"
	ActionUserRole          = "admin.user_role"
	ActionUserActive        = "admin.user_active"
	ActionUserDelete        = "admin.user_delete"
	ActionSettingsUpdate    = "admin.settings"
)

// ActivityService appends audit log entries and forwards them to the broker
type ActivityService struct {
	repo      repositories.ActivityRepository
	publisher EventPublisher
	logger    zerolog.Logger
}

// NewActivityService creates a new ActivityService. publisher may be nil.
func NewActivityService(repo repositories.ActivityRepository, publisher EventPublisher, logger zerolog.Logger) *ActivityService {
	return &ActivityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Record appends an entry. A failed write is logged and never fails the caller.
func (s *ActivityService) Record(ctx context.Context, userID int64, action, description string) {
	entry := &models.ActivityLog{UserID: userID, Action: action, Description: description}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Str("action", action).Msg("Failed to record activity")
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(ctx, strconv.FormatInt(userID, 10), entry); err != nil {
			s.logger.Warn().Err(err).Int64("activityID", entry.ID).Msg("Failed to publish activity")
		}
	}
}

// List returns the audit log, newest first
func (s *ActivityService) List(ctx context.Context, page models.Page) ([]models.ActivityLog, int64, error) {
	return s.repo.List(ctx, page)
}
