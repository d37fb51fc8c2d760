package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/auth"
)

// UserService manages accounts: the admin user tools and self-service account removal.
// At most one admin exists and the last one can never be removed or demoted.
type UserService struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	storage  Storage
	activity *ActivityService
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repos *repositories.Repositories, storage Storage, activity *ActivityService, logger zerolog.Logger) *UserService {
	return &UserService{
		users:    repos.Users,
		sessions: repos.Sessions,
		storage:  storage,
		activity: activity,
		logger:   logger,
	}
}

// GetByID returns a user
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns users matching the admin filter
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	return s.users.List(ctx, filter)
}

// ToggleActive flips the active flag of a user and revokes their sessions on deactivation
func (s *UserService) ToggleActive(ctx context.Context, actor *models.User, targetID int64) (bool, error) {
	if actor.ID == targetID {
		return false, apperrors.NewBadRequestError("you cannot deactivate your own account")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	active := !target.IsActive
	if err := s.users.SetActive(ctx, targetID, active); err != nil {
		return false, err
	}
	if !active {
		if err := s.sessions.DeleteByUser(ctx, targetID, ""); err != nil {
			return false, err
		}
	}

	state := "Activated"
	if !active {
		state = "Deactivated"
	}
	s.activity.Record(ctx, actor.ID, ActionUserActive, state+" user "+target.Username)
	return active, nil
}

// UpdateRole changes a user's role under the single-admin and last-admin rules
func (s *UserService) UpdateRole(ctx context.Context, actor *models.User, targetID int64, role models.RoleType) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	switch {
	case target.Role == models.RoleAdmin && admins <= 1:
		return nil, apperrors.ErrLastAdmin
	case role == models.RoleAdmin && admins >= 1:
		return nil, apperrors.ErrAdminExists
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	target.Role = role

	s.activity.Record(ctx, actor.ID, ActionUserRole, "Set role of "+target.Username+" to "+string(role))
	return target, nil
}

// Delete removes another user's account
func (s *UserService) Delete(ctx context.Context, actor *models.User, targetID int64) error {
	if actor.ID == targetID {
		return apperrors.NewBadRequestError("you cannot delete your own account from the admin panel")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, target); err != nil {
		return err
	}

	s.activity.Record(ctx, actor.ID, ActionUserDelete, "Deleted user "+target.Username)
	return nil
}

// DeleteOwn removes the caller's account after re-verifying the password
func (s *UserService) DeleteOwn(ctx context.Context, userID int64, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "password is incorrect")
	}
	return s.remove(ctx, user)
}

func (s *UserService) remove(ctx context.Context, user *models.User) error {
	if user.IsAdmin() {
		admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.ErrLastAdmin
		}
	}

	orphans, err := s.users.Delete(ctx, user.ID)
	if err != nil {
		return err
	}
	removeFiles(s.storage, orphans)

	s.logger.Info().Int64("userID", user.ID).Int("files", len(orphans)).Msg("User deleted")
	return nil
}
