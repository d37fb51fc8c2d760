// Package seed creates the data a fresh installation needs: the bootstrap
// admin account and the settings row.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/auth"
)

// AdminAccount describes the bootstrap admin
type AdminAccount struct {
	Email    string
	Username string
	Password string
}

// CreateDefaultData ensures the settings row and the bootstrap admin exist.
// Both steps run even if one fails; the errors are joined.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, admin AdminAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if err := repos.Settings.EnsureDefaults(ctx); err != nil {
		lgr.Error().Err(err).Msg("Error creating default settings")
		finalErr = errors.Join(finalErr, err)
	}

	if err := ensureAdmin(ctx, repos.Users, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

// ensureAdmin creates the admin account unless an admin already exists.
// An existing account with the admin email is promoted instead.
func ensureAdmin(ctx context.Context, users repositories.UserRepository, admin AdminAccount, lgr zerolog.Logger) error {
	admins, err := users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if admins > 0 {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return err
		}
		lgr.Warn().Int64("userID", existing.ID).Str("email", email).Msg("Promoted existing account to admin")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return err
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	username := admin.Username
	if username == "" {
		username = "admin"
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Str("email", email).Msg("Default admin user created successfully")
	return nil
}
