package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/auth"
	"github.com/fitalumni/alumni/internal/pkg/email"
)

// ReservedUsername can never be taken through registration
const ReservedUsername = "admin"

// ReservedEmail is always refused on registration, alongside the configured admin email
const ReservedEmail = "admin@alumni.com"

// PasswordResetTTL is how long a mailed reset link stays valid
const PasswordResetTTL = time.Hour

// AuthConfig holds the registration rules that come from configuration
type AuthConfig struct {
	AdminEmail string
}

// SessionMeta describes the client a session is opened for
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthService handles registration, sessions and credentials
type AuthService struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	resets   repositories.PasswordResetRepository
	tokens   *auth.TokenService
	activity *ActivityService
	mailer   email.EmailService
	config   AuthConfig
	now      Clock
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repos *repositories.Repositories,
	tokens *auth.TokenService,
	activity *ActivityService,
	mailer email.EmailService,
	config AuthConfig,
	now Clock,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    repos.Users,
		sessions: repos.Sessions,
		resets:   repos.PasswordResets,
		tokens:   tokens,
		activity: activity,
		mailer:   mailer,
		config:   config,
		now:      now,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) isReserved(username, email string) bool {
	if strings.EqualFold(username, ReservedUsername) {
		return true
	}
	if email == ReservedEmail {
		return true
	}
	return s.config.AdminEmail != "" && email == normalizeEmail(s.config.AdminEmail)
}

func validateNewPassword(password, confirm string) error {
	if password != confirm {
		return apperrors.NewCustomError(apperrors.ErrPasswordMismatch, "password confirmation does not match")
	}
	if len(password) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}
	return nil
}

// Register creates a new account with the user or alumni role
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	emailAddr := normalizeEmail(req.Email)

	if err := validateNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	if s.isReserved(username, emailAddr) {
		return nil, apperrors.ErrReservedIdentity
	}

	role := models.RoleUser
	switch req.Role {
	case "", models.RoleUser:
	case models.RoleAlumni:
		role = models.RoleAlumni
	default:
		return nil, apperrors.NewCustomError(apperrors.ErrReservedIdentity, "the admin role cannot be requested")
	}

	if exists, err := s.users.ExistsByEmail(ctx, emailAddr); err != nil {
		return nil, err
	} else if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, apperrors.ErrUsernameAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")
	s.activity.Record(ctx, user.ID, ActionRegister, "Registered as "+string(role))
	return user, nil
}

// Login verifies the credentials and opens a session
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, meta SessionMeta) (*dto.SessionResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		auth.BurnPasswordCheck(req.Password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	now := s.now()
	session := &models.Session{
		ID:        auth.NewSessionID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokens.TTL()),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(session.ID, user.ID, now, session.ExpiresAt)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}
	user.LastLoginAt = &now

	s.activity.Record(ctx, user.ID, ActionLogin, "Logged in")
	return &dto.SessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// Authenticate resolves a session token to its active user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorizedError("invalid or expired session")
	}

	session, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, nil, apperrors.NewUnauthorizedError("session has ended")
		}
		return nil, nil, err
	}
	if session.UserID != claims.UserID {
		return nil, nil, apperrors.NewUnauthorizedError("invalid session")
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, nil, apperrors.NewUnauthorizedError("session has expired")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil, apperrors.NewUnauthorizedError("account no longer exists")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}
	return user, session, nil
}

// Logout ends the session
func (s *AuthService) Logout(ctx context.Context, userID int64, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.activity.Record(ctx, userID, ActionLogout, "Logged out")
	return nil
}

// ChangePassword re-verifies the current password and revokes every other session
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, sessionID string, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "current password is incorrect")
	}
	if err := validateNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.sessions.DeleteByUser(ctx, userID, sessionID); err != nil {
		return err
	}

	s.activity.Record(ctx, userID, ActionPasswordChange, "Changed password")
	return nil
}

// RequestPasswordReset mails a reset link when the email belongs to an account.
// It reports success either way so that accounts cannot be enumerated.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Error().Err(err).Msg("Failed to look up user for password reset")
		}
		return nil
	}

	token := &models.PasswordResetToken{
		Token:      uuid.New().String(),
		UserID:     user.ID,
		ExpiryDate: s.now().Add(PasswordResetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to store password reset token")
		return nil
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, user.Username, token.Token); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := validateNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return err
	}

	token, err := s.resets.Get(ctx, req.Token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return err
	}
	if token.Used {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if !s.now().Before(token.ExpiryDate) {
		return apperrors.ErrInvalidPasswordResetToken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	userID, err := s.resets.Redeem(ctx, token.Token, s.now(), hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return apperrors.ErrPasswordResetTokenUsed
		}
		return err
	}

	s.activity.Record(ctx, userID, ActionPasswordReset, "Reset password by email")
	return nil
}

// PurgeExpired removes expired sessions and spent reset tokens
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	now := s.now()
	sessions, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}
	tokens, err := s.resets.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}
	if sessions > 0 || tokens > 0 {
		s.logger.Info().Int64("sessions", sessions).Int64("resetTokens", tokens).Msg("Purged expired credentials")
	}
	return nil
}
