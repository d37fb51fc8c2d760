package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/auth"
)

func newAuthService(e *testEnv) *AuthService {
	tokens := auth.NewTokenService(auth.TokenConfig{SecretKey: "test-secret", TTL: time.Hour, TokenIssuer: "alumni-test"})
	return NewAuthService(e.repos, tokens, e.activity, e.mailer, AuthConfig{AdminEmail: "admin@fit.edu.vn"}, e.clock, e.logger)
}

func registerReq(username, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{Username: username, Email: email, Password: testPassword, ConfirmPassword: testPassword}
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	user, err := svc.Register(e.ctx, registerReq("lan", "Lan@FIT.edu.vn"))
	require.NoError(t, err)
	assert.Equal(t, "lan@fit.edu.vn", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.Equal(t, 1, e.activityCount(t, ActionRegister))

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := svc.Register(e.ctx, registerReq("lan2", "LAN@fit.edu.vn"))
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(e.ctx, registerReq("lan", "other@fit.edu.vn"))
		assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)
	})

	t.Run("duplicate username ignores case", func(t *testing.T) {
		_, err := svc.Register(e.ctx, registerReq("LAN", "third@fit.edu.vn"))
		assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)
	})
}

func TestRegisterRejections(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	tests := []struct {
		name string
		req  *dto.RegisterRequest
		want error
	}{
		{"reserved username", registerReq("Admin", "x@fit.edu.vn"), apperrors.ErrReservedIdentity},
		{"reserved email", registerReq("x", "admin@alumni.com"), apperrors.ErrReservedIdentity},
		{"configured admin email", registerReq("y", "ADMIN@fit.edu.vn"), apperrors.ErrReservedIdentity},
		{"password mismatch", &dto.RegisterRequest{Username: "z", Email: "z@fit.edu.vn", Password: "secret123", ConfirmPassword: "secret124"}, apperrors.ErrPasswordMismatch},
		{"short password", &dto.RegisterRequest{Username: "z", Email: "z@fit.edu.vn", Password: "abc", ConfirmPassword: "abc"}, apperrors.ErrValidationFailed},
		{"admin role", &dto.RegisterRequest{Username: "z", Email: "z@fit.edu.vn", Password: testPassword, ConfirmPassword: testPassword, Role: models.RoleAdmin}, apperrors.ErrReservedIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(e.ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, total, err := e.repos.Users.List(e.ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRegisterAlumni(t *testing.T) {
	e := newTestEnv(t)
	req := registerReq("minh", "minh@fit.edu.vn")
	req.Role = models.RoleAlumni

	user, err := newAuthService(e).Register(e.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAlumni, user.Role)
}

func TestLoginAndAuthenticate(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "hoa", models.RoleUser)

	resp, err := svc.Login(e.ctx, &dto.LoginRequest{Email: "HOA@fit.edu.vn", Password: testPassword}, SessionMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, e.now.Add(time.Hour), resp.ExpiresAt)
	assert.Equal(t, 1, e.db.SessionCount(user.ID))

	got, session, err := svc.Authenticate(e.ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.ID, session.UserID)

	require.NoError(t, svc.Logout(e.ctx, user.ID, session.ID))
	_, _, err = svc.Authenticate(e.ctx, resp.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLoginFailures(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	inactive := e.user(t, "quang", models.RoleUser)
	require.NoError(t, e.repos.Users.SetActive(e.ctx, inactive.ID, false))

	_, err := svc.Login(e.ctx, &dto.LoginRequest{Email: "nobody@fit.edu.vn", Password: testPassword}, SessionMeta{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(e.ctx, &dto.LoginRequest{Email: "quang@fit.edu.vn", Password: "wrong-password"}, SessionMeta{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(e.ctx, &dto.LoginRequest{Email: "quang@fit.edu.vn", Password: testPassword}, SessionMeta{})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	assert.Zero(t, e.db.SessionCount(inactive.ID))
}

func TestAuthenticateDeactivatedUser(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "tuan", models.RoleUser)

	resp, err := svc.Login(e.ctx, &dto.LoginRequest{Email: user.Email, Password: testPassword}, SessionMeta{})
	require.NoError(t, err)
	require.NoError(t, e.repos.Users.SetActive(e.ctx, user.ID, false))

	_, _, err = svc.Authenticate(e.ctx, resp.Token)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "nam", models.RoleUser)
	login := &dto.LoginRequest{Email: user.Email, Password: testPassword}

	first, err := svc.Login(e.ctx, login, SessionMeta{})
	require.NoError(t, err)
	_, err = svc.Login(e.ctx, login, SessionMeta{})
	require.NoError(t, err)
	require.Equal(t, 2, e.db.SessionCount(user.ID))

	_, current, err := svc.Authenticate(e.ctx, first.Token)
	require.NoError(t, err)

	err = svc.ChangePassword(e.ctx, user.ID, current.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newsecret", ConfirmPassword: "newsecret",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = svc.ChangePassword(e.ctx, user.ID, current.ID, &dto.ChangePasswordRequest{
		CurrentPassword: testPassword, NewPassword: "newsecret", ConfirmPassword: "different",
	})
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	require.NoError(t, svc.ChangePassword(e.ctx, user.ID, current.ID, &dto.ChangePasswordRequest{
		CurrentPassword: testPassword, NewPassword: "newsecret", ConfirmPassword: "newsecret",
	}))
	assert.Equal(t, 1, e.db.SessionCount(user.ID))

	_, err = svc.Login(e.ctx, &dto.LoginRequest{Email: user.Email, Password: "newsecret"}, SessionMeta{})
	assert.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "linh", models.RoleUser)

	require.NoError(t, svc.RequestPasswordReset(e.ctx, "unknown@fit.edu.vn"))
	assert.Zero(t, e.mailer.count("reset"))

	require.NoError(t, svc.RequestPasswordReset(e.ctx, user.Email))
	require.Equal(t, 1, e.mailer.count("reset"))
	token := e.mailer.last

	_, err := svc.Login(e.ctx, &dto.LoginRequest{Email: user.Email, Password: testPassword}, SessionMeta{})
	require.NoError(t, err)

	req := &dto.ResetPasswordRequest{Token: token, Password: "brandnew", ConfirmPassword: "brandnew"}
	require.NoError(t, svc.ResetPassword(e.ctx, req))
	assert.Zero(t, e.db.SessionCount(user.ID))

	assert.ErrorIs(t, svc.ResetPassword(e.ctx, req), apperrors.ErrPasswordResetTokenUsed)
	assert.ErrorIs(t, svc.ResetPassword(e.ctx, &dto.ResetPasswordRequest{
		Token: "missing", Password: "brandnew", ConfirmPassword: "brandnew",
	}), apperrors.ErrInvalidPasswordResetToken)
}

func TestPasswordResetTokenIsSingleUse(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "hai", models.RoleUser)

	require.NoError(t, svc.RequestPasswordReset(e.ctx, user.Email))
	token := e.mailer.last

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for _, password := range []string{"first-pick", "second-pick", "third-pick"} {
		wg.Add(1)
		go func(password string) {
			defer wg.Done()
			err := svc.ResetPassword(e.ctx, &dto.ResetPasswordRequest{Token: token, Password: password, ConfirmPassword: password})
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrPasswordResetTokenUsed)
		}(password)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, 1, e.activityCount(t, ActionPasswordReset))
}

func TestPasswordResetExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "nga", models.RoleUser)

	require.NoError(t, e.repos.PasswordResets.Create(e.ctx, &models.PasswordResetToken{
		Token: "stale", UserID: user.ID, ExpiryDate: e.now.Add(-time.Minute),
	}))
	err := svc.ResetPassword(e.ctx, &dto.ResetPasswordRequest{Token: "stale", Password: "brandnew", ConfirmPassword: "brandnew"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)

	_, err = svc.Login(e.ctx, &dto.LoginRequest{Email: user.Email, Password: testPassword}, SessionMeta{})
	assert.NoError(t, err)
}

func TestPurgeExpired(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)
	user := e.user(t, "khoa", models.RoleUser)

	require.NoError(t, e.repos.Sessions.Create(e.ctx, &models.Session{ID: "old", UserID: user.ID, ExpiresAt: e.now.Add(-time.Minute)}))
	require.NoError(t, e.repos.Sessions.Create(e.ctx, &models.Session{ID: "live", UserID: user.ID, ExpiresAt: e.now.Add(time.Hour)}))

	require.NoError(t, svc.PurgeExpired(e.ctx))
	assert.Equal(t, 1, e.db.SessionCount(user.ID))
}
