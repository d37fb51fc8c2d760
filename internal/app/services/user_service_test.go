package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func TestLastAdminRules(t *testing.T) {
	e := newTestEnv(t)
	svc := NewUserService(e.repos, e.storage, e.activity, e.logger)
	admin := e.user(t, "root", models.RoleAdmin)
	alumni := e.user(t, "an", models.RoleAlumni)

	t.Run("last admin cannot delete own account", func(t *testing.T) {
		err := svc.DeleteOwn(e.ctx, admin.ID, testPassword)
		assert.ErrorIs(t, err, apperrors.ErrLastAdmin)
		_, err = e.repos.Users.GetByID(e.ctx, admin.ID)
		assert.NoError(t, err)
	})

	t.Run("last admin cannot be demoted", func(t *testing.T) {
		_, err := svc.UpdateRole(e.ctx, admin, admin.ID, models.RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrLastAdmin)
	})

	t.Run("second admin is refused", func(t *testing.T) {
		_, err := svc.UpdateRole(e.ctx, admin, alumni.ID, models.RoleAdmin)
		assert.ErrorIs(t, err, apperrors.ErrAdminExists)
	})

	t.Run("admin cannot delete or deactivate self", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(e.ctx, admin, admin.ID), apperrors.ErrBadRequest)
		_, err := svc.ToggleActive(e.ctx, admin, admin.ID)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("other roles change freely", func(t *testing.T) {
		updated, err := svc.UpdateRole(e.ctx, admin, alumni.ID, models.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, updated.Role)
	})
}

func TestToggleActiveRevokesSessions(t *testing.T) {
	e := newTestEnv(t)
	svc := NewUserService(e.repos, e.storage, e.activity, e.logger)
	admin := e.user(t, "root", models.RoleAdmin)
	user := e.user(t, "binh", models.RoleUser)
	require.NoError(t, e.repos.Sessions.Create(e.ctx, &models.Session{ID: "s1", UserID: user.ID, ExpiresAt: e.now.Add(time.Hour)}))

	active, err := svc.ToggleActive(e.ctx, admin, user.ID)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Zero(t, e.db.SessionCount(user.ID))

	active, err = svc.ToggleActive(e.ctx, admin, user.ID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 2, e.activityCount(t, ActionUserActive))
}

func TestDeleteUserRemovesOwnedFiles(t *testing.T) {
	e := newTestEnv(t)
	users := NewUserService(e.repos, e.storage, e.activity, e.logger)
	profiles := NewProfileService(e.repos, e.storage, e.activity, e.logger)
	admin := e.user(t, "root", models.RoleAdmin)
	user := e.user(t, "chi", models.RoleUser)

	avatar, err := profiles.UpdateAvatar(e.ctx, user.ID, image("me.png"))
	require.NoError(t, err)
	require.True(t, e.storage.has(avatar))

	require.NoError(t, users.Delete(e.ctx, admin, user.ID))
	assert.False(t, e.storage.has(avatar))
	_, err = e.repos.Users.GetByID(e.ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDeleteOwnRequiresPassword(t *testing.T) {
	e := newTestEnv(t)
	svc := NewUserService(e.repos, e.storage, e.activity, e.logger)
	user := e.user(t, "dung", models.RoleUser)

	assert.ErrorIs(t, svc.DeleteOwn(e.ctx, user.ID, "wrong"), apperrors.ErrInvalidCredentials)
	require.NoError(t, svc.DeleteOwn(e.ctx, user.ID, testPassword))
	_, err := e.repos.Users.GetByID(e.ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
