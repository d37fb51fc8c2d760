package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories/memory"
	"github.com/fitalumni/alumni/internal/pkg/auth"
)

var testAdmin = AdminAccount{Email: "Root@Alumni.test", Username: "root", Password: "secret123"}

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.Open())

	require.NoError(t, CreateDefaultData(ctx, repos, testAdmin, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repos, testAdmin, zerolog.Nop()))

	admins, err := repos.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)

	admin, err := repos.Users.GetByEmail(ctx, "root@alumni.test")
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "secret123"))

	settings, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSiteName, settings.SiteName)
}

func TestCreateDefaultDataPromotesExistingAccount(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.Open())

	user := &models.User{Username: "root", Email: "root@alumni.test", Role: models.RoleUser, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, user))

	require.NoError(t, CreateDefaultData(ctx, repos, testAdmin, zerolog.Nop()))

	got, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}
