package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(0, 0))
	assert.Equal(t, 37.5, SuccessRate(8, 3))
	assert.Equal(t, 33.3, SuccessRate(3, 1))
	assert.Equal(t, 66.7, SuccessRate(3, 2))
	assert.Equal(t, 100.0, SuccessRate(4, 4))
}

func TestGrowthSince(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), growthSince(now))
}

func TestAnalytics(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "root", models.RoleAdmin)
	poster := e.user(t, "poster", models.RoleAlumni)
	a := e.user(t, "a", models.RoleUser)
	b := e.user(t, "b", models.RoleUser)

	jobs := newJobService(e)
	job := confirmedJob(t, e, jobs, poster, admin)
	appA, err := jobs.Apply(e.ctx, a, job.ID, resume(), "")
	require.NoError(t, err)
	_, err = jobs.Apply(e.ctx, b, job.ID, resume(), "")
	require.NoError(t, err)
	_, err = jobs.UpdateApplicationStatus(e.ctx, poster, appA.ID, models.ApplicationAccepted)
	require.NoError(t, err)
	_, err = jobs.Create(e.ctx, poster, jobRequest(""), nil)
	require.NoError(t, err)

	svc := NewAdminService(e.repos, e.activity, e.clock, e.logger)

	dash, err := svc.Dashboard(e.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, dash.Totals.Users)
	assert.EqualValues(t, 2, dash.Totals.Jobs)
	assert.EqualValues(t, 1, dash.Totals.PendingJobs)
	assert.EqualValues(t, 2, dash.Totals.Applications)
	assert.NotEmpty(t, dash.RecentActivities)

	stats, err := svc.Analytics(e.ctx)
	require.NoError(t, err)
	assert.True(t, stats.Success)
	assert.Equal(t, 50.0, stats.SuccessRate)
	assert.Equal(t, []models.NamedCount{{Name: "FPT Software", Count: 2}}, stats.TopEmployers)
	assert.Equal(t, []models.NamedCount{{Name: "Python", Count: 2}}, stats.JobsByType)
	require.Len(t, stats.UserGrowth, 1)
	assert.Equal(t, e.now.Format("2006-01"), stats.UserGrowth[0].Month)
	assert.EqualValues(t, 4, stats.UserGrowth[0].Count)
	assert.Len(t, stats.RoleDistribution, 3)
}

func TestSettingsUpdate(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "root", models.RoleAdmin)
	svc := NewSettingsService(e.repos.Settings, e.activity, e.clock, e.logger)

	current, err := svc.Get(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSiteName, current.SiteName)
	assert.False(t, svc.MaintenanceMode(e.ctx))

	on := true
	updated, err := svc.Update(e.ctx, admin, &dto.SettingsRequest{SiteName: "FIT Alumni", MaintenanceMode: &on})
	require.NoError(t, err)
	assert.True(t, updated.MaintenanceMode)
	assert.True(t, svc.MaintenanceMode(e.ctx))

	// omitting the flag keeps it
	updated, err = svc.Update(e.ctx, admin, &dto.SettingsRequest{SiteName: "FIT Alumni Network"})
	require.NoError(t, err)
	assert.True(t, updated.MaintenanceMode)
	assert.Equal(t, "FIT Alumni Network", updated.SiteName)

	_, err = svc.Update(e.ctx, admin, &dto.SettingsRequest{SiteName: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, 2, e.activityCount(t, ActionSettingsUpdate))
}

func TestActivityRecord(t *testing.T) {
	e := newTestEnv(t)
	user := e.user(t, "u", models.RoleUser)

	e.activity.Record(e.ctx, user.ID, ActionLogin, "Logged in")
	// unknown users are logged and dropped
	e.activity.Record(e.ctx, 777, ActionLogin, "ghost")

	entries, total, err := e.activity.List(e.ctx, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "u", entries[0].Username)
}
