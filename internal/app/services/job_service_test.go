package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

func newJobService(e *testEnv) *JobService {
	return NewJobService(e.repos, e.storage, e.mailer, e.activity, e.clock, e.logger)
}

func jobRequest(deadline string) *dto.JobRequest {
	return &dto.JobRequest{
		Title:       "Backend Developer",
		Description: "Phát triển API",
		CompanyName: "FPT Software",
		Location:    "Hà Nội",
		JobType:     "Python",
		Level:       "Junior",
		WorkType:    "Full-time",
		SalaryMin:   "10,000,000",
		SalaryMax:   "15,000,000",
		Deadline:    deadline,
	}
}

func resume() filestorage.Upload {
	return filestorage.FromBytes("cv.pdf", []byte("%PDF-1.4"))
}

// confirmedJob posts a job as poster and confirms it as admin
func confirmedJob(t *testing.T, e *testEnv, svc *JobService, poster, admin *models.User) *models.Job {
	t.Helper()
	job, err := svc.Create(e.ctx, poster, jobRequest(""), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, job.ID))
	return job
}

func TestCreateJob(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	alumni := e.user(t, "alumni", models.RoleAlumni)
	student := e.user(t, "student", models.RoleUser)

	job, err := svc.Create(e.ctx, alumni, jobRequest(e.now.Format("2006-01-02")), image("logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "10,000,000 - 15,000,000 VND", job.SalaryDisplay)
	assert.False(t, job.IsConfirmed)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.True(t, e.storage.has(job.CompanyLogo))
	assert.Equal(t, 1, e.activityCount(t, ActionJobCreate))

	_, err = svc.Create(e.ctx, student, jobRequest(""), nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateJobRejectsPastDeadline(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	alumni := e.user(t, "alumni", models.RoleAlumni)

	yesterday := e.now.AddDate(0, 0, -1).Format("2006-01-02")
	_, err := svc.Create(e.ctx, alumni, jobRequest(yesterday), image("logo.png"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, total, err := svc.ListMine(e.ctx, alumni, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, e.storage.count())
}

func TestUpdateJobKeepsSalaryWithoutInput(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	alumni := e.user(t, "alumni", models.RoleAlumni)
	other := e.user(t, "other", models.RoleAlumni)

	job, err := svc.Create(e.ctx, alumni, jobRequest(""), nil)
	require.NoError(t, err)

	req := jobRequest("")
	req.SalaryMin, req.SalaryMax = "", ""
	req.Title = "Senior Backend Developer"
	updated, err := svc.Update(e.ctx, alumni, job.ID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Developer", updated.Title)
	assert.Equal(t, "10,000,000 - 15,000,000 VND", updated.SalaryDisplay)

	req.Negotiable = true
	updated, err = svc.Update(e.ctx, alumni, job.ID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, SalaryNegotiable, updated.SalaryDisplay)

	_, err = svc.Update(e.ctx, other, job.ID, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestUpdateJobAfterDeadlinePassed(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	alumni := e.user(t, "alumni", models.RoleAlumni)

	deadline := e.now.Format("2006-01-02")
	job, err := svc.Create(e.ctx, alumni, jobRequest(deadline), nil)
	require.NoError(t, err)

	e.now = e.now.AddDate(0, 0, 3)

	req := jobRequest(deadline)
	req.Title = "Backend Developer (remote)"
	updated, err := svc.Update(e.ctx, alumni, job.ID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Backend Developer (remote)", updated.Title)
	require.NotNil(t, updated.Deadline)
	assert.Equal(t, deadline, updated.Deadline.Format("2006-01-02"))

	req.Deadline = e.now.AddDate(0, 0, -1).Format("2006-01-02")
	_, err = svc.Update(e.ctx, alumni, job.ID, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req.Deadline = e.now.AddDate(0, 0, 7).Format("2006-01-02")
	_, err = svc.Update(e.ctx, alumni, job.ID, req, nil)
	assert.NoError(t, err)
}

func TestSearchOnlyListsConfirmedActiveJobs(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	alumni := e.user(t, "alumni", models.RoleAlumni)

	visible := confirmedJob(t, e, svc, alumni, admin)
	_, err := svc.Create(e.ctx, alumni, jobRequest(""), nil)
	require.NoError(t, err)
	closed := confirmedJob(t, e, svc, alumni, admin)
	require.NoError(t, svc.SetStatus(e.ctx, alumni, closed.ID, models.JobStatusClosed))

	jobs, total, err := svc.Search(e.ctx, &dto.JobSearchRequest{Keyword: "backend"}, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, visible.ID, jobs[0].ID)

	_, _, err = svc.Search(e.ctx, &dto.JobSearchRequest{Sort: "salary"}, models.Page{Number: 1, Size: 10})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.ErrorIs(t, svc.SetStatus(e.ctx, alumni, visible.ID, "archived"), apperrors.ErrValidationFailed)
}

func TestApply(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	poster := e.user(t, "poster", models.RoleAlumni)
	applicant := e.user(t, "applicant", models.RoleUser)
	job := confirmedJob(t, e, svc, poster, admin)

	app, err := svc.Apply(e.ctx, applicant, job.ID, resume(), "  Xin chào  ")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, "Xin chào", app.CoverLetter)
	assert.True(t, e.storage.has(app.ResumePath))
	assert.Equal(t, 1, e.mailer.count("received"))

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.Apply(e.ctx, applicant, job.ID, resume(), "")
		assert.ErrorIs(t, err, apperrors.ErrApplicationExists)
		assert.Equal(t, 1, e.storage.count())
	})

	t.Run("own job", func(t *testing.T) {
		_, err := svc.Apply(e.ctx, poster, job.ID, resume(), "")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("resume type", func(t *testing.T) {
		other := e.user(t, "other", models.RoleUser)
		_, err := svc.Apply(e.ctx, other, job.ID, image("cv.png"), "")
		assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)
		_, err = svc.Apply(e.ctx, other, job.ID, nil, "")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unconfirmed job", func(t *testing.T) {
		pending, err := svc.Create(e.ctx, poster, jobRequest(""), nil)
		require.NoError(t, err)
		_, err = svc.Apply(e.ctx, applicant, pending.ID, resume(), "")
		assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
	})

	t.Run("closed job", func(t *testing.T) {
		closed := confirmedJob(t, e, svc, poster, admin)
		require.NoError(t, svc.SetStatus(e.ctx, poster, closed.ID, models.JobStatusClosed))
		_, err := svc.Apply(e.ctx, applicant, closed.ID, resume(), "")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestUpdateApplicationStatusEmailsApplicant(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	poster := e.user(t, "poster", models.RoleAlumni)
	applicant := e.user(t, "applicant", models.RoleUser)
	job := confirmedJob(t, e, svc, poster, admin)

	app, err := svc.Apply(e.ctx, applicant, job.ID, resume(), "")
	require.NoError(t, err)

	_, err = svc.UpdateApplicationStatus(e.ctx, applicant, app.ID, models.ApplicationAccepted)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := svc.UpdateApplicationStatus(e.ctx, poster, app.ID, models.ApplicationAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, updated.Status)
	assert.Equal(t, 1, e.mailer.count("status"))
	assert.Equal(t, "accepted", e.mailer.last)

	// unchanged status sends nothing
	_, err = svc.UpdateApplicationStatus(e.ctx, poster, app.ID, models.ApplicationAccepted)
	require.NoError(t, err)
	assert.Equal(t, 1, e.mailer.count("status"))

	_, err = svc.UpdateApplicationStatus(e.ctx, poster, app.ID, "maybe")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	apps, err := svc.ListApplications(e.ctx, poster, job.ID, models.ApplicationAccepted)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestDeleteJobRemovesResumesAndLogo(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	poster := e.user(t, "poster", models.RoleAlumni)
	applicant := e.user(t, "applicant", models.RoleUser)

	job, err := svc.Create(e.ctx, poster, jobRequest(""), image("logo.jpg"))
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, job.ID))
	_, err = svc.Apply(e.ctx, applicant, job.ID, resume(), "")
	require.NoError(t, err)
	require.Equal(t, 2, e.storage.count())

	require.NoError(t, svc.Delete(e.ctx, admin, job.ID))
	assert.Zero(t, e.storage.count())
	_, err = svc.Get(e.ctx, admin, job.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestCloseExpired(t *testing.T) {
	e := newTestEnv(t)
	svc := newJobService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	poster := e.user(t, "poster", models.RoleAlumni)
	applicant := e.user(t, "applicant", models.RoleUser)

	job, err := svc.Create(e.ctx, poster, jobRequest(e.now.Format("2006-01-02")), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, job.ID))
	pending, err := svc.Create(e.ctx, poster, jobRequest(e.now.Format("2006-01-02")), nil)
	require.NoError(t, err)

	e.now = e.now.Add(48 * time.Hour)
	_, err = svc.Apply(e.ctx, applicant, job.ID, resume(), "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	require.NoError(t, svc.CloseExpired(e.ctx))
	got, err := svc.Get(e.ctx, poster, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, got.Status)

	// unconfirmed jobs stay with the moderation queue
	got, err = svc.Get(e.ctx, poster, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusActive, got.Status)
}
