package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/email"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// Search filter vocabularies
var (
	JobLocations = []string{"Hà Nội", "Hồ Chí Minh", "Đà Nẵng", "Cần Thơ", "Khác"}
	JobTypes     = []string{"PHP", "JavaScript", "Python", "Java", "C#", ".NET", "React", "Angular", "Vue.js"}
	JobLevels    = []string{"Intern/Fresher", "Junior", "Middle", "Senior", "Team Lead", "Manager"}
	JobWorkTypes = []string{"Full-time", "Part-time", "Remote", "Hybrid"}
)

// SortNewest is the only supported job search order
const SortNewest = "newest"

// JobService implements the job board
type JobService struct {
	jobs         repositories.JobRepository
	applications repositories.ApplicationRepository
	users        repositories.UserRepository
	storage      Storage
	mailer       email.EmailService
	activity     *ActivityService
	now          Clock
	logger       zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	repos *repositories.Repositories,
	storage Storage,
	mailer email.EmailService,
	activity *ActivityService,
	now Clock,
	logger zerolog.Logger,
) *JobService {
	return &JobService{
		jobs:         repos.Jobs,
		applications: repos.Applications,
		users:        repos.Users,
		storage:      storage,
		mailer:       mailer,
		activity:     activity,
		now:          now,
		logger:       logger,
	}
}

// Filters returns the search vocabularies
func (s *JobService) Filters() dto.JobFiltersResponse {
	return dto.JobFiltersResponse{
		Locations: JobLocations,
		Types:     JobTypes,
		Levels:    JobLevels,
		WorkTypes: JobWorkTypes,
	}
}

// parseDeadline accepts an empty deadline or a YYYY-MM-DD date. A date before today
// is refused unless it is the deadline the job already has.
func (s *JobService) parseDeadline(raw string, current *time.Time) (*time.Time, error) {
	now := s.now()
	deadline, err := helpers.ParseDate(raw, now.Location())
	if err != nil {
		return nil, apperrors.NewValidationError("deadline", "deadline must use YYYY-MM-DD")
	}
	if deadline == nil || sameDay(deadline, current) {
		return deadline, nil
	}
	if deadline.Before(models.DateOnly(now)) {
		return nil, apperrors.NewValidationError("deadline", "deadline cannot be in the past")
	}
	return deadline, nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Format(helpers.DateLayout) == b.Format(helpers.DateLayout)
}

// apply copies the request onto job, deriving salary text only when salary input is present
func (s *JobService) apply(job *models.Job, req *dto.JobRequest) error {
	deadline, err := s.parseDeadline(req.Deadline, job.Deadline)
	if err != nil {
		return err
	}
	if job.ID == 0 || req.HasSalary() {
		display, err := SalaryDisplay(req.SalaryMin, req.SalaryMax, req.Currency, req.Negotiable)
		if err != nil {
			return err
		}
		job.SalaryDisplay = display
	}

	job.Title = strings.TrimSpace(req.Title)
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.Benefits = req.Benefits
	job.CompanyName = strings.TrimSpace(req.CompanyName)
	job.Location = strings.TrimSpace(req.Location)
	job.JobType = strings.TrimSpace(req.JobType)
	job.Level = strings.TrimSpace(req.Level)
	job.WorkType = strings.TrimSpace(req.WorkType)
	job.Headcount = req.Headcount
	if job.Headcount < 1 {
		job.Headcount = 1
	}
	job.Deadline = deadline
	job.ContactName = strings.TrimSpace(req.ContactName)
	job.ContactEmail = strings.TrimSpace(req.ContactEmail)
	job.ContactPhone = strings.TrimSpace(req.ContactPhone)
	return nil
}

func (s *JobService) saveLogo(userID int64, up filestorage.Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	if _, err := filestorage.LogoPolicy.Check(up); err != nil {
		return "", err
	}
	return s.storage.Save(up, filestorage.DirCompanyLogos, filestorage.CompanyLogoName(userID, s.now(), up.Filename()))
}

// Create posts a new job, pending admin confirmation. Nothing is stored when validation fails.
func (s *JobService) Create(ctx context.Context, poster *models.User, req *dto.JobRequest, logo filestorage.Upload) (*models.Job, error) {
	if poster.Role != models.RoleAlumni && poster.Role != models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("only alumni can post jobs")
	}

	job := &models.Job{
		PosterID:   poster.ID,
		PosterName: poster.Username,
		Status:     models.JobStatusActive,
	}
	if err := s.apply(job, req); err != nil {
		return nil, err
	}

	path, err := s.saveLogo(poster.ID, logo)
	if err != nil {
		return nil, err
	}
	job.CompanyLogo = path

	if err := s.jobs.Create(ctx, job); err != nil {
		removeFiles(s.storage, []string{path})
		return nil, err
	}

	s.activity.Record(ctx, poster.ID, ActionJobCreate, "Posted job #"+itoa(job.ID)+" "+job.Title)
	return job, nil
}

// Get returns a job. Unconfirmed jobs are visible to their poster and admins only.
func (s *JobService) Get(ctx context.Context, viewer *models.User, id int64) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsConfirmed && !viewer.CanModify(job.PosterID) {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

func (s *JobService) owned(ctx context.Context, actor *models.User, id int64) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(job.PosterID) {
		return nil, apperrors.NewForbiddenError("only the poster or an administrator can manage this job")
	}
	return job, nil
}

// Update edits a job. Salary text is re-derived only when salary input is given.
func (s *JobService) Update(ctx context.Context, actor *models.User, id int64, req *dto.JobRequest, logo filestorage.Upload) (*models.Job, error) {
	job, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(job, req); err != nil {
		return nil, err
	}

	oldLogo := job.CompanyLogo
	path, err := s.saveLogo(actor.ID, logo)
	if err != nil {
		return nil, err
	}
	if path != "" {
		job.CompanyLogo = path
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		removeFiles(s.storage, []string{path})
		return nil, err
	}
	if path != "" && oldLogo != "" {
		removeFiles(s.storage, []string{oldLogo})
	}

	s.activity.Record(ctx, actor.ID, ActionJobUpdate, "Updated job #"+itoa(id))
	return job, nil
}

// SetStatus changes the poster-controlled status
func (s *JobService) SetStatus(ctx context.Context, actor *models.User, id int64, status models.JobStatus) error {
	switch status {
	case models.JobStatusActive, models.JobStatusClosed, models.JobStatusDraft:
	default:
		return apperrors.NewValidationError("status", "status must be active, closed or draft")
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.jobs.SetStatus(ctx, id, status)
}

// Delete removes a job with its applications, resumes and logo
func (s *JobService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	orphans, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return err
	}
	removeFiles(s.storage, orphans)

	s.activity.Record(ctx, actor.ID, ActionJobDelete, "Deleted job #"+itoa(id))
	return nil
}

// Search lists confirmed, active jobs matching every given filter
func (s *JobService) Search(ctx context.Context, req *dto.JobSearchRequest, page models.Page) ([]models.Job, int64, error) {
	if req.Sort != "" && req.Sort != SortNewest {
		return nil, 0, apperrors.NewValidationError("sort", "unsupported sort order")
	}
	return s.jobs.Search(ctx, models.JobFilter{
		Keyword:  strings.TrimSpace(req.Keyword),
		Location: req.Location,
		Level:    req.Level,
		JobType:  req.JobType,
		WorkType: req.WorkType,
		Page:     page,
	})
}

// ListMine lists the jobs posted by user
func (s *JobService) ListMine(ctx context.Context, user *models.User, page models.Page) ([]models.Job, int64, error) {
	return s.jobs.ListByPoster(ctx, user.ID, page)
}

// ListPending lists jobs awaiting confirmation
func (s *JobService) ListPending(ctx context.Context, page models.Page) ([]models.Job, int64, error) {
	return s.jobs.ListPending(ctx, page)
}

// Confirm makes a job publicly listable
func (s *JobService) Confirm(ctx context.Context, admin *models.User, id int64) error {
	if err := s.jobs.Confirm(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, admin.ID, ActionJobConfirm, "Confirmed job #"+itoa(id))
	return nil
}

// Apply submits a resume to an open job and notifies the poster
func (s *JobService) Apply(ctx context.Context, user *models.User, jobID int64, resume filestorage.Upload, coverLetter string) (*models.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch {
	case !job.IsConfirmed:
		return nil, apperrors.ErrJobNotFound
	case job.Status != models.JobStatusActive:
		return nil, apperrors.NewBadRequestError("this job is no longer accepting applications")
	case job.Expired(s.now()):
		return nil, apperrors.NewBadRequestError("the application deadline has passed")
	case job.PosterID == user.ID:
		return nil, apperrors.NewBadRequestError("you cannot apply to your own job")
	}

	exists, err := s.applications.Exists(ctx, jobID, user.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrApplicationExists
	}

	if resume == nil {
		return nil, apperrors.NewValidationError("resume", "a resume file is required")
	}
	if _, err := filestorage.ResumePolicy.Check(resume); err != nil {
		return nil, err
	}
	path, err := s.storage.Save(resume, filestorage.DirResumes, filestorage.ResumeName(user.ID, s.now(), resume.Filename()))
	if err != nil {
		return nil, err
	}

	app := &models.JobApplication{
		JobID:         jobID,
		JobTitle:      job.Title,
		ApplicantID:   user.ID,
		ApplicantName: user.Username,
		ResumePath:    path,
		CoverLetter:   strings.TrimSpace(coverLetter),
		Status:        models.ApplicationPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		removeFiles(s.storage, []string{path})
		return nil, err
	}

	s.notifyPoster(ctx, job, user)
	s.activity.Record(ctx, user.ID, ActionJobApply, "Applied to job #"+itoa(jobID))
	return app, nil
}

func (s *JobService) notifyPoster(ctx context.Context, job *models.Job, applicant *models.User) {
	poster, err := s.users.GetByID(ctx, job.PosterID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("jobID", job.ID).Msg("Could not load poster for application email")
		return
	}
	if err := s.mailer.SendApplicationReceivedEmail(poster.Email, poster.Username, job.Title, applicant.Username); err != nil {
		s.logger.Warn().Err(err).Int64("jobID", job.ID).Msg("Failed to send application email")
	}
}

// ListApplications lists a job's applications for its poster and marks them viewed
func (s *JobService) ListApplications(ctx context.Context, actor *models.User, jobID int64, status models.ApplicationStatus) ([]models.JobApplication, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", "status must be pending, accepted or rejected")
	}
	if _, err := s.owned(ctx, actor, jobID); err != nil {
		return nil, err
	}
	return s.applications.ListForJob(ctx, jobID, status)
}

// MyApplications lists the caller's applications
func (s *JobService) MyApplications(ctx context.Context, user *models.User) ([]models.JobApplication, error) {
	return s.applications.ListByApplicant(ctx, user.ID)
}

// UpdateApplicationStatus reviews an application and emails the applicant on change
func (s *JobService) UpdateApplicationStatus(ctx context.Context, actor *models.User, appID int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "status must be pending, accepted or rejected")
	}

	app, err := s.applications.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	job, err := s.owned(ctx, actor, app.JobID)
	if err != nil {
		return nil, err
	}
	if app.Status == status {
		return app, nil
	}

	if err := s.applications.UpdateStatus(ctx, appID, status); err != nil {
		return nil, err
	}
	app.Status = status

	applicant, err := s.users.GetByID(ctx, app.ApplicantID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
	case err != nil:
		s.logger.Warn().Err(err).Int64("applicationID", appID).Msg("Could not load applicant for status email")
	default:
		if err := s.mailer.SendApplicationStatusEmail(applicant.Email, applicant.Username, job.Title, string(status)); err != nil {
			s.logger.Warn().Err(err).Int64("applicationID", appID).Msg("Failed to send status email")
		}
	}

	s.activity.Record(ctx, actor.ID, ActionApplicationStatus, "Set application #"+itoa(appID)+" to "+string(status))
	return app, nil
}

// CloseExpired closes active jobs whose deadline has passed
func (s *JobService) CloseExpired(ctx context.Context) error {
	n, err := s.jobs.CloseExpired(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info().Int64("jobs", n).Msg("Closed expired jobs")
	}
	return nil
}
