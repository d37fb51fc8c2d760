package memory

import (
	"context"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type jobRepository struct {
	db *DB
}

var _ repositories.JobRepository = (*jobRepository)(nil)

func (db *DB) viewJobLocked(j *models.Job) models.Job {
	out := *j
	out.PosterName = db.username(j.PosterID)
	return out
}

// deleteJobLocked removes the job and its applications and returns their files
func (db *DB) deleteJobLocked(id int64) models.Orphans {
	var orphans models.Orphans
	if j, ok := db.jobs[id]; ok && j.CompanyLogo != "" {
		orphans = append(orphans, j.CompanyLogo)
	}
	for aid, a := range db.applications {
		if a.JobID == id {
			if a.ResumePath != "" {
				orphans = append(orphans, a.ResumePath)
			}
			delete(db.applications, aid)
		}
	}
	delete(db.jobs, id)
	return orphans
}

func (r *jobRepository) Create(_ context.Context, job *models.Job) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[job.PosterID]; !ok {
		return apperrors.ErrUserNotFound
	}
	now := r.db.now()
	job.ID = r.db.nextID()
	job.CreatedAt, job.UpdatedAt = now, now
	cp := *job
	r.db.jobs[job.ID] = &cp
	return nil
}

func (r *jobRepository) GetByID(_ context.Context, id int64) (*models.Job, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	j, ok := r.db.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	out := r.db.viewJobLocked(j)
	return &out, nil
}

func (r *jobRepository) Update(_ context.Context, job *models.Job) error {
	r.db.Lock()
	defer r.db.Unlock()

	j, ok := r.db.jobs[job.ID]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	posterID, confirmed, created := j.PosterID, j.IsConfirmed, j.CreatedAt
	*j = *job
	j.PosterID, j.IsConfirmed, j.CreatedAt = posterID, confirmed, created
	j.UpdatedAt = r.db.now()
	job.UpdatedAt = j.UpdatedAt
	return nil
}

func (r *jobRepository) SetStatus(_ context.Context, id int64, status models.JobStatus) error {
	r.db.Lock()
	defer r.db.Unlock()

	j, ok := r.db.jobs[id]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	j.Status = status
	j.UpdatedAt = r.db.now()
	return nil
}

func (r *jobRepository) Confirm(_ context.Context, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	j, ok := r.db.jobs[id]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	j.IsConfirmed = true
	j.UpdatedAt = r.db.now()
	return nil
}

func (r *jobRepository) Delete(_ context.Context, id int64) (models.Orphans, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.jobs[id]; !ok {
		return nil, apperrors.ErrJobNotFound
	}
	return r.db.deleteJobLocked(id), nil
}

func (r *jobRepository) list(match func(j *models.Job) bool, page models.Page) ([]models.Job, int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	jobs := []models.Job{}
	for _, j := range r.db.jobs {
		if match(j) {
			jobs = append(jobs, r.db.viewJobLocked(j))
		}
	}
	newestFirst(jobs, func(j models.Job) time.Time { return j.CreatedAt }, func(j models.Job) int64 { return j.ID })
	return paginate(jobs, page), int64(len(jobs)), nil
}

func (r *jobRepository) Search(_ context.Context, f models.JobFilter) ([]models.Job, int64, error) {
	return r.list(func(j *models.Job) bool {
		if !j.IsConfirmed || j.Status != models.JobStatusActive {
			return false
		}
		if f.Keyword != "" && !containsFold(j.Title, f.Keyword) &&
			!containsFold(j.Description, f.Keyword) && !containsFold(j.Requirements, f.Keyword) {
			return false
		}
		if f.Location != "" && !containsFold(j.Location, f.Location) {
			return false
		}
		if f.Level != "" && j.Level != f.Level {
			return false
		}
		if f.JobType != "" && j.JobType != f.JobType {
			return false
		}
		if f.WorkType != "" && j.WorkType != f.WorkType {
			return false
		}
		return true
	}, f.Page)
}

func (r *jobRepository) ListByPoster(_ context.Context, posterID int64, page models.Page) ([]models.Job, int64, error) {
	return r.list(func(j *models.Job) bool { return j.PosterID == posterID }, page)
}

func (r *jobRepository) ListPending(_ context.Context, page models.Page) ([]models.Job, int64, error) {
	return r.list(func(j *models.Job) bool { return !j.IsConfirmed }, page)
}

func (r *jobRepository) CloseExpired(_ context.Context, today time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var n int64
	for _, j := range r.db.jobs {
		if j.Status == models.JobStatusActive && j.IsConfirmed && j.Expired(today) {
			j.Status = models.JobStatusClosed
			j.UpdatedAt = r.db.now()
			n++
		}
	}
	return n, nil
}

type applicationRepository struct {
	db *DB
}

var _ repositories.ApplicationRepository = (*applicationRepository)(nil)

func (db *DB) viewApplicationLocked(a *models.JobApplication) models.JobApplication {
	out := *a
	if j, ok := db.jobs[a.JobID]; ok {
		out.JobTitle = j.Title
	}
	out.ApplicantName = db.username(a.ApplicantID)
	return out
}

func (r *applicationRepository) Create(_ context.Context, app *models.JobApplication) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.jobs[app.JobID]; !ok {
		return apperrors.ErrJobNotFound
	}
	for _, a := range r.db.applications {
		if a.JobID == app.JobID && a.ApplicantID == app.ApplicantID {
			return apperrors.ErrApplicationExists
		}
	}
	now := r.db.now()
	app.ID = r.db.nextID()
	app.CreatedAt, app.UpdatedAt = now, now
	cp := *app
	r.db.applications[app.ID] = &cp
	return nil
}

func (r *applicationRepository) GetByID(_ context.Context, id int64) (*models.JobApplication, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	a, ok := r.db.applications[id]
	if !ok {
		return nil, apperrors.ErrApplicationMissing
	}
	out := r.db.viewApplicationLocked(a)
	return &out, nil
}

func (r *applicationRepository) Exists(_ context.Context, jobID, applicantID int64) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	for _, a := range r.db.applications {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *applicationRepository) ListForJob(_ context.Context, jobID int64, status models.ApplicationStatus) ([]models.JobApplication, error) {
	r.db.Lock()
	defer r.db.Unlock()

	out := []models.JobApplication{}
	for _, a := range r.db.applications {
		if a.JobID != jobID || (status != "" && a.Status != status) {
			continue
		}
		out = append(out, r.db.viewApplicationLocked(a))
		a.IsViewed = true
	}
	newestFirst(out, func(a models.JobApplication) time.Time { return a.CreatedAt }, func(a models.JobApplication) int64 { return a.ID })
	return out, nil
}

func (r *applicationRepository) ListByApplicant(_ context.Context, applicantID int64) ([]models.JobApplication, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.JobApplication{}
	for _, a := range r.db.applications {
		if a.ApplicantID == applicantID {
			out = append(out, r.db.viewApplicationLocked(a))
		}
	}
	newestFirst(out, func(a models.JobApplication) time.Time { return a.CreatedAt }, func(a models.JobApplication) int64 { return a.ID })
	return out, nil
}

func (r *applicationRepository) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus) error {
	r.db.Lock()
	defer r.db.Unlock()

	a, ok := r.db.applications[id]
	if !ok {
		return apperrors.ErrApplicationMissing
	}
	a.Status = status
	a.UpdatedAt = r.db.now()
	return nil
}
