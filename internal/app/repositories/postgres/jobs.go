package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

var jobColumns = []string{
	"j.id", "j.poster_id", "u.username", "j.title", "j.description", "j.requirements", "j.benefits",
	"j.company_name", "j.company_logo", "j.location", "j.job_type", "j.level", "j.work_type", "j.headcount",
	"j.salary_display", "j.deadline", "j.contact_name", "j.contact_email", "j.contact_phone",
	"j.status", "j.is_confirmed", "j.created_at", "j.updated_at",
}

// JobRepository handles job postings
type JobRepository struct {
	base
}

func scanJob(row pgx.Row, j *models.Job) error {
	return row.Scan(&j.ID, &j.PosterID, &j.PosterName, &j.Title, &j.Description, &j.Requirements, &j.Benefits,
		&j.CompanyName, &j.CompanyLogo, &j.Location, &j.JobType, &j.Level, &j.WorkType, &j.Headcount,
		&j.SalaryDisplay, &j.Deadline, &j.ContactName, &j.ContactEmail, &j.ContactPhone,
		&j.Status, &j.IsConfirmed, &j.CreatedAt, &j.UpdatedAt)
}

func (r *JobRepository) selectJobs() squirrel.SelectBuilder {
	return r.sb.Select(jobColumns...).From("jobs j").Join("users u ON u.id = j.poster_id")
}

// Create inserts a job posting
func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	sql, args, err := r.sb.Insert("jobs").
		Columns("poster_id", "title", "description", "requirements", "benefits", "company_name", "company_logo",
			"location", "job_type", "level", "work_type", "headcount", "salary_display", "deadline",
			"contact_name", "contact_email", "contact_phone", "status", "is_confirmed").
		Values(j.PosterID, j.Title, j.Description, j.Requirements, j.Benefits, j.CompanyName, j.CompanyLogo,
			j.Location, j.JobType, j.Level, j.WorkType, j.Headcount, j.SalaryDisplay, j.Deadline,
			j.ContactName, j.ContactEmail, j.ContactPhone, j.Status, j.IsConfirmed).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create job query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return fmt.Errorf("error creating job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	sql, args, err := r.selectJobs().Where(squirrel.Eq{"j.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}
	j := &models.Job{}
	if err := scanJob(r.db.QueryRow(ctx, sql, args...), j); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("error getting job: %w", err)
	}
	return j, nil
}

// Update saves all editable columns of a job
func (r *JobRepository) Update(ctx context.Context, j *models.Job) error {
	sql, args, err := r.sb.Update("jobs").SetMap(map[string]interface{}{
		"title":          j.Title,
		"description":    j.Description,
		"requirements":   j.Requirements,
		"benefits":       j.Benefits,
		"company_name":   j.CompanyName,
		"company_logo":   j.CompanyLogo,
		"location":       j.Location,
		"job_type":       j.JobType,
		"level":          j.Level,
		"work_type":      j.WorkType,
		"headcount":      j.Headcount,
		"salary_display": j.SalaryDisplay,
		"deadline":       j.Deadline,
		"contact_name":   j.ContactName,
		"contact_email":  j.ContactEmail,
		"contact_phone":  j.ContactPhone,
		"status":         j.Status,
		"updated_at":     squirrel.Expr("NOW()"),
	}).Where(squirrel.Eq{"id": j.ID}).Suffix("RETURNING updated_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update job query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&j.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrJobNotFound
		}
		return fmt.Errorf("error updating job: %w", err)
	}
	return nil
}

// SetStatus changes the job status
func (r *JobRepository) SetStatus(ctx context.Context, id int64, status models.JobStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// Confirm approves the job for public listing
func (r *JobRepository) Confirm(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE jobs SET is_confirmed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error confirming job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// Delete removes the job with its applications
func (r *JobRepository) Delete(ctx context.Context, id int64) (models.Orphans, error) {
	var orphans models.Orphans
	err := r.tx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT company_logo FROM jobs WHERE id = $1
			UNION ALL SELECT resume_path FROM job_applications WHERE job_id = $1`, id)
		if err != nil {
			return fmt.Errorf("error collecting job files: %w", err)
		}
		if orphans, err = collectStrings(rows); err != nil {
			return fmt.Errorf("error reading job files: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM job_applications WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting job applications: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting job: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrJobNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

func (r *JobRepository) list(ctx context.Context, where squirrel.Sqlizer, page models.Page) ([]models.Job, int64, error) {
	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("jobs j").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := r.selectJobs().Where(where).OrderBy("j.created_at DESC", "j.id DESC")
	if page.Size > 0 {
		q = q.Limit(page.Limit()).Offset(page.Offset())
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list jobs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var j models.Job
		if err := scanJob(rows, &j); err != nil {
			return nil, 0, fmt.Errorf("error scanning job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

// Search lists confirmed, active jobs matching the filter
func (r *JobRepository) Search(ctx context.Context, f models.JobFilter) ([]models.Job, int64, error) {
	where := squirrel.And{
		squirrel.Eq{"j.is_confirmed": true},
		squirrel.Eq{"j.status": models.JobStatusActive},
	}
	if f.Keyword != "" {
		pattern := "%" + f.Keyword + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"j.title": pattern},
			squirrel.ILike{"j.description": pattern},
			squirrel.ILike{"j.requirements": pattern},
		})
	}
	if f.Location != "" {
		where = append(where, squirrel.ILike{"j.location": "%" + f.Location + "%"})
	}
	if f.Level != "" {
		where = append(where, squirrel.Eq{"j.level": f.Level})
	}
	if f.JobType != "" {
		where = append(where, squirrel.Eq{"j.job_type": f.JobType})
	}
	if f.WorkType != "" {
		where = append(where, squirrel.Eq{"j.work_type": f.WorkType})
	}
	return r.list(ctx, where, f.Page)
}

// ListByPoster lists all jobs of a poster regardless of status
func (r *JobRepository) ListByPoster(ctx context.Context, posterID int64, page models.Page) ([]models.Job, int64, error) {
	return r.list(ctx, squirrel.Eq{"j.poster_id": posterID}, page)
}

// ListPending lists jobs awaiting admin confirmation
func (r *JobRepository) ListPending(ctx context.Context, page models.Page) ([]models.Job, int64, error) {
	return r.list(ctx, squirrel.Eq{"j.is_confirmed": false}, page)
}

// CloseExpired closes confirmed active jobs whose deadline day is before today
func (r *JobRepository) CloseExpired(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE jobs SET status = 'closed', updated_at = NOW()
		WHERE status = 'active' AND is_confirmed AND deadline < $1::date`,
		models.DateOnly(today))
	if err != nil {
		return 0, fmt.Errorf("error closing expired jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ApplicationRepository handles job applications
type ApplicationRepository struct {
	base
}

const applicationSelect = `
	SELECT a.id, a.job_id, j.title, a.applicant_id, u.username, a.resume_path, a.cover_letter,
		a.status, a.is_viewed, a.created_at, a.updated_at
	FROM job_applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN users u ON u.id = a.applicant_id`

func scanApplication(row pgx.Row, a *models.JobApplication) error {
	return row.Scan(&a.ID, &a.JobID, &a.JobTitle, &a.ApplicantID, &a.ApplicantName, &a.ResumePath,
		&a.CoverLetter, &a.Status, &a.IsViewed, &a.CreatedAt, &a.UpdatedAt)
}

func (r *ApplicationRepository) query(ctx context.Context, sql string, args ...any) ([]models.JobApplication, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	out := []models.JobApplication{}
	for rows.Next() {
		var a models.JobApplication
		if err := scanApplication(rows, &a); err != nil {
			return nil, fmt.Errorf("error scanning application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts an application; a second application to the same job is a conflict
func (r *ApplicationRepository) Create(ctx context.Context, a *models.JobApplication) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO job_applications (job_id, applicant_id, resume_path, cover_letter, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, is_viewed, created_at, updated_at`,
		a.JobID, a.ApplicantID, a.ResumePath, a.CoverLetter, a.Status).
		Scan(&a.ID, &a.IsViewed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "job_applications_job_applicant_key") {
			return apperrors.ErrApplicationExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrJobNotFound
		}
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// GetByID retrieves an application
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.JobApplication, error) {
	a := &models.JobApplication{}
	if err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id), a); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrApplicationMissing
		}
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return a, nil
}

// Exists reports whether the applicant already applied to the job
func (r *ApplicationRepository) Exists(ctx context.Context, jobID, applicantID int64) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("job_applications").
		Where(squirrel.Eq{"job_id": jobID, "applicant_id": applicantID}))
	return n > 0, err
}

// ListForJob lists a job's applications and marks the returned rows viewed
func (r *ApplicationRepository) ListForJob(ctx context.Context, jobID int64, status models.ApplicationStatus) ([]models.JobApplication, error) {
	sql := applicationSelect + ` WHERE a.job_id = $1`
	args := []any{jobID}
	if status != "" {
		sql += ` AND a.status = $2`
		args = append(args, status)
	}
	apps, err := r.query(ctx, sql+` ORDER BY a.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(apps))
	for _, a := range apps {
		if !a.IsViewed {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) > 0 {
		if _, err := r.db.Exec(ctx, `UPDATE job_applications SET is_viewed = TRUE WHERE id = ANY($1)`, ids); err != nil {
			return nil, fmt.Errorf("error marking applications viewed: %w", err)
		}
	}
	return apps, nil
}

// ListByApplicant lists the applications a user submitted
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID int64) ([]models.JobApplication, error) {
	return r.query(ctx, applicationSelect+` WHERE a.applicant_id = $1 ORDER BY a.created_at DESC`, applicantID)
}

// UpdateStatus sets the review status
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE job_applications SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationMissing
	}
	return nil
}
