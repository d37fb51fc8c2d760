package models

import "time"

// JobStatus is the poster-controlled lifecycle of a job
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

// ApplicationStatus is the review state of a job application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is a known application status
func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s == ApplicationAccepted || s == ApplicationRejected
}

// Job is a posting on the job board. SalaryDisplay is derived once from the
// salary bounds and stored as text.
type Job struct {
	ID            int64      `json:"id" db:"id"`
	PosterID      int64      `json:"posterId" db:"poster_id"`
	PosterName    string     `json:"posterName,omitempty" db:"-"`
	Title         string     `json:"title" db:"title" example:"Backend Developer"`
	Description   string     `json:"description" db:"description"`
	Requirements  string     `json:"requirements" db:"requirements"`
	Benefits      string     `json:"benefits" db:"benefits"`
	CompanyName   string     `json:"companyName" db:"company_name" example:"FPT Software"`
	CompanyLogo   string     `json:"companyLogo,omitempty" db:"company_logo"`
	Location      string     `json:"location" db:"location" example:"Hà Nội"`
	JobType       string     `json:"jobType" db:"job_type" example:"Python"`
	Level         string     `json:"level" db:"level" example:"Junior"`
	WorkType      string     `json:"workType" db:"work_type" example:"Full-time"`
	Headcount     int        `json:"headcount" db:"headcount" example:"2"`
	SalaryDisplay string     `json:"salaryDisplay" db:"salary_display" example:"10,000,000 - 15,000,000 VND"`
	Deadline      *time.Time `json:"deadline,omitempty" db:"deadline"`
	ContactName   string     `json:"contactName" db:"contact_name"`
	ContactEmail  string     `json:"contactEmail" db:"contact_email"`
	ContactPhone  string     `json:"contactPhone" db:"contact_phone"`
	Status        JobStatus  `json:"status" db:"status" example:"active"`
	IsConfirmed   bool       `json:"isConfirmed" db:"is_confirmed"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the deadline day has passed relative to today
func (j *Job) Expired(today time.Time) bool {
	return j.Deadline != nil && DateOnly(*j.Deadline).Before(DateOnly(today))
}

// JobFilter is the public search over confirmed, active jobs
type JobFilter struct {
	Keyword  string
	Location string
	Level    string
	JobType  string
	WorkType string
	Page     Page
}

// JobApplication links an applicant to a job
type JobApplication struct {
	ID            int64             `json:"id" db:"id"`
	JobID         int64             `json:"jobId" db:"job_id"`
	JobTitle      string            `json:"jobTitle,omitempty" db:"-"`
	ApplicantID   int64             `json:"applicantId" db:"applicant_id"`
	ApplicantName string            `json:"applicantName,omitempty" db:"-"`
	ResumePath    string            `json:"resumePath" db:"resume_path"`
	CoverLetter   string            `json:"coverLetter,omitempty" db:"cover_letter"`
	Status        ApplicationStatus `json:"status" db:"status"`
	IsViewed      bool              `json:"isViewed" db:"is_viewed"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`
}
