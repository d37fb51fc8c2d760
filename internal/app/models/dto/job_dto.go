package dto

import "github.com/fitalumni/alumni/internal/app/models"

// JobRequest creates or updates a job posting. Salary bounds are strings so
// that thousands separators can be accepted.
type JobRequest struct {
	Title        string `json:"title" form:"title" binding:"required,max=200" example:"Backend Developer"`
	Description  string `json:"description" form:"description" binding:"required" example:"Phát triển API"`
	Requirements string `json:"requirements" form:"requirements"`
	Benefits     string `json:"benefits" form:"benefits"`
	CompanyName  string `json:"companyName" form:"companyName" binding:"required,max=200" example:"FPT Software"`
	Location     string `json:"location" form:"location" binding:"required,max=200" example:"Hà Nội"`
	JobType      string `json:"jobType" form:"jobType" binding:"required,max=50" example:"Python"`
	Level        string `json:"level" form:"level" binding:"max=50" example:"Junior"`
	WorkType     string `json:"workType" form:"workType" binding:"max=50" example:"Full-time"`
	Headcount    int    `json:"headcount" form:"headcount" binding:"omitempty,min=1" example:"2"`
	SalaryMin    string `json:"salaryMin" form:"salaryMin" binding:"omitempty,amount" example:"10,000,000"`
	SalaryMax    string `json:"salaryMax" form:"salaryMax" binding:"omitempty,amount" example:"15,000,000"`
	Currency     string `json:"currency" form:"currency" binding:"max=10" example:"VND"`
	Negotiable   bool   `json:"negotiable" form:"negotiable"`
	Deadline     string `json:"deadline" form:"deadline" binding:"omitempty,datestr" example:"2026-12-31"`
	ContactName  string `json:"contactName" form:"contactName" binding:"max=100"`
	ContactEmail string `json:"contactEmail" form:"contactEmail" binding:"omitempty,email,max=120"`
	ContactPhone string `json:"contactPhone" form:"contactPhone" binding:"max=20"`
}

// HasSalary reports whether the request carries any salary input
func (r *JobRequest) HasSalary() bool {
	return r.Negotiable || r.SalaryMin != "" || r.SalaryMax != ""
}

// JobSearchRequest is bound from the query string of the public job search
type JobSearchRequest struct {
	Keyword  string `form:"keyword"`
	Location string `form:"location"`
	Level    string `form:"level"`
	JobType  string `form:"type"`
	WorkType string `form:"workType"`
	Sort     string `form:"sort"`
}

// JobStatusRequest changes a job's status
type JobStatusRequest struct {
	Status models.JobStatus `json:"status" binding:"required,jobstatus" example:"closed"`
}

// ApplicationStatusRequest changes an application's status
type ApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required,appstatus" example:"accepted"`
}

// ApplicationStatusResponse is the JSON result of a status change
type ApplicationStatusResponse struct {
	Success bool                     `json:"success" example:"true"`
	Status  models.ApplicationStatus `json:"status" example:"accepted"`
}

// JobFiltersResponse lists the vocabularies of the job search filters
type JobFiltersResponse struct {
	Locations []string `json:"locations"`
	Types     []string `json:"types"`
	Levels    []string `json:"levels"`
	WorkTypes []string `json:"workTypes"`
}
