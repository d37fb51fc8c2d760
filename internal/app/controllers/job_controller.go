package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// JobController handles the job board and applications
type JobController struct {
	jobService *services.JobService
	logger     zerolog.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobService *services.JobService, logger zerolog.Logger) *JobController {
	return &JobController{jobService: jobService, logger: logger}
}

// Search lists confirmed active jobs
// @Summary Search jobs
// @Description Filters are combined with AND. The keyword matches title, description or requirements.
// @Tags jobs
// @Produce json
// @Param keyword query string false "Keyword"
// @Param location query string false "Location"
// @Param level query string false "Level"
// @Param type query string false "Technology type"
// @Param workType query string false "Work type"
// @Param sort query string false "Only newest is supported" default(newest)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Job}}
// @Failure 400 {object} dto.ErrorResponse "Unsupported sort"
// @Router /jobs [get]
func (c *JobController) Search(ctx *gin.Context) {
	var req dto.JobSearchRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	jobs, total, err := c.jobService.Search(ctx.Request.Context(), &req, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(jobs, total, page)))
}

// Filters returns the search vocabularies
// @Summary Job filter values
// @Tags jobs
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.JobFiltersResponse}
// @Router /jobs/filters [get]
func (c *JobController) Filters(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.jobService.Filters()))
}

// Get returns one job
// @Summary Get job
// @Description Unconfirmed jobs are visible only to the poster or an admin.
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	job, err := c.jobService.Get(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job))
}

// Create posts a job
// @Summary Post a job
// @Description Alumni and admins only. Salary display is derived from the bounds.
// @Tags jobs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobRequest true "Job fields"
// @Param companyLogo formData file false "Company logo (png, jpg, jpeg; 5 MB)"
// @Success 201 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed"
// @Router /jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	var req dto.JobRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	logo, ok := formFile(ctx, "companyLogo")
	if !ok {
		return
	}

	job, err := c.jobService.Create(ctx.Request.Context(), viewer(ctx), &req, logo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(job))
}

// Update edits a job
// @Summary Update job
// @Tags jobs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.JobRequest true "Job fields"
// @Param companyLogo formData file false "Replacement logo"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 403 {object} dto.ErrorResponse "Not the poster"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [put]
func (c *JobController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.JobRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	logo, ok := formFile(ctx, "companyLogo")
	if !ok {
		return
	}

	job, err := c.jobService.Update(ctx.Request.Context(), viewer(ctx), id, &req, logo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job))
}

// SetStatus changes a job's status
// @Summary Change job status
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.JobStatusRequest true "active, closed or draft"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 403 {object} dto.ErrorResponse "Not the poster"
// @Router /jobs/{id}/status [patch]
func (c *JobController) SetStatus(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.JobStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.jobService.SetStatus(ctx.Request.Context(), viewer(ctx), id, req.Status); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Job status updated"))
}

// Delete removes a job with its applications, resumes and logo
// @Summary Delete job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the poster"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [delete]
func (c *JobController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.jobService.Delete(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Job deleted"))
}

// ListMine lists the caller's postings
// @Summary My job postings
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Job}}
// @Router /jobs/mine [get]
func (c *JobController) ListMine(ctx *gin.Context) {
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	jobs, total, err := c.jobService.ListMine(ctx.Request.Context(), viewer(ctx), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(jobs, total, page)))
}

// Apply submits an application with a resume
// @Summary Apply to a job
// @Tags applications
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param resume formData file true "Resume (pdf, doc, docx)"
// @Param coverLetter formData string false "Cover letter"
// @Success 201 {object} dto.APIResponse{data=models.JobApplication}
// @Failure 400 {object} dto.ErrorResponse "Job closed, unconfirmed or past deadline, or bad resume"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /jobs/{id}/apply [post]
func (c *JobController) Apply(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	resume, ok := requireFile(ctx, "resume")
	if !ok {
		return
	}

	app, err := c.jobService.Apply(ctx.Request.Context(), viewer(ctx), id, resume, ctx.PostForm("coverLetter"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app))
}

// ListApplications lists applications for a job
// @Summary Job applications
// @Description Poster or admin only. Listed applications are marked viewed.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param status query string false "pending, accepted or rejected"
// @Success 200 {object} dto.APIResponse{data=[]models.JobApplication}
// @Failure 403 {object} dto.ErrorResponse "Not the poster"
// @Router /jobs/{id}/applications [get]
func (c *JobController) ListApplications(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	status := models.ApplicationStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("status", "must be pending, accepted or rejected"))
		return
	}

	apps, err := c.jobService.ListApplications(ctx.Request.Context(), viewer(ctx), id, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(apps))
}

// MyApplications lists the caller's applications
// @Summary My applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.JobApplication}
// @Router /applications/mine [get]
func (c *JobController) MyApplications(ctx *gin.Context) {
	apps, err := c.jobService.MyApplications(ctx.Request.Context(), viewer(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(apps))
}

// UpdateApplicationStatus reviews an application
// @Summary Review application
// @Description The applicant is emailed about the new status.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.ApplicationStatusRequest true "pending, accepted or rejected"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationStatusResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 403 {object} dto.ErrorResponse "Not the poster"
// @Router /applications/{id}/status [put]
func (c *JobController) UpdateApplicationStatus(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.jobService.UpdateApplicationStatus(ctx.Request.Context(), viewer(ctx), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ApplicationStatusResponse{Success: true, Status: app.Status}))
}

// ListPending lists jobs awaiting confirmation
// @Summary Pending jobs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Job}}
// @Router /admin/jobs/pending [get]
func (c *JobController) ListPending(ctx *gin.Context) {
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)
	jobs, total, err := c.jobService.ListPending(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(jobs, total, page)))
}

// Confirm makes a job publicly listable
// @Summary Confirm job
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id}/confirm [post]
func (c *JobController) Confirm(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.jobService.Confirm(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Job confirmed"))
}
