package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// AdminController serves the dashboard, analytics, audit log and settings
type AdminController struct {
	adminService    *services.AdminService
	settingsService *services.SettingsService
	logger          zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService *services.AdminService, settingsService *services.SettingsService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService:    adminService,
		settingsService: settingsService,
		logger:          logger,
	}
}

// Dashboard returns the headline counters
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/dashboard [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	resp, err := c.adminService.Dashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Analytics returns the breakdowns of the analytics page
// @Summary Admin analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/analytics [get]
func (c *AdminController) Analytics(ctx *gin.Context) {
	resp, err := c.adminService.Analytics(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Activities pages through the audit log
// @Summary Activity log
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.ActivityLog}}
// @Router /admin/activities [get]
func (c *AdminController) Activities(ctx *gin.Context) {
	page := helpers.PageFromRequest(ctx, 20)
	entries, total, err := c.adminService.Activities(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(entries, total, page)))
}

// GetSettings returns the public site settings
// @Summary Site settings
// @Tags settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.SystemSettings}
// @Router /settings [get]
func (c *AdminController) GetSettings(ctx *gin.Context) {
	settings, err := c.settingsService.Get(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settings))
}

// UpdateSettings saves the site settings
// @Summary Update site settings
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SettingsRequest true "Settings"
// @Success 200 {object} dto.APIResponse{data=models.SystemSettings}
// @Failure 400 {object} dto.ErrorResponse "Site name missing or too long"
// @Router /admin/settings [put]
func (c *AdminController) UpdateSettings(ctx *gin.Context) {
	var req dto.SettingsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	settings, err := c.settingsService.Update(ctx.Request.Context(), viewer(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Bool("maintenance", settings.MaintenanceMode).Msg("Site settings updated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settings))
}
