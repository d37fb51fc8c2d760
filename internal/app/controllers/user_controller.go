package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// UserController handles the admin user management pages
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

// List returns users filtered by search text and role
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username or email contains"
// @Param role query string false "user, alumni or admin"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.User}}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	var req dto.UserListRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page := helpers.PageFromRequest(ctx, helpers.DefaultPageSize)

	users, total, err := c.userService.List(ctx.Request.Context(), models.UserFilter{
		Search: req.Search,
		Role:   req.Role,
		Page:   page,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(users, total, page)))
}

// ToggleActive activates or deactivates a user
// @Summary Toggle user active flag
// @Description Deactivation revokes every session of the user. Admins cannot deactivate themselves.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.ActiveResponse}
// @Failure 400 {object} dto.ErrorResponse "Own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/active [patch]
func (c *UserController) ToggleActive(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	active, err := c.userService.ToggleActive(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ActiveResponse{IsActive: active}))
}

// UpdateRole changes a user's role
// @Summary Change user role
// @Description At most one admin exists and the last admin cannot be demoted.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse "Unknown role"
// @Failure 409 {object} dto.ErrorResponse "Admin rule violated"
// @Router /admin/users/{id}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.UpdateRole(ctx.Request.Context(), viewer(ctx), id, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// Delete removes a user and everything they own
// @Summary Delete user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Own account"
// @Failure 409 {object} dto.ErrorResponse "Last remaining admin"
// @Router /admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.userService.Delete(ctx.Request.Context(), viewer(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", id).Int64("adminID", viewer(ctx).ID).Msg("User deleted by admin")
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("User deleted"))
}
