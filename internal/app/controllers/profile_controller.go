package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
)

// UploadsRoute is the URL prefix stored files are served under
const UploadsRoute = "/uploads"

// ProfileController serves the profile page and its editable collections
type ProfileController struct {
	profileService *services.ProfileService
	logger         zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService *services.ProfileService, logger zerolog.Logger) *ProfileController {
	return &ProfileController{profileService: profileService, logger: logger}
}

// GetMyProfile returns the caller's profile
// @Summary Get own profile
// @Description Returns the user with profile, educations, experiences, skills and a completion percentage.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.ProfileDetails}
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /profile/me [get]
func (c *ProfileController) GetMyProfile(ctx *gin.Context) {
	details, err := c.profileService.Details(ctx.Request.Context(), viewer(ctx).ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details))
}

// GetUserProfile returns another user's profile
// @Summary Get a user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.ProfileDetails}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/profile [get]
func (c *ProfileController) GetUserProfile(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	details, err := c.profileService.Details(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details))
}

// UpdateProfile edits the caller's profile
// @Summary Update own profile
// @Description Educations, experiences and skills present in the body replace the stored sets.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.ProfileDetails}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /profile [put]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	details, err := c.profileService.Update(ctx.Request.Context(), viewer(ctx).ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details))
}

// AddEducation appends one education row
// @Summary Add education
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EducationInput true "Education"
// @Success 201 {object} dto.APIResponse{data=models.Education}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /profile/education/add [post]
func (c *ProfileController) AddEducation(ctx *gin.Context) {
	var req dto.EducationInput
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := c.profileService.AddEducation(ctx.Request.Context(), viewer(ctx).ID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(item))
}

// AddExperience appends one experience row
// @Summary Add experience
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExperienceInput true "Experience"
// @Success 201 {object} dto.APIResponse{data=models.Experience}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /profile/experience/add [post]
func (c *ProfileController) AddExperience(ctx *gin.Context) {
	var req dto.ExperienceInput
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := c.profileService.AddExperience(ctx.Request.Context(), viewer(ctx).ID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(item))
}

// AddSkill adds one skill
// @Summary Add skill
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SkillInput true "Skill"
// @Success 201 {object} dto.APIResponse{data=models.Skill}
// @Failure 409 {object} dto.ErrorResponse "Skill already listed"
// @Router /profile/skill/add [post]
func (c *ProfileController) AddSkill(ctx *gin.Context) {
	var req dto.SkillInput
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := c.profileService.AddSkill(ctx.Request.Context(), viewer(ctx).ID, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(item))
}

func (c *ProfileController) deleteItem(ctx *gin.Context, del func(userID, id int64) error) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := del(viewer(ctx).ID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Deleted"))
}

// DeleteEducation removes one of the caller's education rows
// @Summary Delete education
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Education ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Not found or not owned"
// @Router /profile/education/{id} [delete]
func (c *ProfileController) DeleteEducation(ctx *gin.Context) {
	c.deleteItem(ctx, func(userID, id int64) error {
		return c.profileService.DeleteEducation(ctx.Request.Context(), userID, id)
	})
}

// DeleteExperience removes one of the caller's experience rows
// @Summary Delete experience
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Experience ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Not found or not owned"
// @Router /profile/experience/{id} [delete]
func (c *ProfileController) DeleteExperience(ctx *gin.Context) {
	c.deleteItem(ctx, func(userID, id int64) error {
		return c.profileService.DeleteExperience(ctx.Request.Context(), userID, id)
	})
}

// DeleteSkill removes one of the caller's skills
// @Summary Delete skill
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Skill ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Not found or not owned"
// @Router /profile/skill/{id} [delete]
func (c *ProfileController) DeleteSkill(ctx *gin.Context) {
	c.deleteItem(ctx, func(userID, id int64) error {
		return c.profileService.DeleteSkill(ctx.Request.Context(), userID, id)
	})
}

// UpdateAvatar replaces the caller's avatar
// @Summary Upload avatar
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image (png, jpg, jpeg, gif)"
// @Success 200 {object} dto.APIResponse{data=dto.AvatarResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file or disallowed type"
// @Router /profile/avatar [post]
func (c *ProfileController) UpdateAvatar(ctx *gin.Context) {
	up, ok := requireFile(ctx, "avatar")
	if !ok {
		return
	}
	path, err := c.profileService.UpdateAvatar(ctx.Request.Context(), viewer(ctx).ID, up)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AvatarResponse{
		Avatar: path,
		URL:    UploadsRoute + "/" + path,
	}))
}
