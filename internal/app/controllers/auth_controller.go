package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/middleware"
)

// CookieConfig controls the session cookie written on login
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	userService *services.UserService
	cookie      CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, userService *services.UserService, cookie CookieConfig, logger zerolog.Logger) *AuthController {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultCookieName
	}
	return &AuthController{
		authService: authService,
		userService: userService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (c *AuthController) setCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, token, maxAge, "/", "", c.cookie.Secure, true)
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an account with the user or alumni role. The admin role can never be self-assigned.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=models.User} "User registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request, password mismatch or reserved identity"
// @Failure 409 {object} dto.ErrorResponse "Email or username already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.Bind(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user))
}

// Login handles user login
// @Summary User login
// @Description Opens a session. The token is returned in the body and set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or account disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.Bind(ctx, &req) {
		return
	}

	meta := services.SessionMeta{UserAgent: ctx.Request.UserAgent(), IP: ctx.ClientIP()}
	session, err := c.authService.Login(ctx.Request.Context(), &req, meta)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setCookie(ctx, session.Token, int(time.Until(session.ExpiresAt).Seconds()))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// Logout ends the current session
// @Summary Logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	user := viewer(ctx)
	if err := c.authService.Logout(ctx.Request.Context(), user.ID, middleware.CurrentSessionID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.setCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Logged out"))
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(viewer(ctx)))
}

// ChangePassword re-verifies the current password and sets a new one
// @Summary Change password
// @Description Other sessions of the user are revoked; the current one stays valid.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Validation error or confirmation mismatch"
// @Failure 401 {object} dto.ErrorResponse "Current password is wrong"
// @Router /auth/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user := viewer(ctx)
	if err := c.authService.ChangePassword(ctx.Request.Context(), user.ID, middleware.CurrentSessionID(ctx), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Password changed"))
}

// DeleteAccount removes the caller's own account
// @Summary Delete own account
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DeleteAccountRequest true "Password confirmation"
// @Success 200 {object} dto.APIResponse "Account deleted"
// @Failure 401 {object} dto.ErrorResponse "Wrong password"
// @Failure 409 {object} dto.ErrorResponse "Last remaining admin"
// @Router /auth/account [delete]
func (c *AuthController) DeleteAccount(ctx *gin.Context) {
	var req dto.DeleteAccountRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user := viewer(ctx)
	if err := c.userService.DeleteOwn(ctx.Request.Context(), user.ID, req.Password); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Msg("Account deleted by owner")
	c.setCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Account deleted"))
}

// RequestPasswordReset mails a reset link if the email is known
// @Summary Request a password reset
// @Description Always answers 200 so that registered emails cannot be probed.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid email"
// @Router /auth/password-reset [post]
func (c *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.RequestPasswordReset(ctx.Request.Context(), req.Email); err != nil {
		c.logger.Error().Err(err).Msg("Password reset request failed")
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("If the email is registered, a reset link has been sent"))
}

// ResetPassword sets a new password from a mailed token
// @Summary Complete a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.APIResponse "Password reset"
// @Failure 400 {object} dto.ErrorResponse "Invalid, used or expired token"
// @Router /auth/password-reset/confirm [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Password has been reset"))
}
