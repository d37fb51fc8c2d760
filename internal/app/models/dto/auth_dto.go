package dto

import (
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username        string          `json:"username" form:"username" binding:"required,min=3,max=50" example:"nguyenvana"`
	Email           string          `json:"email" form:"email" binding:"required,email,max=120" example:"a.nguyen@fit.edu.vn"`
	Password        string          `json:"password" form:"password" binding:"required,min=6" example:"secret123"`
	ConfirmPassword string          `json:"confirmPassword" form:"confirmPassword" binding:"required" example:"secret123"`
	Role            models.RoleType `json:"role,omitempty" form:"role" binding:"omitempty,role" example:"alumni"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email" example:"a.nguyen@fit.edu.vn"`
	Password string `json:"password" form:"password" binding:"required" example:"secret123"`
}

// SessionResponse is returned on login. The token is also set as the session cookie.
type SessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType" example:"Bearer"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// DeleteAccountRequest asks for the password before the account is removed
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
