package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/logger"
)

type errorMapping struct {
	targets []error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first matching entry wins
var errorMappings = []errorMapping{
	{[]error{apperrors.ErrInvalidCredentials}, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{[]error{apperrors.ErrAccountDisabled}, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{[]error{apperrors.ErrTokenExpired}, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Session expired"},
	{[]error{apperrors.ErrTokenInvalid, apperrors.ErrSessionNotFound}, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid session"},
	{[]error{apperrors.ErrTokenNotFound, apperrors.ErrUnauthorized}, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{[]error{apperrors.ErrPermissionDenied}, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{[]error{apperrors.ErrReservedIdentity}, http.StatusBadRequest, dto.ErrorCodeReservedIdentity, "This username or email is reserved"},
	{[]error{apperrors.ErrPasswordMismatch}, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Passwords do not match"},
	{[]error{apperrors.ErrInvalidPasswordResetToken, apperrors.ErrPasswordResetTokenUsed}, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired reset token"},
	{[]error{apperrors.ErrValidationFailed, apperrors.ErrFileTypeNotAllowed, apperrors.ErrFileTooLarge}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{[]error{apperrors.ErrBadRequest}, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request"},
	{[]error{
		apperrors.ErrResourceNotFound, apperrors.ErrUserNotFound, apperrors.ErrPostNotFound,
		apperrors.ErrCommentNotFound, apperrors.ErrJobNotFound, apperrors.ErrApplicationMissing,
		apperrors.ErrEventNotFound, apperrors.ErrNotRegistered, apperrors.ErrRequestNotFound,
	}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{[]error{
		apperrors.ErrResourceAlreadyExists, apperrors.ErrEmailAlreadyExists, apperrors.ErrUsernameAlreadyExists,
		apperrors.ErrApplicationExists, apperrors.ErrAlreadyRegistered,
	}, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{[]error{
		apperrors.ErrConflict, apperrors.ErrLastAdmin, apperrors.ErrAdminExists, apperrors.ErrEventFull,
		apperrors.ErrRequestPending, apperrors.ErrAlreadyConnected, apperrors.ErrRequestNotPending,
	}, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{[]error{apperrors.ErrMaintenance}, http.StatusServiceUnavailable, dto.ErrorCodeMaintenance, "The site is under maintenance"},
}

func lookup(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if apperrors.Is(err, m.targets[0], m.targets[1:]...) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// HandleAPIError writes the error envelope for err. Unmapped errors are logged
// and answered with a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	m, ok := lookup(err)
	if !ok {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
		return
	}

	detail := dto.NewErrorDetail(m.code, message(err, m.message))
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details != nil {
		if field, ok := custom.Details["field"].(string); ok {
			detail.WithField(field)
		} else {
			detail.WithDetails(custom.Details)
		}
	}
	c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
}

// message prefers the text of a CustomError over the generic fallback
func message(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	if err != nil && errors.Unwrap(err) == nil {
		return capitalize(err.Error())
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
