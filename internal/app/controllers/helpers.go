// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

// parseID reads a positive int64 path parameter. On failure it writes a 400 and returns false.
func parseID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// formFile returns the optional upload in field. A missing file yields a nil Upload.
func formFile(ctx *gin.Context, field string) (filestorage.Upload, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, true
		}
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(field, "could not read uploaded file"))
		return nil, false
	}
	return filestorage.FromMultipart(fh), true
}

// requireFile is formFile for uploads that must be present
func requireFile(ctx *gin.Context, field string) (filestorage.Upload, bool) {
	up, ok := formFile(ctx, field)
	if !ok {
		return nil, false
	}
	if up == nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(field, "file is required"))
		return nil, false
	}
	return up, true
}

// viewer returns the caller, nil on public routes without a session
func viewer(ctx *gin.Context) *models.User {
	return middleware.CurrentUser(ctx)
}
