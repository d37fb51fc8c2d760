package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

// MaintenanceChecker reports whether the site is in maintenance mode
type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) bool
}

// Maintenance answers 503 to non-admin requests while maintenance mode is on.
// Paths starting with one of exempt always pass. It must run after LoadSession.
func Maintenance(checker MaintenanceChecker, exempt ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range exempt {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if CurrentUser(c).IsAdmin() || !checker.MaintenanceMode(c.Request.Context()) {
			c.Next()
			return
		}
		HandleAPIError(c, apperrors.ErrMaintenance)
	}
}
