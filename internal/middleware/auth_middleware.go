package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/auth"
	"github.com/fitalumni/alumni/internal/pkg/websocket"
)

// Context keys set by the session middleware
const (
	UserKey      = "user"
	UserIDKey    = websocket.UserIDKey
	SessionIDKey = "sessionID"
	authErrorKey = "authError"
)

// DefaultCookieName is the session cookie used when none is configured
const DefaultCookieName = "session"

// Authenticator resolves a session token to its user and session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error)
}

// AuthMiddleware loads the caller's session and enforces authentication and roles
type AuthMiddleware struct {
	authenticator Authenticator
	cookieName    string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		cookieName:    cookieName,
	}
}

// CookieName returns the name of the session cookie
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// token reads the session cookie, falling back to an Authorization bearer header
func (m *AuthMiddleware) token(c *gin.Context) (string, error) {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", apperrors.ErrTokenNotFound
	}
	token, err := auth.ExtractBearerToken(header)
	if err != nil {
		return "", apperrors.ErrTokenInvalid
	}
	return token, nil
}

// LoadSession resolves the session if the request carries one. It never aborts;
// RequireAuth reports the failure on routes that need a session.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.token(c)
		if err != nil {
			c.Set(authErrorKey, err)
			c.Next()
			return
		}

		user, session, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Set(authErrorKey, err)
			c.Next()
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(SessionIDKey, session.ID)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless LoadSession found a valid session
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		err := apperrors.NewUnauthorizedError("Authentication required")
		if value, ok := c.Get(authErrorKey); ok {
			if authErr, ok := value.(error); ok && !errors.Is(authErr, apperrors.ErrTokenNotFound) {
				err = authErr
			}
		}
		HandleAPIError(c, err)
	}
}

// RequireRoles aborts with 403 unless the caller has one of roles. It must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			HandleAPIError(c, apperrors.NewUnauthorizedError("Authentication required"))
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		HandleAPIError(c, apperrors.NewForbiddenError("You don't have sufficient permissions for this operation"))
	}
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// CurrentSessionID returns the id of the caller's session, or ""
func CurrentSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
