package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	sessions map[string]*models.User
	err      error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, *models.Session, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	user, ok := f.sessions[token]
	if !ok {
		return nil, nil, apperrors.ErrSessionNotFound
	}
	return user, &models.Session{ID: "sess-" + token, UserID: user.ID}, nil
}

type fixedMaintenance bool

func (f fixedMaintenance) MaintenanceMode(context.Context) bool { return bool(f) }

var (
	alice = &models.User{ID: 1, Username: "alice", Role: models.RoleUser, IsActive: true}
	root  = &models.User{ID: 2, Username: "root", Role: models.RoleAdmin, IsActive: true}
)

func newAuthRouter(authenticator Authenticator) *gin.Engine {
	m := NewAuthMiddleware(authenticator, "")
	r := gin.New()
	r.Use(m.LoadSession())
	r.GET("/open", func(c *gin.Context) {
		id := int64(0)
		if u := CurrentUser(c); u != nil {
			id = u.ID
		}
		c.JSON(http.StatusOK, gin.H{"userId": id, "session": CurrentSessionID(c)})
	})
	private := r.Group("/", m.RequireAuth())
	private.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	private.GET("/admin", m.RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var body dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.NotNil(t, body.Error)
	return *body.Error
}

func TestNewAuthMiddlewareDefaultsCookieName(t *testing.T) {
	assert.Equal(t, DefaultCookieName, NewAuthMiddleware(nil, "").CookieName())
	assert.Equal(t, "sid", NewAuthMiddleware(nil, "sid").CookieName())
}

func TestRequireAuth(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{sessions: map[string]*models.User{"good": alice, "boss": root}})

	tests := []struct {
		name       string
		path       string
		setup      func(r *http.Request)
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{
			name:       "no credentials",
			path:       "/me",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrorCodeUnauthorized,
		},
		{
			name:       "valid cookie",
			path:       "/me",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "good"}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid bearer header",
			path:       "/me",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed header",
			path:       "/me",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Token good") },
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrorCodeInvalidToken,
		},
		{
			name:       "unknown session",
			path:       "/me",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer stale") },
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrorCodeInvalidToken,
		},
		{
			name:       "non admin on admin route",
			path:       "/admin",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrorCodeForbidden,
		},
		{
			name:       "admin on admin route",
			path:       "/admin",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer boss") },
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestLoadSessionNeverAborts(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{err: apperrors.ErrTokenExpired})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":0,"session":""}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Code)
}

func TestLoadSessionSetsContext(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{sessions: map[string]*models.User{"good": alice}})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "good"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":1,"session":"sess-good"}`, w.Body.String())
}

func TestMaintenance(t *testing.T) {
	auth := NewAuthMiddleware(&fakeAuthenticator{sessions: map[string]*models.User{"good": alice, "boss": root}}, "")

	newRouter := func(on bool) *gin.Engine {
		r := gin.New()
		r.Use(auth.LoadSession(), Maintenance(fixedMaintenance(on), "/api/v1/auth"))
		r.GET("/api/v1/posts", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	tests := []struct {
		name       string
		on         bool
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"off", false, http.MethodGet, "/api/v1/posts", "", http.StatusOK},
		{"on blocks anonymous", true, http.MethodGet, "/api/v1/posts", "", http.StatusServiceUnavailable},
		{"on blocks members", true, http.MethodGet, "/api/v1/posts", "good", http.StatusServiceUnavailable},
		{"on lets admins through", true, http.MethodGet, "/api/v1/posts", "boss", http.StatusOK},
		{"exempt prefix", true, http.MethodPost, "/api/v1/auth/login", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			newRouter(tt.on).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.Equal(t, dto.ErrorCodeMaintenance, decodeError(t, w).Code)
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"not found sentinel", apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Job not found"},
		{"wrapped conflict", fmt.Errorf("register: %w", apperrors.ErrEventFull), http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
		{"custom forbidden", apperrors.NewForbiddenError("Only the author can edit"), http.StatusForbidden, dto.ErrorCodeForbidden, "Only the author can edit"},
		{"maintenance", apperrors.ErrMaintenance, http.StatusServiceUnavailable, dto.ErrorCodeMaintenance, "Site is under maintenance"},
		{"unmapped", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.wantStatus, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.Equal(t, tt.wantMessage, detail.Message)
		})
	}
}

func TestBindJSONReportsValidationErrors(t *testing.T) {
	type payload struct {
		Title string `json:"title" binding:"required"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var p payload
		if !BindJSON(c, &p) {
			return
		}
		c.JSON(http.StatusOK, p)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeInternalServer, detail.Code)
	assert.Equal(t, dto.ErrorSeverityCritical, detail.Severity)
}
