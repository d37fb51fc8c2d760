package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/repositories/memory"
	"github.com/fitalumni/alumni/internal/config"
	"github.com/fitalumni/alumni/internal/seed"
)

const (
	adminEmail    = "admin@fit.edu.vn"
	adminPassword = "admin-secret"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Server.UploadDir = t.TempDir()
	cfg.Server.MaxUploadMB = 4
	cfg.Session.Secret = "test-secret"
	cfg.Session.TTL = "1h"
	cfg.Session.Issuer = "test"
	cfg.Session.CookieName = "session"
	cfg.Admin.Email = adminEmail
	cfg.CORS.AllowedOrigins = "*"

	repos := memory.NewRepositories(memory.Open())
	require.NoError(t, seed.CreateDefaultData(context.Background(), repos, seed.AdminAccount{
		Email:    adminEmail,
		Username: "admin",
		Password: adminPassword,
	}, zerolog.Nop()))

	deps, err := BuildDependencies(cfg, repos, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, deps.Scheduler)

	ctx, cancel := context.WithCancel(context.Background())
	deps.Start(ctx)
	t.Cleanup(func() {
		deps.Stop(context.Background())
		cancel()
	})

	return &testServer{t: t, router: SetupRouter(cfg, deps, zerolog.Nop())}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, status)

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(s.t, session.Token)
	return session.Token
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	status, _ := srv.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":        "lan.tran",
		"email":           "lan@fit.edu.vn",
		"password":        "secret123",
		"confirmPassword": "secret123",
		"role":            "alumni",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)

	token := srv.login("lan@fit.edu.vn", "secret123")

	status, env = srv.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "lan.tran", me.Username)
	assert.Equal(t, "alumni", me.Role)

	status, env = srv.do(http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH_009", env.Error.Code)

	status, _ = srv.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = srv.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/v1/posts", "/api/v1/events", "/api/v1/messages/conversations", "/api/v1/connections"} {
		status, env := srv.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, "AUTH_008", env.Error.Code, path)
	}

	status, _ := srv.do(http.MethodGet, "/api/v1/jobs", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestMaintenanceModeBlocksMembersOnly(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":        "minh",
		"email":           "minh@fit.edu.vn",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	require.Equal(t, http.StatusCreated, status)
	member := srv.login("minh@fit.edu.vn", "secret123")
	admin := srv.login(adminEmail, adminPassword)

	on := true
	status, _ = srv.do(http.MethodPut, "/api/v1/admin/settings", admin, gin.H{
		"siteName":        "Alumni Network",
		"maintenanceMode": on,
	})
	require.Equal(t, http.StatusOK, status)

	status, env := srv.do(http.MethodGet, "/api/v1/posts", member, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SRV_004", env.Error.Code)

	status, _ = srv.do(http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(http.MethodGet, "/api/v1/admin/dashboard", admin, nil)
	assert.Equal(t, http.StatusOK, status)

	// login stays reachable so admins can get in
	srv.login("minh@fit.edu.vn", "secret123")
}
