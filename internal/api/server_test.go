package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json/v2"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmemoapp/pmemo-server/internal/auth"
	"github.com/pmemoapp/pmemo-server/internal/config"
	"github.com/pmemoapp/pmemo-server/internal/logger"
	"github.com/pmemoapp/pmemo-server/internal/search"
	"github.com/pmemoapp/pmemo-server/internal/service"
	"github.com/pmemoapp/pmemo-server/internal/store"
	"github.com/pmemoapp/pmemo-server/internal/validation"
)

// envelope mirrors the response wrapper for test decoding.
type envelope struct {
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Success bool           `json:"success"`
}

// listEnvelope is the wrapper for array-valued responses.
type listEnvelope struct {
	Data    []map[string]any `json:"data"`
	Success bool             `json:"success"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	log := logger.New(logger.Config{Writer: io.Discard})

	st, err := store.New(t.TempDir(), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	idx, err := search.NewMemOnly(log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, idx.Close())
	})

	tokens, err := auth.NewTokenService(hex.EncodeToString(make([]byte, 32)), time.Hour)
	require.NoError(t, err)

	v := validation.New()

	cfg := &config.Config{}
	cfg.Auth.LoginRPS = 100
	cfg.Auth.LoginBurst = 100
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}

	return NewServer(cfg,
		service.NewAuthService(st, tokens, v, log.Logger),
		service.NewTagService(st, v, log.Logger),
		service.NewMemoService(st, idx, v, log.Logger),
		log,
	)
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var env listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

// registerAndLogin creates an account over HTTP and returns its token.
func registerAndLogin(t *testing.T, srv *Server, email string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":     email,
		"password":  "correct horse battery",
		"full_name": "Test User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	token, _ := env.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice@example.com")

	// Login with OAuth2-password-style form fields.
	form := url.Values{}
	form.Set("username", "alice@example.com")
	form.Set("password", "correct horse battery")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data["access_token"])
	assert.Equal(t, "Bearer", env.Data["token_type"])
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice@example.com",
		"password": "wrong password!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":     "alice@example.com",
		"password":  "another password",
		"full_name": "Imposter",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "alice@example.com", env.Data["email"])
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestProtectedRoutes_RejectBadTokens(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer v4.local.garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/memos/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestTagEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	// Create.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tags/", token, map[string]any{
		"name":  "work",
		"color": "#e74c3c",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tagID, _ := decodeEnvelope(t, rec).Data["id"].(string)
	require.NotEmpty(t, tagID)

	// Duplicate name conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/tags/", token, map[string]any{"name": "Work"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// List.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tags/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// Update.
	rec = doJSON(t, srv, http.MethodPut, "/api/v1/tags/"+tagID, token, map[string]any{"name": "projects"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "projects", decodeEnvelope(t, rec).Data["name"])

	// Another user cannot see it.
	otherToken := registerAndLogin(t, srv, "bob@example.com")
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tags/"+tagID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Delete.
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/tags/"+tagID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tags/"+tagID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	// Tag to attach.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tags/", token, map[string]any{"name": "work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tagID, _ := decodeEnvelope(t, rec).Data["id"].(string)

	// Invalid tag reference is a 400.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/memos/", token, map[string]any{
		"title":   "bad ref",
		"content": "body",
		"tags":    []string{"tag-missing"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Create with a valid tag.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/memos/", token, map[string]any{
		"title":   "standup notes",
		"content": "ship the release",
		"tags":    []string{tagID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeEnvelope(t, rec).Data
	memoID, _ := created["id"].(string)
	require.NotEmpty(t, memoID)

	// Tags come back materialized with name and color.
	tags, _ := created["tags"].([]any)
	require.Len(t, tags, 1)
	tag, _ := tags[0].(map[string]any)
	assert.Equal(t, "work", tag["name"])

	// Get.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/"+memoID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Update.
	rec = doJSON(t, srv, http.MethodPut, "/api/v1/memos/"+memoID, token, map[string]any{
		"title":     "final notes",
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeEnvelope(t, rec).Data
	assert.Equal(t, "final notes", updated["title"])
	assert.Equal(t, true, updated["is_public"])
	assert.Equal(t, "ship the release", updated["content"], "partial update keeps other fields")

	// List by tag.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/tag/"+tagID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// Search.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/?q=RELEASE", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/?q=vacation", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/search?q=release", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// Delete.
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/memos/"+memoID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/"+memoID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoVisibility(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "alice@example.com")
	bobToken := registerAndLogin(t, srv, "bob@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memos/", aliceToken, map[string]any{
		"title":     "announcement",
		"content":   "hello world",
		"is_public": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	publicID, _ := decodeEnvelope(t, rec).Data["id"].(string)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/memos/", aliceToken, map[string]any{
		"title":   "diary",
		"content": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	privateID, _ := decodeEnvelope(t, rec).Data["id"].(string)

	// Bob reads the public memo.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/"+publicID, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The private one is a 404, not a 403.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/"+privateID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bob's listing contains nothing of Alice's.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memos/", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))
}

func TestLoginRateLimit(t *testing.T) {
	srv := newTestServer(t)

	// Rebuild with a tight limit.
	cfg := &config.Config{}
	cfg.Auth.LoginRPS = 0.01
	cfg.Auth.LoginBurst = 2
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	srv = NewServer(cfg, srv.authService, srv.tagService, srv.memoService, srv.logger)

	body := map[string]any{"username": "alice@example.com", "password": "whatever!"}
	for i := 0; i < 2; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.NotEqual(t, http.StatusTooManyRequests, rec.Code, "attempt %d within burst", i)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
