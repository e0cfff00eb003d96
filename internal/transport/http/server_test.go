package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsvc "devconnector/internal/app"
	"devconnector/internal/config"
	"devconnector/internal/logging"
	"devconnector/internal/testutil/memstore"
	"devconnector/internal/transport/http/handler"
	"devconnector/internal/transport/http/middleware"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field string `json:"field"`
		Msg   string `json:"msg"`
	} `json:"errors"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServices() Services {
	users := memstore.NewUsers()
	return Services{
		Auth:     appsvc.NewAuthService(users, "test-secret", time.Hour).WithHashCost(4),
		Profiles: appsvc.NewProfileService(memstore.NewProfiles(users)),
		Posts:    appsvc.NewPostService(memstore.NewPosts(), users, nil, logging.Discard()),
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	services := newTestServices()
	engine := NewEngine(EngineOptions{
		GinMode:  gin.TestMode,
		Log:      logging.Discard(),
		Services: services,
		Health: handler.NewHealthHandler("devconnector", "test", time.Now(), map[string]handler.Dependency{
			"mysql": {Check: func(context.Context) error { return nil }},
			"redis": {Optional: true, Check: func(context.Context) error { return errors.New("not connected") }},
		}),
		Metrics: middleware.NewMetrics("devconnector_test"),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
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
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/users", "", gin.H{"name": name, "email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(s.t, data.Token)
	return data.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRegisterTwiceRejected(t *testing.T) {
	s := newTestServer(t)
	s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodPost, "/api/users", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "User already exists.", env.Errors[0].Msg)
}

func TestRegisterValidationErrors(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/users", "", gin.H{"email": "nope", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, code)

	fields := map[string]string{}
	for _, e := range env.Errors {
		fields[e.Field] = e.Msg
	}
	assert.Equal(t, "Name is required", fields["name"])
	assert.Equal(t, "Please include a valid email", fields["email"])
	assert.Contains(t, fields, "password")
}

func TestRegisterPasswordTooLongForBcrypt(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/users", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": strings.Repeat("x", 80)})
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "password", env.Errors[0].Field)
	assert.Equal(t, "Please enter a password of 72 bytes or fewer", env.Errors[0].Msg)
}

func TestLoginAndCurrentUser(t *testing.T) {
	s := newTestServer(t)
	s.register("Ada", "ada@example.com")

	code, _ := s.do(http.MethodPost, "/api/auth", "", gin.H{"email": "ada@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(http.MethodPost, "/api/auth", "", gin.H{"email": "ada@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	token := decode[map[string]string](t, env.Data)["token"]

	code, env = s.do(http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := decode[map[string]any](t, env.Data)
	assert.Equal(t, "Ada", user["name"])
	assert.NotContains(t, user, "password")
}

func TestLegacyTokenHeader(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Ada", "ada@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set(middleware.LegacyTokenHeader, token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePostRequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/api/posts", "", gin.H{"text": "hello"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/posts", "garbage", gin.H{"text": "hello"})
	assert.Equal(t, http.StatusUnauthorized, code)

	token := s.register("Ada", "ada@example.com")
	code, env := s.do(http.MethodPost, "/api/posts", token, gin.H{"text": "hello"})
	require.Equal(t, http.StatusOK, code)

	post := decode[map[string]any](t, env.Data)
	assert.Equal(t, "hello", post["text"])
	assert.Equal(t, "Ada", post["name"])
	assert.Equal(t, []any{}, post["likes"])
	assert.Equal(t, []any{}, post["comments"])
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t)
	ada := s.register("Ada", "ada@example.com")
	bob := s.register("Bob", "bob@example.com")

	_, env := s.do(http.MethodPost, "/api/posts", ada, gin.H{"text": "first"})
	postID := decode[map[string]any](t, env.Data)["id"].(string)

	code, env := s.do(http.MethodPut, "/api/posts/like/"+postID, bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	code, env = s.do(http.MethodPut, "/api/posts/like/"+postID, bob, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Post already liked", env.Message)

	code, _ = s.do(http.MethodPut, "/api/posts/unlike/"+postID, ada, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/posts/comment/"+postID, bob, gin.H{"text": "nice"})
	require.Equal(t, http.StatusOK, code)
	comments := decode[[]map[string]any](t, env.Data)
	require.Len(t, comments, 1)
	commentID := comments[0]["id"].(string)

	code, _ = s.do(http.MethodDelete, "/api/posts/comment/"+postID+"/"+commentID, ada, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, "/api/posts/comment/"+postID+"/missing", bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodDelete, "/api/posts/comment/"+postID+"/"+commentID, bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]map[string]any](t, env.Data))

	code, _ = s.do(http.MethodDelete, "/api/posts/"+postID, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)

	_, env = s.do(http.MethodGet, "/api/posts", bob, nil)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	code, _ = s.do(http.MethodDelete, "/api/posts/"+postID, ada, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/posts/"+postID, ada, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProfileRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Ada", "ada@example.com")

	code, env := s.do(http.MethodGet, "/api/profile/me", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "There is no profile for this user", env.Message)

	code, env = s.do(http.MethodPut, "/api/profile", token, gin.H{"status": "Developer", "skills": "Go, SQL"})
	require.Equal(t, http.StatusOK, code)
	profile := decode[map[string]any](t, env.Data)
	assert.Equal(t, []any{"Go", "SQL"}, profile["skills"])
	userID := profile["user"].(map[string]any)["id"].(string)

	code, env = s.do(http.MethodPut, "/api/profile/experience", token, gin.H{"title": "Engineer", "company": "Acme", "from": "2020-01-01"})
	require.Equal(t, http.StatusOK, code)
	exps := decode[map[string]any](t, env.Data)["experience"].([]any)
	require.Len(t, exps, 1)
	expID := exps[0].(map[string]any)["id"].(string)

	code, env = s.do(http.MethodPut, "/api/profile/education", token, gin.H{"school": "MIT"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Errors)

	code, _ = s.do(http.MethodGet, "/api/profile/user/"+userID, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodDelete, "/api/profile/experience/"+expID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[map[string]any](t, env.Data)["experience"])

	code, env = s.do(http.MethodGet, "/api/profile", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	code, _ = s.do(http.MethodDelete, "/api/profile", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/profile/user/"+userID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusOK, code)
}

type healthBody struct {
	Status       string `json:"status"`
	Dependencies map[string]struct {
		OK       bool   `json:"ok"`
		Optional bool   `json:"optional"`
		Message  string `json:"message"`
	} `json:"dependencies"`
}

func getHealth(t *testing.T, deps map[string]handler.Dependency) (int, healthBody) {
	t.Helper()
	engine := NewEngine(EngineOptions{
		GinMode:  gin.TestMode,
		Log:      logging.Discard(),
		Services: newTestServices(),
		Health:   handler.NewHealthHandler("devconnector", "test", time.Now(), deps),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body healthBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthDegradedWithoutRedis(t *testing.T) {
	code, body := getHealth(t, map[string]handler.Dependency{
		"mysql": {Check: func(context.Context) error { return nil }},
		"redis": {Optional: true, Check: func(context.Context) error { return errors.New("not connected") }},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
	assert.True(t, body.Dependencies["mysql"].OK)
	assert.False(t, body.Dependencies["redis"].OK)
	assert.True(t, body.Dependencies["redis"].Optional)
	assert.Equal(t, "not connected", body.Dependencies["redis"].Message)
}

func TestHealthDownWhenMySQLFails(t *testing.T) {
	code, body := getHealth(t, map[string]handler.Dependency{
		"mysql": {Check: func(context.Context) error { return errors.New("connection refused") }},
		"redis": {Optional: true, Check: func(context.Context) error { return nil }},
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", body.Status)
	assert.False(t, body.Dependencies["mysql"].OK)
	assert.True(t, body.Dependencies["redis"].OK)
}

func TestHealthOK(t *testing.T) {
	code, body := getHealth(t, map[string]handler.Dependency{
		"mysql": {Check: func(context.Context) error { return nil }},
		"redis": {Optional: true, Check: func(context.Context) error { return nil }},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/profile", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `devconnector_test_http_requests_total{method="GET",route="/api/profile",status="200"} 1`)
}

func TestCredentialRoutesRateLimited(t *testing.T) {
	users := memstore.NewUsers()
	engine := NewEngine(EngineOptions{
		GinMode:   gin.TestMode,
		Log:       logging.Discard(),
		RateLimit: config.RateLimitConfig{RPS: 0.001, Burst: 1},
		Services: Services{
			Auth:     appsvc.NewAuthService(users, "test-secret", time.Hour).WithHashCost(4),
			Profiles: appsvc.NewProfileService(memstore.NewProfiles(users)),
			Posts:    appsvc.NewPostService(memstore.NewPosts(), users, nil, logging.Discard()),
		},
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
