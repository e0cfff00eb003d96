package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/app"
	"devconnector/internal/client"
	"devconnector/internal/logging"
	"devconnector/internal/testutil/memstore"
	httptransport "devconnector/internal/transport/http"
)

func newEngine() *gin.Engine {
	users := memstore.NewUsers()
	return httptransport.NewEngine(httptransport.EngineOptions{
		GinMode: gin.TestMode,
		Log:     logging.Discard(),
		Services: httptransport.Services{
			Auth:     app.NewAuthService(users, "cli-secret", time.Hour).WithHashCost(4),
			Profiles: app.NewProfileService(memstore.NewProfiles(users)),
			Posts:    app.NewPostService(memstore.NewPosts(), users, nil, logging.Discard()),
		},
	})
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newEngine())
	t.Cleanup(srv.Close)
	return srv
}

func TestCLI_SessionSurvivesBetweenRuns(t *testing.T) {
	srv := newServer(t)
	tokens := client.NewTokenFile(filepath.Join(t.TempDir(), "token"))
	ctx := context.Background()

	var out bytes.Buffer
	c := newCLI(srv.URL, tokens, strings.NewReader("Ada\nada@example.com\nsecret123\n"), &out)
	require.NoError(t, c.run(ctx, []string{"register"}))
	assert.Contains(t, out.String(), "Welcome Ada")

	out.Reset()
	c = newCLI(srv.URL, tokens, strings.NewReader(""), &out)
	require.NoError(t, c.run(ctx, []string{"post", "new", "hello", "world"}))
	assert.Contains(t, out.String(), "hello world")
	assert.Contains(t, out.String(), "[success] Post Created")

	out.Reset()
	c = newCLI(srv.URL, tokens, strings.NewReader(""), &out)
	require.NoError(t, c.run(ctx, []string{"logout"}))

	out.Reset()
	c = newCLI(srv.URL, tokens, strings.NewReader(""), &out)
	require.Error(t, c.run(ctx, []string{"posts"}))
	assert.Contains(t, out.String(), "[danger] No token, authorization denied")
}

func TestCLI_LoginFailureShowsAlert(t *testing.T) {
	srv := newServer(t)
	tokens := client.NewTokenFile(filepath.Join(t.TempDir(), "token"))

	var out bytes.Buffer
	c := newCLI(srv.URL, tokens, strings.NewReader("nobody@example.com\nwrong\n"), &out)
	require.Error(t, c.run(context.Background(), []string{"login"}))
	assert.Contains(t, out.String(), "[danger] Invalid Credentials")
}

func TestCLI_UnknownCommand(t *testing.T) {
	srv := newServer(t)
	tokens := client.NewTokenFile(filepath.Join(t.TempDir(), "token"))

	c := newCLI(srv.URL, tokens, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, c.run(context.Background(), []string{"frobnicate"}))
}

func TestCLI_ProfileSetStopsWhenLookupFails(t *testing.T) {
	engine := newEngine()
	var failLookup atomic.Bool
	var writes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failLookup.Load() && r.Method == http.MethodGet && r.URL.Path == "/api/profile/me" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":50000,"message":"Server Error","errors":[{"msg":"Server Error"}]}`))
			return
		}
		if r.Method == http.MethodPost && r.URL.Path == "/api/profile" {
			writes.Add(1)
		}
		engine.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	tokens := client.NewTokenFile(filepath.Join(t.TempDir(), "token"))
	ctx := context.Background()

	c := newCLI(srv.URL, tokens, strings.NewReader("Ada\nada@example.com\nsecret123\n"), &bytes.Buffer{})
	require.NoError(t, c.run(ctx, []string{"register"}))

	failLookup.Store(true)
	var out bytes.Buffer
	c = newCLI(srv.URL, tokens, strings.NewReader(""), &out)
	require.Error(t, c.run(ctx, []string{"profile", "set", "--status", "Developer", "--skills", "go"}))
	assert.Zero(t, writes.Load())
	assert.Contains(t, out.String(), "[danger] Server Error")
}
