package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/app"
	"devconnector/internal/logging"
	"devconnector/internal/testutil/memstore"
	httptransport "devconnector/internal/transport/http"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	users := memstore.NewUsers()
	engine := httptransport.NewEngine(httptransport.EngineOptions{
		GinMode: gin.TestMode,
		Log:     logging.Discard(),
		Services: httptransport.Services{
			Auth:     app.NewAuthService(users, "client-secret", time.Hour).WithHashCost(4),
			Profiles: app.NewProfileService(memstore.NewProfiles(users)),
			Posts:    app.NewPostService(memstore.NewPosts(), users, nil, logging.Discard()),
		},
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

type session struct {
	api     *API
	store   *Store
	tokens  *TokenFile
	actions *Actions
}

func newSession(t *testing.T, baseURL string) *session {
	t.Helper()
	api := NewAPI(Config{BaseURL: baseURL})
	store := NewStore(InitialState(""))
	tokens := NewTokenFile(filepath.Join(t.TempDir(), "token"))
	return &session{
		api:     api,
		store:   store,
		tokens:  tokens,
		actions: NewActions(api, store, tokens).WithAlertTimeout(0),
	}
}

func TestAPI_ErrorEnvelope(t *testing.T) {
	srv := newBackend(t)
	api := NewAPI(Config{BaseURL: srv.URL})
	ctx := context.Background()

	_, err := api.Register(ctx, RegisterRequest{Email: "bad"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Messages(), "Name is required")

	_, err = api.ListPosts(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestActions_RegisterPersistsTokenAndLoadsUser(t *testing.T) {
	srv := newBackend(t)
	s := newSession(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, s.actions.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"}))

	state := s.store.State()
	assert.True(t, state.Auth.IsAuthenticated)
	require.NotNil(t, state.Auth.User)
	assert.Equal(t, "Ada", state.Auth.User.Name)

	saved, err := s.tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, state.Auth.Token, saved)

	// A fresh run picks the saved token back up.
	next := newSession(t, srv.URL)
	next.tokens = s.tokens
	next.actions = NewActions(next.api, next.store, s.tokens).WithAlertTimeout(0)
	require.NoError(t, next.actions.Restore(ctx))
	assert.True(t, next.store.State().Auth.IsAuthenticated)
}

func TestActions_RegisterTwiceRaisesAlert(t *testing.T) {
	srv := newBackend(t)
	s := newSession(t, srv.URL)
	ctx := context.Background()
	req := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"}

	require.NoError(t, s.actions.Register(ctx, req))
	require.Error(t, s.actions.Register(ctx, req))

	state := s.store.State()
	assert.False(t, state.Auth.IsAuthenticated)
	require.NotEmpty(t, state.Alerts)
	assert.Equal(t, "User already exists.", state.Alerts[len(state.Alerts)-1].Msg)
	assert.Equal(t, AlertDanger, state.Alerts[len(state.Alerts)-1].Type)
}

func TestActions_AlertsExpire(t *testing.T) {
	srv := newBackend(t)
	s := newSession(t, srv.URL)
	s.actions.WithAlertTimeout(20 * time.Millisecond)

	require.Error(t, s.actions.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"}))
	require.Len(t, s.store.State().Alerts, 1)

	assert.Eventually(t, func() bool { return len(s.store.State().Alerts) == 0 }, time.Second, 10*time.Millisecond)
}

func TestActions_ProfileAndPosts(t *testing.T) {
	srv := newBackend(t)
	s := newSession(t, srv.URL)
	ctx := context.Background()
	require.NoError(t, s.actions.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"}))

	require.NoError(t, s.actions.GetCurrentProfile(ctx))
	assert.Nil(t, s.store.State().Profile.Profile)
	assert.Equal(t, http.StatusNotFound, s.store.State().Profile.Error.Status)

	require.NoError(t, s.actions.CreateProfile(ctx, ProfileRequest{Status: "Developer", Skills: "Go, SQL"}, false))
	require.NoError(t, s.actions.AddExperience(ctx, ExperienceRequest{Title: "Engineer", Company: "Acme", From: "2020-01-01", Current: true}))
	profile := s.store.State().Profile.Profile
	require.NotNil(t, profile)
	assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
	require.Len(t, profile.Experience, 1)
	assert.Nil(t, profile.Experience[0].To)

	require.NoError(t, s.actions.DeleteExperience(ctx, profile.Experience[0].ID))
	assert.Empty(t, s.store.State().Profile.Profile.Experience)

	require.NoError(t, s.actions.AddPost(ctx, "hello"))
	posts := s.store.State().Post.Posts
	require.Len(t, posts, 1)
	postID := posts[0].ID

	require.NoError(t, s.actions.AddLike(ctx, postID))
	assert.Len(t, s.store.State().Post.Posts[0].Likes, 1)
	require.Error(t, s.actions.AddLike(ctx, postID))
	require.NoError(t, s.actions.RemoveLike(ctx, postID))
	assert.Empty(t, s.store.State().Post.Posts[0].Likes)

	require.NoError(t, s.actions.GetPost(ctx, postID))
	require.NoError(t, s.actions.AddComment(ctx, postID, "first"))
	comments := s.store.State().Post.Post.Comments
	require.Len(t, comments, 1)
	require.NoError(t, s.actions.DeleteComment(ctx, postID, comments[0].ID))
	assert.Empty(t, s.store.State().Post.Post.Comments)

	require.NoError(t, s.actions.DeletePost(ctx, postID))
	assert.Empty(t, s.store.State().Post.Posts)
	assert.Nil(t, s.store.State().Post.Post)

	require.NoError(t, s.actions.DeleteProfile(ctx))
	assert.Nil(t, s.store.State().Profile.Profile)

	require.NoError(t, s.actions.Logout())
	assert.False(t, s.store.State().Auth.IsAuthenticated)
	assert.Empty(t, s.api.Token())
}
