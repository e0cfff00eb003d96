// Package client talks to the DevConnector API and keeps the client side
// state in one Store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type FieldError struct {
	Field string `json:"field,omitempty"`
	Msg   string `json:"msg"`
}

// APIError is a non-2xx answer decoded from the response envelope.
type APIError struct {
	Status  int
	Code    int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Messages lists what a user should be shown, one line per rejected field.
func (e *APIError) Messages() []string {
	if len(e.Errors) == 0 {
		return []string{e.Message}
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Msg)
	}
	return msgs
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type API struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewAPI(cfg Config) *API {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &API{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken attaches token to every later request; empty clears it.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			Errors:  env.Errors,
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

type tokenData struct {
	Token string `json:"token"`
}

func (a *API) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out tokenData
	if err := a.do(ctx, http.MethodPost, "/api/users", req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (a *API) Login(ctx context.Context, req LoginRequest) (string, error) {
	var out tokenData
	if err := a.do(ctx, http.MethodPost, "/api/auth", req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (a *API) CurrentUser(ctx context.Context) (*User, error) {
	var out User
	if err := a.do(ctx, http.MethodGet, "/api/auth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) MyProfile(ctx context.Context) (*Profile, error) {
	return a.profile(ctx, http.MethodGet, "/api/profile/me", nil)
}

func (a *API) ProfileByUser(ctx context.Context, userID string) (*Profile, error) {
	return a.profile(ctx, http.MethodGet, "/api/profile/user/"+url.PathEscape(userID), nil)
}

func (a *API) UpsertProfile(ctx context.Context, req ProfileRequest) (*Profile, error) {
	return a.profile(ctx, http.MethodPut, "/api/profile", req)
}

func (a *API) AddExperience(ctx context.Context, req ExperienceRequest) (*Profile, error) {
	return a.profile(ctx, http.MethodPut, "/api/profile/experience", req)
}

func (a *API) RemoveExperience(ctx context.Context, id string) (*Profile, error) {
	return a.profile(ctx, http.MethodDelete, "/api/profile/experience/"+url.PathEscape(id), nil)
}

func (a *API) AddEducation(ctx context.Context, req EducationRequest) (*Profile, error) {
	return a.profile(ctx, http.MethodPut, "/api/profile/education", req)
}

func (a *API) RemoveEducation(ctx context.Context, id string) (*Profile, error) {
	return a.profile(ctx, http.MethodDelete, "/api/profile/education/"+url.PathEscape(id), nil)
}

func (a *API) profile(ctx context.Context, method, path string, in any) (*Profile, error) {
	var out Profile
	if err := a.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListProfiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	if err := a.do(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) DeleteProfile(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, "/api/profile", nil, nil)
}

func (a *API) ListPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := a.do(ctx, http.MethodGet, "/api/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) GetPost(ctx context.Context, id string) (*Post, error) {
	var out Post
	if err := a.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CreatePost(ctx context.Context, text string) (*Post, error) {
	var out Post
	if err := a.do(ctx, http.MethodPost, "/api/posts", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeletePost(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

func (a *API) Like(ctx context.Context, postID string) ([]Like, error) {
	var out []Like
	if err := a.do(ctx, http.MethodPut, "/api/posts/like/"+url.PathEscape(postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) Unlike(ctx context.Context, postID string) ([]Like, error) {
	var out []Like
	if err := a.do(ctx, http.MethodPut, "/api/posts/unlike/"+url.PathEscape(postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) AddComment(ctx context.Context, postID, text string) ([]Comment, error) {
	var out []Comment
	path := "/api/posts/comment/" + url.PathEscape(postID)
	if err := a.do(ctx, http.MethodPost, path, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) RemoveComment(ctx context.Context, postID, commentID string) ([]Comment, error) {
	var out []Comment
	path := "/api/posts/comment/" + url.PathEscape(postID) + "/" + url.PathEscape(commentID)
	if err := a.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
