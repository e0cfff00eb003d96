package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const DefaultAlertTimeout = 5 * time.Second

// TokenStore persists the session token on the client side.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Actions call the API and dispatch the matching success or failure
// transitions. Failures also raise alerts that expire on their own.
type Actions struct {
	api          *API
	store        *Store
	tokens       TokenStore
	alertTimeout time.Duration
}

func NewActions(api *API, store *Store, tokens TokenStore) *Actions {
	return &Actions{
		api:          api,
		store:        store,
		tokens:       tokens,
		alertTimeout: DefaultAlertTimeout,
	}
}

func (a *Actions) WithAlertTimeout(d time.Duration) *Actions {
	a.alertTimeout = d
	return a
}

// Restore attaches a saved token and loads its user. A missing token is
// not an error.
func (a *Actions) Restore(ctx context.Context) error {
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		a.store.Dispatch(AuthFailed{})
		return nil
	}
	a.api.SetToken(token)
	return a.LoadUser(ctx)
}

func (a *Actions) SetAlert(msg string, kind AlertType) string {
	id := uuid.NewString()
	a.store.Dispatch(AlertSet{Alert: Alert{ID: id, Msg: msg, Type: kind}})
	if a.alertTimeout > 0 {
		time.AfterFunc(a.alertTimeout, func() {
			a.store.Dispatch(AlertRemoved{ID: id})
		})
	}
	return id
}

func (a *Actions) alertErr(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		for _, msg := range apiErr.Messages() {
			a.SetAlert(msg, AlertDanger)
		}
		return apiErr
	}
	a.SetAlert(err.Error(), AlertDanger)
	return &APIError{Message: err.Error()}
}

func (a *Actions) LoadUser(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		a.dropToken()
		a.store.Dispatch(AuthFailed{})
		return err
	}
	a.store.Dispatch(UserLoaded{User: user})
	return nil
}

func (a *Actions) Register(ctx context.Context, req RegisterRequest) error {
	token, err := a.api.Register(ctx, req)
	if err != nil {
		a.alertErr(err)
		a.dropToken()
		a.store.Dispatch(RegisterFailed{})
		return err
	}
	if err := a.keepToken(token); err != nil {
		return err
	}
	a.store.Dispatch(RegisterSuccess{Token: token})
	return a.LoadUser(ctx)
}

func (a *Actions) Login(ctx context.Context, req LoginRequest) error {
	token, err := a.api.Login(ctx, req)
	if err != nil {
		a.alertErr(err)
		a.dropToken()
		a.store.Dispatch(LoginFailed{})
		return err
	}
	if err := a.keepToken(token); err != nil {
		return err
	}
	a.store.Dispatch(LoginSuccess{Token: token})
	return a.LoadUser(ctx)
}

func (a *Actions) Logout() error {
	err := a.tokens.Clear()
	a.api.SetToken("")
	a.store.Dispatch(ProfileCleared{})
	a.store.Dispatch(LoggedOut{})
	return err
}

func (a *Actions) keepToken(token string) error {
	a.api.SetToken(token)
	return a.tokens.Save(token)
}

func (a *Actions) dropToken() {
	a.api.SetToken("")
	_ = a.tokens.Clear()
}

func (a *Actions) GetCurrentProfile(ctx context.Context) error {
	profile, err := a.api.MyProfile(ctx)
	if err != nil {
		// No profile yet is an ordinary dashboard state.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			a.store.Dispatch(ProfileFailed{Err: apiErr})
			return nil
		}
		a.store.Dispatch(ProfileFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(ProfileLoaded{Profile: profile})
	return nil
}

func (a *Actions) GetProfiles(ctx context.Context) error {
	a.store.Dispatch(ProfileCleared{})
	profiles, err := a.api.ListProfiles(ctx)
	if err != nil {
		a.store.Dispatch(ProfileFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(ProfilesLoaded{Profiles: profiles})
	return nil
}

func (a *Actions) GetProfileByUser(ctx context.Context, userID string) error {
	profile, err := a.api.ProfileByUser(ctx, userID)
	if err != nil {
		a.store.Dispatch(ProfileFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(ProfileLoaded{Profile: profile})
	return nil
}

// CreateProfile creates or edits the caller's profile.
func (a *Actions) CreateProfile(ctx context.Context, req ProfileRequest, edit bool) error {
	profile, err := a.api.UpsertProfile(ctx, req)
	if err != nil {
		a.store.Dispatch(ProfileFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(ProfileLoaded{Profile: profile})
	if edit {
		a.SetAlert("Profile Updated", AlertSuccess)
	} else {
		a.SetAlert("Profile Created", AlertSuccess)
	}
	return nil
}

func (a *Actions) DeleteProfile(ctx context.Context) error {
	if err := a.api.DeleteProfile(ctx); err != nil {
		a.store.Dispatch(ProfileFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(ProfileCleared{})
	a.SetAlert("Your profile has been removed", AlertSuccess)
	return nil
}

func (a *Actions) AddExperience(ctx context.Context, req ExperienceRequest) error {
	return a.updateProfile(func() (*Profile, error) { return a.api.AddExperience(ctx, req) }, "Experience Added")
}

func (a *Actions) DeleteExperience(ctx context.Context, id string) error {
	return a.updateProfile(func() (*Profile, error) { return a.api.RemoveExperience(ctx, id) }, "Experience Removed")
}

func (a *Actions) AddEducation(ctx context.Context, req EducationRequest) error {
	return a.updateProfile(func() (*Profile, error) { return a.api.AddEducation(ctx, req) }, "Education Added")
}

func (a *Actions) DeleteEducation(ctx context.Context, id string) error {
	return a.updateProfile(func() (*Profile, error) { return a.api.RemoveEducation(ctx, id) }, "Education Removed")
}

func (a *Actions) updateProfile(call func() (*Profile, error), success string) error {
	profile, err := call()
	if err != nil {
		a.store.Dispatch(ProfileFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(ProfileLoaded{Profile: profile})
	a.SetAlert(success, AlertSuccess)
	return nil
}

func (a *Actions) GetPosts(ctx context.Context) error {
	posts, err := a.api.ListPosts(ctx)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(PostsLoaded{Posts: posts})
	return nil
}

func (a *Actions) GetPost(ctx context.Context, id string) error {
	post, err := a.api.GetPost(ctx, id)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(PostLoaded{Post: post})
	return nil
}

func (a *Actions) AddPost(ctx context.Context, text string) error {
	post, err := a.api.CreatePost(ctx, text)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(PostAdded{Post: post})
	a.SetAlert("Post Created", AlertSuccess)
	return nil
}

func (a *Actions) DeletePost(ctx context.Context, id string) error {
	if err := a.api.DeletePost(ctx, id); err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(PostDeleted{ID: id})
	a.SetAlert("Post Removed", AlertSuccess)
	return nil
}

func (a *Actions) AddLike(ctx context.Context, postID string) error {
	likes, err := a.api.Like(ctx, postID)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(LikesUpdated{PostID: postID, Likes: likes})
	return nil
}

func (a *Actions) RemoveLike(ctx context.Context, postID string) error {
	likes, err := a.api.Unlike(ctx, postID)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(LikesUpdated{PostID: postID, Likes: likes})
	return nil
}

func (a *Actions) AddComment(ctx context.Context, postID, text string) error {
	comments, err := a.api.AddComment(ctx, postID, text)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(CommentsUpdated{PostID: postID, Comments: comments})
	a.SetAlert("Comment Added", AlertSuccess)
	return nil
}

func (a *Actions) DeleteComment(ctx context.Context, postID, commentID string) error {
	comments, err := a.api.RemoveComment(ctx, postID, commentID)
	if err != nil {
		a.store.Dispatch(PostFailed{Err: a.alertErr(err)})
		return err
	}
	a.store.Dispatch(CommentsUpdated{PostID: postID, Comments: comments})
	a.SetAlert("Comment Removed", AlertSuccess)
	return nil
}
