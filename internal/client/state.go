package client

type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertDanger  AlertType = "danger"
)

type Alert struct {
	ID   string
	Msg  string
	Type AlertType
}

type AuthState struct {
	Token           string
	IsAuthenticated bool
	Loading         bool
	User            *User
}

type ProfileState struct {
	Profile  *Profile
	Profiles []Profile
	Loading  bool
	Error    *APIError
}

type PostState struct {
	Posts   []Post
	Post    *Post
	Loading bool
	Error   *APIError
}

type State struct {
	Auth    AuthState
	Profile ProfileState
	Post    PostState
	Alerts  []Alert
}

// InitialState starts every slice loading, the way a fresh page does
// before its first fetch.
func InitialState(token string) State {
	return State{
		Auth:    AuthState{Token: token, Loading: true},
		Profile: ProfileState{Loading: true},
		Post:    PostState{Loading: true},
	}
}

// Action is one state transition request handled by Reduce.
type Action interface {
	actionType() string
}

type (
	UserLoaded      struct{ User *User }
	AuthFailed      struct{}
	RegisterSuccess struct{ Token string }
	RegisterFailed  struct{}
	LoginSuccess    struct{ Token string }
	LoginFailed     struct{}
	LoggedOut       struct{}

	ProfileLoaded  struct{ Profile *Profile }
	ProfilesLoaded struct{ Profiles []Profile }
	ProfileFailed  struct{ Err *APIError }
	ProfileCleared struct{}

	PostsLoaded struct{ Posts []Post }
	PostLoaded  struct{ Post *Post }
	PostAdded   struct{ Post *Post }
	PostDeleted struct{ ID string }
	PostFailed  struct{ Err *APIError }

	LikesUpdated struct {
		PostID string
		Likes  []Like
	}
	CommentsUpdated struct {
		PostID   string
		Comments []Comment
	}

	AlertSet     struct{ Alert Alert }
	AlertRemoved struct{ ID string }
)

func (UserLoaded) actionType() string      { return "USER_LOADED" }
func (AuthFailed) actionType() string      { return "AUTH_ERROR" }
func (RegisterSuccess) actionType() string { return "REGISTER_SUCCESS" }
func (RegisterFailed) actionType() string  { return "REGISTER_FAIL" }
func (LoginSuccess) actionType() string    { return "LOGIN_SUCCESS" }
func (LoginFailed) actionType() string     { return "LOGIN_FAIL" }
func (LoggedOut) actionType() string       { return "LOGOUT" }
func (ProfileLoaded) actionType() string   { return "GET_PROFILE" }
func (ProfilesLoaded) actionType() string  { return "GET_PROFILES" }
func (ProfileFailed) actionType() string   { return "PROFILE_ERROR" }
func (ProfileCleared) actionType() string  { return "CLEAR_PROFILE" }
func (PostsLoaded) actionType() string     { return "GET_POSTS" }
func (PostLoaded) actionType() string      { return "GET_POST" }
func (PostAdded) actionType() string       { return "ADD_POST" }
func (PostDeleted) actionType() string     { return "DELETE_POST" }
func (PostFailed) actionType() string      { return "POST_ERROR" }
func (LikesUpdated) actionType() string    { return "UPDATE_LIKES" }
func (CommentsUpdated) actionType() string { return "UPDATE_COMMENTS" }
func (AlertSet) actionType() string        { return "SET_ALERT" }
func (AlertRemoved) actionType() string    { return "REMOVE_ALERT" }

// Reduce returns the state after action. It never mutates s.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case UserLoaded:
		s.Auth.IsAuthenticated = true
		s.Auth.Loading = false
		s.Auth.User = a.User
	case RegisterSuccess:
		s.Auth = AuthState{Token: a.Token, IsAuthenticated: true}
	case LoginSuccess:
		s.Auth = AuthState{Token: a.Token, IsAuthenticated: true}
	case AuthFailed, RegisterFailed, LoginFailed:
		s.Auth = AuthState{}
	case LoggedOut:
		s.Auth = AuthState{}
		s.Profile = ProfileState{}
	case ProfileLoaded:
		s.Profile.Profile = a.Profile
		s.Profile.Loading = false
		s.Profile.Error = nil
	case ProfilesLoaded:
		s.Profile.Profiles = a.Profiles
		s.Profile.Loading = false
		s.Profile.Error = nil
	case ProfileFailed:
		s.Profile.Error = a.Err
		s.Profile.Loading = false
	case ProfileCleared:
		s.Profile.Profile = nil
		s.Profile.Loading = false
	case PostsLoaded:
		s.Post.Posts = a.Posts
		s.Post.Loading = false
		s.Post.Error = nil
	case PostLoaded:
		s.Post.Post = a.Post
		s.Post.Loading = false
		s.Post.Error = nil
	case PostAdded:
		s.Post.Posts = append([]Post{*a.Post}, s.Post.Posts...)
		s.Post.Loading = false
	case PostDeleted:
		s.Post.Posts = filterPosts(s.Post.Posts, a.ID)
		if s.Post.Post != nil && s.Post.Post.ID == a.ID {
			s.Post.Post = nil
		}
		s.Post.Loading = false
	case PostFailed:
		s.Post.Error = a.Err
		s.Post.Loading = false
	case LikesUpdated:
		s.Post.Posts = mapPost(s.Post.Posts, a.PostID, func(p *Post) { p.Likes = a.Likes })
		if s.Post.Post != nil && s.Post.Post.ID == a.PostID {
			cp := *s.Post.Post
			cp.Likes = a.Likes
			s.Post.Post = &cp
		}
		s.Post.Loading = false
	case CommentsUpdated:
		if s.Post.Post != nil && s.Post.Post.ID == a.PostID {
			cp := *s.Post.Post
			cp.Comments = a.Comments
			s.Post.Post = &cp
		}
		s.Post.Loading = false
	case AlertSet:
		s.Alerts = append(append([]Alert(nil), s.Alerts...), a.Alert)
	case AlertRemoved:
		kept := make([]Alert, 0, len(s.Alerts))
		for _, al := range s.Alerts {
			if al.ID != a.ID {
				kept = append(kept, al)
			}
		}
		s.Alerts = kept
	}
	return s
}

func filterPosts(posts []Post, id string) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func mapPost(posts []Post, id string, update func(*Post)) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	for i := range out {
		if out[i].ID == id {
			update(&out[i])
		}
	}
	return out
}
