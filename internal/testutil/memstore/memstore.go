// Package memstore holds in-memory stores satisfying the app store
// interfaces, for tests that run the full HTTP stack without MySQL.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type Users struct {
	mu   sync.RWMutex
	byID map[string]model.User
}

func NewUsers() *Users {
	return &Users{byID: map[string]model.User{}}
}

func (s *Users) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	s.byID[user.ID] = *user
	return nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Users) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Rename changes a stored user's name in place.
func (s *Users) Rename(id, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return false
	}
	u.Name = name
	s.byID[id] = u
	return true
}

type Profiles struct {
	mu     sync.Mutex
	byUser map[string]*model.Profile
	users  *Users
}

func NewProfiles(users *Users) *Profiles {
	return &Profiles{byUser: map[string]*model.Profile{}, users: users}
}

func (s *Profiles) snapshot(p *model.Profile) model.Profile {
	cp := *p
	cp.Skills = append([]string(nil), p.Skills...)
	cp.Experience = append([]model.Experience(nil), p.Experience...)
	cp.Education = append([]model.Education(nil), p.Education...)
	cp.User = nil
	if s.users != nil {
		if u, _ := s.users.GetByID(context.Background(), p.UserID); u != nil {
			cp.User = &model.User{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
		}
	}
	return cp
}

func (s *Profiles) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := s.snapshot(p)
	return &cp, nil
}

func (s *Profiles) List(_ context.Context) ([]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Profile, 0, len(s.byUser))
	for _, p := range s.byUser {
		out = append(out, s.snapshot(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Profiles) Save(_ context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byUser[profile.UserID]
	if profile.ID == "" {
		if ok {
			return repository.ErrDuplicate
		}
		profile.ID = uuid.NewString()
		profile.CreatedAt = time.Now()
		stored := *profile
		stored.User = nil
		s.byUser[profile.UserID] = &stored
		return nil
	}
	stored := *profile
	stored.User = nil
	if ok {
		stored.Experience = existing.Experience
		stored.Education = existing.Education
	}
	s.byUser[profile.UserID] = &stored
	return nil
}

func (s *Profiles) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

func (s *Profiles) byProfileID(id string) *model.Profile {
	for _, p := range s.byUser {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Profiles) AddExperience(_ context.Context, exp *model.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byProfileID(exp.ProfileID)
	if p == nil {
		return nil
	}
	exp.ID = uuid.NewString()
	exp.CreatedAt = time.Now()
	p.Experience = append([]model.Experience{*exp}, p.Experience...)
	return nil
}

func (s *Profiles) DeleteExperience(_ context.Context, profileID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byProfileID(profileID)
	if p == nil {
		return nil
	}
	kept := make([]model.Experience, 0, len(p.Experience))
	for _, e := range p.Experience {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	p.Experience = kept
	return nil
}

func (s *Profiles) AddEducation(_ context.Context, edu *model.Education) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byProfileID(edu.ProfileID)
	if p == nil {
		return nil
	}
	edu.ID = uuid.NewString()
	edu.CreatedAt = time.Now()
	p.Education = append([]model.Education{*edu}, p.Education...)
	return nil
}

func (s *Profiles) DeleteEducation(_ context.Context, profileID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byProfileID(profileID)
	if p == nil {
		return nil
	}
	kept := make([]model.Education, 0, len(p.Education))
	for _, e := range p.Education {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	p.Education = kept
	return nil
}

// Posts keeps posts newest first, as the MySQL repository returns them.
type Posts struct {
	mu    sync.Mutex
	posts []*model.Post
}

func NewPosts() *Posts {
	return &Posts{}
}

func (s *Posts) find(id string) *model.Post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func copyPost(p *model.Post) model.Post {
	cp := *p
	cp.Likes = append([]model.Like(nil), p.Likes...)
	cp.Comments = append([]model.Comment(nil), p.Comments...)
	return cp
}

func (s *Posts) Create(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now()
	stored := copyPost(post)
	s.posts = append([]*model.Post{&stored}, s.posts...)
	return nil
}

func (s *Posts) List(_ context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, copyPost(p))
	}
	return out, nil
}

func (s *Posts) GetByID(_ context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(id)
	if p == nil {
		return nil, nil
	}
	cp := copyPost(p)
	return &cp, nil
}

func (s *Posts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]*model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	return nil
}

func (s *Posts) AddLike(_ context.Context, like *model.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(like.PostID)
	if p == nil {
		return nil
	}
	if p.HasLikeFrom(like.UserID) {
		return repository.ErrDuplicate
	}
	like.ID = uuid.NewString()
	like.CreatedAt = time.Now()
	p.Likes = append([]model.Like{*like}, p.Likes...)
	return nil
}

func (s *Posts) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(postID)
	if p == nil {
		return false, nil
	}
	for i, l := range p.Likes {
		if l.UserID == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Posts) ListLikes(_ context.Context, postID string) ([]model.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.find(postID); p != nil {
		return append([]model.Like(nil), p.Likes...), nil
	}
	return nil, nil
}

func (s *Posts) AddComment(_ context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(comment.PostID)
	if p == nil {
		return nil
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	p.Comments = append([]model.Comment{*comment}, p.Comments...)
	return nil
}

func (s *Posts) DeleteComment(_ context.Context, postID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(postID)
	if p == nil {
		return nil
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Posts) ListComments(_ context.Context, postID string) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.find(postID); p != nil {
		return append([]model.Comment(nil), p.Comments...), nil
	}
	return nil, nil
}
