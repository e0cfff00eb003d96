package app

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	List(ctx context.Context) ([]model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, like *model.Like) error
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	ListLikes(ctx context.Context, postID string) ([]model.Like, error)
	AddComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error
	ListComments(ctx context.Context, postID string) ([]model.Comment, error)
}

// MutationGuard serializes requests that share a key. Release only frees
// the key while it is still held under the token Acquire returned.
type MutationGuard interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type PostService struct {
	postRepo PostStore
	userRepo UserStore
	guard    MutationGuard
	log      logrus.FieldLogger
}

type PostInput struct {
	Text string `json:"text" validate:"required" msg:"Text is required"`
}

func NewPostService(postRepo PostStore, userRepo UserStore, guard MutationGuard, log logrus.FieldLogger) *PostService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		guard:    guard,
		log:      log,
	}
}

func (s *PostService) CreatePost(ctx context.Context, userID string, input PostInput) (*model.Post, error) {
	input.Text = strings.TrimSpace(input.Text)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID: author.ID,
		Text:   input.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Normalize()
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	if postID == "" {
		return nil, ErrPostNotFound
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	post.Normalize()
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	return s.postRepo.Delete(ctx, post.ID)
}

func (s *PostService) Like(ctx context.Context, userID, postID string) ([]model.Like, error) {
	release, err := s.hold(ctx, "like:"+postID+":"+userID)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.HasLikeFrom(userID) {
		return nil, ErrAlreadyLiked
	}

	if err := s.postRepo.AddLike(ctx, &model.Like{PostID: post.ID, UserID: userID}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		return nil, err
	}
	return s.likes(ctx, post.ID)
}

func (s *PostService) Unlike(ctx context.Context, userID, postID string) ([]model.Like, error) {
	release, err := s.hold(ctx, "like:"+postID+":"+userID)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.HasLikeFrom(userID) {
		return nil, ErrNotLiked
	}

	removed, err := s.postRepo.RemoveLike(ctx, post.ID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotLiked
	}
	return s.likes(ctx, post.ID)
}

func (s *PostService) AddComment(ctx context.Context, userID, postID string, input PostInput) ([]model.Comment, error) {
	input.Text = strings.TrimSpace(input.Text)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID: post.ID,
		UserID: author.ID,
		Text:   input.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments(ctx, post.ID)
}

// RemoveComment deletes exactly the comment named by commentID, and only
// for its author.
func (s *PostService) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]model.Comment, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	if err := s.postRepo.DeleteComment(ctx, post.ID, comment.ID); err != nil {
		return nil, err
	}
	return s.comments(ctx, post.ID)
}

func (s *PostService) author(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *PostService) likes(ctx context.Context, postID string) ([]model.Like, error) {
	likes, err := s.postRepo.ListLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []model.Like{}
	}
	return likes, nil
}

func (s *PostService) comments(ctx context.Context, postID string) ([]model.Comment, error) {
	comments, err := s.postRepo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// hold takes the guard for key. When the guard store is unreachable the
// request goes ahead unguarded and the likes unique index still applies.
func (s *PostService) hold(ctx context.Context, key string) (func(), error) {
	noop := func() {}
	if s.guard == nil {
		return noop, nil
	}

	token, ok, err := s.guard.Acquire(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("mutation guard unavailable")
		return noop, nil
	}
	if !ok {
		return nil, ErrConflict
	}

	return func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("release mutation guard failed")
		}
	}, nil
}
