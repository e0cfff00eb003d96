package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devconnector/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("created_at DESC")
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Likes", newestFirst).
		Preload("Comments", newestFirst).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Likes", newestFirst).
		Preload("Comments", newestFirst).
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id failed: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes failed: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments failed: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return fmt.Errorf("delete post failed: %w", err)
		}
		return nil
	})
}

func (r *PostRepository) AddLike(ctx context.Context, like *model.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create like failed: %w", err)
	}
	return nil
}

// RemoveLike reports whether a like by userID existed.
func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("delete like failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostRepository) ListLikes(ctx context.Context, postID string) ([]model.Like, error) {
	var likes []model.Like
	if err := newestFirst(r.db.WithContext(ctx)).Where("post_id = ?", postID).Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("list likes failed: %w", err)
	}
	return likes, nil
}

func (r *PostRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment failed: %w", err)
	}
	return nil
}

func (r *PostRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", commentID, postID).Delete(&model.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comment failed: %w", err)
	}
	return nil
}

func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	var comments []model.Comment
	if err := newestFirst(r.db.WithContext(ctx)).Where("post_id = ?", postID).Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	return comments, nil
}
