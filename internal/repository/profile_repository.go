package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devconnector/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// withOwner joins only the public part of the owning user.
func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "avatar")
	})
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := withOwner(r.db.WithContext(ctx)).
		Preload("Experience", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		Preload("Education", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile by user id failed: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := withOwner(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list profiles failed: %w", err)
	}
	return profiles, nil
}

// Save inserts a new profile or rewrites the scalar columns of an existing one.
// Experience and education rows are never touched here.
func (r *ProfileRepository) Save(ctx context.Context, profile *model.Profile) error {
	db := r.db.WithContext(ctx)
	if profile.ID == "" {
		if err := db.Omit(clause.Associations).Create(profile).Error; err != nil {
			if isDuplicate(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("create profile failed: %w", err)
		}
		return nil
	}
	if err := db.Select("*").Omit(clause.Associations, "id", "user_id", "created_at").Updates(profile).Error; err != nil {
		return fmt.Errorf("update profile failed: %w", err)
	}
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.Profile
		if err := tx.Select("id").Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("query profile failed: %w", err)
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&model.Experience{}).Error; err != nil {
			return fmt.Errorf("delete experience failed: %w", err)
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&model.Education{}).Error; err != nil {
			return fmt.Errorf("delete education failed: %w", err)
		}
		if err := tx.Where("id = ?", profile.ID).Delete(&model.Profile{}).Error; err != nil {
			return fmt.Errorf("delete profile failed: %w", err)
		}
		return nil
	})
}

func (r *ProfileRepository) AddExperience(ctx context.Context, exp *model.Experience) error {
	if err := r.db.WithContext(ctx).Create(exp).Error; err != nil {
		return fmt.Errorf("create experience failed: %w", err)
	}
	return nil
}

func (r *ProfileRepository) DeleteExperience(ctx context.Context, profileID, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, profileID).Delete(&model.Experience{}).Error; err != nil {
		return fmt.Errorf("delete experience failed: %w", err)
	}
	return nil
}

func (r *ProfileRepository) AddEducation(ctx context.Context, edu *model.Education) error {
	if err := r.db.WithContext(ctx).Create(edu).Error; err != nil {
		return fmt.Errorf("create education failed: %w", err)
	}
	return nil
}

func (r *ProfileRepository) DeleteEducation(ctx context.Context, profileID, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, profileID).Delete(&model.Education{}).Error; err != nil {
		return fmt.Errorf("delete education failed: %w", err)
	}
	return nil
}
