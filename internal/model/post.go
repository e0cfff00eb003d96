package model

import (
	"time"

	"gorm.io/gorm"
)

// Post keeps the author's name and avatar as they were when it was written.
type Post struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Name      string    `gorm:"size:128" json:"name"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Likes     []Like    `gorm:"foreignKey:PostID" json:"likes"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt time.Time `gorm:"index" json:"date"`
}

type Like struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	PostID    string    `gorm:"type:char(36);not null;uniqueIndex:idx_likes_post_user" json:"-"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:idx_likes_post_user" json:"user"`
	CreatedAt time.Time `json:"-"`
}

type Comment struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	PostID    string    `gorm:"type:char(36);not null;index" json:"-"`
	UserID    string    `gorm:"type:char(36);not null" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Name      string    `gorm:"size:128" json:"name"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// HasLikeFrom reports whether userID is already in the like list.
func (p *Post) HasLikeFrom(userID string) bool {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment looks a comment up by its own id.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// Normalize replaces nil sequences so they encode as empty JSON arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
