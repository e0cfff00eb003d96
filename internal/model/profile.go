package model

import (
	"time"

	"gorm.io/gorm"
)

type Profile struct {
	ID             string       `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string       `gorm:"type:char(36);not null;uniqueIndex" json:"-"`
	User           *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company        string       `gorm:"size:128" json:"company"`
	Website        string       `gorm:"size:255" json:"website"`
	Location       string       `gorm:"size:128" json:"location"`
	Status         string       `gorm:"size:128" json:"status"`
	Bio            string       `gorm:"type:text" json:"bio"`
	GitHubUsername string       `gorm:"size:64" json:"githubusername"`
	Skills         []string     `gorm:"type:text;serializer:json" json:"skills"`
	Social         Social       `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	Experience     []Experience `gorm:"foreignKey:ProfileID" json:"experience"`
	Education      []Education  `gorm:"foreignKey:ProfileID" json:"education"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type Social struct {
	YouTube   string `gorm:"size:255" json:"youtube,omitempty"`
	Twitter   string `gorm:"size:255" json:"twitter,omitempty"`
	Facebook  string `gorm:"size:255" json:"facebook,omitempty"`
	LinkedIn  string `gorm:"size:255" json:"linkedin,omitempty"`
	Instagram string `gorm:"size:255" json:"instagram,omitempty"`
}

type Experience struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	ProfileID   string     `gorm:"type:char(36);not null;index" json:"-"`
	Title       string     `gorm:"size:128;not null" json:"title"`
	Company     string     `gorm:"size:128;not null" json:"company"`
	Location    string     `gorm:"size:128" json:"location"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to"`
	Current     bool       `json:"current"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"-"`
}

type Education struct {
	ID           string     `gorm:"type:char(36);primaryKey" json:"id"`
	ProfileID    string     `gorm:"type:char(36);not null;index" json:"-"`
	School       string     `gorm:"size:128;not null" json:"school"`
	Degree       string     `gorm:"size:128;not null" json:"degree"`
	FieldOfStudy string     `gorm:"size:128;not null" json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to"`
	Current      bool       `json:"current"`
	Description  string     `gorm:"type:text" json:"description"`
	CreatedAt    time.Time  `json:"-"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (e *Experience) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func (e *Education) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
