package models

import (
	"time"

	"gorm.io/gorm"
)

// Social holds normalized social network links.
type Social struct {
	YouTube   string `gorm:"column:youtube" json:"youtube,omitempty" bson:"youtube,omitempty"`
	Twitter   string `gorm:"column:twitter" json:"twitter,omitempty" bson:"twitter,omitempty"`
	Facebook  string `gorm:"column:facebook" json:"facebook,omitempty" bson:"facebook,omitempty"`
	LinkedIn  string `gorm:"column:linkedin" json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Instagram string `gorm:"column:instagram" json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Profile is the single developer profile owned by a User.
type Profile struct {
	ID             string       `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID         string       `gorm:"type:varchar(36);uniqueIndex;not null" json:"-" bson:"user"`
	User           *UserSummary `gorm:"foreignKey:UserID" json:"user,omitempty" bson:"-"`
	Company        string       `json:"company,omitempty" bson:"company,omitempty"`
	Website        string       `json:"website,omitempty" bson:"website,omitempty"`
	Location       string       `json:"location,omitempty" bson:"location,omitempty"`
	Status         string       `gorm:"not null" json:"status" bson:"status"`
	Skills         []string     `gorm:"serializer:json" json:"skills" bson:"skills"`
	Bio            string       `json:"bio,omitempty" bson:"bio,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty" bson:"githubusername,omitempty"`
	Social         Social       `gorm:"embedded;embeddedPrefix:social_" json:"social" bson:"social"`
	Experience     []Experience `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"experience" bson:"experience"`
	Education      []Education  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"education" bson:"education"`
	CreatedAt      time.Time    `json:"date" bson:"date"`
	UpdatedAt      time.Time    `json:"-" bson:"updated_at"`
}

// BeforeCreate assigns an ID when the caller did not.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// Experience is a job entry on a profile. Lists are kept newest first.
type Experience struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	ProfileID   string    `gorm:"type:varchar(36);index;not null" json:"-" bson:"-"`
	Title       string    `gorm:"not null" json:"title" bson:"title"`
	Company     string    `gorm:"not null" json:"company" bson:"company"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	From        string    `gorm:"not null" json:"from" bson:"from"`
	To          string    `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool      `json:"current" bson:"current"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"-" bson:"created_at"`
}

// BeforeCreate assigns an ID when the caller did not.
func (e *Experience) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}

// Education is a school entry on a profile. Lists are kept newest first.
type Education struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	ProfileID    string    `gorm:"type:varchar(36);index;not null" json:"-" bson:"-"`
	School       string    `gorm:"not null" json:"school" bson:"school"`
	Degree       string    `gorm:"not null" json:"degree" bson:"degree"`
	FieldOfStudy string    `gorm:"column:field_of_study;not null" json:"fieldofstudy" bson:"fieldofstudy"`
	From         string    `gorm:"not null" json:"from" bson:"from"`
	To           string    `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool      `json:"current" bson:"current"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt    time.Time `json:"-" bson:"created_at"`
}

// BeforeCreate assigns an ID when the caller did not.
func (e *Education) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}
