package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a text post with a snapshot of its author's name and avatar.
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user" bson:"user"`
	Text      string    `gorm:"type:text;not null" json:"text" bson:"text"`
	Name      string    `json:"name" bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	Likes     []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes" bson:"likes"`
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments" bson:"comments"`
	CreatedAt time.Time `gorm:"index" json:"date" bson:"date"`
}

// BeforeCreate assigns an ID when the caller did not.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	PostID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_like_post_user" json:"-" bson:"-"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_like_post_user" json:"user" bson:"user"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
}

// BeforeCreate assigns an ID when the caller did not.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

// Comment is a reply on a post, kept in creation order.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	PostID    string    `gorm:"type:varchar(36);index;not null" json:"-" bson:"-"`
	UserID    string    `gorm:"type:varchar(36);not null" json:"user" bson:"user"`
	Text      string    `gorm:"type:text;not null" json:"text" bson:"text"`
	Name      string    `json:"name" bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	CreatedAt time.Time `json:"date" bson:"date"`
}

// BeforeCreate assigns an ID when the caller did not.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// HasLikeFrom reports whether userID already liked the post.
func (p *Post) HasLikeFrom(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
