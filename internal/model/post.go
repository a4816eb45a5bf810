package model

import "time"

// Post is a short text entry, optionally carrying a media id issued by the
// external media service.
type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	MediaID   *int64    `json:"media_id,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User  User   `json:"-" gorm:"foreignKey:UserID"`
	Likes []Like `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// PostView is a post decorated for a particular viewer.
type PostView struct {
	Post
	Author    string `json:"author"`
	LikeCount int64  `json:"like_count"`
	Liked     bool   `json:"liked"`
	MediaURL  string `json:"media_url,omitempty"`
}
