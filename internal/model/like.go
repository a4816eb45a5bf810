package model

import "time"

// Like records that a user liked a post. At most one row exists per
// (UserID, PostID); the composite unique index enforces it.
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_post"`
	PostID    int64     `json:"post_id" gorm:"not null;uniqueIndex:idx_likes_user_post;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// LikeState is the outcome of a toggle.
type LikeState string

const (
	LikeStateLiked   LikeState = "liked"
	LikeStateUnliked LikeState = "unliked"
)
