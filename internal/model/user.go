package model

import "time"

// User is a registered account. PasswordSalt and PasswordHash are base64
// encodings and are only ever replaced together. Username uses a binary
// collation so lookups and the unique index are case and accent sensitive.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"type:varchar(255) COLLATE utf8mb4_bin;uniqueIndex;not null"`
	PasswordSalt string    `json:"-" gorm:"size:64;not null"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	CreatedAt    time.Time `json:"created_at"`

	Posts []Post `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
