package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username string `gorm:"column:username;unique;not null"`
	Email    string `gorm:"column:email;unique;not null"`
	FullName string `gorm:"column:full_name;not null"`
	Password string `gorm:"column:password;not null"`

	AvatarURL string `gorm:"column:avatar_url;not null"`
	AvatarID  string `gorm:"column:avatar_id;not null"`
	CoverURL  string `gorm:"column:cover_url"`
	CoverID   string `gorm:"column:cover_id"`

	LastLogin time.Time `gorm:"column:last_login"`

	// RefreshToken holds the one currently valid refresh token for this
	// user, or NULL once the session is revoked. Rotation swaps it in a
	// single conditional UPDATE keyed on the presented token.
	RefreshToken *string `gorm:"column:refresh_token;default:null;index:idx_users_refresh_token,where:refresh_token IS NOT NULL"`
}
