package model

import (
	"time"

	"gorm.io/gorm"
)

type Playlist struct {
	gorm.Model
	Name        string `gorm:"column:name;not null"`
	Description string `gorm:"column:description"`

	OwnerID uint `gorm:"column:owner_id;not null;index"`
	Owner   User `gorm:"foreignKey:OwnerID"`

	Videos []Video `gorm:"many2many:playlist_videos;"`
}

// PlaylistVideo is the join table behind Playlist.Videos. AddedAt
// preserves insertion order for listing.
type PlaylistVideo struct {
	PlaylistID uint      `gorm:"primaryKey;column:playlist_id"`
	VideoID    uint      `gorm:"primaryKey;column:video_id"`
	AddedAt    time.Time `gorm:"column:added_at;autoCreateTime"`
}
