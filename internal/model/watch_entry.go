package model

import (
	"time"
)

// WatchEntry records one playback of a video by a user. The history
// endpoint reads these newest first.
type WatchEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null;index:idx_watch_entries_user_time"`
	VideoID   uint      `gorm:"column:video_id;not null"`
	Video     Video     `gorm:"foreignKey:VideoID"`
	WatchedAt time.Time `gorm:"column:watched_at;not null;index:idx_watch_entries_user_time,sort:desc"`
}
