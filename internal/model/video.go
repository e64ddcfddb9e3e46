package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Video struct {
	gorm.Model
	OwnerID uint `gorm:"column:owner_id;not null;index"`
	Owner   User `gorm:"foreignKey:OwnerID"`

	Title       string `gorm:"column:title;not null"`
	Description string `gorm:"column:description"`

	VideoURL     string  `gorm:"column:video_url;not null"`
	VideoID      string  `gorm:"column:video_id;not null"`
	ThumbnailURL string  `gorm:"column:thumbnail_url;not null"`
	ThumbnailID  string  `gorm:"column:thumbnail_id;not null"`
	Duration     float64 `gorm:"column:duration;not null"`

	Views       int64 `gorm:"column:views;default:0;not null"`
	IsPublished bool  `gorm:"column:is_published;default:true;not null"`

	// Metadata holds codec/resolution details reported at upload time.
	Metadata datatypes.JSON `gorm:"column:metadata"`
}
