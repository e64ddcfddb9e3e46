package model

import "gorm.io/gorm"

type Comment struct {
	gorm.Model
	Content string `gorm:"column:content;not null"`

	VideoID uint  `gorm:"column:video_id;not null;index"`
	Video   Video `gorm:"foreignKey:VideoID"`

	OwnerID uint `gorm:"column:owner_id;not null;index"`
	Owner   User `gorm:"foreignKey:OwnerID"`
}
