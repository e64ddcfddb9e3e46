package model

import "gorm.io/gorm"

type Tweet struct {
	gorm.Model
	Content string `gorm:"column:content;not null"`

	OwnerID uint `gorm:"column:owner_id;not null;index"`
	Owner   User `gorm:"foreignKey:OwnerID"`
}
