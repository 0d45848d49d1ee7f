package models

import "gorm.io/gorm"

type Image struct {
	gorm.Model
	Identifier   string `gorm:"uniqueIndex:idx_identifier;not null" json:"identifier"`
	OriginalName string `gorm:"not null" json:"original_name"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	MimeType     string `gorm:"not null" json:"mime_type"`

	// 同一用户内按哈希去重
	FileHash string `gorm:"uniqueIndex:idx_user_filehash,priority:2;not null" json:"-"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`

	UserID uint `gorm:"uniqueIndex:idx_user_filehash,priority:1;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Galleries []*Gallery `gorm:"many2many:image_galleries;" json:"-"`
	Tags      []*Tag     `gorm:"many2many:image_tags;" json:"tags,omitempty"`
}
