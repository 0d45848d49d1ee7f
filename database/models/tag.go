package models

import "time"

// UserTagName 用户保留标签，每个成员在每个相册一个
const UserTagName = "user"

type Tag struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GalleryID    uint      `gorm:"uniqueIndex:idx_gallery_tag,priority:1;not null" json:"gallery_id"`
	Name         string    `gorm:"size:64;uniqueIndex:idx_gallery_tag,priority:2;not null" json:"name"`
	UserID       uint      `gorm:"uniqueIndex:idx_gallery_tag,priority:3;default:0;not null" json:"user_id,omitempty"`
	CoverImageID *uint     `json:"cover_image_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsUserTag 是否为用户保留标签
func (t *Tag) IsUserTag() bool {
	return t.UserID != 0
}
