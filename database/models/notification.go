package models

import "time"

const (
	NotificationGalleryJoin = "gallery_join"
	NotificationLevelChange = "level_change"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_user_read,priority:1;not null" json:"user_id"`
	Message   string    `gorm:"size:500;not null" json:"message"`
	Link      string    `gorm:"size:255" json:"link"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	IsRead    bool      `gorm:"index:idx_user_read,priority:2;default:false;not null" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
