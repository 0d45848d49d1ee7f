package models

import "time"

const (
	JoinCodeLength  = 6
	JoinTokenLength = 128
)

// JoinRequest 相册邀请，一次性使用
type JoinRequest struct {
	ID           uint      `gorm:"primaryKey"`
	GalleryID    uint      `gorm:"uniqueIndex:idx_gallery_email,priority:1;not null"`
	Gallery      Gallery   `gorm:"foreignKey:GalleryID"`
	InviterID    uint      `gorm:"column:user_id;index;not null"`
	Email        string    `gorm:"size:255;uniqueIndex:idx_gallery_email,priority:2;not null"`
	PhoneNumber  *string   `gorm:"size:16"`
	Code         string    `gorm:"size:6;not null"`
	Token        string    `gorm:"size:128;uniqueIndex;not null"`
	CodeTryCount int       `gorm:"default:0;not null"`
	CreatedAt    time.Time `gorm:"index"`
}

func (JoinRequest) TableName() string {
	return "join_gallery_requests"
}

// Expired 是否已过期，ttl <= 0 表示永不过期
func (r *JoinRequest) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.After(r.CreatedAt.Add(ttl))
}
