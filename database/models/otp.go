package models

import "time"

// OTP 注册邮箱验证码
type OTP struct {
	ID        string    `gorm:"size:36;primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	Code      string    `gorm:"size:6;not null"`
	SendCount int       `gorm:"default:1;not null"`
	SentAt    time.Time `gorm:"not null"`
	CreatedAt time.Time
}
