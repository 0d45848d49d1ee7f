package models

import (
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserStatus 用户验证状态
type UserStatus int8

const (
	UserStatusUnverified   UserStatus = 1 // 邮箱未验证
	UserStatusAdminPending UserStatus = 2 // 等待管理员审核
	UserStatusVerified     UserStatus = 3
)

// Valid 状态是否合法
func (s UserStatus) Valid() bool {
	return s >= UserStatusUnverified && s <= UserStatusVerified
}

type User struct {
	gorm.Model
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username    string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Name        string     `gorm:"size:128" json:"name"`
	PhoneNumber *string    `gorm:"size:16;uniqueIndex" json:"phone_number,omitempty"`
	Password    string     `gorm:"not null" json:"-"`
	Role        string     `gorm:"size:16;default:user;not null" json:"role"`
	Status      UserStatus `gorm:"default:1;not null" json:"status"`
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPhone 是否已绑定手机号
func (u *User) HasPhone() bool {
	return u.PhoneNumber != nil && *u.PhoneNumber != ""
}
