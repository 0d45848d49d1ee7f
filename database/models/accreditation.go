package models

import "time"

// AccreditationLevel 相册权限等级
type AccreditationLevel int

const (
	LevelNone          AccreditationLevel = -1 // 无记录
	LevelOwnerImplicit AccreditationLevel = 0  // 仅用于列表展示所有者
	LevelInvited       AccreditationLevel = 1
	LevelPending       AccreditationLevel = 2
	LevelViewer        AccreditationLevel = 3
	LevelEditor        AccreditationLevel = 4
	LevelOwner         AccreditationLevel = 5
)

// Assignable 可通过 SetLevel 写入的等级。1 只能由邀请流程产生，
// 降到 1 之后既不能再调整也不能重新邀请
func (l AccreditationLevel) Assignable() bool {
	return l >= LevelPending && l <= LevelOwner
}

// Accreditation 用户在相册中的权限，所有者不落库
type Accreditation struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	GalleryID uint               `gorm:"uniqueIndex:idx_gallery_user,priority:1;not null" json:"gallery_id"`
	UserID    uint               `gorm:"uniqueIndex:idx_gallery_user,priority:2;index;not null" json:"user_id"`
	User      User               `gorm:"foreignKey:UserID" json:"-"`
	Level     AccreditationLevel `gorm:"not null" json:"level"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Accreditation) TableName() string {
	return "gallery_user_accreditations"
}
