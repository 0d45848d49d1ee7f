package testutils

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// SetupDB 每个测试独立的内存 SQLite，已完成迁移
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	seq := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:gallery_test_%d?mode=memory&cache=shared", seq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// 单连接，事务之间天然串行
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(gdb); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

// CreateUser 创建已验证用户
func CreateUser(t *testing.T, db *gorm.DB, email string, opts ...func(*models.User)) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Username: email,
		Name:     email,
		Password: "x",
		Role:     models.RoleUser,
		Status:   models.UserStatusVerified,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// WithPhone 设置手机号
func WithPhone(phone string) func(*models.User) {
	return func(u *models.User) { u.PhoneNumber = &phone }
}

// WithStatus 设置状态
func WithStatus(status models.UserStatus) func(*models.User) {
	return func(u *models.User) { u.Status = status }
}

// CreateGallery 创建相册
func CreateGallery(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Gallery {
	t.Helper()

	gallery := &models.Gallery{
		PublicID:    uuid.NewString(),
		OwnerID:     owner.ID,
		Title:       title,
		Description: title,
	}
	if err := db.Create(gallery).Error; err != nil {
		t.Fatalf("create gallery %s: %v", title, err)
	}
	return gallery
}

// Accredit 直接写入授权
func Accredit(t *testing.T, db *gorm.DB, gallery *models.Gallery, user *models.User, level models.AccreditationLevel) *models.Accreditation {
	t.Helper()

	acc := &models.Accreditation{GalleryID: gallery.ID, UserID: user.ID, Level: level}
	if err := db.Create(acc).Error; err != nil {
		t.Fatalf("accredit: %v", err)
	}
	return acc
}

// CreateImage 创建图片记录并关联到相册
func CreateImage(t *testing.T, db *gorm.DB, uploader *models.User, gallery *models.Gallery) *models.Image {
	t.Helper()

	id := uuid.NewString()
	image := &models.Image{
		Identifier:   id + ".png",
		OriginalName: "photo.png",
		FileSize:     1,
		MimeType:     "image/png",
		FileHash:     id,
		UserID:       uploader.ID,
	}
	if err := db.Create(image).Error; err != nil {
		t.Fatalf("create image: %v", err)
	}
	if gallery != nil {
		if err := db.Model(image).Association("Galleries").Append(gallery); err != nil {
			t.Fatalf("link image: %v", err)
		}
	}
	return image
}
