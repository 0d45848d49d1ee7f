package dashboard

import (
	"time"

	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
)

// Repository Dashboard 统计仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的 Dashboard 统计仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OverviewStats 概览统计
type OverviewStats struct {
	ImageTotal      int64
	StorageTotal    int64
	GalleryTotal    int64
	PublicGalleries int64
	UserTotal       int64
	PendingUsers    int64
}

// GetOverviewStats 获取概览统计
func (r *Repository) GetOverviewStats() (*OverviewStats, error) {
	var result OverviewStats

	err := r.db.Model(&models.Image{}).
		Select("COUNT(*) as image_total, COALESCE(SUM(file_size), 0) as storage_total").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.Gallery{}).Count(&result.GalleryTotal).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Gallery{}).
		Where("is_public = ? AND is_published = ?", true, true).
		Count(&result.PublicGalleries).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.User{}).Count(&result.UserTotal).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.User{}).
		Where("status = ?", models.UserStatusAdminPending).
		Count(&result.PendingUsers).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// UploadTimes 返回 since 之后的上传时间，按天聚合在调用方完成以兼容 SQLite 与 PostgreSQL
func (r *Repository) UploadTimes(since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.Model(&models.Image{}).
		Where("created_at >= ?", since).
		Order("created_at").
		Pluck("created_at", &times).Error
	return times, err
}
