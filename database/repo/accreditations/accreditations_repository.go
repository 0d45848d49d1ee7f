package accreditations

import (
	"context"

	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 相册授权仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建授权仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// Find 获取授权记录，不存在时返回 gorm.ErrRecordNotFound
func (r *Repository) Find(galleryID, userID uint) (*models.Accreditation, error) {
	var acc models.Accreditation
	if err := r.db.Where("gallery_id = ? AND user_id = ?", galleryID, userID).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetForUpdate 加行锁读取
func (r *Repository) GetForUpdate(galleryID, userID uint) (*models.Accreditation, error) {
	var acc models.Accreditation
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gallery_id = ? AND user_id = ?", galleryID, userID).
		First(&acc).Error
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Exists 是否已有任何等级的授权
func (r *Repository) Exists(galleryID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Accreditation{}).
		Where("gallery_id = ? AND user_id = ?", galleryID, userID).
		Count(&count).Error
	return count > 0, err
}

// Create 创建授权
func (r *Repository) Create(acc *models.Accreditation) error {
	return r.db.Create(acc).Error
}

// UpdateLevel 更新等级
func (r *Repository) UpdateLevel(id uint, level models.AccreditationLevel) error {
	return r.db.Model(&models.Accreditation{}).Where("id = ?", id).Update("level", level).Error
}

// ListByGallery 相册的全部授权，附带用户信息
func (r *Repository) ListByGallery(galleryID uint) ([]*models.Accreditation, error) {
	var list []*models.Accreditation
	err := r.db.Preload("User").
		Where("gallery_id = ?", galleryID).
		Order("level desc, id asc").
		Find(&list).Error
	return list, err
}
