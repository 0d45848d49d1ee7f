package galleries

import (
	"context"
	"errors"

	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
)

// ErrGalleryNotFound 相册不存在
var ErrGalleryNotFound = errors.New("gallery not found")

// Repository 相册仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建相册仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

func (r *Repository) first(query string, args ...interface{}) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.Where(query, args...).First(&gallery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	return &gallery, nil
}

// GetByPublicID 通过公开ID获取相册
func (r *Repository) GetByPublicID(publicID string) (*models.Gallery, error) {
	return r.first("public_id = ?", publicID)
}

// GetByID 通过ID获取相册
func (r *Repository) GetByID(id uint) (*models.Gallery, error) {
	return r.first("id = ?", id)
}

// Create 创建相册
func (r *Repository) Create(gallery *models.Gallery) error {
	return r.db.Create(gallery).Error
}

// UpdateFields 按列更新
func (r *Repository) UpdateFields(galleryID uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Gallery{}).Where("id = ?", galleryID).Updates(fields).Error
}

// ListForUser 用户拥有或已获授权（pending 及以上）的相册
func (r *Repository) ListForUser(userID uint) ([]*models.Gallery, error) {
	var galleries []*models.Gallery
	accredited := r.db.Model(&models.Accreditation{}).
		Select("gallery_id").
		Where("user_id = ? AND level >= ?", userID, models.LevelPending)

	err := r.db.Where("owner_id = ? OR id IN (?)", userID, accredited).
		Order("created_at desc").
		Find(&galleries).Error
	return galleries, err
}

// ListPublic 公开且已发布的相册
func (r *Repository) ListPublic() ([]*models.Gallery, error) {
	var galleries []*models.Gallery
	err := r.db.Where("is_public = ? AND is_published = ?", true, true).
		Order("created_at desc").
		Find(&galleries).Error
	return galleries, err
}
