package tags

import (
	"context"
	"errors"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/base"
	"gorm.io/gorm"
)

// Repository 标签仓库
type Repository struct {
	*base.Repository[models.Tag]
	db *gorm.DB
}

// NewRepository 创建标签仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Tag](db), db: db}
}

// ListByGallery 相册下的全部标签
func (r *Repository) ListByGallery(ctx context.Context, galleryID uint) ([]*models.Tag, error) {
	var list []*models.Tag
	err := r.db.WithContext(ctx).
		Where("gallery_id = ?", galleryID).
		Order("user_id asc, name asc").
		Find(&list).Error
	return list, err
}

// FindInGallery 按ID取标签，只返回属于该相册的
func (r *Repository) FindInGallery(ctx context.Context, galleryID uint, ids []uint) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []*models.Tag
	err := r.db.WithContext(ctx).
		Where("gallery_id = ? AND id IN ?", galleryID, ids).
		Find(&list).Error
	return list, err
}

// EnsureUserTag 获取或创建用户保留标签
func (r *Repository) EnsureUserTag(ctx context.Context, galleryID, userID uint) (*models.Tag, error) {
	tag, err := r.findUserTag(ctx, galleryID, userID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = &models.Tag{GalleryID: galleryID, Name: models.UserTagName, UserID: userID}
	if err := r.Create(ctx, tag); err != nil {
		if database.IsUniqueViolation(err) {
			return r.findUserTag(ctx, galleryID, userID)
		}
		return nil, err
	}
	return tag, nil
}

func (r *Repository) findUserTag(ctx context.Context, galleryID, userID uint) (*models.Tag, error) {
	return r.First(ctx, "gallery_id = ? AND name = ? AND user_id = ?", galleryID, models.UserTagName, userID)
}
