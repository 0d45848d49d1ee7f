package images

import (
	"context"
	"errors"

	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
)

// ErrImageNotFound 图片不存在
var ErrImageNotFound = errors.New("image not found")

// Repository 图片仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

func (r *Repository) first(query string, args ...interface{}) (*models.Image, error) {
	var image models.Image
	if err := r.db.Where(query, args...).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

// GetByID 通过ID获取图片
func (r *Repository) GetByID(id uint) (*models.Image, error) {
	return r.first("id = ?", id)
}

// GetByIdentifier 通过存储文件名获取图片
func (r *Repository) GetByIdentifier(identifier string) (*models.Image, error) {
	return r.first("identifier = ?", identifier)
}

// GetByUserHash 同一用户下的相同文件
func (r *Repository) GetByUserHash(userID uint, hash string) (*models.Image, error) {
	return r.first("user_id = ? AND file_hash = ?", userID, hash)
}

// Create 创建图片
func (r *Repository) Create(image *models.Image) error {
	return r.db.Create(image).Error
}

// SumSizeByUser 用户已用空间（字节）
func (r *Repository) SumSizeByUser(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.Image{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&total).Error
	return total, err
}

// LinkGallery 关联到相册，重复关联无副作用
func (r *Repository) LinkGallery(image *models.Image, gallery *models.Gallery) error {
	return r.db.Model(image).Association("Galleries").Append(gallery)
}

// UnlinkGallery 从相册移除
func (r *Repository) UnlinkGallery(image *models.Image, gallery *models.Gallery) error {
	return r.db.Model(image).Association("Galleries").Delete(gallery)
}

// InGallery 图片是否属于相册
func (r *Repository) InGallery(imageID, galleryID uint) (bool, error) {
	var count int64
	err := r.db.Table("image_galleries").
		Where("image_id = ? AND gallery_id = ?", imageID, galleryID).
		Count(&count).Error
	return count > 0, err
}

// GalleryIDs 图片所在的相册
func (r *Repository) GalleryIDs(imageID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Table("image_galleries").
		Where("image_id = ?", imageID).
		Pluck("gallery_id", &ids).Error
	return ids, err
}

// ListByGallery 相册内的图片，附带标签
func (r *Repository) ListByGallery(galleryID uint) ([]*models.Image, error) {
	var list []*models.Image
	err := r.db.Preload("Tags").
		Joins("JOIN image_galleries ON image_galleries.image_id = images.id").
		Where("image_galleries.gallery_id = ?", galleryID).
		Order("images.created_at desc").
		Find(&list).Error
	return list, err
}

// AppendTags 批量追加标签
func (r *Repository) AppendTags(image *models.Image, tags []*models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.Model(image).Association("Tags").Append(tags)
}

// TagsInGallery 图片在某相册下的标签
func (r *Repository) TagsInGallery(imageID, galleryID uint) ([]*models.Tag, error) {
	var list []*models.Tag
	err := r.db.Joins("JOIN image_tags ON image_tags.tag_id = tags.id").
		Where("image_tags.image_id = ? AND tags.gallery_id = ?", imageID, galleryID).
		Order("tags.user_id asc, tags.name asc").
		Find(&list).Error
	return list, err
}

// AppendTag 追加标签
func (r *Repository) AppendTag(image *models.Image, tag *models.Tag) error {
	return r.db.Model(image).Association("Tags").Append(tag)
}

// RemoveGalleryTags 移除图片上属于某相册的标签
func (r *Repository) RemoveGalleryTags(imageID, galleryID uint) error {
	tagIDs := r.db.Model(&models.Tag{}).Select("id").Where("gallery_id = ?", galleryID)
	return r.db.Exec("DELETE FROM image_tags WHERE image_id = ? AND tag_id IN (?)", imageID, tagIDs).Error
}

// DeletePermanently 物理删除图片及其关联
func (r *Repository) DeletePermanently(image *models.Image) error {
	if err := r.db.Model(image).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := r.db.Model(image).Association("Galleries").Clear(); err != nil {
		return err
	}
	return r.db.Unscoped().Delete(image).Error
}
