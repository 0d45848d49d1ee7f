package notifications

import (
	"context"

	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/base"
	"gorm.io/gorm"
)

// Repository 通知仓库
type Repository struct {
	*base.Repository[models.Notification]
	db *gorm.DB
}

// NewRepository 创建通知仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Notification](db), db: db}
}

// List 用户通知，isRead 为 nil 时不过滤
func (r *Repository) List(ctx context.Context, userID uint, isRead *bool) ([]*models.Notification, error) {
	var list []*models.Notification
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}
	err := query.Order("created_at desc, id desc").Find(&list).Error
	return list, err
}

// MarkRead 标记已读，只作用于本人的通知
func (r *Repository) MarkRead(ctx context.Context, id, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
