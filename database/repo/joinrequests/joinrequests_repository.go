package joinrequests

import (
	"context"
	"time"

	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 邀请仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建邀请仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// Create 创建邀请
func (r *Repository) Create(req *models.JoinRequest) error {
	return r.db.Create(req).Error
}

// TokenExists token 是否已被占用
func (r *Repository) TokenExists(token string) (bool, error) {
	var count int64
	err := r.db.Model(&models.JoinRequest{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

// ExistsForEmail 相册下该邮箱是否有邀请
func (r *Repository) ExistsForEmail(galleryID uint, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.JoinRequest{}).
		Where("gallery_id = ? AND email = ?", galleryID, email).
		Count(&count).Error
	return count > 0, err
}

// DeleteExpiredForEmail 删除该邮箱已过期的邀请
func (r *Repository) DeleteExpiredForEmail(galleryID uint, email string, cutoff time.Time) error {
	return r.db.Where("gallery_id = ? AND email = ? AND created_at < ?", galleryID, email, cutoff).
		Delete(&models.JoinRequest{}).Error
}

// GetByTokenForUpdate 加行锁按 token 读取，附带相册
func (r *Repository) GetByTokenForUpdate(token string) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Gallery").
		Where("token = ?", token).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// DeleteByToken 条件删除，返回影响行数
func (r *Repository) DeleteByToken(id uint, token string) (int64, error) {
	result := r.db.Where("id = ? AND token = ?", id, token).Delete(&models.JoinRequest{})
	return result.RowsAffected, result.Error
}

// IncrementTryCount 验证失败计数
func (r *Repository) IncrementTryCount(token string) error {
	return r.db.Model(&models.JoinRequest{}).
		Where("token = ?", token).
		UpdateColumn("code_try_count", gorm.Expr("code_try_count + ?", 1)).Error
}

// PurgeExpired 清理过期邀请
func (r *Repository) PurgeExpired(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.JoinRequest{})
	return result.RowsAffected, result.Error
}
