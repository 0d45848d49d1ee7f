// Package accreditation 计算用户在相册中的权限等级
package accreditation

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accreditations"
	"github.com/anoixa/photo-gallery/database/repo/galleries"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"gorm.io/gorm"
)

// Capability 相册操作
type Capability int

const (
	CapView Capability = iota
	CapContribute
	CapEdit
	CapShare
)

func (c Capability) String() string {
	switch c {
	case CapView:
		return "view"
	case CapContribute:
		return "contribute"
	case CapEdit:
		return "edit"
	case CapShare:
		return "share"
	default:
		return "unknown"
	}
}

// threshold 各操作需要的最低等级
func (c Capability) threshold() models.AccreditationLevel {
	switch c {
	case CapEdit:
		return models.LevelEditor
	case CapShare:
		return models.LevelOwner
	default:
		return models.LevelPending
	}
}

// Allows 等级是否满足操作
func Allows(level models.AccreditationLevel, c Capability) bool {
	return level >= c.threshold()
}

// Resolver 权限解析器，每次都查库
type Resolver struct {
	db *gorm.DB
}

// NewResolver 创建权限解析器
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve 所有者返回 LevelOwner，无记录返回 LevelNone
func (r *Resolver) Resolve(ctx context.Context, userID uint, gallery *models.Gallery) (models.AccreditationLevel, error) {
	if gallery.OwnerID == userID {
		return models.LevelOwner, nil
	}

	if memo := memoFrom(ctx); memo != nil {
		if level, ok := memo.get(userID, gallery.ID); ok {
			return level, nil
		}
	}

	level := models.LevelNone
	acc, err := accreditations.NewRepository(r.db).WithContext(ctx).Find(gallery.ID, userID)
	switch {
	case err == nil:
		level = acc.Level
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return models.LevelNone, fmt.Errorf("failed to resolve accreditation: %w", err)
	}

	if memo := memoFrom(ctx); memo != nil {
		memo.put(userID, gallery.ID, level)
	}
	return level, nil
}

// Can 是否具备某项操作权限
func (r *Resolver) Can(ctx context.Context, userID uint, gallery *models.Gallery, c Capability) (bool, error) {
	level, err := r.Resolve(ctx, userID, gallery)
	if err != nil {
		return false, err
	}
	return Allows(level, c), nil
}

// Require 加载相册并校验权限，相册不存在返回 NotFound，权限不足返回 Unauthorized
func (r *Resolver) Require(ctx context.Context, userID uint, publicID string, c Capability) (*models.Gallery, models.AccreditationLevel, error) {
	gallery, err := galleries.NewRepository(r.db).WithContext(ctx).GetByPublicID(publicID)
	if err != nil {
		if errors.Is(err, galleries.ErrGalleryNotFound) {
			return nil, models.LevelNone, apperr.NotFound("gallery not found")
		}
		return nil, models.LevelNone, apperr.Internal("failed to load gallery", err)
	}

	level, err := r.Resolve(ctx, userID, gallery)
	if err != nil {
		return nil, models.LevelNone, apperr.Internal("failed to resolve accreditation", err)
	}
	if !Allows(level, c) {
		return nil, level, apperr.Unauthorized(fmt.Sprintf("no %s access to this gallery", c))
	}
	return gallery, level, nil
}
