package galleries

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/database/repo/galleries"
	"github.com/anoixa/photo-gallery/database/repo/images"
	"github.com/anoixa/photo-gallery/database/repo/tags"
	"github.com/anoixa/photo-gallery/internal/accreditation"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 500
)

// CreateInput 创建相册参数
type CreateInput struct {
	Title       string
	Description string
	IsPublic    bool
	IsPublished bool
}

// UpdateInput 修改相册参数，nil 字段不修改
type UpdateInput struct {
	Title        *string
	Description  *string
	IsPublic     *bool
	IsPublished  *bool
	CoverImageID *uint // 0 表示清除封面
	CoverText    *string
}

// Detail 相册详情
type Detail struct {
	Gallery *models.Gallery           `json:"gallery"`
	Level   models.AccreditationLevel `json:"level"`
	Images  []*models.Image           `json:"images"`
	Tags    []*models.Tag             `json:"tags"`
}

// Service 相册服务
type Service struct {
	db        *gorm.DB
	resolver  *accreditation.Resolver
	cache     cache.Provider
	publicTTL time.Duration
	group     singleflight.Group
}

// NewService 创建相册服务，cacheProvider 可为 nil
func NewService(db *gorm.DB, resolver *accreditation.Resolver, cacheProvider cache.Provider, publicTTL time.Duration) *Service {
	if publicTTL <= 0 {
		publicTTL = 5 * time.Minute
	}
	return &Service{db: db, resolver: resolver, cache: cacheProvider, publicTTL: publicTTL}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n == 0 || n > maxTitleLength {
		return "", apperr.Validation("title must be between 1 and 255 characters")
	}
	return title, nil
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if n := utf8.RuneCountInString(desc); n == 0 || n > maxDescriptionLength {
		return "", apperr.Validation("description must be between 1 and 500 characters")
	}
	return desc, nil
}

// Create 创建相册，仅已验证用户或管理员
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Gallery, error) {
	user, err := accounts.NewRepository(s.db).WithContext(ctx).GetUserByID(userID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if user.Status != models.UserStatusVerified && !user.IsAdmin() {
		return nil, apperr.Forbidden("account is not verified yet")
	}

	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	desc, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}

	gallery := &models.Gallery{
		PublicID:    uuid.NewString(),
		OwnerID:     userID,
		Title:       title,
		Description: desc,
		IsPublic:    in.IsPublic,
		IsPublished: in.IsPublished,
	}
	if err := galleries.NewRepository(s.db).WithContext(ctx).Create(gallery); err != nil {
		return nil, apperr.Internal("failed to create gallery", err)
	}

	if gallery.IsPubliclyVisible() {
		s.invalidatePublic(ctx)
	}
	log.Printf("[Gallery] user %d created gallery %s", userID, gallery.PublicID)
	return gallery, nil
}

// Get 相册详情：所有者、pending 及以上成员，或公开已发布
func (s *Service) Get(ctx context.Context, userID uint, publicID string) (*Detail, error) {
	gallery, err := galleries.NewRepository(s.db).WithContext(ctx).GetByPublicID(publicID)
	if err != nil {
		if errors.Is(err, galleries.ErrGalleryNotFound) {
			return nil, apperr.NotFound("gallery not found")
		}
		return nil, apperr.Internal("failed to load gallery", err)
	}

	level, err := s.resolver.Resolve(ctx, userID, gallery)
	if err != nil {
		return nil, apperr.Internal("failed to resolve accreditation", err)
	}
	if !accreditation.Allows(level, accreditation.CapView) && !gallery.IsPubliclyVisible() {
		return nil, apperr.Unauthorized("no view access to this gallery")
	}

	imgs, err := images.NewRepository(s.db).WithContext(ctx).ListByGallery(gallery.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load images", err)
	}
	tagList, err := tags.NewRepository(s.db).ListByGallery(ctx, gallery.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load tags", err)
	}

	return &Detail{Gallery: gallery, Level: level, Images: imgs, Tags: tagList}, nil
}

// Update 修改相册，需要编辑权限
func (s *Service) Update(ctx context.Context, userID uint, publicID string, in UpdateInput) (*models.Gallery, error) {
	gallery, _, err := s.resolver.Require(ctx, userID, publicID, accreditation.CapEdit)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if in.Description != nil {
		desc, err := validateDescription(*in.Description)
		if err != nil {
			return nil, err
		}
		fields["description"] = desc
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
	}
	if in.IsPublished != nil {
		fields["is_published"] = *in.IsPublished
	}
	if in.CoverText != nil {
		text := strings.TrimSpace(*in.CoverText)
		if utf8.RuneCountInString(text) > maxTitleLength {
			return nil, apperr.Validation("cover text must be at most 255 characters")
		}
		fields["cover_text"] = text
	}
	if in.CoverImageID != nil {
		if *in.CoverImageID == 0 {
			fields["cover_image_id"] = nil
		} else {
			ok, err := images.NewRepository(s.db).WithContext(ctx).InGallery(*in.CoverImageID, gallery.ID)
			if err != nil {
				return nil, apperr.Internal("failed to check cover image", err)
			}
			if !ok {
				return nil, apperr.Validation("cover image must belong to the gallery")
			}
			fields["cover_image_id"] = *in.CoverImageID
		}
	}

	repo := galleries.NewRepository(s.db).WithContext(ctx)
	if len(fields) > 0 {
		if err := repo.UpdateFields(gallery.ID, fields); err != nil {
			return nil, apperr.Internal("failed to update gallery", err)
		}
		s.invalidatePublic(ctx)
	}

	updated, err := repo.GetByID(gallery.ID)
	if err != nil {
		return nil, apperr.Internal("failed to reload gallery", err)
	}
	return updated, nil
}

// ListForUser 用户拥有或已加入的相册
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]*models.Gallery, error) {
	list, err := galleries.NewRepository(s.db).WithContext(ctx).ListForUser(userID)
	if err != nil {
		return nil, apperr.Internal("failed to list galleries", err)
	}
	return list, nil
}

// ListPublic 公开已发布的相册，带缓存，并发未命中合并为一次查询
func (s *Service) ListPublic(ctx context.Context) ([]*models.Gallery, error) {
	if s.cache != nil {
		var cached []*models.Gallery
		err := s.cache.Get(ctx, cache.PublicGalleriesKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !cache.IsCacheMiss(err) {
			log.Printf("[Gallery] public list cache read failed: %v", err)
		}
	}

	v, err, _ := s.group.Do(cache.PublicGalleriesKey, func() (interface{}, error) {
		list, err := galleries.NewRepository(s.db).WithContext(ctx).ListPublic()
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, cache.PublicGalleriesKey, list, cache.WithJitter(s.publicTTL)); err != nil {
				log.Printf("[Gallery] public list cache write failed: %v", err)
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to list public galleries", err)
	}
	return v.([]*models.Gallery), nil
}

func (s *Service) invalidatePublic(ctx context.Context) {
	s.group.Forget(cache.PublicGalleriesKey)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.PublicGalleriesKey); err != nil {
		log.Printf("[Gallery] public list cache invalidation failed: %v", err)
	}
}
