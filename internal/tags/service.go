package tags

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/galleries"
	imagerepo "github.com/anoixa/photo-gallery/database/repo/images"
	tagrepo "github.com/anoixa/photo-gallery/database/repo/tags"
	"github.com/anoixa/photo-gallery/internal/accreditation"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"gorm.io/gorm"
)

const maxTagLength = 64

// Service 标签服务
type Service struct {
	db       *gorm.DB
	resolver *accreditation.Resolver
}

func NewService(db *gorm.DB, resolver *accreditation.Resolver) *Service {
	return &Service{db: db, resolver: resolver}
}

// List 相册标签，需要查看权限或相册公开
func (s *Service) List(ctx context.Context, userID uint, publicID string) ([]*models.Tag, error) {
	gallery, err := galleries.NewRepository(s.db).WithContext(ctx).GetByPublicID(publicID)
	if err != nil {
		if errors.Is(err, galleries.ErrGalleryNotFound) {
			return nil, apperr.NotFound("gallery not found")
		}
		return nil, apperr.Internal("failed to load gallery", err)
	}
	if !gallery.IsPubliclyVisible() {
		ok, err := s.resolver.Can(ctx, userID, gallery, accreditation.CapView)
		if err != nil {
			return nil, apperr.Internal("failed to resolve accreditation", err)
		}
		if !ok {
			return nil, apperr.Unauthorized("no view access to this gallery")
		}
	}
	list, err := tagrepo.NewRepository(s.db).ListByGallery(ctx, gallery.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list tags", err)
	}
	return list, nil
}

// Create 创建标签，需要编辑权限
func (s *Service) Create(ctx context.Context, userID uint, publicID, name string) (*models.Tag, error) {
	gallery, _, err := s.resolver.Require(ctx, userID, publicID, accreditation.CapEdit)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxTagLength {
		return nil, apperr.Validation("tag name must be between 1 and 64 characters")
	}
	if strings.EqualFold(name, models.UserTagName) {
		return nil, apperr.Validation("tag name is reserved")
	}

	tag := &models.Tag{GalleryID: gallery.ID, Name: name}
	if err := tagrepo.NewRepository(s.db).Create(ctx, tag); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("tag already exists")
		}
		return nil, apperr.Internal("failed to create tag", err)
	}
	return tag, nil
}

// SetImageTags 替换图片在本相册下的标签集合，其它相册的标签不受影响
func (s *Service) SetImageTags(ctx context.Context, userID uint, publicID string, imageID uint, tagIDs []uint) ([]*models.Tag, error) {
	gallery, _, err := s.resolver.Require(ctx, userID, publicID, accreditation.CapEdit)
	if err != nil {
		return nil, err
	}

	ids := dedupe(tagIDs)
	var result []*models.Tag
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := imagerepo.NewRepository(tx)
		img, err := images.GetByID(imageID)
		if err != nil {
			if errors.Is(err, imagerepo.ErrImageNotFound) {
				return apperr.NotFound("image not found")
			}
			return apperr.Internal("failed to load image", err)
		}
		in, err := images.InGallery(img.ID, gallery.ID)
		if err != nil {
			return apperr.Internal("failed to check image", err)
		}
		if !in {
			return apperr.NotFound("image not found")
		}

		found, err := tagrepo.NewRepository(tx).FindInGallery(ctx, gallery.ID, ids)
		if err != nil {
			return apperr.Internal("failed to load tags", err)
		}
		if len(found) != len(ids) {
			return apperr.Validation("tags must belong to the gallery")
		}

		if err := images.RemoveGalleryTags(img.ID, gallery.ID); err != nil {
			return apperr.Internal("failed to clear tags", err)
		}
		if err := images.AppendTags(img, found); err != nil {
			return apperr.Internal("failed to set tags", err)
		}

		result, err = images.TagsInGallery(img.ID, gallery.ID)
		if err != nil {
			return apperr.Internal("failed to reload tags", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
