package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"mime/multipart"
	"os"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/galleries"
	imagerepo "github.com/anoixa/photo-gallery/database/repo/images"
	"github.com/anoixa/photo-gallery/database/repo/tags"
	"github.com/anoixa/photo-gallery/internal/accreditation"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/storage"
	"github.com/anoixa/photo-gallery/utils"
	"github.com/anoixa/photo-gallery/utils/validator"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// 单批次内并行处理的文件数
const uploadConcurrency = 4

// Limits 上传限制，单位字节
type Limits struct {
	MaxFiles      int
	MaxFileSize   int64
	MaxBatchTotal int64
	UserQuota     int64
}

// UploadResult 单个文件的上传结果
type UploadResult struct {
	FileName    string        `json:"file_name"`
	Image       *models.Image `json:"image,omitempty"`
	IsDuplicate bool          `json:"is_duplicate"`
	Error       string        `json:"error,omitempty"`
}

// Service 图片服务
type Service struct {
	db       *gorm.DB
	resolver *accreditation.Resolver
	storage  storage.Provider
	limits   Limits
}

// NewService 创建图片服务
func NewService(db *gorm.DB, resolver *accreditation.Resolver, provider storage.Provider, limits Limits) *Service {
	return &Service{db: db, resolver: resolver, storage: provider, limits: limits}
}

func (s *Service) checkLimits(ctx context.Context, userID uint, files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return apperr.Validation("no files uploaded")
	}
	if s.limits.MaxFiles > 0 && len(files) > s.limits.MaxFiles {
		return apperr.Validation(fmt.Sprintf("at most %d files per upload", s.limits.MaxFiles))
	}

	var total int64
	for _, fh := range files {
		if s.limits.MaxFileSize > 0 && fh.Size > s.limits.MaxFileSize {
			return apperr.Validation(fmt.Sprintf("file %s exceeds the maximum size", utils.SanitizeLogMessage(fh.Filename)))
		}
		total += fh.Size
	}
	if s.limits.MaxBatchTotal > 0 && total > s.limits.MaxBatchTotal {
		return apperr.Validation("upload exceeds the maximum total size")
	}

	if s.limits.UserQuota > 0 {
		used, err := imagerepo.NewRepository(s.db).WithContext(ctx).SumSizeByUser(userID)
		if err != nil {
			return apperr.Internal("failed to compute storage usage", err)
		}
		if used+total > s.limits.UserQuota {
			return apperr.Validation("storage quota exceeded")
		}
	}
	return nil
}

// Upload 上传图片到相册，需要 contribute 权限
// 文件级错误记录在结果中，不影响同批次其它文件
func (s *Service) Upload(ctx context.Context, userID uint, publicID string, files []*multipart.FileHeader) ([]*UploadResult, error) {
	gallery, _, err := s.resolver.Require(ctx, userID, publicID, accreditation.CapContribute)
	if err != nil {
		return nil, err
	}
	if err := s.checkLimits(ctx, userID, files); err != nil {
		return nil, err
	}

	userTag, err := tags.NewRepository(s.db).EnsureUserTag(ctx, gallery.ID, userID)
	if err != nil {
		return nil, apperr.Internal("failed to prepare user tag", err)
	}

	results := make([]*UploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, fh := range files {
		g.Go(func() error {
			result := &UploadResult{FileName: fh.Filename}
			img, dup, err := s.processFile(gctx, userID, gallery, userTag, fh)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Image = img
				result.IsDuplicate = dup
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// processFile 写入临时文件并计算哈希，然后去重、探测尺寸、入库
func (s *Service) processFile(ctx context.Context, userID uint, gallery *models.Gallery, userTag *models.Tag, fh *multipart.FileHeader) (*models.Image, bool, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, false, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "gallery-upload-*")
	if err != nil {
		return nil, false, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), src)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	fileHash := hex.EncodeToString(hasher.Sum(nil))

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("failed to seek temp file: %w", err)
	}
	ok, mimeType, err := validator.IsImage(tmp)
	if err != nil {
		return nil, false, fmt.Errorf("failed to sniff file type: %w", err)
	}
	if !ok {
		return nil, false, errors.New("unsupported file type")
	}

	repo := imagerepo.NewRepository(s.db).WithContext(ctx)
	existing, err := repo.GetByUserHash(userID, fileHash)
	switch {
	case err == nil:
		if err := s.attach(ctx, s.db, existing, gallery, userTag); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	case !errors.Is(err, imagerepo.ErrImageNotFound):
		return nil, false, fmt.Errorf("failed to check duplicate: %w", err)
	}

	cfg, _, err := image.DecodeConfig(tmp)
	if err != nil {
		return nil, false, errors.New("image data is corrupt")
	}

	identifier := uuid.NewString() + validator.SafeExtension(mimeType)
	objectPath := storage.OriginalPath(identifier)
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("failed to seek temp file: %w", err)
	}
	if err := s.storage.SaveWithContext(ctx, objectPath, tmp); err != nil {
		log.Printf("[Images] failed to store %s: %v", identifier, err)
		return nil, false, errors.New("failed to save uploaded file")
	}

	img := &models.Image{
		Identifier:   identifier,
		OriginalName: fh.Filename,
		FileSize:     size,
		MimeType:     mimeType,
		FileHash:     fileHash,
		Width:        cfg.Width,
		Height:       cfg.Height,
		UserID:       userID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := imagerepo.NewRepository(tx).Create(img); err != nil {
			return err
		}
		return s.attach(ctx, tx, img, gallery, userTag)
	})
	if err != nil {
		if delErr := s.storage.DeleteWithContext(context.Background(), objectPath); delErr != nil {
			log.Printf("[Images] failed to clean up %s: %v", identifier, delErr)
		}
		// 同一批次里的相同文件，另一个 goroutine 先写入了
		if database.IsUniqueViolation(err) {
			if dup, getErr := repo.GetByUserHash(userID, fileHash); getErr == nil {
				if err := s.attach(ctx, s.db, dup, gallery, userTag); err != nil {
					return nil, false, err
				}
				return dup, true, nil
			}
		}
		log.Printf("[Images] failed to save metadata for %s: %v", identifier, err)
		return nil, false, errors.New("failed to save image metadata")
	}

	return img, false, nil
}

// attach 关联到相册并打上用户标签
// 同批次多个 goroutine 共用 gallery 和 tag，这里传副本
func (s *Service) attach(ctx context.Context, db *gorm.DB, img *models.Image, gallery *models.Gallery, userTag *models.Tag) error {
	g, t := *gallery, *userTag
	repo := imagerepo.NewRepository(db).WithContext(ctx)
	if err := repo.LinkGallery(img, &g); err != nil {
		return fmt.Errorf("failed to link image: %w", err)
	}
	if err := repo.AppendTag(img, &t); err != nil {
		return fmt.Errorf("failed to tag image: %w", err)
	}
	return nil
}

// Delete 从相册移除图片，需要编辑权限；不再属于任何相册时删除文件
func (s *Service) Delete(ctx context.Context, userID uint, publicID string, imageID uint) error {
	gallery, _, err := s.resolver.Require(ctx, userID, publicID, accreditation.CapEdit)
	if err != nil {
		return err
	}

	var orphan *models.Image
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := imagerepo.NewRepository(tx)
		img, err := repo.GetByID(imageID)
		if err != nil {
			if errors.Is(err, imagerepo.ErrImageNotFound) {
				return apperr.NotFound("image not found")
			}
			return apperr.Internal("failed to load image", err)
		}
		in, err := repo.InGallery(img.ID, gallery.ID)
		if err != nil {
			return apperr.Internal("failed to check image", err)
		}
		if !in {
			return apperr.NotFound("image not found")
		}

		if err := repo.RemoveGalleryTags(img.ID, gallery.ID); err != nil {
			return apperr.Internal("failed to remove image tags", err)
		}
		if err := repo.UnlinkGallery(img, gallery); err != nil {
			return apperr.Internal("failed to unlink image", err)
		}
		if gallery.CoverImageID != nil && *gallery.CoverImageID == img.ID {
			if err := galleries.NewRepository(tx).UpdateFields(gallery.ID, map[string]interface{}{"cover_image_id": nil}); err != nil {
				return apperr.Internal("failed to clear cover", err)
			}
		}

		remaining, err := repo.GalleryIDs(img.ID)
		if err != nil {
			return apperr.Internal("failed to check image links", err)
		}
		if len(remaining) == 0 {
			if err := repo.DeletePermanently(img); err != nil {
				return apperr.Internal("failed to delete image", err)
			}
			orphan = img
		}
		return nil
	})
	if err != nil {
		return err
	}

	if orphan != nil {
		if err := s.storage.DeleteWithContext(ctx, storage.OriginalPath(orphan.Identifier)); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Images] failed to delete file %s: %v", orphan.Identifier, err)
		}
	}
	return nil
}

// Open 打开图片文件：上传者、任一所在相册的成员，或所在相册公开已发布
func (s *Service) Open(ctx context.Context, userID uint, identifier string) (*models.Image, io.ReadSeekCloser, error) {
	repo := imagerepo.NewRepository(s.db).WithContext(ctx)
	img, err := repo.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, imagerepo.ErrImageNotFound) {
			return nil, nil, apperr.NotFound("image not found")
		}
		return nil, nil, apperr.Internal("failed to load image", err)
	}

	allowed, err := s.canView(ctx, userID, img)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, apperr.Unauthorized("no access to this image")
	}

	rc, err := s.storage.GetWithContext(ctx, storage.OriginalPath(img.Identifier))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperr.NotFound("image file missing")
		}
		return nil, nil, apperr.Internal("failed to open image", err)
	}
	return img, rc, nil
}

func (s *Service) canView(ctx context.Context, userID uint, img *models.Image) (bool, error) {
	if userID != 0 && img.UserID == userID {
		return true, nil
	}

	ids, err := imagerepo.NewRepository(s.db).WithContext(ctx).GalleryIDs(img.ID)
	if err != nil {
		return false, apperr.Internal("failed to load image galleries", err)
	}
	galleryRepo := galleries.NewRepository(s.db).WithContext(ctx)
	for _, id := range ids {
		gallery, err := galleryRepo.GetByID(id)
		if err != nil {
			if errors.Is(err, galleries.ErrGalleryNotFound) {
				continue
			}
			return false, apperr.Internal("failed to load gallery", err)
		}
		if gallery.IsPubliclyVisible() {
			return true, nil
		}
		ok, err := s.resolver.Can(ctx, userID, gallery, accreditation.CapView)
		if err != nil {
			return false, apperr.Internal("failed to resolve accreditation", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
