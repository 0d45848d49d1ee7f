package images

import (
	"log"
	"net/http"
	"time"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/internal/images"
	"github.com/gin-gonic/gin"
)

// uploadField multipart 表单中的文件字段
const uploadField = "files"

// Handler 图片上传、删除与访问
type Handler struct {
	svc *images.Service
}

func NewHandler(svc *images.Service) *Handler {
	return &Handler{svc: svc}
}

// Upload 批量上传到相册，每个文件单独返回结果
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			log.Printf("[Images] failed to remove multipart temp files: %v", err)
		}
	}()

	results, err := h.svc.Upload(c.Request.Context(), middleware.UserID(c), c.Param("id"), form.File[uploadField])
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, results)
}

// Delete 从相册移除图片，无其它相册引用时删除文件
func (h *Handler) Delete(c *gin.Context) {
	imageID, ok := common.ParseUintParam(c, "imageId")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"), imageID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Image deleted", nil)
}

// Stream 输出原图，支持 Range
func (h *Handler) Stream(c *gin.Context) {
	img, reader, err := h.svc.Open(c.Request.Context(), middleware.UserID(c), c.Param("filename"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", img.MimeType)
	c.Header("Cache-Control", "private, max-age=86400")
	http.ServeContent(c.Writer, c.Request, img.Identifier, modTime(img.UpdatedAt), reader)
}

func modTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0)
	}
	return t
}
