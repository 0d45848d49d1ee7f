package galleries

import (
	"github.com/anoixa/photo-gallery/internal/galleries"
	"github.com/anoixa/photo-gallery/internal/sharing"
)

// Handler 相册与成员管理
type Handler struct {
	galleries *galleries.Service
	sharing   *sharing.Service
}

// NewHandler 创建相册处理器
func NewHandler(galleryService *galleries.Service, sharingService *sharing.Service) *Handler {
	return &Handler{galleries: galleryService, sharing: sharingService}
}
