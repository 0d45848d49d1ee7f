package galleries

import (
	"net/http"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/internal/galleries"
	"github.com/gin-gonic/gin"
)

type createGalleryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	IsPublic    bool   `json:"is_public"`
	IsPublished bool   `json:"is_published"`
}

type updateGalleryRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	IsPublic     *bool   `json:"is_public"`
	IsPublished  *bool   `json:"is_published"`
	CoverImageID *uint   `json:"cover_image_id"`
	CoverText    *string `json:"cover_text"`
}

// List 我拥有或被授权的相册
func (h *Handler) List(c *gin.Context) {
	list, err := h.galleries.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

// ListPublic 公开相册，无需登录
func (h *Handler) ListPublic(c *gin.Context) {
	list, err := h.galleries.ListPublic(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

func (h *Handler) Create(c *gin.Context) {
	var req createGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	gallery, err := h.galleries.Create(c.Request.Context(), middleware.UserID(c), galleries.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, gallery)
}

func (h *Handler) Get(c *gin.Context) {
	detail, err := h.galleries.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, detail)
}

func (h *Handler) Update(c *gin.Context) {
	var req updateGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	gallery, err := h.galleries.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), galleries.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		IsPublic:     req.IsPublic,
		IsPublished:  req.IsPublished,
		CoverImageID: req.CoverImageID,
		CoverText:    req.CoverText,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gallery)
}
