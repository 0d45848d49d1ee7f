package tags

import (
	"net/http"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/internal/tags"
	"github.com/gin-gonic/gin"
)

type createTagRequest struct {
	Name string `json:"name" binding:"required"`
}

type setImageTagsRequest struct {
	TagIDs []uint `json:"tag_ids"`
}

// Handler 相册标签
type Handler struct {
	svc *tags.Service
}

func NewHandler(svc *tags.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

func (h *Handler) Create(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Name)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, tag)
}

// SetImageTags 替换图片在该相册下的标签
func (h *Handler) SetImageTags(c *gin.Context) {
	imageID, ok := common.ParseUintParam(c, "imageId")
	if !ok {
		return
	}
	var req setImageTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.svc.SetImageTags(c.Request.Context(), middleware.UserID(c), c.Param("id"), imageID, req.TagIDs)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}
