package notifications

import (
	"net/http"
	"strconv"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/internal/notifications"
	"github.com/gin-gonic/gin"
)

// Handler 站内通知
type Handler struct {
	svc *notifications.Service
}

func NewHandler(svc *notifications.Service) *Handler {
	return &Handler{svc: svc}
}

// List ?is_read=true|false 过滤，缺省返回全部
func (h *Handler) List(c *gin.Context) {
	var isRead *bool
	if raw, ok := c.GetQuery("is_read"); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "Invalid is_read value")
			return
		}
		isRead = &v
	}

	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c), isRead)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Notification marked as read", nil)
}
