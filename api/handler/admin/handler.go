package admin

import (
	"net/http"
	"strconv"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/internal/admin"
	"github.com/anoixa/photo-gallery/internal/dashboard"
	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status int `json:"status" binding:"required"`
}

// Handler 用户管理与统计
type Handler struct {
	svc       *admin.Service
	dashboard *dashboard.Service
}

func NewHandler(svc *admin.Service, dashboardSvc *dashboard.Service) *Handler {
	return &Handler{svc: svc, dashboard: dashboardSvc}
}

// ListUsers ?page=&page_size=
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.svc.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// UpdateStatus 审核或重置用户状态
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	status := models.UserStatus(req.Status)
	if int(status) != req.Status {
		status = 0
	}
	user, err := h.svc.UpdateStatus(c.Request.Context(), userID, status)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}
