package galleries

import (
	"net/http"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/internal/sharing"
	"github.com/gin-gonic/gin"
)

type shareRequest struct {
	Email       string `json:"email" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

type joinRequest struct {
	Token       string `json:"token" binding:"required"`
	Code        string `json:"code" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

type setLevelRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	Level  *int `json:"level" binding:"required"`
}

// Share 签发邀请，只返回验证码，token 随邮件发出
func (h *Handler) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.sharing.Issue(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Email, req.PhoneNumber)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, gin.H{"code": result.Code})
}

// Join 兑换邀请
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.sharing.Redeem(c.Request.Context(), sharing.RedeemInput{
		Token:  req.Token,
		Code:   req.Code,
		UserID: middleware.UserID(c),
		Phone:  req.PhoneNumber,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// ListAccreditations 成员列表
func (h *Handler) ListAccreditations(c *gin.Context) {
	list, err := h.sharing.ListAccredited(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

// SetLevel 调整成员等级
func (h *Handler) SetLevel(c *gin.Context) {
	var req setLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	level := models.AccreditationLevel(*req.Level)
	if err := h.sharing.SetLevel(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.UserID, level); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Accreditation updated", nil)
}
