package auth

import (
	"net/http"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/api/middleware"
	authsvc "github.com/anoixa/photo-gallery/internal/auth"
	"github.com/gin-gonic/gin"
)

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phone_number"`
}

// Me 当前用户资料
func (h *Handler) Me(c *gin.Context) {
	user, err := h.profile.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}

// UpdateMe 修改资料
func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.profile.Update(c.Request.Context(), middleware.UserID(c), authsvc.ProfileInput{
		Name:        req.Name,
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}
