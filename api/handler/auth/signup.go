package auth

import (
	"net/http"

	"github.com/anoixa/photo-gallery/api/common"
	authsvc "github.com/anoixa/photo-gallery/internal/auth"
	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type verifyRequest struct {
	OTPID string `json:"otp_id" binding:"required"`
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type resendRequest struct {
	OTPID string `json:"otp_id" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// Signup 注册并发送邮箱验证码
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	otpID, err := h.signup.Signup(c.Request.Context(), authsvc.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, gin.H{"otp_id": otpID})
}

// Verify 校验验证码
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.signup.Verify(c.Request.Context(), req.OTPID, req.Email, req.Code); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Email verified, waiting for administrator approval", nil)
}

// Resend 重发验证码
func (h *Handler) Resend(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.signup.Resend(c.Request.Context(), req.OTPID, req.Email); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Verification code sent", nil)
}
