package auth

import (
	"net/http"
	"time"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/gin-gonic/gin"
)

const (
	refreshTokenCookie = "refresh_token"
	deviceIDCookie     = "device_id"
	authCookiePath     = "/api/auth/"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
}

// Login 邮箱或用户名登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.login.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.setAuthCookies(c, result.RefreshToken, result.DeviceID, result.RefreshTokenExpiry)
	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
	})
}

// Refresh 轮换刷新令牌
func (h *Handler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}
	deviceID, err := c.Cookie(deviceIDCookie)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Device ID not found")
		return
	}

	result, err := h.login.RefreshToken(c.Request.Context(), refreshToken, deviceID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.setAuthCookies(c, result.RefreshToken, result.DeviceID, result.RefreshTokenExpiry)
	common.RespondSuccessMessage(c, "Refresh token successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
	})
}

// Logout 删除设备记录并清理 cookie
func (h *Handler) Logout(c *gin.Context) {
	deviceID, err := c.Cookie(deviceIDCookie)
	if err != nil {
		common.RespondSuccessMessage(c, "Already logged out or session invalid", nil)
		return
	}

	if err := h.login.Logout(c.Request.Context(), deviceID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.clearAuthCookies(c)
	common.RespondSuccessMessage(c, "Logout successful", nil)
}

func (h *Handler) setAuthCookies(c *gin.Context, refreshToken, deviceID string, expiry time.Time) {
	maxAge := int(time.Until(expiry).Seconds())
	for name, value := range map[string]string{refreshTokenCookie: refreshToken, deviceIDCookie: deviceID} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    value,
			MaxAge:   maxAge,
			Path:     authCookiePath,
			Domain:   h.cookies.Domain,
			Secure:   h.cookies.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	// MaxAge 为 -1 时浏览器删除 cookie
	c.SetCookie(refreshTokenCookie, "", -1, authCookiePath, h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(deviceIDCookie, "", -1, authCookiePath, h.cookies.Domain, h.cookies.Secure, true)
}
