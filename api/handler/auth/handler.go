package auth

import (
	authsvc "github.com/anoixa/photo-gallery/internal/auth"
)

// CookieConfig 刷新令牌 cookie 参数
type CookieConfig struct {
	Domain string
	Secure bool
}

// Handler 登录、注册与个人资料
type Handler struct {
	login   *authsvc.LoginService
	signup  *authsvc.SignupService
	profile *authsvc.ProfileService
	cookies CookieConfig
}

// NewHandler 创建认证处理器
func NewHandler(login *authsvc.LoginService, signup *authsvc.SignupService, profile *authsvc.ProfileService, cookies CookieConfig) *Handler {
	return &Handler{login: login, signup: signup, profile: profile, cookies: cookies}
}
