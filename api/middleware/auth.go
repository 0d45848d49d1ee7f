package middleware

import (
	"net/http"
	"strings"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/anoixa/photo-gallery/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

// JWTAuth 校验 Bearer 访问令牌，并把用户信息写入上下文
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || token == "" {
			common.RespondErrorAbort(c, http.StatusBadRequest, "Authorization field format error")
			return
		}
		if scheme != "Bearer" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Unsupported authentication scheme")
			return
		}

		claims, err := jwtService.ExtractClaims(token)
		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		role := claims.Role
		if role == "" {
			role = "user"
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// UserID 当前登录用户
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserIDKey)
}
