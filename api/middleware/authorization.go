package middleware

import (
	"net/http"
	"slices"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/gin-gonic/gin"
)

// RequireRole 放在 JWTAuth 之后，角色取自访问令牌
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if role == "" || !slices.Contains(roles, role) {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}
