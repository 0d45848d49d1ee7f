package middleware

import (
	"github.com/anoixa/photo-gallery/internal/accreditation"
	"github.com/gin-gonic/gin"
)

// AccreditationMemo 同一请求内多次权限判断只查一次库
func AccreditationMemo() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(accreditation.WithMemo(c.Request.Context()))
		c.Next()
	}
}
