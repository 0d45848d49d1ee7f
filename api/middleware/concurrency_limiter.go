package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter 上传会整块解析 multipart，限制同时进行的数量
type ConcurrencyLimiter struct {
	slots *semaphore.Weighted
}

func NewConcurrencyLimiter(n int64) *ConcurrencyLimiter {
	if n < 1 {
		n = 1
	}
	return &ConcurrencyLimiter{slots: semaphore.NewWeighted(n)}
}

// Middleware 有空位直接进入，否则最多排队 wait，超时 503
func (l *ConcurrencyLimiter) Middleware(wait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.slots.TryAcquire(1) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := l.slots.Acquire(ctx, 1)
			cancel()
			if err != nil {
				common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
				return
			}
		}
		defer l.slots.Release(1)
		c.Next()
	}
}
