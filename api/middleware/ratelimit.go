package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc 决定请求归属哪个令牌桶
type KeyFunc func(c *gin.Context) string

// ByClientIP 未登录接口按来源 IP 计数
func ByClientIP(c *gin.Context) string {
	return "ip:" + clientIP(c)
}

// ByUserOrIP 已登录按用户计数，同一出口 IP 后的多个用户互不影响
func ByUserOrIP(c *gin.Context) string {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return "user:" + strconv.FormatUint(uint64(id), 10)
		}
	}
	return ByClientIP(c)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter 令牌桶限流，闲置超过 idleTTL 的桶由后台协程回收
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	key     KeyFunc

	buckets sync.Map
	done    chan struct{}
	once    sync.Once
}

func NewRateLimiter(rps float64, burst int, idleTTL time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByClientIP
	}
	rl := &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		key:     key,
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(rl.key(c), time.Now()) {
			common.RespondErrorAbort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	v, ok := rl.buckets.Load(key)
	if !ok {
		v, _ = rl.buckets.LoadOrStore(key, &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)})
	}
	b := v.(*bucket)
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

// Stop 可重复调用
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			rl.sweep(now)
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.idleTTL).UnixNano()
	rl.buckets.Range(func(k, v interface{}) bool {
		if v.(*bucket).lastSeen.Load() < cutoff {
			rl.buckets.Delete(k)
		}
		return true
	})
}

// clientIP 优先取反向代理写入的头
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
