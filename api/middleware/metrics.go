package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics 请求计数与耗时
type Metrics struct {
	requests   atomic.Int64
	durationMs atomic.Int64
	errors     atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Middleware 响应完成后记录
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.requests.Add(1)
		m.durationMs.Add(time.Since(start).Milliseconds())
		if c.Writer.Status() >= 500 {
			m.errors.Add(1)
		}
	}
}

// Snapshot 当前指标
func (m *Metrics) Snapshot() gin.H {
	count := m.requests.Load()
	total := m.durationMs.Load()
	avg := 0.0
	if count > 0 {
		avg = float64(total) / float64(count)
	}
	return gin.H{
		"request_count":       count,
		"request_duration_ms": total,
		"error_count":         m.errors.Load(),
		"avg_duration_ms":     avg,
	}
}
