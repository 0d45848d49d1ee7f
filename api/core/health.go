package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/storage"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

var startTime = time.Now()

// HealthHandler 检查数据库、缓存与存储
type HealthHandler struct {
	db      database.Provider
	cache   cache.Provider
	storage storage.Provider
}

func NewHealthHandler(db database.Provider, cacheProvider cache.Provider, storageProvider storage.Provider) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheProvider, storage: storageProvider}
}

// Handle 任一依赖异常时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{
		"database": checkDatabaseHealth(ctx, h.db),
		"cache":    checkCacheHealth(ctx, h.cache),
		"storage":  checkStorageHealth(ctx, h.storage),
	}

	status := "ok"
	httpStatus := http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	// redis 有真实连接可探测，内存缓存只要能读就算正常
	if p, ok := provider.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return "unavailable: " + err.Error()
		}
		return "ok"
	}
	if _, err := provider.Exists(ctx, "health:check"); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
