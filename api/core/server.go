package core

import (
	"net/http"
	"net/url"
	"time"

	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// maxConcurrentUploads 同时处理的上传请求数
const maxConcurrentUploads = 8

// setupRouter 创建 gin 引擎，返回的 cleanup 停止限流器的后台协程
func setupRouter(container *app.Container) (*gin.Engine, func()) {
	cfg := container.Config()
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	_ = router.SetTrustedProxies(nil)

	// 超出部分写入临时文件
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	metrics := middleware.NewMetrics()
	router.Use(metrics.Middleware())

	authRateLimiter := middleware.NewRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime, middleware.ByClientIP)
	apiRateLimiter := middleware.NewRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime, middleware.ByUserOrIP)
	imageRateLimiter := middleware.NewRateLimiter(cfg.RateLimitImageRPS, cfg.RateLimitImageBurst, cfg.RateLimitExpireTime, middleware.ByUserOrIP)
	cleanup := func() {
		authRateLimiter.Stop()
		apiRateLimiter.Stop()
		imageRateLimiter.Stop()
	}

	RegisterRoutes(router, &RouterDependencies{
		Container:        container,
		AuthRateLimiter:  authRateLimiter,
		APIRateLimiter:   apiRateLimiter,
		ImageRateLimiter: imageRateLimiter,
		UploadLimiter:    middleware.NewConcurrencyLimiter(maxConcurrentUploads),
		Metrics:          metrics,
	})

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(container *app.Container) (*http.Server, func()) {
	cfg := container.Config()
	router, cleanup := setupRouter(container)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
	return srv, cleanup
}

// hostOf 取 URL 的主机名，不是 URL 时原样返回
func hostOf(domain string) string {
	u, err := url.Parse(domain)
	if err != nil || u.Hostname() == "" {
		return domain
	}
	return u.Hostname()
}
