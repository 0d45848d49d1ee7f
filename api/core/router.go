package core

import (
	"net/http"
	"time"

	"github.com/anoixa/photo-gallery/api/common"
	adminHandler "github.com/anoixa/photo-gallery/api/handler/admin"
	authHandler "github.com/anoixa/photo-gallery/api/handler/auth"
	galleryHandler "github.com/anoixa/photo-gallery/api/handler/galleries"
	imageHandler "github.com/anoixa/photo-gallery/api/handler/images"
	notificationHandler "github.com/anoixa/photo-gallery/api/handler/notifications"
	tagHandler "github.com/anoixa/photo-gallery/api/handler/tags"
	"github.com/anoixa/photo-gallery/api/middleware"
	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/internal/app"
	"github.com/gin-gonic/gin"
)

// uploadWaitTimeout 上传排队的最长等待时间
const uploadWaitTimeout = 30 * time.Second

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container        *app.Container
	AuthRateLimiter  *middleware.RateLimiter
	APIRateLimiter   *middleware.RateLimiter
	ImageRateLimiter *middleware.RateLimiter
	UploadLimiter    *middleware.ConcurrencyLimiter
	Metrics          *middleware.Metrics
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 健康检查、版本与指标
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container
	health := NewHealthHandler(c.Database, c.Cache, c.Storage)
	router.GET("/health", health.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, deps.Metrics.Snapshot())
	})
}

func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container
	cfg := c.Config()

	authH := authHandler.NewHandler(c.Login, c.Signup, c.Profile, authHandler.CookieConfig{
		Domain: cookieDomain(cfg),
		Secure: config.IsProduction(),
	})
	galleryH := galleryHandler.NewHandler(c.Galleries, c.Sharing)
	imageH := imageHandler.NewHandler(c.Images)
	tagH := tagHandler.NewHandler(c.Tags)
	notificationH := notificationHandler.NewHandler(c.Notifications)
	adminH := adminHandler.NewHandler(c.Admin, c.Dashboard)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(deps.AuthRateLimiter.Middleware())
		{
			authGroup.POST("/signup", authH.Signup)   // POST /api/auth/signup
			authGroup.POST("/verify", authH.Verify)   // POST /api/auth/verify
			authGroup.POST("/resend", authH.Resend)   // POST /api/auth/resend
			authGroup.POST("/login", authH.Login)     // POST /api/auth/login
			authGroup.POST("/refresh", authH.Refresh) // POST /api/auth/refresh
			authGroup.POST("/logout", authH.Logout)   // POST /api/auth/logout
		}

		publicGroup := apiGroup.Group("/public")
		publicGroup.Use(deps.APIRateLimiter.Middleware())
		{
			publicGroup.GET("/galleries", galleryH.ListPublic) // GET /api/public/galleries
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(middleware.JWTAuth(c.JWT))
		v1.Use(middleware.AccreditationMemo())
		{
			meGroup := v1.Group("/me")
			meGroup.Use(deps.APIRateLimiter.Middleware())
			{
				meGroup.GET("", authH.Me)
				meGroup.PUT("", authH.UpdateMe)
			}

			galleriesGroup := v1.Group("/galleries")
			galleriesGroup.Use(deps.APIRateLimiter.Middleware())
			{
				galleriesGroup.GET("", galleryH.List)
				galleriesGroup.POST("", galleryH.Create)
				galleriesGroup.POST("/join", galleryH.Join)
				galleriesGroup.GET("/:id", galleryH.Get)
				galleriesGroup.PUT("/:id", galleryH.Update)
				galleriesGroup.POST("/:id/share", galleryH.Share)

				galleriesGroup.GET("/:id/accreditations", galleryH.ListAccreditations)
				galleriesGroup.POST("/:id/accreditations", galleryH.SetLevel)

				galleriesGroup.GET("/:id/tags", tagH.List)
				galleriesGroup.POST("/:id/tags", tagH.Create)
				galleriesGroup.PUT("/:id/images/:imageId/tags", tagH.SetImageTags)

				galleriesGroup.POST("/:id/images", deps.UploadLimiter.Middleware(uploadWaitTimeout), imageH.Upload)
				galleriesGroup.DELETE("/:id/images/:imageId", imageH.Delete)
			}

			imagesGroup := v1.Group("/images")
			imagesGroup.Use(deps.ImageRateLimiter.Middleware())
			{
				imagesGroup.GET("/:filename", imageH.Stream) // GET /api/v1/images/{filename}
			}

			notificationsGroup := v1.Group("/notifications")
			notificationsGroup.Use(deps.APIRateLimiter.Middleware())
			{
				notificationsGroup.GET("", notificationH.List)
				notificationsGroup.POST("/:id/read", notificationH.MarkRead)
			}

			adminGroup := v1.Group("/admin")
			adminGroup.Use(deps.APIRateLimiter.Middleware())
			adminGroup.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminGroup.GET("/users", adminH.ListUsers)
				adminGroup.PUT("/users/:id/status", adminH.UpdateStatus)
				adminGroup.GET("/stats", adminH.Stats)
				adminGroup.POST("/stats/refresh", adminH.RefreshStats)
			}
		}
	}
}

// cookieDomain 只有配置了域名时才设置 cookie domain
func cookieDomain(cfg *config.Config) string {
	if cfg == nil || cfg.ServerDomain == "" {
		return ""
	}
	return hostOf(cfg.ServerDomain)
}
