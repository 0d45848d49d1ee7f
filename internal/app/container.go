// Package app 组装数据库、缓存、存储与各业务服务
package app

import (
	"fmt"
	"log"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/internal/accreditation"
	"github.com/anoixa/photo-gallery/internal/admin"
	"github.com/anoixa/photo-gallery/internal/auth"
	"github.com/anoixa/photo-gallery/internal/dashboard"
	"github.com/anoixa/photo-gallery/internal/galleries"
	"github.com/anoixa/photo-gallery/internal/images"
	"github.com/anoixa/photo-gallery/internal/mail"
	"github.com/anoixa/photo-gallery/internal/notifications"
	"github.com/anoixa/photo-gallery/internal/sharing"
	"github.com/anoixa/photo-gallery/internal/tags"
	"github.com/anoixa/photo-gallery/internal/worker"
	"github.com/anoixa/photo-gallery/storage"
	"github.com/anoixa/photo-gallery/utils"
	"gorm.io/gorm"
)

// Container 依赖注入容器，管理所有服务的生命周期
type Container struct {
	config *config.Config

	// 基础设施，Init 之前可以预先注入
	Database database.Provider
	Cache    cache.Provider
	Storage  storage.Provider
	Pool     *worker.Pool
	Renderer mail.Renderer
	Mailer   mail.Mailer

	Resolver      *accreditation.Resolver
	JWT           *auth.JWTService
	Login         *auth.LoginService
	Signup        *auth.SignupService
	Profile       *auth.ProfileService
	Sharing       *sharing.Service
	Galleries     *galleries.Service
	Images        *images.Service
	Tags          *tags.Service
	Notifications *notifications.Service
	Admin         *admin.Service
	Dashboard     *dashboard.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.config
}

// DB 获取连接池
func (c *Container) DB() *gorm.DB {
	if c.Database == nil {
		return nil
	}
	return c.Database.DB()
}

// Init 初始化全部依赖
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.InitInfrastructure(); err != nil {
		return err
	}
	return c.InitServices()
}

// InitDatabase 只打开数据库，供 migrate 等命令使用
func (c *Container) InitDatabase() error {
	if c.Database != nil {
		return nil
	}
	utils.LogIfDev("Initializing database...")

	db, err := database.NewDB(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.Database = database.NewGormProvider(db)
	log.Printf("[App] database ready (%s)", c.Database.Name())
	return nil
}

// InitInfrastructure 缓存、存储、协程池与邮件
func (c *Container) InitInfrastructure() error {
	if c.Cache == nil {
		provider, err := cache.NewProvider(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		c.Cache = provider
	}

	if c.Storage == nil {
		provider, err := storage.NewProvider(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = provider
	}

	if c.Pool == nil {
		c.Pool = worker.NewPool(c.config.GetWorkerCount(), c.config.WorkerQueueSize)
	}

	if c.Renderer == nil {
		renderer, err := mail.NewTemplateRenderer()
		if err != nil {
			return fmt.Errorf("failed to load mail templates: %w", err)
		}
		c.Renderer = renderer
	}

	if c.Mailer == nil {
		c.Mailer = mail.NewDispatcher(mail.NewSMTPSender(mail.SMTPConfigFrom(c.config)), c.Pool)
	}
	return nil
}

// InitServices 构建业务服务，依赖已就绪的基础设施
func (c *Container) InitServices() error {
	db := c.DB()
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}
	if c.Renderer == nil || c.Mailer == nil || c.Storage == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}

	jwtService, err := auth.NewJWTService(auth.TokenConfig{
		Secret:           []byte(c.config.JWTSecret),
		ExpiresIn:        c.config.JWTAccessTTL,
		RefreshExpiresIn: c.config.JWTRefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize jwt: %w", err)
	}
	c.JWT = jwtService

	maxFile, maxBatch, quota := c.config.UploadLimits()

	c.Resolver = accreditation.NewResolver(db)
	c.Login = auth.NewLoginService(db, jwtService)
	c.Signup = auth.NewSignupService(db, c.Renderer, c.Mailer, auth.OTPPolicy{
		ResendInterval: c.config.OTPResendInterval,
		MaxSends:       c.config.OTPMaxSends,
	})
	c.Profile = auth.NewProfileService(db)
	c.Sharing = sharing.NewService(db, c.Resolver, c.Renderer, c.Mailer, sharing.Options{
		BaseURL:        c.config.BaseURL(),
		JoinRequestTTL: c.config.JoinRequestTTL,
	})
	c.Galleries = galleries.NewService(db, c.Resolver, c.Cache, c.config.CachePublicGalleryTTL)
	c.Images = images.NewService(db, c.Resolver, c.Storage, images.Limits{
		MaxFiles:      c.config.UploadMaxFiles,
		MaxFileSize:   maxFile,
		MaxBatchTotal: maxBatch,
		UserQuota:     quota,
	})
	c.Tags = tags.NewService(db, c.Resolver)
	c.Notifications = notifications.NewService(db)
	c.Admin = admin.NewService(db)
	c.Dashboard = dashboard.NewService(db, c.Cache)

	utils.LogIfDev("Services initialized")
	return nil
}

// Close 关闭所有服务
func (c *Container) Close() error {
	log.Println("[App] closing container...")

	if c.Pool != nil {
		c.Pool.Stop()
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("[App] error closing cache: %v", err)
		}
	}
	if c.Database != nil {
		if err := c.Database.Close(); err != nil {
			log.Printf("[App] error closing database: %v", err)
		}
	}
	return nil
}
