package config

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 缓存提供者配置
	CacheType             string        `mapstructure:"cache_type"`
	CacheRedisAddr        string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword    string        `mapstructure:"cache_redis_password"`
	CacheRedisDB          int           `mapstructure:"cache_redis_db"`
	CacheRedisKeyPrefix   string        `mapstructure:"cache_redis_key_prefix"`
	CacheMemoryMaxCostMB  int64         `mapstructure:"cache_memory_max_cost_mb"`
	CachePublicGalleryTTL time.Duration `mapstructure:"cache_public_gallery_ttl"`

	// 存储配置
	StorageType             string `mapstructure:"storage_type"`
	StorageLocalPath        string `mapstructure:"storage_local_path"`
	StorageMinioEndpoint    string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccessKey   string `mapstructure:"storage_minio_access_key"`
	StorageMinioSecretKey   string `mapstructure:"storage_minio_secret_key"`
	StorageMinioBucket      string `mapstructure:"storage_minio_bucket"`
	StorageMinioUseSSL      bool   `mapstructure:"storage_minio_use_ssl"`
	StorageWebDAVURL        string `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername   string `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword   string `mapstructure:"storage_webdav_password"`
	StorageWebDAVRootPath   string `mapstructure:"storage_webdav_root_path"`
	StorageWebDAVTimeoutSec int    `mapstructure:"storage_webdav_timeout_sec"`

	// 邮件配置
	SMTPEnabled  bool   `mapstructure:"smtp_enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`
	SMTPSSL      bool   `mapstructure:"smtp_ssl"`

	// JWT 配置
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTAccessTTL  time.Duration `mapstructure:"jwt_access_ttl"`
	JWTRefreshTTL time.Duration `mapstructure:"jwt_refresh_ttl"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitImageRPS   float64       `mapstructure:"rate_limit_image_rps"`
	RateLimitImageBurst int           `mapstructure:"rate_limit_image_burst"`
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// 上传配置
	UploadMaxFiles        int `mapstructure:"upload_max_files"`
	UploadMaxSizeMB       int `mapstructure:"upload_max_size_mb"`
	UploadMaxBatchTotalMB int `mapstructure:"upload_max_batch_total_mb"`
	UploadUserQuotaMB     int `mapstructure:"upload_user_quota_mb"`

	// 分享与验证码
	JoinRequestTTL    time.Duration `mapstructure:"join_request_ttl"`
	OTPResendInterval time.Duration `mapstructure:"otp_resend_interval"`
	OTPMaxSends       int           `mapstructure:"otp_max_sends"`

	// 默认管理员
	AdminEmail    string `mapstructure:"admin_email"`
	AdminUsername string `mapstructure:"admin_username"`

	// Worker 配置
	WorkerCount     int `mapstructure:"worker_count"`
	WorkerQueueSize int `mapstructure:"worker_queue_size"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	path := viper.GetString("config_file_path")
	if path == "" {
		path = ".env"
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", path)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	// WorkerCount: -1 = 使用 CPU 线程数, 0 = 使用默认值, >0 = 使用指定值
	switch {
	case globalConfig.WorkerCount < 0:
		globalConfig.WorkerCount = runtime.GOMAXPROCS(0)
	case globalConfig.WorkerCount == 0:
		globalConfig.WorkerCount = getCpus()
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "photo-gallery")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	// 缓存提供者配置默认值
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_redis_key_prefix", "photo-gallery")
	viper.SetDefault("cache_memory_max_cost_mb", 64)
	viper.SetDefault("cache_public_gallery_ttl", "5m")

	// 存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/images")
	viper.SetDefault("storage_minio_bucket", "photo-gallery")
	viper.SetDefault("storage_minio_use_ssl", false)
	viper.SetDefault("storage_webdav_root_path", "/photo-gallery")
	viper.SetDefault("storage_webdav_timeout_sec", 30)

	// 邮件配置默认值
	viper.SetDefault("smtp_enabled", false)
	viper.SetDefault("smtp_host", "")
	viper.SetDefault("smtp_port", 587)
	viper.SetDefault("smtp_from", "Photo Gallery <no-reply@localhost>")
	viper.SetDefault("smtp_ssl", false)

	// JWT 配置默认值
	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("jwt_access_ttl", "30m")
	viper.SetDefault("jwt_refresh_ttl", "168h")

	// 限流配置默认值
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_image_rps", 100.0)
	viper.SetDefault("rate_limit_image_burst", 200)
	viper.SetDefault("rate_limit_auth_rps", 0.5)
	viper.SetDefault("rate_limit_auth_burst", 5)
	viper.SetDefault("rate_limit_expire_time", "10m")

	// 上传配置默认值
	viper.SetDefault("upload_max_files", 20)
	viper.SetDefault("upload_max_size_mb", 20)
	viper.SetDefault("upload_max_batch_total_mb", 100)
	viper.SetDefault("upload_user_quota_mb", 1024)

	// 分享与验证码默认值
	viper.SetDefault("join_request_ttl", "168h")
	viper.SetDefault("otp_resend_interval", "4m")
	viper.SetDefault("otp_max_sends", 3)

	viper.SetDefault("admin_email", "admin@localhost")
	viper.SetDefault("admin_username", "admin")

	// Worker 配置默认值
	viper.SetDefault("worker_count", 0) // 0 表示使用默认值
	viper.SetDefault("worker_queue_size", 1000)
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于生成邮件中的链接
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// GetWorkerCount 返回 worker 数量
func (c *Config) GetWorkerCount() int {
	if c.WorkerCount <= 0 {
		return getCpus()
	}
	return c.WorkerCount
}

// UploadLimits 上传限制（字节）
func (c *Config) UploadLimits() (maxFile, maxBatch, quota int64) {
	return int64(c.UploadMaxSizeMB) << 20, int64(c.UploadMaxBatchTotalMB) << 20, int64(c.UploadUserQuotaMB) << 20
}

// getCpus 获取默认线程数量
func getCpus() int {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		return 2
	}
	return n
}
