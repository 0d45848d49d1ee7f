package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 创建数据库连接
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dbType := cfg.DBType
	if dbType == "" {
		dbType = "sqlite"
	}

	gormLogger := newGormLogger()

	var db *gorm.DB
	var err error

	switch dbType {
	case "sqlite", "sqlite3":
		db, err = newSQLiteDB(cfg, gormLogger)
	case "postgres", "postgresql":
		db, err = newPostgresDB(cfg, gormLogger)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, err
	}

	configurePool(db, cfg)
	return db, nil
}

func gormConfig(gormLogger logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:                 gormLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		// 唯一约束冲突统一为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

// newSQLiteDB 创建 SQLite 连接
func newSQLiteDB(cfg *config.Config, gormLogger logger.Interface) (*gorm.DB, error) {
	path := cfg.DBFilePath
	if path == "" {
		path = "./data/gallery.db"
	}

	// WAL 模式，写锁等待 5 秒
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	utils.LogIfDevf("Using SQLite database: %s", path)
	return db, nil
}

// newPostgresDB 创建 PostgreSQL 连接
func newPostgresDB(cfg *config.Config, gormLogger logger.Interface) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUsername, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	utils.LogIfDevf("Using PostgreSQL database: %s@%s:%d/%s", cfg.DBUsername, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}

// newGormLogger 创建 GORM 日志器
func newGormLogger() logger.Interface {
	logLevel := logger.Silent
	colorful := false

	if config.IsDevelopment() {
		logLevel = logger.Info
		colorful = true
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  colorful,
		},
	)
}

// configurePool 配置连接池
func configurePool(db *gorm.DB, cfg *config.Config) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	}
}

// Models 需要迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Device{},
		&models.OTP{},
		&models.Gallery{},
		&models.Image{},
		&models.Tag{},
		&models.Accreditation{},
		&models.JoinRequest{},
		&models.Notification{},
	}
}

// AutoMigrate 自动迁移数据库结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
