package database

import (
	"context"
	"log"

	"gorm.io/gorm"
)

// Provider 由容器持有，服务层只通过 DB() 拿连接
type Provider interface {
	DB() *gorm.DB
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

type gormProvider struct {
	db *gorm.DB
}

// NewGormProvider 包装已打开的连接，测试里直接传内存库
func NewGormProvider(db *gorm.DB) Provider {
	return &gormProvider{db: db}
}

func (p *gormProvider) DB() *gorm.DB { return p.db }

func (p *gormProvider) Name() string { return p.db.Dialector.Name() }

func (p *gormProvider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *gormProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	log.Printf("[Database] closing %s connection", p.Name())
	return sqlDB.Close()
}
