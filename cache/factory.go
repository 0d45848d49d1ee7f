package cache

import (
	"fmt"
	"log"
	"strings"

	"github.com/anoixa/photo-gallery/config"
)

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.CacheType) {
	case "", "memory":
		maxCost := cfg.CacheMemoryMaxCostMB
		if maxCost <= 0 {
			maxCost = 64
		}
		provider, err := NewMemoryCache(MemoryConfig{
			NumCounters: 100000,
			MaxCost:     maxCost << 20,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Printf("[Cache] Using memory cache (max %dMB)", maxCost)
		return provider, nil

	case "redis":
		provider, err := NewRedisCache(RedisConfig{
			Address:   cfg.CacheRedisAddr,
			Password:  cfg.CacheRedisPassword,
			DB:        cfg.CacheRedisDB,
			PoolSize:  10,
			KeyPrefix: cfg.CacheRedisKeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis at %s: %w", cfg.CacheRedisAddr, err)
		}
		log.Printf("[Cache] Using redis cache at %s (prefix %q)", cfg.CacheRedisAddr, cfg.CacheRedisKeyPrefix)
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
