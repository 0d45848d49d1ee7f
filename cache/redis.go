package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisDialTimeout = 5 * time.Second

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	PoolSize int
	// KeyPrefix 多个实例共用一个库时用来隔离键，空则不加前缀
	KeyPrefix string
}

// RedisCache 多实例部署时共享的缓存，值的编码与 MemoryCache 相同
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: redisDialTimeout,
	})

	rc := &RedisCache{client: client, prefix: cfg.KeyPrefix}
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return rc, nil
}

func (r *RedisCache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Ping 健康检查使用
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", r.client.Options().Addr, err)
	}
	return nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, r.key(key), data, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return err
	}
	return decode(data, dest)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Name() string {
	if r.prefix == "" {
		return "redis"
	}
	return "redis:" + r.prefix
}
