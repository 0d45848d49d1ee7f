package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss 键不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

// Provider 缓存后端，memory 与 redis 两种实现。
// 非 []byte 的值统一按 JSON 编码，Get 时解码到 dest
type Provider interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
	Name() string
}

// IsCacheMiss 未命中不算故障，调用方据此回源
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
