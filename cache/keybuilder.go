package cache

import (
	"math/rand"
	"strings"
	"time"
)

// KeyBuilder 以 ":" 拼接带前缀的缓存键
type KeyBuilder struct {
	prefix string
}

func NewKeyBuilder(prefix string) KeyBuilder {
	return KeyBuilder{prefix: prefix}
}

func (kb KeyBuilder) Build(parts ...string) string {
	return strings.Join(append([]string{kb.prefix}, parts...), ":")
}

var (
	PublicGalleriesKey = NewKeyBuilder("galleries").Build("public")
	DashboardStatsKey  = NewKeyBuilder("dashboard").Build("stats")
)

// KnownKeys cache clear 命令会逐个删除
func KnownKeys() []string {
	return []string{PublicGalleriesKey, DashboardStatsKey}
}

// WithJitter 在 ttl 上随机加最多 10%，避免同时过期
func WithJitter(ttl time.Duration) time.Duration {
	if ttl < 10 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(int64(ttl)/10))
}
