package accreditation

import (
	"context"
	"sync"

	"github.com/anoixa/photo-gallery/database/models"
)

type memoKey struct{}

type memoEntry struct {
	userID    uint
	galleryID uint
}

// Memo 单个请求内的等级缓存，不跨请求共享
type Memo struct {
	mu     sync.Mutex
	levels map[memoEntry]models.AccreditationLevel
}

// WithMemo 为请求上下文附加缓存
func WithMemo(ctx context.Context) context.Context {
	if memoFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, memoKey{}, &Memo{levels: make(map[memoEntry]models.AccreditationLevel)})
}

func memoFrom(ctx context.Context) *Memo {
	memo, _ := ctx.Value(memoKey{}).(*Memo)
	return memo
}

func (m *Memo) get(userID, galleryID uint) (models.AccreditationLevel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.levels[memoEntry{userID, galleryID}]
	return level, ok
}

func (m *Memo) put(userID, galleryID uint, level models.AccreditationLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[memoEntry{userID, galleryID}] = level
}

// Forget 写操作之后丢弃缓存的等级
func Forget(ctx context.Context, userID, galleryID uint) {
	if memo := memoFrom(ctx); memo != nil {
		memo.mu.Lock()
		delete(memo.levels, memoEntry{userID, galleryID})
		memo.mu.Unlock()
	}
}
