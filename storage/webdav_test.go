package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebDAVStorage_EmptyURL(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{URL: ""})
	assert.EqualError(t, err, "webdav URL is required")
}

// TestWebDAVStorageFullPath 测试路径生成逻辑
func TestWebDAVStorageFullPath(t *testing.T) {
	tests := []struct {
		name        string
		rootPath    string
		storagePath string
		want        string
	}{
		{"empty root path", "", "originals/test.jpg", "/originals/test.jpg"},
		{"with root path", "/gallery", "originals/test.jpg", "/gallery/originals/test.jpg"},
		{"flat file", "/gallery", "test.jpg", "/gallery/test.jpg"},
		{"storage path with leading slash", "", "/test.jpg", "/test.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebDAVStorage{rootPath: tt.rootPath}
			assert.Equal(t, tt.want, s.fullPath(tt.storagePath))
		})
	}
}

// TestWebDAVStorageContextCancellation 取消的 ctx 不会触达 client
func TestWebDAVStorageContextCancellation(t *testing.T) {
	s := &WebDAVStorage{baseURL: "https://example.com"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("SaveWithContext", func(t *testing.T) {
		assert.ErrorIs(t, s.SaveWithContext(ctx, "test.jpg", nil), context.Canceled)
	})
	t.Run("GetWithContext", func(t *testing.T) {
		_, err := s.GetWithContext(ctx, "test.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("DeleteWithContext", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteWithContext(ctx, "test.jpg"), context.Canceled)
	})
	t.Run("Exists", func(t *testing.T) {
		_, err := s.Exists(ctx, "test.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("Health", func(t *testing.T) {
		assert.ErrorIs(t, s.Health(ctx), context.Canceled)
	})
}

func TestWebDAVStorageName(t *testing.T) {
	assert.Equal(t, "webdav", (&WebDAVStorage{}).Name())
	assert.Equal(t, "webdav:https://dav.example.com/gallery", (&WebDAVStorage{baseURL: "https://dav.example.com", rootPath: "/gallery"}).Name())
}
