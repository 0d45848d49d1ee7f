package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
	Timeout  time.Duration
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	baseURL  string
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	s := &WebDAVStorage{
		client:   client,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		rootPath: rootPath,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.run(ctx, func() error {
		return client.MkdirAll(s.rootOrSlash(), os.FileMode(0755))
	}); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}
	return s, nil
}

func (s *WebDAVStorage) rootOrSlash() string {
	if s.rootPath == "" {
		return "/"
	}
	return s.rootPath
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + storagePath
	}
	return "/" + storagePath
}

// run 在 goroutine 中执行阻塞调用，支持 ctx 取消
// gowebdav 的接口不接收 context
func (s *WebDAVStorage) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %q", storagePath)
	}

	fullPath := s.fullPath(storagePath)
	err := s.run(ctx, func() error {
		if dir := path.Dir(fullPath); dir != "/" && dir != "." {
			if err := s.client.MkdirAll(dir, os.FileMode(0755)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
		return s.client.WriteStream(fullPath, file, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", storagePath, err)
	}
	return nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

// GetWithContext 从 WebDAV 获取文件，读入内存以支持 Seek
func (s *WebDAVStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsValidStoragePath(storagePath) {
		return nil, fmt.Errorf("invalid storage path: %q", storagePath)
	}

	var data []byte
	err := s.run(ctx, func() error {
		var err error
		data, err = s.client.Read(s.fullPath(storagePath))
		return err
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read file %s: %w", storagePath, err)
	}
	return nopSeekCloser{bytes.NewReader(data)}, nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	return s.run(ctx, func() error {
		return s.client.Remove(s.fullPath(storagePath))
	})
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	exists := false
	err := s.run(ctx, func() error {
		_, err := s.client.Stat(s.fullPath(storagePath))
		switch {
		case err == nil:
			exists = true
			return nil
		case gowebdav.IsErrNotFound(err):
			return nil
		default:
			return err
		}
	})
	return exists, err
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.client == nil {
		return nil
	}
	return s.run(ctx, func() error {
		_, err := s.client.ReadDir(s.rootOrSlash())
		return err
	})
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	if s.baseURL == "" {
		return "webdav"
	}
	return fmt.Sprintf("webdav:%s%s", s.baseURL, s.rootPath)
}
