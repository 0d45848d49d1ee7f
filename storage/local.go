package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	absBasePath string
}

// NewLocalStorage 创建本地存储提供者，目录不可写时返回错误
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	testFile := filepath.Join(absPath, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(testFile)
	if err != nil {
		return nil, fmt.Errorf("local storage directory '%s' is not writable: %w", absPath, err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return &LocalStorage{absBasePath: absPath + string(os.PathSeparator)}, nil
}

// resolve 校验并返回绝对路径
func (s *LocalStorage) resolve(storagePath string) (string, error) {
	if !IsValidStoragePath(storagePath) {
		return "", fmt.Errorf("invalid storage path: %q", storagePath)
	}
	fullPath := filepath.Join(s.absBasePath, storagePath)
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return "", fmt.Errorf("invalid file path, potential directory traversal: %q", storagePath)
	}
	return fullPath, nil
}

// SaveWithContext 保存文件，先写临时文件再重命名
func (s *LocalStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	dstPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", storagePath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for '%s': %w", storagePath, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", storagePath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file for '%s': %w", storagePath, err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into '%s': %w", storagePath, err)
	}
	return nil
}

// GetWithContext 从本地存储获取文件
func (s *LocalStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadSeekCloser, error) {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", storagePath, err)
	}
	return file, nil
}

// DeleteWithContext 从本地存储删除文件
func (s *LocalStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return fmt.Errorf("failed to delete local file '%s': %w", fullPath, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health 检查存储健康状态
func (s *LocalStorage) Health(ctx context.Context) error {
	_, err := os.ReadDir(s.absBasePath)
	return err
}

// Name 返回存储名称
func (s *LocalStorage) Name() string {
	return "local"
}

// IsValidStoragePath 校验存储路径是否合法
func IsValidStoragePath(path string) bool {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}
	if strings.Contains(path, "..") {
		return false
	}

	// 只允许安全字符
	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}

	// 路径的每一段都不能是 "." 或空
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			return false
		}
	}
	return true
}
