package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig MinIO 配置
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// MinioStorage 基于 MinIO / S3 的存储实现
type MinioStorage struct {
	client     *minio.Client
	bucketName string
}

// NewMinioStorage 创建 MinIO 存储，bucket 不存在时自动创建
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
		DisableCompression:    true,
	}
	if cfg.UseSSL {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:    cfg.UseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket '%s' exists: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.BucketName, err)
		}
		log.Printf("[Storage] Created bucket: %s", cfg.BucketName)
	}

	return &MinioStorage{client: client, bucketName: cfg.BucketName}, nil
}

// SaveWithContext 上传对象
func (s *MinioStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %q", storagePath)
	}
	_, err := s.client.PutObject(ctx, s.bucketName, storagePath, file, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object '%s' to minio: %w", storagePath, err)
	}
	return nil
}

// GetWithContext 获取对象流
func (s *MinioStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadSeekCloser, error) {
	if !IsValidStoragePath(storagePath) {
		return nil, fmt.Errorf("invalid storage path: %q", storagePath)
	}

	// GetObject 是惰性的，先 Stat 才能区分不存在
	obj, err := s.client.GetObject(ctx, s.bucketName, storagePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object stream from minio for '%s': %w", storagePath, err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to stat object '%s': %w", storagePath, err)
	}
	return obj, nil
}

// DeleteWithContext 删除对象
func (s *MinioStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, storagePath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s' from minio: %w", storagePath, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (s *MinioStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, storagePath, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health 检查 bucket 是否可访问
func (s *MinioStorage) Health(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket '%s' does not exist", s.bucketName)
	}
	return nil
}

// Name 返回存储名称
func (s *MinioStorage) Name() string {
	return "minio"
}
