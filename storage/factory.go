package storage

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anoixa/photo-gallery/config"
)

// NewProvider 根据配置创建存储提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	storageType := strings.ToLower(cfg.StorageType)
	log.Printf("[Storage] Initializing storage, type: %s", storageType)

	switch storageType {
	case "", "local":
		p, err := NewLocalStorage(cfg.StorageLocalPath)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "minio":
		p, err := NewMinioStorage(MinioConfig{
			Endpoint:        cfg.StorageMinioEndpoint,
			AccessKeyID:     cfg.StorageMinioAccessKey,
			SecretAccessKey: cfg.StorageMinioSecretKey,
			BucketName:      cfg.StorageMinioBucket,
			UseSSL:          cfg.StorageMinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case "webdav":
		p, err := NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.StorageWebDAVURL,
			Username: cfg.StorageWebDAVUsername,
			Password: cfg.StorageWebDAVPassword,
			RootPath: cfg.StorageWebDAVRootPath,
			Timeout:  time.Duration(cfg.StorageWebDAVTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("invalid storage type: %s", cfg.StorageType)
	}
}
