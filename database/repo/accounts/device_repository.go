package accounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
)

// DeviceRepository 设备仓库
type DeviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository 创建新的设备仓库
func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// WithContext 返回带上下文的仓库
func (r *DeviceRepository) WithContext(ctx context.Context) *DeviceRepository {
	return &DeviceRepository{db: r.db.WithContext(ctx)}
}

// hashToken 数据库只保存刷新令牌的 sha256
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateLoginDevice 创建设备登录记录
func (r *DeviceRepository) CreateLoginDevice(userID uint, deviceID, refreshToken string, expiry time.Time) error {
	return r.db.Create(&models.Device{
		UserID:       userID,
		RefreshToken: hashToken(refreshToken),
		Expiry:       expiry,
		DeviceID:     deviceID,
	}).Error
}

// GetDeviceByRefreshTokenAndDeviceID 查找未过期的设备，不存在时返回 nil
func (r *DeviceRepository) GetDeviceByRefreshTokenAndDeviceID(refreshToken, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("refresh_token = ? AND device_id = ? AND expiry > ?", hashToken(refreshToken), deviceID, time.Now()).
		First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// RotateRefreshToken 轮换刷新令牌
func (r *DeviceRepository) RotateRefreshToken(userID uint, deviceID, newRefreshToken string, expiry time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("device_id = ?", deviceID).Delete(&models.Device{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Device{
			UserID:       userID,
			RefreshToken: hashToken(newRefreshToken),
			Expiry:       expiry,
			DeviceID:     deviceID,
		}).Error
	})
}

// DeleteDeviceByDeviceID 删除设备
func (r *DeviceRepository) DeleteDeviceByDeviceID(deviceID string) error {
	return r.db.Unscoped().Where("device_id = ?", deviceID).Delete(&models.Device{}).Error
}

// PurgeExpired 清理过期设备
func (r *DeviceRepository) PurgeExpired(now time.Time) (int64, error) {
	result := r.db.Unscoped().Where("expiry <= ?", now).Delete(&models.Device{})
	return result.RowsAffected, result.Error
}
