package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/internal/apperr"
	cryptopackage "github.com/anoixa/photo-gallery/utils/crypto"
	"github.com/anoixa/photo-gallery/utils/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginResult 登录结果
type LoginResult struct {
	User               *models.User
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
	DeviceID           string
}

// RefreshResult Token 刷新结果
type RefreshResult struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
	DeviceID           string
}

// LoginService 登录服务
type LoginService struct {
	db         *gorm.DB
	jwtService *JWTService
}

// NewLoginService 创建新的登录服务
func NewLoginService(db *gorm.DB, jwtService *JWTService) *LoginService {
	return &LoginService{db: db, jwtService: jwtService}
}

// ValidateCredentials 验证用户凭据，identifier 可以是邮箱或用户名
func (s *LoginService) ValidateCredentials(ctx context.Context, identifier, password string) (*models.User, bool, error) {
	if validator.IsValidEmail(identifier) {
		identifier = validator.NormalizeEmail(identifier)
	}

	user, err := accounts.NewRepository(s.db).WithContext(ctx).GetUserByLogin(identifier)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := cryptopackage.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		return nil, false, fmt.Errorf("password comparison failed: %w", err)
	}
	return user, ok, nil
}

// Login 执行登录操作
func (s *LoginService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, valid, err := s.ValidateCredentials(ctx, identifier, password)
	if err != nil {
		return nil, apperr.Internal("failed to validate credentials", err)
	}
	if !valid {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if user.Status == models.UserStatusUnverified {
		return nil, apperr.Forbidden("email address is not verified")
	}

	tokenPair, err := s.jwtService.GenerateTokens(user.Username, user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("failed to generate tokens", err)
	}

	deviceID := uuid.New().String()
	devices := accounts.NewDeviceRepository(s.db).WithContext(ctx)
	if err := devices.CreateLoginDevice(user.ID, deviceID, tokenPair.RefreshToken, tokenPair.RefreshTokenExpiry); err != nil {
		return nil, apperr.Internal("failed to store device token", err)
	}

	return &LoginResult{
		User:               user,
		AccessToken:        tokenPair.AccessToken,
		AccessTokenExpiry:  tokenPair.AccessTokenExpiry,
		RefreshToken:       tokenPair.RefreshToken,
		RefreshTokenExpiry: tokenPair.RefreshTokenExpiry,
		DeviceID:           deviceID,
	}, nil
}

// RefreshToken 刷新访问令牌并轮换刷新令牌
func (s *LoginService) RefreshToken(ctx context.Context, refreshToken, deviceID string) (*RefreshResult, error) {
	devices := accounts.NewDeviceRepository(s.db).WithContext(ctx)
	device, err := devices.GetDeviceByRefreshTokenAndDeviceID(refreshToken, deviceID)
	if err != nil {
		return nil, apperr.Internal("failed to get device", err)
	}
	if device == nil {
		return nil, apperr.Unauthorized("invalid refresh token or device ID")
	}

	user, err := accounts.NewRepository(s.db).WithContext(ctx).GetUserByID(device.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Internal("failed to get user", err)
	}

	newRefreshToken, newRefreshExpiry, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		return nil, apperr.Internal("failed to generate refresh token", err)
	}
	if err := devices.RotateRefreshToken(user.ID, device.DeviceID, newRefreshToken, newRefreshExpiry); err != nil {
		return nil, apperr.Internal("failed to update device token", err)
	}

	accessToken, accessExpiry, err := s.jwtService.GenerateAccessToken(user.Username, user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("failed to generate access token", err)
	}

	return &RefreshResult{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       newRefreshToken,
		RefreshTokenExpiry: newRefreshExpiry,
		DeviceID:           deviceID,
	}, nil
}

// Logout 执行登出操作
func (s *LoginService) Logout(ctx context.Context, deviceID string) error {
	if err := accounts.NewDeviceRepository(s.db).WithContext(ctx).DeleteDeviceByDeviceID(deviceID); err != nil {
		return apperr.Internal("failed to logout", err)
	}
	return nil
}

// PurgeExpiredDevices 清理过期设备
func (s *LoginService) PurgeExpiredDevices(ctx context.Context) (int64, error) {
	return accounts.NewDeviceRepository(s.db).WithContext(ctx).PurgeExpired(time.Now())
}
