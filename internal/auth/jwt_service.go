package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/photo-gallery/utils"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess = "access"
	minSecretLength = 32
)

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// TokenClaims JWT 令牌声明
type TokenClaims struct {
	Username string
	UserID   uint
	Role     string
	Type     string
	Exp      int64
	Iat      int64
}

// TokenConfig 保存 JWT 配置
type TokenConfig struct {
	Secret           []byte
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
}

// JWTService JWT Token 服务
type JWTService struct {
	config TokenConfig
}

// NewJWTService 创建新的 JWT 服务
func NewJWTService(cfg TokenConfig) (*JWTService, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters long, got %d", minSecretLength, len(cfg.Secret))
	}
	if cfg.ExpiresIn <= 0 || cfg.RefreshExpiresIn <= 0 {
		return nil, errors.New("JWT token TTL must be positive")
	}
	return &JWTService{config: cfg}, nil
}

// GenerateTokens 生成访问令牌和刷新令牌
func (s *JWTService) GenerateTokens(username string, userID uint, role string) (*TokenPair, error) {
	accessToken, accessExpiry, err := s.GenerateAccessToken(username, userID, role)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiry, err := s.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

// GenerateAccessToken 仅生成访问令牌
func (s *JWTService) GenerateAccessToken(username string, userID uint, role string) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.config.ExpiresIn)
	claims := jwt.MapClaims{
		"username": username,
		"user_id":  userID,
		"role":     role,
		"type":     tokenTypeAccess,
		"exp":      expiry.Unix(),
		"iat":      now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, expiry, nil
}

// GenerateRefreshToken 生成刷新令牌
func (s *JWTService) GenerateRefreshToken() (string, time.Time, error) {
	token, err := utils.GenerateRandomToken(64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return token, time.Now().Add(s.config.RefreshExpiresIn), nil
}

// RefreshTTL 刷新令牌有效期
func (s *JWTService) RefreshTTL() time.Duration {
	return s.config.RefreshExpiresIn
}

// ParseToken 解析和验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.config.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ExtractClaims 解析访问令牌并提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	tokenType, _ := claims["type"].(string)
	userID, _ := claims["user_id"].(float64)
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)

	if tokenType != tokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	if userID <= 0 {
		return nil, errors.New("missing user id claim")
	}

	return &TokenClaims{
		Username: username,
		UserID:   uint(userID),
		Role:     role,
		Type:     tokenType,
		Exp:      int64(exp),
		Iat:      int64(iat),
	}, nil
}
