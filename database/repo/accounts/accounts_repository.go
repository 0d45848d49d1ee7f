package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/utils"
	cryptopackage "github.com/anoixa/photo-gallery/utils/crypto"
	"gorm.io/gorm"
)

// ErrUserNotFound 用户不存在错误
var ErrUserNotFound = errors.New("user not found")

// Repository 账户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的账户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// CreateDefaultAdminUser 创建默认管理员用户，已存在管理员时返回空密码
func (r *Repository) CreateDefaultAdminUser(email, username string) (string, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check admin user existence: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	randomPassword, err := utils.GenerateRandomToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}
	if len(randomPassword) > 16 {
		randomPassword = randomPassword[:16]
	}

	hashedPassword, err := cryptopackage.GenerateFromPassword(randomPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash default password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Name:     username,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		Status:   models.UserStatusVerified,
	}
	if err := r.db.Create(user).Error; err != nil {
		return "", fmt.Errorf("failed to create default admin user: %w", err)
	}
	return randomPassword, nil
}

func (r *Repository) first(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID 通过ID获取用户
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

// GetUserByEmail 通过邮箱获取用户
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

// GetUserByLogin 邮箱或用户名
func (r *Repository) GetUserByLogin(identifier string) (*models.User, error) {
	return r.first("email = ? OR username = ?", identifier, identifier)
}

// CreateUser 创建用户
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateFields 按列更新用户
func (r *Repository) UpdateFields(userID uint, fields map[string]interface{}) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetPhoneNumber 设置手机号
func (r *Repository) SetPhoneNumber(userID uint, phone string) error {
	return r.UpdateFields(userID, map[string]interface{}{"phone_number": phone})
}

// UpdateStatus 更新验证状态
func (r *Repository) UpdateStatus(userID uint, status models.UserStatus) error {
	return r.UpdateFields(userID, map[string]interface{}{"status": status})
}

// SetRole 设置角色
func (r *Repository) SetRole(userID uint, role string) error {
	return r.UpdateFields(userID, map[string]interface{}{"role": role})
}

// GetAllUsers 分页获取用户
func (r *Repository) GetAllUsers(page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	db := r.db.Model(&models.User{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&users).Error
	return users, total, err
}
