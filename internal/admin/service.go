package admin

import (
	"context"
	"errors"
	"log"

	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/utils"
	"github.com/anoixa/photo-gallery/utils/validator"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserPage 用户分页结果
type UserPage struct {
	Users    []*models.User `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Service 管理员操作
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListUsers 分页列出用户
func (s *Service) ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := accounts.NewRepository(s.db).WithContext(ctx).GetAllUsers(page, pageSize)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return &UserPage{Users: users, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateStatus 设置用户验证状态
func (s *Service) UpdateStatus(ctx context.Context, userID uint, status models.UserStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status must be 1, 2 or 3")
	}

	repo := accounts.NewRepository(s.db).WithContext(ctx)
	if err := repo.UpdateStatus(userID, status); err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to update status", err)
	}

	user, err := repo.GetUserByID(userID)
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	log.Printf("[Admin] user %d status set to %d", userID, status)
	return user, nil
}

// Promote 授予管理员角色
func (s *Service) Promote(ctx context.Context, email string) (*models.User, error) {
	email = validator.NormalizeEmail(email)
	repo := accounts.NewRepository(s.db).WithContext(ctx)

	user, err := repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if user.IsAdmin() {
		return user, nil
	}

	if err := repo.SetRole(user.ID, models.RoleAdmin); err != nil {
		return nil, apperr.Internal("failed to promote user", err)
	}
	user.Role = models.RoleAdmin
	log.Printf("[Admin] promoted %s", utils.SanitizeLogEmail(email))
	return user, nil
}
