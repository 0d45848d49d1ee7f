package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/utils/validator"
	"gorm.io/gorm"
)

// ProfileInput 资料修改，nil 字段不修改
type ProfileInput struct {
	Name        *string
	Username    *string
	PhoneNumber *string
}

// ProfileService 个人资料
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Get 获取当前用户
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.User, error) {
	user, err := accounts.NewRepository(s.db).WithContext(ctx).GetUserByID(userID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// Update 修改显示名、用户名或手机号，空手机号表示解绑
func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	repo := accounts.NewRepository(s.db).WithContext(ctx)

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) > 128 {
			return nil, apperr.Validation("name must be at most 128 characters")
		}
		fields["name"] = name
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if n := utf8.RuneCountInString(username); n < 3 || n > 64 {
			return nil, apperr.Validation("username must be between 3 and 64 characters")
		}
		existing, err := repo.GetUserByUsername(username)
		switch {
		case err == nil && existing.ID != userID:
			return nil, apperr.Conflict("username already taken")
		case err != nil && !errors.Is(err, accounts.ErrUserNotFound):
			return nil, apperr.Internal("failed to check username", err)
		}
		fields["username"] = username
	}

	if in.PhoneNumber != nil {
		phone := strings.TrimSpace(*in.PhoneNumber)
		switch {
		case phone == "":
			fields["phone_number"] = nil
		case validator.IsValidPhoneNumber(phone):
			fields["phone_number"] = phone
		default:
			return nil, apperr.Validation("invalid phone number")
		}
	}

	if len(fields) > 0 {
		if err := repo.UpdateFields(userID, fields); err != nil {
			switch {
			case errors.Is(err, accounts.ErrUserNotFound):
				return nil, apperr.NotFound("user not found")
			case database.IsUniqueViolation(err):
				return nil, apperr.Validation("phone number already in use")
			default:
				return nil, apperr.Internal("failed to update profile", err)
			}
		}
	}
	return s.Get(ctx, userID)
}
