package auth

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/internal/mail"
	"github.com/anoixa/photo-gallery/utils"
	cryptopackage "github.com/anoixa/photo-gallery/utils/crypto"
	"github.com/anoixa/photo-gallery/utils/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	otpLength         = 6
	minPasswordLength = 8
)

// OTPPolicy 验证码重发策略
type OTPPolicy struct {
	ResendInterval time.Duration
	MaxSends       int
}

// SignupInput 注册参数
type SignupInput struct {
	Email    string
	Username string
	Name     string
	Password string
}

// SignupService 注册与邮箱验证
type SignupService struct {
	db       *gorm.DB
	renderer mail.Renderer
	mailer   mail.Mailer
	policy   OTPPolicy
	now      func() time.Time
}

// NewSignupService 创建注册服务
func NewSignupService(db *gorm.DB, renderer mail.Renderer, mailer mail.Mailer, policy OTPPolicy) *SignupService {
	return &SignupService{db: db, renderer: renderer, mailer: mailer, policy: policy, now: time.Now}
}

func validateSignup(in *SignupInput) error {
	in.Email = validator.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)

	if !validator.IsValidEmail(in.Email) {
		return apperr.Validation("invalid email address")
	}
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 64 {
		return apperr.Validation("username must be between 3 and 64 characters")
	}
	if utf8.RuneCountInString(in.Name) > 128 {
		return apperr.Validation("name must be at most 128 characters")
	}
	if len(in.Password) < minPasswordLength {
		return apperr.Validation("password must be at least 8 characters")
	}
	return nil
}

// Signup 创建未验证用户并发送验证码，返回验证码记录 ID
func (s *SignupService) Signup(ctx context.Context, in SignupInput) (string, error) {
	if err := validateSignup(&in); err != nil {
		return "", err
	}

	hashed, err := cryptopackage.GenerateFromPassword(in.Password)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}

	var otpID string
	var msg mail.Message

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Email:    in.Email,
			Username: in.Username,
			Name:     in.Name,
			Password: hashed,
			Role:     models.RoleUser,
			Status:   models.UserStatusUnverified,
		}
		if err := accounts.NewRepository(tx).CreateUser(user); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("email or username already registered")
			}
			return apperr.Internal("failed to create user", err)
		}

		code, err := utils.GenerateDigits(otpLength)
		if err != nil {
			return apperr.Internal("failed to generate code", err)
		}
		otp := &models.OTP{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Code:      code,
			SendCount: 1,
			SentAt:    s.now(),
		}
		if err := accounts.NewOTPRepository(tx).Create(otp); err != nil {
			return apperr.Internal("failed to create verification code", err)
		}

		msg, err = s.renderer.Render(mail.TemplateOTP, user.Email, mail.OTPData{Name: user.Name, Code: code})
		if err != nil {
			return apperr.Internal("failed to render verification mail", err)
		}
		otpID = otp.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.mailer.Dispatch(msg)
	log.Printf("[Auth] new signup %s", utils.SanitizeLogEmail(in.Email))
	return otpID, nil
}

// Verify 校验验证码，通过后进入待审核状态
func (s *SignupService) Verify(ctx context.Context, otpID, email, code string) error {
	email = validator.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		otps := accounts.NewOTPRepository(tx)
		otp, err := otps.GetForUpdate(otpID)
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("verification not found")
			}
			return apperr.Internal("failed to load verification", err)
		}

		if otp.Code != code || !strings.EqualFold(otp.User.Email, email) {
			return apperr.InvalidCode("invalid verification code")
		}

		if otp.User.Status == models.UserStatusUnverified {
			if err := accounts.NewRepository(tx).UpdateStatus(otp.UserID, models.UserStatusAdminPending); err != nil {
				return apperr.Internal("failed to update user status", err)
			}
		}
		if err := otps.Delete(otp.ID); err != nil {
			return apperr.Internal("failed to delete verification", err)
		}
		return nil
	})
}

// Resend 重新发送验证码，邮箱须与验证码所属用户一致，首次重发不受间隔限制
func (s *SignupService) Resend(ctx context.Context, otpID, email string) error {
	email = validator.NormalizeEmail(email)
	var msg mail.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		otps := accounts.NewOTPRepository(tx)
		otp, err := otps.GetForUpdate(otpID)
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("verification not found")
			}
			return apperr.Internal("failed to load verification", err)
		}
		if !strings.EqualFold(otp.User.Email, email) {
			return apperr.InvalidCode("invalid verification code")
		}

		now := s.now()
		if otp.SendCount >= s.policy.MaxSends {
			return apperr.Validation("verification code expired")
		}
		if otp.SendCount != 1 && now.Before(otp.SentAt.Add(s.policy.ResendInterval)) {
			return apperr.TooManyRequests("please wait before requesting another code")
		}

		code, err := utils.GenerateDigits(otpLength)
		if err != nil {
			return apperr.Internal("failed to generate code", err)
		}
		otp.Code = code
		otp.SendCount++
		otp.SentAt = now
		if err := otps.Save(otp); err != nil {
			return apperr.Internal("failed to update verification", err)
		}

		msg, err = s.renderer.Render(mail.TemplateOTP, otp.User.Email, mail.OTPData{Name: otp.User.Name, Code: code})
		if err != nil {
			return apperr.Internal("failed to render verification mail", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mailer.Dispatch(msg)
	return nil
}
