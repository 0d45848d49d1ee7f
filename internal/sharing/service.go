// Package sharing 相册邀请的签发、兑换与成员等级调整
package sharing

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/database/repo/accreditations"
	"github.com/anoixa/photo-gallery/database/repo/joinrequests"
	"github.com/anoixa/photo-gallery/database/repo/notifications"
	"github.com/anoixa/photo-gallery/database/repo/tags"
	"github.com/anoixa/photo-gallery/internal/accreditation"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/internal/mail"
	"github.com/anoixa/photo-gallery/utils"
	"github.com/anoixa/photo-gallery/utils/validator"
	"gorm.io/gorm"
)

// maxTokenAttempts token 碰撞重试上限
const maxTokenAttempts = 10

// Options 服务参数
type Options struct {
	BaseURL        string
	JoinRequestTTL time.Duration
}

// Service 相册共享服务
type Service struct {
	db       *gorm.DB
	resolver *accreditation.Resolver
	renderer mail.Renderer
	mailer   mail.Mailer
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
}

// NewService 创建共享服务
func NewService(db *gorm.DB, resolver *accreditation.Resolver, renderer mail.Renderer, mailer mail.Mailer, opts Options) *Service {
	return &Service{
		db:       db,
		resolver: resolver,
		renderer: renderer,
		mailer:   mailer,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		ttl:      opts.JoinRequestTTL,
		now:      time.Now,
	}
}

// IssueResult 签发结果，Token 只通过邮件送达
type IssueResult struct {
	Code  string
	Token string
}

// RedeemInput 兑换参数
type RedeemInput struct {
	Token  string
	Code   string
	UserID uint
	Phone  string
}

// RedeemResult 兑换结果
type RedeemResult struct {
	GalleryPublicID string                    `json:"gallery_id"`
	GalleryTitle    string                    `json:"title"`
	Level           models.AccreditationLevel `json:"level"`
}

// AccreditedUser 相册成员
type AccreditedUser struct {
	UserID   uint                      `json:"user_id"`
	Email    string                    `json:"email"`
	Username string                    `json:"username"`
	Name     string                    `json:"name"`
	Level    models.AccreditationLevel `json:"level"`
}

func (s *Service) galleryLink(publicID string) string {
	return "/gallery/" + publicID
}

// Issue 为邮箱签发相册邀请
func (s *Service) Issue(ctx context.Context, galleryPublicID string, sharerID uint, email, phone string) (*IssueResult, error) {
	email = validator.NormalizeEmail(email)
	if !validator.IsValidEmail(email) {
		return nil, apperr.Validation("invalid email address")
	}

	var phonePtr *string
	if phone = strings.TrimSpace(phone); phone != "" {
		if !validator.IsValidPhoneNumber(phone) {
			return nil, apperr.Validation("invalid phone number")
		}
		phonePtr = &phone
	}

	gallery, _, err := s.resolver.Require(ctx, sharerID, galleryPublicID, accreditation.CapShare)
	if err != nil {
		return nil, err
	}

	sharer, err := accounts.NewRepository(s.db).WithContext(ctx).GetUserByID(sharerID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	var result IssueResult
	var msg mail.Message

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNotShared(tx, gallery, email); err != nil {
			return err
		}

		requests := joinrequests.NewRepository(tx)
		if s.ttl > 0 {
			if err := requests.DeleteExpiredForEmail(gallery.ID, email, s.now().Add(-s.ttl)); err != nil {
				return apperr.Internal("failed to clean expired join requests", err)
			}
		}

		pending, err := requests.ExistsForEmail(gallery.ID, email)
		if err != nil {
			return apperr.Internal("failed to check join requests", err)
		}
		if pending {
			return apperr.AlreadyShared("gallery already shared with this email")
		}

		code, err := utils.GenerateCode(models.JoinCodeLength)
		if err != nil {
			return apperr.Internal("failed to generate code", err)
		}
		token, err := uniqueToken(requests)
		if err != nil {
			return err
		}

		req := &models.JoinRequest{
			GalleryID:   gallery.ID,
			InviterID:   sharerID,
			Email:       email,
			PhoneNumber: phonePtr,
			Code:        code,
			Token:       token,
		}
		if err := requests.Create(req); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.AlreadyShared("gallery already shared with this email")
			}
			return apperr.Internal("failed to create join request", err)
		}

		msg, err = s.renderer.Render(mail.TemplateJoin, email, mail.JoinData{
			GalleryTitle: gallery.Title,
			InviterName:  displayName(sharer),
			Code:         code,
			Link:         s.baseURL + "/join?token=" + token,
		})
		if err != nil {
			return apperr.Internal("failed to render invitation mail", err)
		}

		result = IssueResult{Code: code, Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mailer.Dispatch(msg)
	log.Printf("[Sharing] gallery %s shared with %s", gallery.PublicID, utils.SanitizeLogEmail(email))
	return &result, nil
}

// ensureNotShared 所有者或已有授权的用户不能再次邀请
func (s *Service) ensureNotShared(tx *gorm.DB, gallery *models.Gallery, email string) error {
	invitee, err := accounts.NewRepository(tx).GetUserByEmail(email)
	if errors.Is(err, accounts.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal("failed to load invitee", err)
	}

	if invitee.ID == gallery.OwnerID {
		return apperr.AlreadyShared("user already has access to this gallery")
	}
	exists, err := accreditations.NewRepository(tx).Exists(gallery.ID, invitee.ID)
	if err != nil {
		return apperr.Internal("failed to check accreditation", err)
	}
	if exists {
		return apperr.AlreadyShared("user already has access to this gallery")
	}
	return nil
}

// uniqueToken 生成未被占用的 token
func uniqueToken(requests *joinrequests.Repository) (string, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		token, err := utils.GenerateCode(models.JoinTokenLength)
		if err != nil {
			return "", apperr.Internal("failed to generate token", err)
		}
		taken, err := requests.TokenExists(token)
		if err != nil {
			return "", apperr.Internal("failed to check token", err)
		}
		if !taken {
			return token, nil
		}
	}
	return "", apperr.Internal("failed to generate token", fmt.Errorf("%d collisions", maxTokenAttempts))
}

// Redeem 校验 token、code 与邮箱后授予查看权限
func (s *Service) Redeem(ctx context.Context, in RedeemInput) (*RedeemResult, error) {
	token := strings.TrimSpace(in.Token)
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if token == "" || code == "" {
		return nil, apperr.Validation("token and code are required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" && !validator.IsValidPhoneNumber(phone) {
		return nil, apperr.Validation("invalid phone number")
	}

	var (
		result    RedeemResult
		galleryID uint
		mismatch  bool
		expired   *models.JoinRequest
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := joinrequests.NewRepository(tx)
		req, err := requests.GetByTokenForUpdate(token)
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("join request not found")
			}
			return apperr.Internal("failed to load join request", err)
		}
		if req.Expired(s.now(), s.ttl) {
			expired = req
			return apperr.NotFound("join request not found")
		}

		users := accounts.NewRepository(tx)
		user, err := users.GetUserByID(in.UserID)
		if err != nil {
			if errors.Is(err, accounts.ErrUserNotFound) {
				return apperr.NotFound("user not found")
			}
			return apperr.Internal("failed to load user", err)
		}

		if phone != "" && !user.HasPhone() {
			if err := users.SetPhoneNumber(user.ID, phone); err != nil {
				if database.IsUniqueViolation(err) {
					return apperr.Validation("phone number already in use")
				}
				return apperr.Internal("failed to save phone number", err)
			}
		}

		if subtle.ConstantTimeCompare([]byte(req.Token), []byte(token)) != 1 ||
			subtle.ConstantTimeCompare([]byte(req.Code), []byte(code)) != 1 ||
			!strings.EqualFold(req.Email, user.Email) {
			mismatch = true
			return apperr.InvalidCode("invalid code")
		}

		// 条件删除保证只有一个兑换者成功
		n, err := requests.DeleteByToken(req.ID, req.Token)
		if err != nil {
			return apperr.Internal("failed to consume join request", err)
		}
		if n != 1 {
			return apperr.NotFound("join request not found")
		}

		gallery := &req.Gallery
		if gallery.OwnerID == user.ID {
			return apperr.AlreadyShared("user already has access to this gallery")
		}

		acc := &models.Accreditation{GalleryID: gallery.ID, UserID: user.ID, Level: models.LevelViewer}
		if err := accreditations.NewRepository(tx).Create(acc); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.AlreadyShared("user already has access to this gallery")
			}
			return apperr.Internal("failed to create accreditation", err)
		}

		notification := &models.Notification{
			UserID:  user.ID,
			Message: fmt.Sprintf("You have been added to gallery %s", gallery.Title),
			Link:    s.galleryLink(gallery.PublicID),
			Type:    models.NotificationGalleryJoin,
		}
		if err := notifications.NewRepository(tx).Create(ctx, notification); err != nil {
			return apperr.Internal("failed to create notification", err)
		}

		if _, err := tags.NewRepository(tx).EnsureUserTag(ctx, gallery.ID, user.ID); err != nil {
			return apperr.Internal("failed to create user tag", err)
		}

		galleryID = gallery.ID
		result = RedeemResult{
			GalleryPublicID: gallery.PublicID,
			GalleryTitle:    gallery.Title,
			Level:           acc.Level,
		}
		return nil
	})

	// 失败计数与过期清理在事务回滚之后单独执行
	requests := joinrequests.NewRepository(s.db).WithContext(ctx)
	if mismatch {
		if incErr := requests.IncrementTryCount(token); incErr != nil {
			log.Printf("[Sharing] failed to record code attempt: %v", incErr)
		}
	}
	if expired != nil {
		if _, delErr := requests.DeleteByToken(expired.ID, expired.Token); delErr != nil {
			log.Printf("[Sharing] failed to delete expired join request: %v", delErr)
		}
	}
	if err != nil {
		return nil, err
	}

	accreditation.Forget(ctx, in.UserID, galleryID)
	return &result, nil
}

// SetLevel 调整成员等级
func (s *Service) SetLevel(ctx context.Context, galleryPublicID string, actorID, targetUserID uint, newLevel models.AccreditationLevel) error {
	gallery, _, err := s.resolver.Require(ctx, actorID, galleryPublicID, accreditation.CapShare)
	if err != nil {
		return err
	}

	if newLevel == models.LevelOwnerImplicit {
		return nil
	}
	if !newLevel.Assignable() {
		return apperr.Validation("invalid accreditation level")
	}
	if targetUserID == gallery.OwnerID {
		return apperr.Validation("the owner's level cannot be changed")
	}

	var welcome *mail.Message

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accs := accreditations.NewRepository(tx)
		acc, err := accs.GetForUpdate(gallery.ID, targetUserID)
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("accreditation not found")
			}
			return apperr.Internal("failed to load accreditation", err)
		}

		if acc.Level == newLevel {
			return nil
		}
		if acc.Level == models.LevelInvited {
			return apperr.Pending("user has not completed the join flow")
		}

		if acc.Level == models.LevelPending && newLevel >= models.LevelViewer {
			target, err := accounts.NewRepository(tx).GetUserByID(targetUserID)
			if err != nil {
				return apperr.Internal("failed to load user", err)
			}
			msg, err := s.renderer.Render(mail.TemplateWelcome, target.Email, mail.WelcomeData{
				GalleryTitle: gallery.Title,
				Name:         displayName(target),
				Link:         s.baseURL + s.galleryLink(gallery.PublicID),
			})
			if err != nil {
				return apperr.Internal("failed to render welcome mail", err)
			}
			welcome = &msg
		}

		if err := accs.UpdateLevel(acc.ID, newLevel); err != nil {
			return apperr.Internal("failed to update accreditation", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	accreditation.Forget(ctx, targetUserID, gallery.ID)
	if welcome != nil {
		s.mailer.Dispatch(*welcome)
	}
	return nil
}

// ListAccredited 相册成员列表，所有者以等级 0 排在首位
func (s *Service) ListAccredited(ctx context.Context, galleryPublicID string, actorID uint) ([]AccreditedUser, error) {
	gallery, _, err := s.resolver.Require(ctx, actorID, galleryPublicID, accreditation.CapShare)
	if err != nil {
		return nil, err
	}

	owner, err := accounts.NewRepository(s.db).WithContext(ctx).GetUserByID(gallery.OwnerID)
	if err != nil {
		return nil, apperr.Internal("failed to load owner", err)
	}
	rows, err := accreditations.NewRepository(s.db).WithContext(ctx).ListByGallery(gallery.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list accreditations", err)
	}

	list := make([]AccreditedUser, 0, len(rows)+1)
	list = append(list, toAccreditedUser(owner, models.LevelOwnerImplicit))
	for _, row := range rows {
		list = append(list, toAccreditedUser(&row.User, row.Level))
	}
	return list, nil
}

// PurgeExpired 清理过期邀请
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	return joinrequests.NewRepository(s.db).WithContext(ctx).PurgeExpired(s.now().Add(-s.ttl))
}

func toAccreditedUser(u *models.User, level models.AccreditationLevel) AccreditedUser {
	return AccreditedUser{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
		Level:    level,
	}
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
