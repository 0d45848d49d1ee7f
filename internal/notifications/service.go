package notifications

import (
	"context"

	"github.com/anoixa/photo-gallery/database/models"
	notifrepo "github.com/anoixa/photo-gallery/database/repo/notifications"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"gorm.io/gorm"
)

// Service 站内通知
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List isRead 为 nil 时返回全部
func (s *Service) List(ctx context.Context, userID uint, isRead *bool) ([]*models.Notification, error) {
	list, err := notifrepo.NewRepository(s.db).List(ctx, userID, isRead)
	if err != nil {
		return nil, apperr.Internal("failed to list notifications", err)
	}
	return list, nil
}

// MarkRead 他人的通知与不存在的通知一样返回 NotFound
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	n, err := notifrepo.NewRepository(s.db).MarkRead(ctx, notificationID, userID)
	if err != nil {
		return apperr.Internal("failed to update notification", err)
	}
	if n == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}
