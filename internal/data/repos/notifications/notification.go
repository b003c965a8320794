package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notifications []*domain.Notification) ([]*domain.Notification, error)
	ListByConsultantID(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID, limit int) ([]*domain.Notification, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notifications []*domain.Notification) ([]*domain.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(notifications) == 0 {
		return []*domain.Notification{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) ListByConsultantID(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID, limit int) ([]*domain.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 50
	}

	var results []*domain.Notification
	if err := transaction.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
