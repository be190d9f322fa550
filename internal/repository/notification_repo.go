package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulseai-health/clinic-api/internal/domain/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if isDuplicateKey(err) {
			return notification.ErrAlreadySent
		}
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) HasSent(ctx context.Context, appointmentID uuid.UUID, kind notification.Kind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("appointment_id = ? AND kind = ? AND status = ?", appointmentID, kind, notification.StatusSent).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking sent notifications: %w", err)
	}
	return count > 0, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []*notification.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return rows, nil
}
