package repository

import (
	"github.com/dailywell/content-engine/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository notification bookkeeping data access
type NotificationRepository interface {
	Create(n *domain.Notification) error
	FindByRecipient(recipientID string, limit int) ([]*domain.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) FindByRecipient(recipientID string, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}
