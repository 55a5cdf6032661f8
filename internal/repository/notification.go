package repository

import (
	"context"
	"time"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	// MarkAllRead marks the recipient's unread rows read, skipping the excluded types.
	MarkAllRead(ctx context.Context, recipientID uint, exclude ...models.NotificationType) (int64, error)
	MarkReadForFollow(ctx context.Context, followID uint) error
	DeleteForFollow(ctx context.Context, followID uint) (int64, error)
	// PurgeReadBefore deletes read rows created before cutoff. Rows tied to a
	// follow edge are left to the edge's own cleanup.
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return createErr(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, firstErr(err, "Notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) ListForRecipient(
	ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int,
) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var rows []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, internal(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	return internal(r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error)
}

func (r *notificationRepository) MarkAllRead(
	ctx context.Context, recipientID uint, exclude ...models.NotificationType,
) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false)
	if len(exclude) > 0 {
		q = q.Where("type NOT IN ?", exclude)
	}
	result := q.Update("is_read", true)
	if result.Error != nil {
		return 0, internal(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) MarkReadForFollow(ctx context.Context, followID uint) error {
	return internal(r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("follow_id = ? AND is_read = ?", followID, false).
		Update("is_read", true).Error)
}

func (r *notificationRepository) DeleteForFollow(ctx context.Context, followID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("follow_id = ?", followID).Delete(&models.Notification{})
	if result.Error != nil {
		return 0, internal(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ? AND follow_id IS NULL", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, internal(result.Error)
	}
	return result.RowsAffected, nil
}
