package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushChannelRepository stores web push subscriptions and APNs device tokens.
type PushChannelRepository interface {
	// Upsert registers the channel, refreshing keys when it already exists.
	Upsert(ctx context.Context, ch *models.PushChannel) error
	Delete(ctx context.Context, userID uint, kind models.ChannelKind, endpoint string) error
	ListForUser(ctx context.Context, userID uint) ([]models.PushChannel, error)
}

type pushChannelRepository struct {
	db *gorm.DB
}

// NewPushChannelRepository creates a new push channel repository
func NewPushChannelRepository(db *gorm.DB) PushChannelRepository {
	return &pushChannelRepository{db: db}
}

func (r *pushChannelRepository) Upsert(ctx context.Context, ch *models.PushChannel) error {
	return internal(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}, {Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).
		Create(ch).Error)
}

func (r *pushChannelRepository) Delete(ctx context.Context, userID uint, kind models.ChannelKind, endpoint string) error {
	return internal(r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND endpoint = ?", userID, kind, endpoint).
		Delete(&models.PushChannel{}).Error)
}

func (r *pushChannelRepository) ListForUser(ctx context.Context, userID uint) ([]models.PushChannel, error) {
	var channels []models.PushChannel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&channels).Error; err != nil {
		return nil, internal(err)
	}
	return channels, nil
}
