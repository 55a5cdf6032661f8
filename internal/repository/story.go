package repository

import (
	"context"
	"time"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines interface for story operations
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	// ListActive returns unexpired stories by ownerID. Hidden stories are
	// included only when viewerID is the owner.
	ListActive(ctx context.Context, ownerID, viewerID uint, now time.Time) ([]models.Story, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	return createErr(r.db.WithContext(ctx).Create(story).Error)
}

func (r *storyRepository) ListActive(ctx context.Context, ownerID, viewerID uint, now time.Time) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", ownerID, now).
		Where("hidden = ? OR user_id = ?", false, viewerID).
		Order("created_at ASC, id ASC").
		Find(&stories).Error
	if err != nil {
		return nil, internal(err)
	}
	return stories, nil
}

func (r *storyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Story{})
	if result.Error != nil {
		return 0, internal(result.Error)
	}
	return result.RowsAffected, nil
}
