package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// FlagRepository defines the interface for content report data operations
type FlagRepository interface {
	// Create records a report. It returns ErrDuplicate when the reporter has
	// already flagged the content.
	Create(ctx context.Context, flag *models.Flag) error
	ListUnreviewed(ctx context.Context, limit, offset int) ([]models.Flag, error)
	MarkReviewed(ctx context.Context, ref models.ContentRef) (int64, error)
}

type flagRepository struct {
	db *gorm.DB
}

// NewFlagRepository creates a new flag repository
func NewFlagRepository(db *gorm.DB) FlagRepository {
	return &flagRepository{db: db}
}

func (r *flagRepository) Create(ctx context.Context, flag *models.Flag) error {
	return createErr(r.db.WithContext(ctx).Create(flag).Error)
}

func (r *flagRepository) ListUnreviewed(ctx context.Context, limit, offset int) ([]models.Flag, error) {
	var flags []models.Flag
	err := r.db.WithContext(ctx).
		Where("reviewed = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&flags).Error
	if err != nil {
		return nil, internal(err)
	}
	return flags, nil
}

func (r *flagRepository) MarkReviewed(ctx context.Context, ref models.ContentRef) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Flag{}).
		Where("content_kind = ? AND content_id = ? AND reviewed = ?", ref.Kind, ref.ID, false).
		Update("reviewed", true)
	if result.Error != nil {
		return 0, internal(result.Error)
	}
	return result.RowsAffected, nil
}
