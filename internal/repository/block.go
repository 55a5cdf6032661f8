package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository defines the interface for block-edge data operations
type BlockRepository interface {
	// Create inserts the edge if absent. It reports whether a row was written.
	Create(ctx context.Context, blockerID, blockedID uint) (bool, error)
	Delete(ctx context.Context, blockerID, blockedID uint) error
	Exists(ctx context.Context, blockerID, blockedID uint) (bool, error)
	ListByBlocker(ctx context.Context, blockerID uint) ([]models.UserBlock, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserBlock{BlockerID: blockerID, BlockedID: blockedID})
	if result.Error != nil {
		return false, internal(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID uint) error {
	return internal(r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{}).Error)
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	if err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *blockRepository) ListByBlocker(ctx context.Context, blockerID uint) ([]models.UserBlock, error) {
	var blocks []models.UserBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, internal(err)
	}
	return blocks, nil
}
