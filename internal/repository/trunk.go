package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// TrunkRepository defines interface for trunk and branch operations
type TrunkRepository interface {
	Create(ctx context.Context, trunk *models.Trunk) error
	GetByID(ctx context.Context, id uint) (*models.Trunk, error)
	AddBranch(ctx context.Context, branch *models.Branch) error
}

type trunkRepository struct {
	db *gorm.DB
}

// NewTrunkRepository creates a new TrunkRepository
func NewTrunkRepository(db *gorm.DB) TrunkRepository {
	return &trunkRepository{db: db}
}

func (r *trunkRepository) Create(ctx context.Context, trunk *models.Trunk) error {
	return createErr(r.db.WithContext(ctx).Create(trunk).Error)
}

func (r *trunkRepository) GetByID(ctx context.Context, id uint) (*models.Trunk, error) {
	var trunk models.Trunk
	err := r.db.WithContext(ctx).
		Preload("Branches", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&trunk, id).Error
	if err != nil {
		return nil, firstErr(err, "Trunk", id)
	}
	return &trunk, nil
}

func (r *trunkRepository) AddBranch(ctx context.Context, branch *models.Branch) error {
	return createErr(r.db.WithContext(ctx).Create(branch).Error)
}
