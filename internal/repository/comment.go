package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	// ListVisible returns the post's comments, leaving out comments by
	// authors the post owner has blocked and hidden comments not authored by
	// the viewer.
	ListVisible(ctx context.Context, postID, ownerID, viewerID uint) ([]models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return createErr(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, firstErr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) ListVisible(ctx context.Context, postID, ownerID, viewerID uint) ([]models.Comment, error) {
	blockedByOwner := r.db.Model(&models.UserBlock{}).
		Select("blocked_id").
		Where("blocker_id = ?", ownerID)

	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Where("user_id NOT IN (?)", blockedByOwner).
		Where("hidden = ? OR user_id = ?", false, viewerID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, internal(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return internal(r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error)
}
