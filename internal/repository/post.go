package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// ListByUser returns the owner's posts. Hidden posts are included only
	// when viewerID is the owner.
	ListByUser(ctx context.Context, ownerID, viewerID uint, limit, offset int) ([]models.Post, error)
	// Feed returns posts by public accounts, by the viewer and by accounts the
	// viewer follows with an accepted edge. A zero viewerID sees public posts only.
	Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
	// Like records the like if absent and reports whether a row was written.
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) error
	LikeCount(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return createErr(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, firstErr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, ownerID, viewerID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", ownerID).
		Where("hidden = ? OR user_id = ?", false, viewerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, internal(err)
	}
	return posts, nil
}

func (r *postRepository) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	followed := r.db.Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ? AND accepted = ?", viewerID, true)

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = posts.user_id").
		Where("users.banned = ?", false).
		Where("users.profile_public = ? OR posts.user_id = ? OR posts.user_id IN (?)", true, viewerID, followed).
		Where("posts.hidden = ? OR posts.user_id = ?", false, viewerID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, internal(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return internal(err)
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return internal(err)
	}
	return internal(db.Delete(&models.Post{}, id).Error)
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if result.Error != nil {
		return false, internal(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	return internal(r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error)
}

func (r *postRepository) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, internal(err)
	}
	return count, nil
}
