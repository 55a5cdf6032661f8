package repository

import (
	"context"
	"errors"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow-edge data operations
type FollowRepository interface {
	// Create inserts a new edge. It returns ErrDuplicate when the ordered pair
	// already has an edge.
	Create(ctx context.Context, follow *models.Follow) error
	GetByID(ctx context.Context, id uint) (*models.Follow, error)
	// FindBetween returns the edge follower -> following, or nil when none exists.
	FindBetween(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	Accept(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint) ([]models.User, error)
	ListFollowing(ctx context.Context, userID uint) ([]models.User, error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]models.Follow, error)
	ListPendingOutgoing(ctx context.Context, userID uint) ([]models.Follow, error)
	Counts(ctx context.Context, userID uint) (followers, following int64, err error)
	// FollowingIDs returns every account userID has an edge to, pending included.
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	// SecondDegree returns accounts followed by accounts userID follows,
	// considering accepted edges only.
	SecondDegree(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	return createErr(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *followRepository) GetByID(ctx context.Context, id uint) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).First(&follow, id).Error; err != nil {
		return nil, firstErr(err, "Follow", id)
	}
	return &follow, nil
}

func (r *followRepository) FindBetween(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Take(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, internal(err)
	}
	return &follow, nil
}

func (r *followRepository) Accept(ctx context.Context, id uint) error {
	return internal(r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("id = ?", id).
		Update("accepted", true).Error)
}

func (r *followRepository) Delete(ctx context.Context, id uint) error {
	return internal(r.db.WithContext(ctx).Delete(&models.Follow{}, id).Error)
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND accepted = ?", followerID, followingID, true).
		Count(&count).Error
	if err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN follows f ON f.follower_id = users.id").
		Where("f.following_id = ? AND f.accepted = ?", userID, true).
		Order("f.followed_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, internal(err)
	}
	return users, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN follows f ON f.following_id = users.id").
		Where("f.follower_id = ? AND f.accepted = ?", userID, true).
		Order("f.followed_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, internal(err)
	}
	return users, nil
}

func (r *followRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]models.Follow, error) {
	return r.listPending(ctx, "following_id = ?", userID)
}

func (r *followRepository) ListPendingOutgoing(ctx context.Context, userID uint) ([]models.Follow, error) {
	return r.listPending(ctx, "follower_id = ?", userID)
}

func (r *followRepository) listPending(ctx context.Context, cond string, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where(cond, userID).
		Where("accepted = ?", false).
		Order("followed_at DESC").
		Find(&follows).Error
	if err != nil {
		return nil, internal(err)
	}
	return follows, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ? AND accepted = ?", userID, true).
		Count(&followers).Error; err != nil {
		return 0, 0, internal(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND accepted = ?", userID, true).
		Count(&following).Error; err != nil {
		return 0, 0, internal(err)
	}
	return followers, following, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, internal(err)
	}
	return ids, nil
}

func (r *followRepository) SecondDegree(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT f2.following_id
		FROM follows f1
		JOIN follows f2 ON f2.follower_id = f1.following_id
		WHERE f1.follower_id = ? AND f1.accepted = ? AND f2.accepted = ?
		ORDER BY f2.following_id`, userID, true, true).
		Scan(&ids).Error
	if err != nil {
		return nil, internal(err)
	}
	return ids, nil
}
