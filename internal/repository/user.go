package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for account data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	SetProfilePublic(ctx context.Context, id uint, public bool) error
	SetBanned(ctx context.Context, id uint, banned bool) error
	// MostFollowed returns non-banned accounts ordered by accepted follower count.
	MostFollowed(ctx context.Context, limit int) ([]models.User, error)
	// DeleteCascade removes the account with its content, edges and notifications.
	DeleteCascade(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return createErr(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, firstErr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, internal(err)
	}
	return users, nil
}

func (r *userRepository) SetProfilePublic(ctx context.Context, id uint, public bool) error {
	return r.updateFlag(ctx, id, "profile_public", public)
}

func (r *userRepository) SetBanned(ctx context.Context, id uint, banned bool) error {
	return r.updateFlag(ctx, id, "banned", banned)
}

func (r *userRepository) updateFlag(ctx context.Context, id uint, column string, value bool) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) MostFollowed(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN follows f ON f.following_id = users.id AND f.accepted = ?", true).
		Where("users.banned = ?", false).
		Group("users.id").
		Order("COUNT(f.id) DESC, users.id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, internal(err)
	}
	return users, nil
}

func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)

	postIDs := db.Model(&models.Post{}).Unscoped().Select("id").Where("user_id = ?", id)
	trunkIDs := db.Model(&models.Trunk{}).Select("id").Where("owner_id = ?", id)

	steps := []*gorm.DB{
		db.Where("recipient_id = ? OR sender_id = ?", id, id).Delete(&models.Notification{}),
		db.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.Follow{}),
		db.Where("blocker_id = ? OR blocked_id = ?", id, id).Delete(&models.UserBlock{}),
		db.Where("reporter_id = ? OR reported_user_id = ?", id, id).Delete(&models.Flag{}),
		db.Where("user_id = ? OR post_id IN (?)", id, postIDs).Delete(&models.Like{}),
		db.Unscoped().Where("user_id = ? OR post_id IN (?)", id, postIDs).Delete(&models.Comment{}),
		db.Where("trunk_id IN (?)", trunkIDs).Delete(&models.Branch{}),
		db.Where("owner_id = ?", id).Delete(&models.Trunk{}),
		db.Unscoped().Where("user_id = ?", id).Delete(&models.Post{}),
		db.Where("user_id = ?", id).Delete(&models.Story{}),
		db.Where("user_id = ?", id).Delete(&models.PushChannel{}),
	}
	for _, step := range steps {
		if step.Error != nil {
			return internal(step.Error)
		}
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
