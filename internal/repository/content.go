package repository

import (
	"context"

	"sonance/internal/models"

	"gorm.io/gorm"
)

// ContentState is the ownership and moderation state of one content item.
type ContentState struct {
	UserID    uint
	FlagCount int
	Hidden    bool
}

// ContentRepository reads and mutates the moderation columns shared by
// posts, comments and stories.
type ContentRepository interface {
	State(ctx context.Context, ref models.ContentRef) (*ContentState, error)
	// IncrementFlags adds one to flag_count and returns the new value. Call it
	// inside a transaction so the read observes the caller's own increment.
	IncrementFlags(ctx context.Context, ref models.ContentRef) (int, error)
	SetHidden(ctx context.Context, ref models.ContentRef, hidden bool) error
	ResetFlags(ctx context.Context, ref models.ContentRef) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content moderation repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func modelFor(kind models.ContentKind) (interface{}, error) {
	switch kind {
	case models.ContentPost:
		return &models.Post{}, nil
	case models.ContentComment:
		return &models.Comment{}, nil
	case models.ContentStory:
		return &models.Story{}, nil
	}
	_, err := models.ParseContentKind(string(kind))
	return nil, err
}

func (r *contentRepository) scoped(ctx context.Context, ref models.ContentRef) (*gorm.DB, error) {
	m, err := modelFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	return r.db.WithContext(ctx).Model(m).Where("id = ?", ref.ID), nil
}

func (r *contentRepository) State(ctx context.Context, ref models.ContentRef) (*ContentState, error) {
	q, err := r.scoped(ctx, ref)
	if err != nil {
		return nil, err
	}
	var state ContentState
	if err := q.Select("user_id", "flag_count", "hidden").Take(&state).Error; err != nil {
		return nil, firstErr(err, ref.Kind.Title(), ref.ID)
	}
	return &state, nil
}

func (r *contentRepository) IncrementFlags(ctx context.Context, ref models.ContentRef) (int, error) {
	q, err := r.scoped(ctx, ref)
	if err != nil {
		return 0, err
	}
	result := q.UpdateColumn("flag_count", gorm.Expr("flag_count + ?", 1))
	if result.Error != nil {
		return 0, internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, models.NewNotFoundError(ref.Kind.Title(), ref.ID)
	}

	state, err := r.State(ctx, ref)
	if err != nil {
		return 0, err
	}
	return state.FlagCount, nil
}

func (r *contentRepository) SetHidden(ctx context.Context, ref models.ContentRef, hidden bool) error {
	q, err := r.scoped(ctx, ref)
	if err != nil {
		return err
	}
	return internal(q.UpdateColumn("hidden", hidden).Error)
}

func (r *contentRepository) ResetFlags(ctx context.Context, ref models.ContentRef) error {
	q, err := r.scoped(ctx, ref)
	if err != nil {
		return err
	}
	return internal(q.UpdateColumn("flag_count", 0).Error)
}
