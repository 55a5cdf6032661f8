package service

import (
	"context"

	"sonance/internal/models"
)

// FollowChecker answers whether an accepted follow edge exists.
type FollowChecker interface {
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
}

// VisibilityResolver decides whether a viewer may see an owner's content.
type VisibilityResolver struct {
	follows FollowChecker
}

// NewVisibilityResolver returns a new VisibilityResolver.
func NewVisibilityResolver(follows FollowChecker) *VisibilityResolver {
	return &VisibilityResolver{follows: follows}
}

// CanView reports whether viewer may see owner's content. A nil viewer is an
// anonymous caller.
func (r *VisibilityResolver) CanView(ctx context.Context, viewer, owner *models.User) (bool, error) {
	switch {
	case owner.ProfilePublic:
		return true, nil
	case viewer == nil:
		return false, nil
	case viewer.ID == owner.ID:
		return true, nil
	}
	return r.follows.IsFollowing(ctx, viewer.ID, owner.ID)
}

// CanViewByID is CanView for callers holding only the viewer's id. Zero means
// anonymous.
func (r *VisibilityResolver) CanViewByID(ctx context.Context, viewerID uint, owner *models.User) (bool, error) {
	if viewerID == 0 {
		return r.CanView(ctx, nil, owner)
	}
	return r.CanView(ctx, &models.User{ID: viewerID}, owner)
}

// requireView returns an unauthorized error when viewerID may not see owner.
func (r *VisibilityResolver) requireView(ctx context.Context, viewerID uint, owner *models.User) error {
	ok, err := r.CanViewByID(ctx, viewerID, owner)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewUnauthorizedError("This account is private")
	}
	return nil
}
