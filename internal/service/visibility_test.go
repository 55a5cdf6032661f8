package service

import (
	"context"
	"errors"
	"testing"

	"sonance/internal/models"
)

type followCheckerStub struct {
	isFollowingFn func(ctx context.Context, followerID, followingID uint) (bool, error)
}

func (s followCheckerStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}

func TestVisibilityResolverCanView(t *testing.T) {
	public := &models.User{ID: 1, ProfilePublic: true}
	private := &models.User{ID: 2}
	follower := &models.User{ID: 3}
	stranger := &models.User{ID: 4}

	checker := followCheckerStub{isFollowingFn: func(_ context.Context, followerID, followingID uint) (bool, error) {
		return followerID == follower.ID && followingID == private.ID, nil
	}}
	r := NewVisibilityResolver(checker)

	tests := []struct {
		name   string
		viewer *models.User
		owner  *models.User
		want   bool
	}{
		{"public owner, anonymous viewer", nil, public, true},
		{"private owner, anonymous viewer", nil, private, false},
		{"private owner views self", private, private, true},
		{"accepted follower", follower, private, true},
		{"stranger", stranger, private, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.CanView(context.Background(), tt.viewer, tt.owner)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibilityResolverPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	r := NewVisibilityResolver(followCheckerStub{isFollowingFn: func(context.Context, uint, uint) (bool, error) {
		return false, boom
	}})

	if _, err := r.CanView(context.Background(), &models.User{ID: 1}, &models.User{ID: 2}); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	err := r.requireView(context.Background(), 0, &models.User{ID: 2})
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeUnauthorized {
		t.Fatalf("expected unauthorized app error, got %#v", err)
	}
}
