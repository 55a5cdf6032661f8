package service

import (
	"context"
	"strings"

	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/repository"
)

// PostInput carries the fields a caller may set on a new post.
type PostInput struct {
	Caption        string `json:"caption"`
	SongTitle      string `json:"song_title"`
	SongArtist     string `json:"song_artist"`
	AlbumArtURL    string `json:"album_art_url"`
	CustomImageURL string `json:"custom_image_url"`
}

// PostService provides post and like operations gated by visibility.
type PostService struct {
	store      repository.Store
	notes      *NotificationService
	visibility *VisibilityResolver
}

// NewPostService returns a new PostService.
func NewPostService(store repository.Store, notes *NotificationService, visibility *VisibilityResolver) *PostService {
	return &PostService{store: store, notes: notes, visibility: visibility}
}

// Create publishes a post by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	in.SongTitle = strings.TrimSpace(in.SongTitle)
	if in.SongTitle == "" {
		return nil, models.NewValidationError("song_title is required")
	}
	post := &models.Post{
		UserID:         authorID,
		Caption:        strings.TrimSpace(in.Caption),
		SongTitle:      in.SongTitle,
		SongArtist:     strings.TrimSpace(in.SongArtist),
		AlbumArtURL:    in.AlbumArtURL,
		CustomImageURL: in.CustomImageURL,
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	return s.store.Posts().GetByID(ctx, post.ID)
}

// Get returns the post if viewerID may see it. Hidden posts read as missing to
// everyone but their author.
func (s *PostService) Get(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Hidden && post.UserID != viewerID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err := s.visibility.requireView(ctx, viewerID, &post.User); err != nil {
		return nil, err
	}
	return post, nil
}

// Feed returns posts viewerID may see, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	return s.store.Posts().Feed(ctx, viewerID, limit, offset)
}

// ListByUser returns ownerID's posts if viewerID may see them.
func (s *PostService) ListByUser(ctx context.Context, viewerID, ownerID uint, limit, offset int) ([]models.Post, error) {
	owner, err := s.store.Users().GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.visibility.requireView(ctx, viewerID, owner); err != nil {
		return nil, err
	}
	return s.store.Posts().ListByUser(ctx, ownerID, viewerID, limit, offset)
}

// Like records userID's like and notifies the author the first time.
func (s *PostService) Like(ctx context.Context, userID, postID uint) error {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return err
	}

	var emitted *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		created, err := tx.Posts().Like(ctx, userID, post.ID)
		if err != nil || !created {
			return err
		}
		emitted, err = s.notes.Emit(ctx, tx, post.UserID, userID, notifications.Like{PostID: post.ID})
		return err
	})
	if err != nil {
		return err
	}
	s.notes.Dispatch(ctx, emitted)
	return nil
}

// Unlike removes userID's like if present.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) error {
	return s.store.Posts().Unlike(ctx, userID, postID)
}

// LikeCount returns the number of likes on a post.
func (s *PostService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return s.store.Posts().LikeCount(ctx, postID)
}

// Delete removes a post. Only the author or a moderator may delete it.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := requireOwnerOrModerator(ctx, s.store, actorID, post.UserID); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.Posts().Delete(ctx, post.ID)
	})
}

func requireOwnerOrModerator(ctx context.Context, store repository.Store, actorID uint, ownerIDs ...uint) error {
	for _, id := range ownerIDs {
		if id == actorID {
			return nil
		}
	}
	actor, err := store.Users().GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsModerator {
		return models.NewUnauthorizedError("You are not allowed to modify this content")
	}
	return nil
}
