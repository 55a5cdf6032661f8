package service

import (
	"context"
	"strings"
	"time"

	"sonance/internal/models"
	"sonance/internal/repository"
)

// StoryService provides short-lived stories.
type StoryService struct {
	store      repository.Store
	visibility *VisibilityResolver
	now        func() time.Time
}

// NewStoryService returns a new StoryService.
func NewStoryService(store repository.Store, visibility *VisibilityResolver) *StoryService {
	return &StoryService{store: store, visibility: visibility, now: time.Now}
}

// Create posts a story that expires after models.StoryLifetime.
func (s *StoryService) Create(ctx context.Context, userID uint, mediaURL, caption string) (*models.Story, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return nil, models.NewValidationError("media_url is required")
	}
	story := &models.Story{
		UserID:    userID,
		MediaURL:  mediaURL,
		Caption:   strings.TrimSpace(caption),
		ExpiresAt: s.now().Add(models.StoryLifetime),
	}
	if err := s.store.Stories().Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// ListForUser returns ownerID's live stories if viewerID may see them.
func (s *StoryService) ListForUser(ctx context.Context, viewerID, ownerID uint) ([]models.Story, error) {
	owner, err := s.store.Users().GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.visibility.requireView(ctx, viewerID, owner); err != nil {
		return nil, err
	}
	return s.store.Stories().ListActive(ctx, ownerID, viewerID, s.now())
}

// PurgeExpired deletes every expired story.
func (s *StoryService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.Stories().DeleteExpired(ctx, s.now())
}
