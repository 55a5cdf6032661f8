package service

import (
	"context"

	"sonance/internal/models"
	"sonance/internal/repository"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	// DefaultSuggestionCount is the minimum number of suggestions before
	// falling back to popular accounts.
	DefaultSuggestionCount = 3
	popularBackfillSize    = 10
)

// SuggestionService proposes accounts to follow.
type SuggestionService struct {
	store repository.Store
}

// NewSuggestionService returns a new SuggestionService.
func NewSuggestionService(store repository.Store) *SuggestionService {
	return &SuggestionService{store: store}
}

// Suggest returns accounts followed by the accounts userID follows. When that
// yields fewer than minCount, the most-followed accounts fill the gap.
// Accounts userID already follows or has requested are never suggested.
func (s *SuggestionService) Suggest(ctx context.Context, userID uint, minCount int) ([]models.User, error) {
	if minCount <= 0 {
		minCount = DefaultSuggestionCount
	}

	following, err := s.store.Follows().FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	excluded := mapset.NewThreadUnsafeSet[uint](following...)
	excluded.Add(userID)

	candidates, err := s.store.Follows().SecondDegree(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(candidates))
	for _, id := range candidates {
		if !excluded.Contains(id) {
			ids = append(ids, id)
		}
	}

	users, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	suggested := mapset.NewThreadUnsafeSet[uint]()
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Banned {
			continue
		}
		suggested.Add(u.ID)
		out = append(out, u)
	}
	if len(out) >= minCount {
		return out, nil
	}

	popular, err := s.store.Users().MostFollowed(ctx, popularBackfillSize)
	if err != nil {
		return nil, err
	}
	for _, u := range popular {
		if len(out) >= minCount {
			break
		}
		if excluded.Contains(u.ID) || suggested.Contains(u.ID) {
			continue
		}
		suggested.Add(u.ID)
		out = append(out, u)
	}
	return out, nil
}
