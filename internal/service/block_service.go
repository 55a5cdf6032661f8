package service

import (
	"context"

	"sonance/internal/models"
	"sonance/internal/repository"
)

// BlockService manages the block registry. Blocks never touch follow edges.
type BlockService struct {
	store repository.Store
}

// NewBlockService returns a new BlockService.
func NewBlockService(store repository.Store) *BlockService {
	return &BlockService{store: store}
}

// Block records that blockerID blocks blockedID. Blocking twice is a no-op.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewSelfBlockError()
	}
	if _, err := s.store.Users().GetByID(ctx, blockedID); err != nil {
		return err
	}
	_, err := s.store.Blocks().Create(ctx, blockerID, blockedID)
	return err
}

// Unblock removes the block if present.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.store.Blocks().Delete(ctx, blockerID, blockedID)
}

// IsBlocked reports whether blockerID has blocked blockedID.
func (s *BlockService) IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return s.store.Blocks().Exists(ctx, blockerID, blockedID)
}

// ListBlocked returns the accounts blockerID has blocked, most recent first.
func (s *BlockService) ListBlocked(ctx context.Context, blockerID uint) ([]models.User, error) {
	blocks, err := s.store.Blocks().ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.BlockedID)
	}
	users, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]models.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
