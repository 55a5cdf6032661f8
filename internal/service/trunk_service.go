package service

import (
	"context"
	"errors"
	"strings"

	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/repository"
)

// BranchInput is the track a caller adds to a trunk.
type BranchInput struct {
	SongTitle   string `json:"song_title"`
	SongArtist  string `json:"song_artist"`
	AlbumArtURL string `json:"album_art_url"`
}

// TrunkService manages trunks and the branches others add to them.
type TrunkService struct {
	store      repository.Store
	notes      *NotificationService
	visibility *VisibilityResolver
}

// NewTrunkService returns a new TrunkService.
func NewTrunkService(store repository.Store, notes *NotificationService, visibility *VisibilityResolver) *TrunkService {
	return &TrunkService{store: store, notes: notes, visibility: visibility}
}

// Create starts a trunk. Names are unique per owner.
func (s *TrunkService) Create(ctx context.Context, ownerID uint, name string) (*models.Trunk, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Trunk name is required")
	}
	trunk := &models.Trunk{OwnerID: ownerID, Name: name}
	if err := s.store.Trunks().Create(ctx, trunk); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewValidationError("You already have a trunk named " + name)
		}
		return nil, err
	}
	return trunk, nil
}

// Get returns the trunk with its branches if viewerID may see the owner.
func (s *TrunkService) Get(ctx context.Context, viewerID, trunkID uint) (*models.Trunk, error) {
	trunk, err := s.store.Trunks().GetByID(ctx, trunkID)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.Users().GetByID(ctx, trunk.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.visibility.requireView(ctx, viewerID, owner); err != nil {
		return nil, err
	}
	return trunk, nil
}

// AddBranch adds userID's track to a trunk they can see and notifies the
// trunk's owner.
func (s *TrunkService) AddBranch(ctx context.Context, userID, trunkID uint, in BranchInput) (*models.Branch, error) {
	in.SongTitle = strings.TrimSpace(in.SongTitle)
	if in.SongTitle == "" {
		return nil, models.NewValidationError("song_title is required")
	}
	trunk, err := s.Get(ctx, userID, trunkID)
	if err != nil {
		return nil, err
	}

	branch := &models.Branch{
		TrunkID:     trunk.ID,
		UserID:      userID,
		SongTitle:   in.SongTitle,
		SongArtist:  strings.TrimSpace(in.SongArtist),
		AlbumArtURL: in.AlbumArtURL,
	}
	var emitted *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Trunks().AddBranch(ctx, branch); err != nil {
			return err
		}
		emitted, err = s.notes.Emit(ctx, tx, trunk.OwnerID, userID, notifications.BranchAdded{
			TrunkName:   trunk.Name,
			SongTitle:   branch.SongTitle,
			SongArtist:  branch.SongArtist,
			AlbumArtURL: branch.AlbumArtURL,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notes.Dispatch(ctx, emitted)
	return branch, nil
}
