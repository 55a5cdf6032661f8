package service

import (
	"context"
	"errors"

	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/observability"
	"sonance/internal/repository"
)

// FollowService runs the follow-request state machine. Every edge mutation
// and the notification rows tied to it commit together.
type FollowService struct {
	store repository.Store
	notes *NotificationService
}

// NewFollowService returns a new FollowService.
func NewFollowService(store repository.Store, notes *NotificationService) *FollowService {
	return &FollowService{store: store, notes: notes}
}

// RequestFollow creates the follower -> target edge. Public targets are
// followed immediately; private targets get a pending request. A pending
// request from the same follower is replaced.
func (s *FollowService) RequestFollow(ctx context.Context, followerID, targetID uint) (models.FollowStatus, error) {
	if followerID == targetID {
		return models.FollowStatusNone, models.NewSelfFollowError()
	}

	span, ctx := observability.NewSpan(ctx, "follow.request",
		observability.IDAttr("follower.id", followerID),
		observability.IDAttr("target.id", targetID))
	defer span.End()

	target, err := s.store.Users().GetByID(ctx, targetID)
	if err != nil {
		span.SetError(err)
		return models.FollowStatusNone, err
	}

	var (
		status     models.FollowStatus
		emitted    *models.Notification
		transition string
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Follows().FindBetween(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Accepted {
				status = models.FollowStatusAccepted
				return nil
			}
			if err := s.clearEdge(ctx, tx, existing.ID); err != nil {
				return err
			}
			observability.FollowTransitions.WithLabelValues("replace").Inc()
		}

		edge := &models.Follow{FollowerID: followerID, FollowingID: targetID, Accepted: target.ProfilePublic}
		if err := tx.Follows().Create(ctx, edge); err != nil {
			return err
		}

		var ev notifications.Event = notifications.FollowRequest{EdgeID: edge.ID}
		transition = "request"
		if edge.Accepted {
			ev = notifications.Follow{EdgeID: edge.ID}
			transition = "follow"
		}
		emitted, err = s.notes.Emit(ctx, tx, targetID, followerID, ev)
		if err != nil {
			return err
		}
		status = edge.Status()
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// another request for the same pair committed first
		observability.FollowRaceRecoveries.Inc()
		existing, err := s.store.Follows().FindBetween(ctx, followerID, targetID)
		if err != nil {
			span.SetError(err)
			return models.FollowStatusNone, err
		}
		return existing.Status(), nil
	}
	if err != nil {
		span.SetError(err)
		return models.FollowStatusNone, err
	}

	if transition != "" {
		observability.FollowTransitions.WithLabelValues(transition).Inc()
	}
	s.notes.Dispatch(ctx, emitted)
	return status, nil
}

// AcceptRequest accepts a pending request addressed to actorID.
func (s *FollowService) AcceptRequest(ctx context.Context, edgeID, actorID uint) error {
	span, ctx := observability.NewSpan(ctx, "follow.accept", observability.IDAttr("actor.id", actorID))
	defer span.End()

	var emitted *models.Notification
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		edge, err := tx.Follows().GetByID(ctx, edgeID)
		if err != nil {
			return err
		}
		if edge.FollowingID != actorID {
			return models.NewUnauthorizedError("You can only accept follow requests sent to you")
		}
		if edge.Accepted {
			return nil
		}
		if err := s.notes.MarkReadForEdge(ctx, tx, edge.ID); err != nil {
			return err
		}
		if err := tx.Follows().Accept(ctx, edge.ID); err != nil {
			return err
		}
		emitted, err = s.notes.Emit(ctx, tx, edge.FollowerID, actorID, notifications.FollowAccepted{EdgeID: edge.ID})
		return err
	})
	if err != nil {
		span.SetError(err)
		return err
	}

	if emitted != nil {
		observability.FollowTransitions.WithLabelValues("accept").Inc()
	}
	s.notes.Dispatch(ctx, emitted)
	return nil
}

// RejectRequest removes a request addressed to actorID together with its
// notifications.
func (s *FollowService) RejectRequest(ctx context.Context, edgeID, actorID uint) error {
	return s.removeEdge(ctx, edgeID, "reject", func(edge *models.Follow) error {
		if edge.FollowingID != actorID {
			return models.NewUnauthorizedError("You can only reject follow requests sent to you")
		}
		return nil
	})
}

// CancelRequest withdraws a pending request sent by actorID.
func (s *FollowService) CancelRequest(ctx context.Context, edgeID, actorID uint) error {
	return s.removeEdge(ctx, edgeID, "cancel", func(edge *models.Follow) error {
		if edge.FollowerID != actorID {
			return models.NewUnauthorizedError("You can only cancel your own follow requests")
		}
		if edge.Accepted {
			return models.NewValidationError("Follow request was already accepted")
		}
		return nil
	})
}

func (s *FollowService) removeEdge(
	ctx context.Context, edgeID uint, transition string, authorize func(*models.Follow) error,
) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		edge, err := tx.Follows().GetByID(ctx, edgeID)
		if err != nil {
			return err
		}
		if err := authorize(edge); err != nil {
			return err
		}
		return s.clearEdge(ctx, tx, edge.ID)
	})
	if err != nil {
		return err
	}
	observability.FollowTransitions.WithLabelValues(transition).Inc()
	return nil
}

// Unfollow removes the follower -> target edge and its notifications. A
// missing edge is not an error.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	removed := false
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		edge, err := tx.Follows().FindBetween(ctx, followerID, targetID)
		if err != nil || edge == nil {
			return err
		}
		removed = true
		return s.clearEdge(ctx, tx, edge.ID)
	})
	if err != nil {
		return err
	}
	if removed {
		observability.FollowTransitions.WithLabelValues("unfollow").Inc()
	}
	return nil
}

// clearEdge marks the edge's notifications read, deletes them, then deletes
// the edge. The order keeps every notification pointing at a live edge.
func (s *FollowService) clearEdge(ctx context.Context, tx repository.Store, edgeID uint) error {
	if err := s.notes.MarkReadForEdge(ctx, tx, edgeID); err != nil {
		return err
	}
	if _, err := s.notes.DeleteForEdge(ctx, tx, edgeID); err != nil {
		return err
	}
	return tx.Follows().Delete(ctx, edgeID)
}

// IsFollowing reports whether viewerID follows targetID with an accepted edge.
func (s *FollowService) IsFollowing(ctx context.Context, viewerID, targetID uint) (bool, error) {
	return s.store.Follows().IsFollowing(ctx, viewerID, targetID)
}

// Status returns the state of the viewer -> target edge.
func (s *FollowService) Status(ctx context.Context, viewerID, targetID uint) (models.FollowStatus, error) {
	edge, err := s.store.Follows().FindBetween(ctx, viewerID, targetID)
	if err != nil {
		return models.FollowStatusNone, err
	}
	return edge.Status(), nil
}

// PendingRequests returns requests waiting on userID.
func (s *FollowService) PendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.store.Follows().ListPendingIncoming(ctx, userID)
}

// SentRequests returns userID's requests still awaiting an answer.
func (s *FollowService) SentRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.store.Follows().ListPendingOutgoing(ctx, userID)
}

// Followers returns accounts following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.store.Follows().ListFollowers(ctx, userID)
}

// Following returns accounts userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.store.Follows().ListFollowing(ctx, userID)
}

// Counts returns accepted follower and following totals.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	return s.store.Follows().Counts(ctx, userID)
}
