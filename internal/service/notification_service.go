package service

import (
	"context"
	"strings"

	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/observability"
	"sonance/internal/repository"
)

// Outbox receives committed notifications for push delivery.
type Outbox interface {
	Enqueue(ctx context.Context, notes ...*models.Notification)
}

// NotificationService owns the notification ledger.
type NotificationService struct {
	store  repository.Store
	outbox Outbox
}

// NewNotificationService returns a new NotificationService. A nil outbox
// disables push delivery.
func NewNotificationService(store repository.Store, outbox Outbox) *NotificationService {
	return &NotificationService{store: store, outbox: outbox}
}

// Emit persists the notification for ev through tx. It returns nil without
// writing when recipient and sender are the same account.
func (s *NotificationService) Emit(
	ctx context.Context, tx repository.Store, recipientID, senderID uint, ev notifications.Event,
) (*models.Notification, error) {
	n := notifications.Build(recipientID, senderID, ev)
	if n == nil {
		return nil, nil
	}
	if err := tx.Notifications().Create(ctx, n); err != nil {
		return nil, err
	}
	observability.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()
	return n, nil
}

// Dispatch hands committed rows to the outbox. Call it only after the
// transaction that emitted them has committed.
func (s *NotificationService) Dispatch(ctx context.Context, notes ...*models.Notification) {
	if s.outbox == nil {
		return
	}
	s.outbox.Enqueue(ctx, notes...)
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(
	ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int,
) ([]models.Notification, error) {
	return s.store.Notifications().ListForRecipient(ctx, recipientID, unreadOnly, limit, offset)
}

// UnreadCount returns how many unread rows the recipient has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, recipientID)
}

// MarkRead marks one of the recipient's notifications read. Follow requests
// stay unread until they are accepted or rejected.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) error {
	n, err := s.store.Notifications().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != recipientID {
		return models.NewUnauthorizedError("You can only mark your own notifications")
	}
	if n.Type == models.NotificationFollowRequest {
		return models.NewValidationError("Follow requests are cleared by accepting or rejecting them")
	}
	if n.Read {
		return nil
	}
	return s.store.Notifications().MarkRead(ctx, id)
}

// MarkAllRead marks every unread row read except follow requests.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.store.Notifications().MarkAllRead(ctx, recipientID, models.NotificationFollowRequest)
}

// MarkReadForEdge marks the rows tied to a follow edge read.
func (s *NotificationService) MarkReadForEdge(ctx context.Context, tx repository.Store, edgeID uint) error {
	return tx.Notifications().MarkReadForFollow(ctx, edgeID)
}

// DeleteForEdge removes the rows tied to a follow edge.
func (s *NotificationService) DeleteForEdge(ctx context.Context, tx repository.Store, edgeID uint) (int64, error) {
	return tx.Notifications().DeleteForFollow(ctx, edgeID)
}

// RegisterChannel stores a web push subscription or APNs device token.
func (s *NotificationService) RegisterChannel(
	ctx context.Context, userID uint, kind models.ChannelKind, endpoint, p256dh, auth string,
) (*models.PushChannel, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, models.NewValidationError("endpoint is required")
	}
	switch kind {
	case models.ChannelWebPush:
		if p256dh == "" || auth == "" {
			return nil, models.NewValidationError("web push subscriptions need p256dh and auth keys")
		}
	case models.ChannelAPNs:
	default:
		return nil, models.NewValidationError("unknown channel kind " + string(kind))
	}

	ch := &models.PushChannel{UserID: userID, Kind: kind, Endpoint: endpoint, P256dh: p256dh, Auth: auth}
	if err := s.store.PushChannels().Upsert(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// UnregisterChannel removes a channel. Removing an unknown channel is a no-op.
func (s *NotificationService) UnregisterChannel(
	ctx context.Context, userID uint, kind models.ChannelKind, endpoint string,
) error {
	return s.store.PushChannels().Delete(ctx, userID, kind, strings.TrimSpace(endpoint))
}
