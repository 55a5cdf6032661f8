package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"sonance/internal/models"

	"github.com/redis/go-redis/v9"
)

// Deliverer pushes a rendered message to one registered channel.
type Deliverer interface {
	Kind() models.ChannelKind
	Deliver(ctx context.Context, ch models.PushChannel, msg Message) error
}

// Notifier publishes notifications on per-user Redis channels so connected
// clients see them without polling.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// RealtimePayload is what subscribers on a user channel receive.
type RealtimePayload struct {
	Notification *models.Notification `json:"notification"`
	Message      Message              `json:"message"`
}

// PublishUser sends a notification payload to a user's channel. A Notifier
// without a client is a no-op.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload RealtimePayload) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), body).Err()
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage
// for each incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

const userChannelPrefix = "notifications:user:"

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// WebPushDeliverer hands web push messages to a transport. The VAPID wire
// protocol lives behind Send.
type WebPushDeliverer struct {
	Send func(ctx context.Context, endpoint, p256dh, auth string, payload []byte) error
}

func (WebPushDeliverer) Kind() models.ChannelKind { return models.ChannelWebPush }

func (d WebPushDeliverer) Deliver(ctx context.Context, ch models.PushChannel, msg Message) error {
	if ch.P256dh == "" || ch.Auth == "" {
		return fmt.Errorf("web push channel %d has no keys", ch.ID)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal web push payload: %w", err)
	}
	if d.Send == nil {
		slog.InfoContext(ctx, "web push",
			slog.Uint64("user_id", uint64(ch.UserID)),
			slog.String("title", msg.Title),
			slog.String("url", msg.URL))
		return nil
	}
	return d.Send(ctx, ch.Endpoint, ch.P256dh, ch.Auth, payload)
}

// APNsDeliverer hands alerts to an APNs transport keyed by device token.
type APNsDeliverer struct {
	Send func(ctx context.Context, deviceToken, title, body string) error
}

func (APNsDeliverer) Kind() models.ChannelKind { return models.ChannelAPNs }

func (d APNsDeliverer) Deliver(ctx context.Context, ch models.PushChannel, msg Message) error {
	if d.Send == nil {
		slog.InfoContext(ctx, "apns push",
			slog.Uint64("user_id", uint64(ch.UserID)),
			slog.String("title", msg.Title))
		return nil
	}
	return d.Send(ctx, ch.Endpoint, msg.Title, msg.Body)
}
