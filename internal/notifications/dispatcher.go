package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"sonance/internal/models"
	"sonance/internal/observability"
	"sonance/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Dispatcher moves committed notifications to push channels. It never reports
// delivery failures to the code that produced the notification.
type Dispatcher struct {
	store       repository.Store
	queue       Queue
	notifier    *Notifier
	deliverers  map[models.ChannelKind]Deliverer
	frontendURL string
	workers     int

	wg sync.WaitGroup
}

// NewDispatcher wires a dispatcher. notifier may be nil when realtime
// publishing is disabled.
func NewDispatcher(
	store repository.Store, queue Queue, notifier *Notifier, frontendURL string, workers int, deliverers ...Deliverer,
) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	byKind := make(map[models.ChannelKind]Deliverer, len(deliverers))
	for _, d := range deliverers {
		byKind[d.Kind()] = d
	}
	return &Dispatcher{
		store:       store,
		queue:       queue,
		notifier:    notifier,
		deliverers:  byKind,
		frontendURL: frontendURL,
		workers:     workers,
	}
}

// Enqueue schedules delivery of the given rows. Nil rows are skipped. Queue
// failures are logged and counted.
func (d *Dispatcher) Enqueue(ctx context.Context, notes ...*models.Notification) {
	for _, n := range notes {
		if n == nil || n.ID == 0 {
			continue
		}
		if err := d.queue.Enqueue(ctx, NewTask(n.ID)); err != nil {
			reason := "error"
			if errors.Is(err, ErrQueueFull) {
				reason = "full"
			}
			observability.PushQueueDrops.WithLabelValues(reason).Inc()
			slog.WarnContext(ctx, "push task not enqueued",
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.String("error", err.Error()))
		}
	}
}

// Start launches the worker goroutines. They exit when ctx is done; Wait
// blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.work(ctx)
		}()
	}
	slog.Info("push dispatcher started", slog.Int("workers", d.workers))
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		task, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			observability.PushQueueDrops.WithLabelValues("decode").Inc()
			slog.WarnContext(ctx, "push task dropped", slog.String("error", err.Error()))
			continue
		}
		d.Process(ctx, task)
	}
}

// Process delivers one task to the recipient's realtime channel and every
// registered push channel.
func (d *Dispatcher) Process(ctx context.Context, task Task) {
	span, ctx := observability.NewSpan(ctx, "notifications.deliver",
		attribute.String("task.id", task.ID),
		attribute.Int64("notification.id", int64(task.NotificationID)))
	defer span.End()

	n, err := d.store.Notifications().GetByID(ctx, task.NotificationID)
	if err != nil {
		// rows removed by a cancelled or rejected follow request land here
		if models.HasCode(err, models.CodeNotFound) {
			observability.PushQueueDrops.WithLabelValues("gone").Inc()
			return
		}
		span.SetError(err)
		observability.PushQueueDrops.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "load notification for push", slog.String("error", err.Error()))
		return
	}

	msg := d.render(ctx, n)

	if err := d.notifier.PublishUser(ctx, n.RecipientID, RealtimePayload{Notification: n, Message: msg}); err != nil {
		observability.PushDeliveries.WithLabelValues("realtime", "failure").Inc()
		slog.WarnContext(ctx, "realtime publish failed",
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()))
	}

	channels, err := d.store.PushChannels().ListForUser(ctx, n.RecipientID)
	if err != nil {
		span.SetError(err)
		slog.WarnContext(ctx, "list push channels", slog.String("error", err.Error()))
		return
	}
	for _, ch := range channels {
		deliverer, ok := d.deliverers[ch.Kind]
		if !ok {
			observability.PushDeliveries.WithLabelValues(string(ch.Kind), "unsupported").Inc()
			continue
		}
		if err := deliverer.Deliver(ctx, ch, msg); err != nil {
			observability.PushDeliveries.WithLabelValues(string(ch.Kind), "failure").Inc()
			slog.WarnContext(ctx, "push delivery failed",
				slog.String("channel", string(ch.Kind)),
				slog.Uint64("recipient_id", uint64(n.RecipientID)),
				slog.String("error", err.Error()))
			continue
		}
		observability.PushDeliveries.WithLabelValues(string(ch.Kind), "success").Inc()
	}
}

func (d *Dispatcher) render(ctx context.Context, n *models.Notification) Message {
	sender, err := d.store.Users().GetByID(ctx, n.SenderID)
	if err != nil {
		sender = nil
	}
	var post *models.Post
	if n.PostID != nil {
		if p, err := d.store.Posts().GetByID(ctx, *n.PostID); err == nil {
			post = p
		}
	}
	return Render(n, sender, post, d.frontendURL)
}
