package jobs

import (
	"context"
	"log/slog"
	"time"

	"sonance/internal/observability"
	"sonance/internal/repository"
)

// StoryPurger deletes stories past their expiry.
type StoryPurger struct {
	Stories repository.StoryRepository
	Now     func() time.Time
}

func (p *StoryPurger) Name() string { return "story_purge" }

func (p *StoryPurger) Run(ctx context.Context) error {
	n, err := p.Stories.DeleteExpired(ctx, now(p.Now))
	if err != nil {
		return err
	}
	record(ctx, p.Name(), n)
	return nil
}

// NotificationPurger deletes read notifications older than Retention. Unread
// rows and rows tied to a follow edge are kept.
type NotificationPurger struct {
	Notifications repository.NotificationRepository
	Retention     time.Duration
	Now           func() time.Time
}

func (p *NotificationPurger) Name() string { return "notification_purge" }

func (p *NotificationPurger) Run(ctx context.Context) error {
	n, err := p.Notifications.PurgeReadBefore(ctx, now(p.Now).Add(-p.Retention))
	if err != nil {
		return err
	}
	record(ctx, p.Name(), n)
	return nil
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}

func record(ctx context.Context, job string, n int64) {
	observability.MaintenancePurged.WithLabelValues(job).Add(float64(n))
	if n > 0 {
		slog.InfoContext(ctx, "Maintenance purge complete", slog.String("job", job), slog.Int64("rows", n))
	}
}
