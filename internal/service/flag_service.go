package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"sonance/internal/alerts"
	"sonance/internal/models"
	"sonance/internal/observability"
	"sonance/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FlagService counts content reports and hides content that reaches
// models.FlagThreshold.
type FlagService struct {
	store   repository.Store
	alerts  alerts.Sender
	alertTo string
}

// NewFlagService returns a new FlagService. Threshold alerts go to alertTo.
func NewFlagService(store repository.Store, sender alerts.Sender, alertTo string) *FlagService {
	return &FlagService{store: store, alerts: sender, alertTo: alertTo}
}

// Flag records reporterID's report of ref. The first report that takes the
// count to the threshold hides the content and sends one alert.
func (s *FlagService) Flag(ctx context.Context, reporterID uint, ref models.ContentRef, reason string) error {
	span, ctx := observability.NewSpan(ctx, "flag.record",
		observability.IDAttr("reporter.id", reporterID),
		attribute.String("content.kind", string(ref.Kind)),
		attribute.Int64("content.id", int64(ref.ID)))
	defer span.End()

	crossed := false
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		state, err := tx.Content().State(ctx, ref)
		if err != nil {
			return err
		}

		flag := &models.Flag{
			ReporterID:     reporterID,
			ContentKind:    ref.Kind,
			ContentID:      ref.ID,
			ReportedUserID: state.UserID,
			Reason:         strings.TrimSpace(reason),
		}
		if err := tx.Flags().Create(ctx, flag); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.NewDuplicateFlagError(ref)
			}
			return err
		}

		count, err := tx.Content().IncrementFlags(ctx, ref)
		if err != nil {
			return err
		}
		if count-1 < models.FlagThreshold && count >= models.FlagThreshold {
			crossed = true
			return tx.Content().SetHidden(ctx, ref, true)
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return err
	}

	observability.FlagsRecorded.WithLabelValues(string(ref.Kind)).Inc()
	if crossed {
		observability.AutoHides.WithLabelValues(string(ref.Kind)).Inc()
		s.sendAlert(ctx, ref)
	}
	return nil
}

func (s *FlagService) sendAlert(ctx context.Context, ref models.ContentRef) {
	if s.alerts == nil {
		return
	}
	subject, body := alerts.AutoHideAlert(ref)
	if err := s.alerts.SendAlert(ctx, subject, body, s.alertTo); err != nil {
		observability.AlertFailures.Inc()
		slog.WarnContext(ctx, "moderation alert failed",
			slog.String("kind", string(ref.Kind)),
			slog.Uint64("content_id", uint64(ref.ID)),
			slog.String("error", err.Error()))
	}
}

// Review settles the flags on ref. Only moderators and the content owner may
// review. Unhiding clears the flag count.
func (s *FlagService) Review(ctx context.Context, actorID uint, ref models.ContentRef, hide bool) error {
	state, err := s.store.Content().State(ctx, ref)
	if err != nil {
		return err
	}
	actor, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsModerator && actor.ID != state.UserID {
		return models.NewUnauthorizedError("Only moderators or the owner can review flagged content")
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Content().SetHidden(ctx, ref, hide); err != nil {
			return err
		}
		if !hide {
			if err := tx.Content().ResetFlags(ctx, ref); err != nil {
				return err
			}
		}
		_, err := tx.Flags().MarkReviewed(ctx, ref)
		return err
	})
}

// PendingFlags lists flags no one has reviewed yet, oldest first.
func (s *FlagService) PendingFlags(ctx context.Context, actorID uint, limit, offset int) ([]models.Flag, error) {
	actor, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsModerator {
		return nil, models.NewUnauthorizedError("Moderator access required")
	}
	return s.store.Flags().ListUnreviewed(ctx, limit, offset)
}
