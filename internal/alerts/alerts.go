// Package alerts sends moderation alerts to staff.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"sonance/internal/models"
)

// Sender delivers one alert. Implementations wrap an email transport.
type Sender interface {
	SendAlert(ctx context.Context, subject, body, to string) error
}

// AutoHideAlert returns the subject and body sent when content crosses the
// flag threshold.
func AutoHideAlert(ref models.ContentRef) (subject, body string) {
	subject = fmt.Sprintf("Content Auto-Hidden for Review (%s)", ref.Kind.Title())
	body = fmt.Sprintf(
		"The following %s (ID: %d) has been flagged multiple times and was auto-hidden.\n\nPlease review it in the admin panel.",
		ref.Kind, ref.ID)
	return subject, body
}

// LogSender writes alerts to the structured log. It stands in for the email
// transport in development.
type LogSender struct{}

func (LogSender) SendAlert(ctx context.Context, subject, body, to string) error {
	slog.WarnContext(ctx, "moderation alert",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

// Alert is one captured alert.
type Alert struct {
	Subject string
	Body    string
	To      string
}

// Recorder keeps alerts in memory. Err, when set, is returned from every send.
type Recorder struct {
	Err error

	mu     sync.Mutex
	alerts []Alert
}

func (r *Recorder) SendAlert(_ context.Context, subject, body, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, Alert{Subject: subject, Body: body, To: to})
	return r.Err
}

// Alerts returns a copy of the captured alerts.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}
