package alerts

import (
	"context"
	"errors"
	"testing"

	"sonance/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAutoHideAlert(t *testing.T) {
	subject, body := AutoHideAlert(models.ContentRef{Kind: models.ContentComment, ID: 12})
	assert.Equal(t, "Content Auto-Hidden for Review (Comment)", subject)
	assert.Equal(t,
		"The following comment (ID: 12) has been flagged multiple times and was auto-hidden.\n\nPlease review it in the admin panel.",
		body)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	assert.NoError(t, r.SendAlert(context.Background(), "s", "b", "mods@example.com"))

	r.Err = errors.New("smtp down")
	assert.Error(t, r.SendAlert(context.Background(), "s2", "b2", "mods@example.com"))

	got := r.Alerts()
	assert.Len(t, got, 2)
	assert.Equal(t, "mods@example.com", got[0].To)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.SendAlert(context.Background(), "s", "b", "to"))
}
