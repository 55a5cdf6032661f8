package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sonance/internal/middleware"
	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRealtime(t *testing.T, client *notifications.Client) notifications.RealtimePayload {
	t.Helper()

	select {
	case msg, ok := <-client.Send:
		require.True(t, ok, "client closed before a message arrived")
		var payload notifications.RealtimePayload
		require.NoError(t, json.Unmarshal(msg, &payload))
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("expected websocket message")
		return notifications.RealtimePayload{}
	}
}

func TestNotificationSocket_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice", true)

	req := httptest.NewRequest(http.MethodGet, "/api/ws/notifications?token="+token(t, alice.ID), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/ws/notifications", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotificationSocket_ReceivesDispatchedNotifications(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	cfg := testConfig()
	middleware.InitMiddleware(cfg)
	db := testutil.OpenTestDB(t)
	srv, err := NewServerWithDeps(cfg, db, rdb, nil)
	require.NoError(t, err)
	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	env := &testEnv{db: db, srv: srv, app: app}

	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", true)

	aliceSocket, err := srv.hub.Register(alice.ID)
	require.NoError(t, err)
	bobSocket, err := srv.hub.Register(bob.ID)
	require.NoError(t, err)

	require.NoError(t, srv.StartBackground())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	status, _ := env.call(t, http.MethodPost, fmt.Sprintf("/api/follows/%d", alice.ID), bob.ID, nil)
	require.Equal(t, http.StatusOK, status)

	got := readRealtime(t, aliceSocket)
	require.NotNil(t, got.Notification)
	assert.Equal(t, alice.ID, got.Notification.RecipientID)
	assert.Equal(t, bob.ID, got.Notification.SenderID)
	assert.Equal(t, models.NotificationFollowRequest, got.Notification.Type)
	assert.NotEmpty(t, got.Message.Title)

	select {
	case msg := <-bobSocket.Send:
		t.Fatalf("expected no websocket message, received: %s", string(msg))
	default:
	}
}
