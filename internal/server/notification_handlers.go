package server

import (
	"sonance/internal/models"

	"github.com/gofiber/fiber/v2"
)

type pushChannelRequest struct {
	Kind     models.ChannelKind `json:"kind"`
	Endpoint string             `json:"endpoint"`
	P256dh   string             `json:"p256dh"`
	Auth     string             `json:"auth"`
}

// GetNotifications handles GET /api/notifications?unread=true&limit=&offset=
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	page := parsePagination(c, defaultPageSize)

	rows, err := s.notificationService.List(ctx, userID, c.QueryBool("unread", false), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(rows)
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	userID, ctx := actor(c)

	count, err := s.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(ctx, id, userID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all.
// Follow requests stay unread until they are answered.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, ctx := actor(c)

	n, err := s.notificationService.MarkAllRead(ctx, userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// RegisterPushChannel handles POST /api/notifications/channels
func (s *Server) RegisterPushChannel(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req pushChannelRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ch, err := s.notificationService.RegisterChannel(ctx, userID, req.Kind, req.Endpoint, req.P256dh, req.Auth)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

// UnregisterPushChannel handles DELETE /api/notifications/channels
func (s *Server) UnregisterPushChannel(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req pushChannelRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.notificationService.UnregisterChannel(ctx, userID, req.Kind, req.Endpoint); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
