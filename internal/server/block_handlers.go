package server

import (
	"github.com/gofiber/fiber/v2"
)

// BlockUser handles POST /api/blocks/:userId
func (s *Server) BlockUser(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.blockService.Block(ctx, userID, targetID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "User blocked"})
}

// UnblockUser handles DELETE /api/blocks/:userId
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.blockService.Unblock(ctx, userID, targetID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBlockStatus handles GET /api/blocks/:userId
func (s *Server) GetBlockStatus(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	blocked, err := s.blockService.IsBlocked(ctx, userID, targetID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"blocked": blocked})
}

// GetBlockedUsers handles GET /api/blocks
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	userID, ctx := actor(c)

	users, err := s.blockService.ListBlocked(ctx, userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}
