package server

import (
	"github.com/gofiber/fiber/v2"
)

// RequestFollow handles POST /api/follows/:userId
func (s *Server) RequestFollow(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	status, err := s.followService.RequestFollow(ctx, userID, targetID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// Unfollow handles DELETE /api/follows/:userId
func (s *Server) Unfollow(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(ctx, userID, targetID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowStatus handles GET /api/follows/status/:userId
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	status, err := s.followService.Status(ctx, userID, targetID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// GetPendingRequests handles GET /api/follows/requests
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	userID, ctx := actor(c)

	requests, err := s.followService.PendingRequests(ctx, userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(requests)
}

// GetSentRequests handles GET /api/follows/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	userID, ctx := actor(c)

	requests, err := s.followService.SentRequests(ctx, userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(requests)
}

// AcceptFollowRequest handles POST /api/follows/requests/:requestId/accept
func (s *Server) AcceptFollowRequest(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	requestID, err := parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.followService.AcceptRequest(ctx, requestID, userID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follow request accepted"})
}

// RejectFollowRequest handles POST /api/follows/requests/:requestId/reject
func (s *Server) RejectFollowRequest(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	requestID, err := parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.followService.RejectRequest(ctx, requestID, userID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follow request rejected"})
}

// CancelFollowRequest handles DELETE /api/follows/requests/:requestId
func (s *Server) CancelFollowRequest(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	requestID, err := parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.followService.CancelRequest(ctx, requestID, userID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/follows/:userId/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	_, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	users, err := s.followService.Followers(ctx, targetID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/follows/:userId/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	_, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	users, err := s.followService.Following(ctx, targetID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetFollowCounts handles GET /api/follows/:userId/counts
func (s *Server) GetFollowCounts(c *fiber.Ctx) error {
	_, ctx := actor(c)
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	followers, following, err := s.followService.Counts(ctx, targetID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers, "following": following})
}
