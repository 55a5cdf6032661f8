package server

import (
	"sonance/internal/service"

	"github.com/gofiber/fiber/v2"
)

type storyRequest struct {
	MediaURL string `json:"media_url"`
	Caption  string `json:"caption"`
}

type trunkRequest struct {
	Name string `json:"name"`
}

// GetUserStories handles GET /api/stories/user/:userId
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	viewerID, ctx := viewer(c)
	ownerID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	stories, err := s.storyService.ListForUser(ctx, viewerID, ownerID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(stories)
}

// CreateStory handles POST /api/stories
func (s *Server) CreateStory(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req storyRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	story, err := s.storyService.Create(ctx, userID, req.MediaURL, req.Caption)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// GetTrunk handles GET /api/trunks/:id
func (s *Server) GetTrunk(c *fiber.Ctx) error {
	viewerID, ctx := viewer(c)
	trunkID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	trunk, err := s.trunkService.Get(ctx, viewerID, trunkID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(trunk)
}

// CreateTrunk handles POST /api/trunks
func (s *Server) CreateTrunk(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req trunkRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	trunk, err := s.trunkService.Create(ctx, userID, req.Name)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(trunk)
}

// AddBranch handles POST /api/trunks/:id/branches
func (s *Server) AddBranch(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	trunkID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.BranchInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	branch, err := s.trunkService.AddBranch(ctx, userID, trunkID, req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(branch)
}
