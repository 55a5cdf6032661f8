package server

import (
	"sonance/internal/models"
	"sonance/internal/service"

	"github.com/gofiber/fiber/v2"
)

type contentRequest struct {
	Kind   string `json:"kind"`
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
	Hide   bool   `json:"hide"`
}

func (r contentRequest) ref() (models.ContentRef, error) {
	kind, err := models.ParseContentKind(r.Kind)
	if err != nil {
		return models.ContentRef{}, err
	}
	if r.ID == 0 {
		return models.ContentRef{}, models.NewValidationError("id is required")
	}
	return models.ContentRef{Kind: kind, ID: r.ID}, nil
}

// FlagContent handles POST /api/flags
func (s *Server) FlagContent(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	ref, err := req.ref()
	if err != nil {
		return respond(c, err)
	}

	if err := s.flagService.Flag(ctx, userID, ref, req.Reason); err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Content flagged"})
}

// GetPendingFlags handles GET /api/flags/pending (moderators only)
func (s *Server) GetPendingFlags(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	page := parsePagination(c, defaultPageSize)

	flags, err := s.flagService.PendingFlags(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(flags)
}

// ReviewContent handles POST /api/flags/review
func (s *Server) ReviewContent(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	ref, err := req.ref()
	if err != nil {
		return respond(c, err)
	}

	if err := s.flagService.Review(ctx, userID, ref, req.Hide); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review recorded", "hidden": req.Hide})
}

// GetSuggestions handles GET /api/suggestions?count=
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	count := c.QueryInt("count", service.DefaultSuggestionCount)
	if count <= 0 || count > maxPaginationLimit {
		count = service.DefaultSuggestionCount
	}

	users, err := s.suggestionService.Suggest(ctx, userID, count)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}
