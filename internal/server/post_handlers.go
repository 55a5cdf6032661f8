package server

import (
	"sonance/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewerID, ctx := viewer(c)
	page := parsePagination(c, defaultPageSize)

	posts, err := s.postService.Feed(ctx, viewerID, page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/posts/user/:userId
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	viewerID, ctx := viewer(c)
	ownerID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)

	posts, err := s.postService.ListByUser(ctx, viewerID, ownerID, page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	viewerID, ctx := viewer(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(ctx, viewerID, postID)
	if err != nil {
		return respond(c, err)
	}
	likes, err := s.postService.LikeCount(ctx, post.ID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"post": post, "likes": likes})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Create(ctx, userID, req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(ctx, userID, postID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Like(ctx, userID, postID); err != nil {
		return respond(c, err)
	}
	return s.likeCount(c, postID)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Unlike(ctx, userID, postID); err != nil {
		return respond(c, err)
	}
	return s.likeCount(c, postID)
}

func (s *Server) likeCount(c *fiber.Ctx, postID uint) error {
	count, err := s.postService.LikeCount(c.UserContext(), postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"likes": count})
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	viewerID, ctx := viewer(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListForPost(ctx, viewerID, postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.Create(ctx, userID, postID, req.Content)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/posts/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.Update(ctx, userID, commentID, req.Content)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, ctx := actor(c)
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.Delete(ctx, userID, commentID); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
