package server

import (
	"context"
	"time"

	"bloggazers/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleListPosts(c *fiber.Ctx) error {
	page, err := s.posts.List(c.UserContext(), service.ListInput{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Cursor:   c.Query("cursor"),
		Limit:    c.QueryInt("limit", service.DefaultPageSize),
	}, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (s *Server) handleSearchPosts(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "q is required"})
	}
	posts, err := s.posts.Search(c.UserContext(), q, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (s *Server) handleGetPost(c *fiber.Ctx) error {
	post, err := s.posts.GetBySlug(c.UserContext(), c.Params("slug"), viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (s *Server) handleCreatePost(c *fiber.Ctx) error {
	var input service.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	post, err := s.posts.Create(c.UserContext(), viewerID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *Server) handleUpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var input service.UpdatePostInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	post, err := s.posts.Update(c.UserContext(), principal(c), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (s *Server) handleDeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.posts.Delete(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleRegisterView accepts a view ping and returns immediately; counting
// happens off the request path.
func (s *Server) handleRegisterView(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	sessionID := c.Get("X-Session-ID")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.posts.RegisterView(ctx, sessionID, id)
	}()

	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) handleLikePost(c *fiber.Ctx) error {
	return s.postReaction(c, s.posts.Like)
}

func (s *Server) handleUnlikePost(c *fiber.Ctx) error {
	return s.postReaction(c, s.posts.Unlike)
}

func (s *Server) handleBookmarkPost(c *fiber.Ctx) error {
	return s.postReaction(c, s.posts.Bookmark)
}

func (s *Server) handleUnbookmarkPost(c *fiber.Ctx) error {
	return s.postReaction(c, s.posts.Unbookmark)
}

func (s *Server) postReaction(c *fiber.Ctx, apply func(context.Context, uint, uint) error) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := apply(c.UserContext(), viewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	counts, err := s.posts.CategoryCounts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": counts})
}

func (s *Server) handleTags(c *fiber.Ctx) error {
	counts, err := s.posts.TagCounts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tags": counts})
}
