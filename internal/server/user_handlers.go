package server

import (
	"bloggazers/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleGetMe(c *fiber.Ctx) error {
	return c.JSON(principal(c))
}

func (s *Server) handleUpdateMe(c *fiber.Ctx) error {
	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := s.users.UpdateProfile(c.UserContext(), viewerID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

type registrationRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleCompleteRegistration(c *fiber.Ctx) error {
	var req registrationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := s.users.CompleteRegistration(c.UserContext(), viewerID(c), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (s *Server) handleMyBookmarks(c *fiber.Ctx) error {
	posts, err := s.posts.Bookmarks(c.UserContext(), viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (s *Server) handleGetAuthor(c *fiber.Ctx) error {
	user, err := s.users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (s *Server) handleAuthorPosts(c *fiber.Ctx) error {
	user, err := s.users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	limit, offset := parsePagination(c)
	posts, err := s.posts.ListByAuthor(c.UserContext(), user.ID, limit, offset, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
