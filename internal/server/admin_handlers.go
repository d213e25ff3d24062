package server

import (
	"bloggazers/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleAdminStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, userCount, err := s.users.List(ctx, 1, 0)
	if err != nil {
		return respondError(c, err)
	}
	_, postCount, err := s.posts.ListAll(ctx, 1, 0)
	if err != nil {
		return respondError(c, err)
	}
	commentCount, err := s.comments.Count(ctx)
	if err != nil {
		return respondError(c, err)
	}
	_, messageCount, err := s.contacts.List(ctx, 1, 0)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":    userCount,
		"posts":    postCount,
		"comments": commentCount,
		"messages": messageCount,
	})
}

func (s *Server) handleAdminUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	users, total, err := s.users.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "total": total})
}

type setRoleRequest struct {
	Role models.UserRole `json:"role"`
}

func (s *Server) handleAdminSetRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req setRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.users.SetRole(c.UserContext(), id, req.Role); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleAdminPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	posts, total, err := s.posts.ListAll(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts, "total": total})
}

// handleAdminDeletePost removes any post regardless of author.
func (s *Server) handleAdminDeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.posts.Delete(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleAdminMessages(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	msgs, total, err := s.contacts.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs, "total": total})
}
