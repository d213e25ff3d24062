package server

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleAuthURL(c *fiber.Ctx) error {
	url, err := s.auth.BeginAuth(c.UserContext(), c.Params("provider"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

func (s *Server) handleAuthCallback(c *fiber.Ctx) error {
	user, tokens, err := s.auth.HandleCallback(
		c.UserContext(),
		c.Params("provider"),
		c.Query("state"),
		c.Query("code"),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refresh_token is required"})
	}

	tokens, err := s.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tokens)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	var req refreshRequest
	_ = c.BodyParser(&req)

	if err := s.auth.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "logged out"})
}
