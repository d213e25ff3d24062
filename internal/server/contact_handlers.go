package server

import (
	"bloggazers/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleContact(c *fiber.Ctx) error {
	var input service.ContactInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := s.contacts.Submit(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
