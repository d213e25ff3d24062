package server

import (
	"bloggazers/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleListComments(c *fiber.Ctx) error {
	post, err := s.posts.GetBySlug(c.UserContext(), c.Params("slug"), 0)
	if err != nil {
		return respondError(c, err)
	}
	tree, err := s.comments.ListTree(c.UserContext(), post.ID, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": tree})
}

func (s *Server) handleCreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var input service.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	comment, err := s.comments.Create(c.UserContext(), viewerID(c), postID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	comment, err := s.comments.Update(c.UserContext(), viewerID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (s *Server) handleDeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.comments.Delete(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleLikeComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.comments.Like(c.UserContext(), viewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleUnlikeComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.comments.Unlike(c.UserContext(), viewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
