package server

import (
	"bloggazers/internal/guard"

	"github.com/gofiber/fiber/v2"
)

type routeRequest struct {
	Path string `json:"path"`
}

// handleRouteDecision is the navigation decision endpoint the client router
// consults before rendering a page. It evaluates the full gate chain against
// the caller's session snapshot.
func (s *Server) handleRouteDecision(c *fiber.Ctx) error {
	var req routeRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path is required"})
	}

	snap := guard.Snapshot{Principal: principal(c)}
	if resolving, ok := c.Locals("resolving").(bool); ok && resolving {
		snap.Resolving = true
	}

	decision := guard.Evaluate(snap, req.Path, guard.DefaultRoutes())
	return c.JSON(fiber.Map{
		"action":       decision.Action.String(),
		"target":       decision.Target,
		"principal_id": decision.PrincipalID,
		"role":         decision.Role,
	})
}
