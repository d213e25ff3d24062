package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"bloggazers/internal/models"
	"bloggazers/internal/session"

	"github.com/gofiber/fiber/v2"
)

// resolveTimeout bounds identity resolution per request. A miss answers 503
// rather than 401 so clients retry instead of dropping their session.
const resolveTimeout = 2 * time.Second

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (s *Server) resolvePrincipal(c *fiber.Ctx, token string) (*models.User, error) {
	userID, err := s.auth.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), resolveTimeout)
	defer cancel()
	return s.sessions.Resolve(ctx, userID)
}

// AuthRequired authenticates the bearer token and loads the principal into
// locals. Resolution timeouts answer 503 with Retry-After; everything else
// terminal 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error:      "Authentication required",
				Code:       "UNAUTHORIZED",
				RedirectTo: "/login",
			})
		}

		principal, err := s.resolvePrincipal(c, token)
		if err != nil {
			if errors.Is(err, session.ErrResolutionTimeout) {
				c.Set(fiber.HeaderRetryAfter, "1")
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Identity resolution in progress",
					Code:  "IDENTITY_RESOLVING",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error:      "Invalid or expired session",
				Code:       "UNAUTHORIZED",
				RedirectTo: "/login",
			})
		}

		c.Locals("userID", principal.ID)
		c.Locals("principal", principal)
		return c.Next()
	}
}

// OptionalAuth loads the principal when a valid bearer token is present and
// continues anonymously otherwise. A resolution timeout is recorded in locals
// so the route-decision handler can answer Loading.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}

		principal, err := s.resolvePrincipal(c, token)
		if err != nil {
			if errors.Is(err, session.ErrResolutionTimeout) {
				c.Locals("resolving", true)
			}
			return c.Next()
		}

		c.Locals("userID", principal.ID)
		c.Locals("principal", principal)
		return c.Next()
	}
}

// RegistrationComplete bounces pending principals to finish-registration.
func (s *Server) RegistrationComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal(c)
		if p != nil && p.Status == models.StatusPending {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{
				Error:      "Registration is not complete",
				Code:       "REGISTRATION_INCOMPLETE",
				RedirectTo: "/finish-profile",
			})
		}
		return c.Next()
	}
}

// RegistrationPending is the mirror gate: the finish-registration operation
// is only open to pending principals.
func (s *Server) RegistrationPending() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal(c)
		if p != nil && p.Status == models.StatusActive {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
				Error:      "Registration is already complete",
				Code:       "ALREADY_REGISTERED",
				RedirectTo: "/profile",
			})
		}
		return c.Next()
	}
}

// AdminRequired denies non-admins in place, carrying the principal's id and
// role for the diagnostic view. It never redirects.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal(c)
		if p == nil || !p.IsAdmin() {
			resp := models.ErrorResponse{
				Error: "Admin access required",
				Code:  "ACCESS_DENIED",
			}
			if p != nil {
				resp.Details = "principal " + itoa(p.ID) + " has role " + string(p.Role) + ", required admin"
			}
			return c.Status(fiber.StatusForbidden).JSON(resp)
		}
		return c.Next()
	}
}
