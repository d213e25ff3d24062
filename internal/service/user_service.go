package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"bloggazers/internal/middleware"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"
	"bloggazers/internal/session"

	"github.com/rs/xid"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// UserService manages principal profiles and the registration flow.
type UserService struct {
	users    repository.UserRepository
	sessions *session.Manager
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, sessions *session.Manager) *UserService {
	return &UserService{users: users, sessions: sessions}
}

// UpdateProfileInput carries the editable profile fields. Nil slices leave
// the corresponding résumé section untouched.
type UpdateProfileInput struct {
	FullName   string                 `json:"full_name"`
	Bio        string                 `json:"bio"`
	AvatarURL  string                 `json:"avatar_url"`
	Phone      string                 `json:"phone"`
	Profession string                 `json:"profession"`
	Socials    *models.SocialLinks    `json:"socials"`
	Education  []models.Education     `json:"education"`
	Experience []models.Experience    `json:"experience"`
	Certs      []models.Certification `json:"certifications"`
	Skills     []models.Skill         `json:"skills"`
}

// UpdateProfile applies the edit and broadcasts the change so every open
// session observes it.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewNotFoundError("User", userID)
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	user.Bio = input.Bio
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}
	user.Phone = input.Phone
	user.Profession = input.Profession
	if input.Socials != nil {
		user.Socials = *input.Socials
	}

	if input.Education != nil {
		for i := range input.Education {
			if input.Education[i].ID == "" {
				input.Education[i].ID = xid.New().String()
			}
		}
		user.Education = input.Education
	}
	if input.Experience != nil {
		for i := range input.Experience {
			if input.Experience[i].ID == "" {
				input.Experience[i].ID = xid.New().String()
			}
		}
		user.Experience = input.Experience
	}
	if input.Certs != nil {
		for i := range input.Certs {
			if input.Certs[i].ID == "" {
				input.Certs[i].ID = xid.New().String()
			}
		}
		user.Certifications = input.Certs
	}
	if input.Skills != nil {
		for i := range input.Skills {
			if input.Skills[i].ID == "" {
				input.Skills[i].ID = xid.New().String()
			}
		}
		user.Skills = input.Skills
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	s.sessions.PublishUpdate(ctx, user.ID)
	return user, nil
}

// CompleteRegistration assigns the one-time username and activates the
// principal. Only a pending principal can pass through; the transition is
// irreversible.
func (s *UserService) CompleteRegistration(ctx context.Context, userID uint, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < 3 {
		return nil, models.NewValidationError("Username must be at least 3 characters")
	}
	if len(username) > 32 {
		return nil, models.NewValidationError("Username must be at most 32 characters")
	}
	if !usernamePattern.MatchString(username) {
		return nil, models.NewValidationError("Username may contain only letters, digits, and underscores")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewNotFoundError("User", userID)
	}
	if user.Status != models.StatusPending {
		return nil, models.NewConflictError("Registration is already complete")
	}

	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if taken {
		return nil, models.NewConflictError("Username is already taken")
	}

	user.Username = username
	user.Status = models.StatusActive
	if err := s.users.Update(ctx, user); err != nil {
		// The unique index catches the race the pre-check missed.
		return nil, models.NewConflictError("Username is already taken")
	}

	s.sessions.PublishUpdate(ctx, user.ID)
	middleware.Logger.InfoContext(ctx, "registration completed",
		slog.Any("user_id", user.ID), slog.String("username", username))
	return user, nil
}

// GetByUsername returns the public view of a principal's profile.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user.Public(), nil
}

// SetRole changes a principal's role and invalidates their sessions, so a
// revoked admin loses panel access on their next request.
func (s *UserService) SetRole(ctx context.Context, userID uint, role models.UserRole) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.NewValidationError("Unknown role")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.NewNotFoundError("User", userID)
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return models.NewInternalError(err)
	}
	s.sessions.PublishUpdate(ctx, userID)
	return nil
}

// List returns principals for the admin panel.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}
