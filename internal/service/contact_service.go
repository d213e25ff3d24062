package service

import (
	"context"
	"strings"

	"bloggazers/internal/models"
	"bloggazers/internal/repository"
)

// ContactService handles the public contact form.
type ContactService struct {
	contacts repository.ContactRepository
}

// NewContactService creates a new contact service.
func NewContactService(contacts repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// ContactInput is a submitted contact form.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit validates and stores a contact message.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*models.ContactMessage, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, models.NewValidationError("A valid email is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, models.NewValidationError("Message is required")
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   email,
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		return nil, models.NewInternalError(err)
	}
	return msg, nil
}

// List returns messages for the admin panel, newest first.
func (s *ContactService) List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, int64, error) {
	msgs, err := s.contacts.List(ctx, clampLimit(limit), offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	total, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return msgs, total, nil
}
