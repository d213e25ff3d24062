package repository

import (
	"context"

	"bloggazers/internal/models"

	"gorm.io/gorm"
)

// ContactRepository defines the interface for contact message intake.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error)
	Count(ctx context.Context) (int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *contactRepository) List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	var msgs []*models.ContactMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, err
}

func (r *contactRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Count(&count).Error
	return count, err
}
