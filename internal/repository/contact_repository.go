package repository

import (
	"context"
	"fmt"

	"github.com/acesastra/ace-portal/internal/models"
)

// ContactRepository stores contact form submissions. There is no read path.
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create stores a contact message.
func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to store contact message: %w", err)
	}
	return nil
}
