package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/acesastra/ace-portal/internal/models"
)

// AccountRepository handles identity account records.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert creates the account for (provider, subject) or refreshes its email and name.
// The stored record, including its ID, is written back into account.
func (r *AccountRepository) Upsert(ctx context.Context, account *models.Account) error {
	var existing models.Account
	err := r.db.WithContext(ctx).
		Where("provider = ? AND subject = ?", account.Provider, account.Subject).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up account: %w", err)
	}

	existing.Email = account.Email
	existing.Name = account.Name
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	*account = existing
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get account %s", id)
	}
	return &account, nil
}

// Delete removes an account. Profiles cascade in the PostgreSQL schema.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
