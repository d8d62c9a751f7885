package provisioning

import (
	"context"

	"github.com/acesastra/ace-portal/internal/repository"
)

// StoreAdmin implements Admin on top of the repositories.
type StoreAdmin struct {
	accounts *repository.AccountRepository
	profiles *repository.ProfileRepository
}

// NewStoreAdmin creates an Admin backed by the database.
func NewStoreAdmin(accounts *repository.AccountRepository, profiles *repository.ProfileRepository) *StoreAdmin {
	return &StoreAdmin{accounts: accounts, profiles: profiles}
}

// DeleteAccount removes the account row.
func (a *StoreAdmin) DeleteAccount(ctx context.Context, accountID string) error {
	return a.accounts.Delete(ctx, accountID)
}

// CreateProfile calls create_new_user_profile.
func (a *StoreAdmin) CreateProfile(ctx context.Context, profile repository.NewProfile) error {
	return a.profiles.CreateViaProcedure(ctx, profile)
}
