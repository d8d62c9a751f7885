package mocks

import (
	"context"
	"sync"

	"github.com/acesastra/ace-portal/internal/repository"
)

// MockProfileChecker is a simple mock for the profile existence check.
type MockProfileChecker struct {
	ExistsForUserFunc func(ctx context.Context, userID string) (bool, error)
}

func (m *MockProfileChecker) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	if m.ExistsForUserFunc != nil {
		return m.ExistsForUserFunc(ctx, userID)
	}
	return false, nil
}

// MockAdmin records privileged calls made by the provisioning pipeline.
type MockAdmin struct {
	DeleteAccountFunc func(ctx context.Context, accountID string) error
	CreateProfileFunc func(ctx context.Context, profile repository.NewProfile) error
	Calls             *CallLog

	mu       sync.Mutex
	Deleted  []string
	Profiles []repository.NewProfile
}

func (m *MockAdmin) DeleteAccount(ctx context.Context, accountID string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, accountID)
	m.mu.Unlock()
	m.Calls.Record("delete " + accountID)

	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, accountID)
	}
	return nil
}

func (m *MockAdmin) CreateProfile(ctx context.Context, profile repository.NewProfile) error {
	m.mu.Lock()
	m.Profiles = append(m.Profiles, profile)
	m.mu.Unlock()
	m.Calls.Record("create " + profile.UserID)

	if m.CreateProfileFunc != nil {
		return m.CreateProfileFunc(ctx, profile)
	}
	return nil
}
