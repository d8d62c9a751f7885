// Package mocks holds hand-written test doubles shared across packages.
package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/acesastra/ace-portal/internal/auth"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/session"
)

// CallLog is an ordered record of calls shared between mocks.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Record appends a call. A nil log ignores it.
func (l *CallLog) Record(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// MockAuthenticator is a function-field mock of the callback authenticator.
type MockAuthenticator struct {
	VerifyStateFunc  func(state string) (string, error)
	ExchangeCodeFunc func(ctx context.Context, code string) (*auth.Session, error)
	SignOutFunc      func(ctx context.Context, sessionID string) error
	Calls            *CallLog

	mu        sync.Mutex
	SignedOut []string
	Exchanged []string
}

// VerifyState defaults to accepting any state and redirecting to "/".
func (m *MockAuthenticator) VerifyState(state string) (string, error) {
	if m.VerifyStateFunc != nil {
		return m.VerifyStateFunc(state)
	}
	return "/", nil
}

// ExchangeCode records the code and delegates to ExchangeCodeFunc.
func (m *MockAuthenticator) ExchangeCode(ctx context.Context, code string) (*auth.Session, error) {
	m.mu.Lock()
	m.Exchanged = append(m.Exchanged, code)
	m.mu.Unlock()

	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}
	return nil, errors.New("exchange not configured")
}

// SignOut records the session ID and delegates to SignOutFunc.
func (m *MockAuthenticator) SignOut(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	m.SignedOut = append(m.SignedOut, sessionID)
	m.mu.Unlock()
	m.Calls.Record("signout " + sessionID)

	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, sessionID)
	}
	return nil
}

// SessionFor builds a session for an account with the given email.
func SessionFor(accountID, email, name string) *auth.Session {
	return &auth.Session{
		ID:      "session-" + accountID,
		Account: &models.Account{ID: accountID, Provider: auth.ProviderGoogle, Subject: accountID, Email: email, Name: name},
	}
}

// MockIdentityProvider returns canned identities keyed by authorization code.
type MockIdentityProvider struct {
	Identities map[string]*auth.Identity
	Err        error
}

// Name returns "google".
func (m *MockIdentityProvider) Name() string {
	return auth.ProviderGoogle
}

// AuthCodeURL returns a fake consent URL carrying the state.
func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

// Exchange looks the code up in Identities.
func (m *MockIdentityProvider) Exchange(_ context.Context, code string) (*auth.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	identity, ok := m.Identities[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	return identity, nil
}

// MockSessionStore is an in-memory session store.
// Used for testing without requiring a real Redis instance.
type MockSessionStore struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewMockSessionStore creates a new mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{data: make(map[string]string)}
}

// Create stores a new session.
func (m *MockSessionStore) Create(_ context.Context, accountID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.data[id] = accountID
	return id, nil
}

// Put stores a session under a fixed ID.
func (m *MockSessionStore) Put(sessionID, accountID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = accountID
}

// Get resolves a session.
func (m *MockSessionStore) Get(_ context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accountID, ok := m.data[sessionID]
	if !ok {
		return "", session.ErrNotFound
	}
	return accountID, nil
}

// Delete removes a session.
func (m *MockSessionStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

// Len returns the number of stored sessions.
func (m *MockSessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
