package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/session"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// ErrNoSession is returned when a request carries no valid session.
var ErrNoSession = errors.New("no active session")

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID string
	SessionID string
}

// Session is the result of a successful code exchange.
type Session struct {
	ID      string
	Account *models.Account
}

// AccountStore persists identity accounts.
type AccountStore interface {
	Upsert(ctx context.Context, account *models.Account) error
}

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, accountID string) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// Service ties the provider, state tokens, accounts, and sessions together.
type Service struct {
	provider IdentityProvider
	state    *StateSigner
	accounts AccountStore
	sessions SessionStore
	log      *logger.Logger
}

// NewService creates a new auth service.
func NewService(
	provider IdentityProvider,
	state *StateSigner,
	accounts AccountStore,
	sessions SessionStore,
	log *logger.Logger,
) *Service {
	return &Service{
		provider: provider,
		state:    state,
		accounts: accounts,
		sessions: sessions,
		log:      log,
	}
}

// LoginURL returns the provider consent URL with a signed state for next.
func (s *Service) LoginURL(next string) (string, error) {
	state, err := s.state.Issue(next)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(state), nil
}

// VerifyState validates the callback state and returns the redirect path.
func (s *Service) VerifyState(state string) (string, error) {
	return s.state.Verify(state)
}

// ExchangeCode trades an authorization code for a session, creating or
// refreshing the account on the way.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Provider: s.provider.Name(),
		Subject:  identity.Subject,
		Email:    strings.TrimSpace(identity.Email),
		Name:     strings.TrimSpace(identity.Name),
	}
	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", account.ID).
		Str("provider", account.Provider).
		Msg("Session created")

	return &Session{ID: sessionID, Account: account}, nil
}

// Resolve maps a session ID to its principal.
func (s *Service) Resolve(ctx context.Context, sessionID string) (*Principal, error) {
	accountID, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return &Principal{AccountID: accountID, SessionID: sessionID}, nil
}

// SignOut revokes a session.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}
