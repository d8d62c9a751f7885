package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/acesastra/ace-portal/internal/auth"
	"github.com/acesastra/ace-portal/internal/metrics"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// Authenticator is the identity side of the callback.
type Authenticator interface {
	VerifyState(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (*auth.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

// ProfileChecker answers whether an account already has a profile.
type ProfileChecker interface {
	ExistsForUser(ctx context.Context, userID string) (bool, error)
}

// Admin performs the privileged writes of the pipeline. A nil Admin means
// the privileged credentials are not configured.
type Admin interface {
	DeleteAccount(ctx context.Context, accountID string) error
	CreateProfile(ctx context.Context, profile repository.NewProfile) error
}

// CallbackParams are the query parameters of the OAuth callback.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
	ErrorCode        string
}

// Result is the outcome of a callback. Session is set only on success.
type Result struct {
	Outcome Outcome
	Session *auth.Session
	Next    string
}

// OK reports whether the callback succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Service runs the callback pipeline.
type Service struct {
	auth          Authenticator
	profiles      ProfileChecker
	admin         Admin
	allowedDomain string
	departments   Departments
	log           *logger.Logger
}

// NewService creates a new provisioning service. admin may be nil.
func NewService(
	authenticator Authenticator,
	profiles ProfileChecker,
	admin Admin,
	allowedDomain string,
	departments Departments,
	log *logger.Logger,
) *Service {
	return &Service{
		auth:          authenticator,
		profiles:      profiles,
		admin:         admin,
		allowedDomain: strings.ToLower(allowedDomain),
		departments:   departments,
		log:           log,
	}
}

// HandleCallback runs the whole pipeline and records the outcome metric.
func (s *Service) HandleCallback(ctx context.Context, params CallbackParams) Result {
	result := s.handle(ctx, params)
	metrics.RecordProvisioningOutcome(string(result.Outcome))
	return result
}

func (s *Service) handle(ctx context.Context, params CallbackParams) Result {
	if params.Error != "" {
		outcome := ClassifyProviderError(params.Error, params.ErrorDescription, params.ErrorCode)
		s.log.Warn().
			Str("error", params.Error).
			Str("error_description", params.ErrorDescription).
			Str("outcome", string(outcome)).
			Msg("Provider returned an error on callback")
		return Result{Outcome: outcome}
	}

	if params.Code == "" {
		return Result{Outcome: OutcomeAuthCodeError}
	}

	next, err := s.auth.VerifyState(params.State)
	if err != nil {
		s.log.Warn().Err(err).Msg("Rejected callback state")
		return Result{Outcome: OutcomeOAuthError}
	}

	sess, err := s.auth.ExchangeCode(ctx, params.Code)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to exchange authorization code")
		return Result{Outcome: OutcomeAuthCodeError}
	}

	account := sess.Account
	if !s.emailAllowed(account.Email) {
		s.rejectAccount(ctx, sess)
		return Result{Outcome: OutcomeInvalidEmailDomain}
	}

	exists, err := s.profiles.ExistsForUser(ctx, account.ID)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to check for existing profile")
		s.endSession(ctx, sess)
		return Result{Outcome: OutcomeProfileCheckFailed}
	}

	if !exists {
		if outcome := s.setupProfile(ctx, sess); outcome != OutcomeSuccess {
			s.endSession(ctx, sess)
			return Result{Outcome: outcome}
		}
	}

	return Result{Outcome: OutcomeSuccess, Session: sess, Next: next}
}

func (s *Service) emailAllowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return email != "" && strings.HasSuffix(email, s.allowedDomain)
}

// rejectAccount deletes the account and ends the session. Neither failure
// changes the outcome.
func (s *Service) rejectAccount(ctx context.Context, sess *auth.Session) {
	s.log.Warn().
		Str("account_id", sess.Account.ID).
		Str("email", sess.Account.Email).
		Msg("Email domain not allowed, removing account")

	if s.admin == nil {
		metrics.RecordAccountPurge("skipped")
		s.log.Error().Str("account_id", sess.Account.ID).Msg("Cannot delete account: admin credentials not configured")
	} else if err := s.admin.DeleteAccount(ctx, sess.Account.ID); err != nil {
		metrics.RecordAccountPurge("failed")
		s.log.Error().Err(err).Str("account_id", sess.Account.ID).Msg("Failed to delete account")
	} else {
		metrics.RecordAccountPurge("deleted")
	}

	s.endSession(ctx, sess)
}

// endSession revokes a session that will never reach a cookie. A failure is
// only logged; the session then lapses with its TTL.
func (s *Service) endSession(ctx context.Context, sess *auth.Session) {
	if err := s.auth.SignOut(ctx, sess.ID); err != nil {
		s.log.Error().Err(err).Str("account_id", sess.Account.ID).Msg("Failed to sign out session")
	}
}

// setupProfile derives the profile fields and creates the profile. Any
// panic inside the step is reported as OutcomeProfileSetupError.
func (s *Service) setupProfile(ctx context.Context, sess *auth.Session) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("account_id", sess.Account.ID).
				Str("panic", fmt.Sprint(r)).
				Msg("Profile setup panicked")
			outcome = OutcomeProfileSetupError
		}
	}()

	if s.admin == nil {
		s.log.Error().Msg("Cannot create profile: admin credentials not configured")
		return OutcomeProfileSetupError
	}

	details, err := DeriveStudentDetails(sess.Account.Email, s.departments)
	switch {
	case errors.Is(err, ErrYearParse):
		s.log.Warn().Str("email", sess.Account.Email).Msg("Could not parse year from email")
		return OutcomeYearParseError
	case err != nil:
		s.log.Warn().Str("email", sess.Account.Email).Msg("Could not parse email local part")
		return OutcomeEmailParseError
	}

	err = s.admin.CreateProfile(ctx, repository.NewProfile{
		UserID:             sess.Account.ID,
		Name:               sess.Account.Name,
		RegistrationNumber: details.RegistrationNumber,
		Year:               details.Year,
		Department:         details.Department,
	})
	if err != nil {
		s.log.Error().Err(err).Str("account_id", sess.Account.ID).Msg("Failed to create profile")
		return OutcomeProfileCreateFailed
	}

	s.log.Info().
		Str("account_id", sess.Account.ID).
		Str("registration_number", details.RegistrationNumber).
		Int("year", details.Year).
		Str("department", details.Department).
		Msg("Created member profile")

	return OutcomeSuccess
}
