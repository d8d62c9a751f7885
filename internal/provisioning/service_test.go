package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acesastra/ace-portal/internal/auth"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/pkg/logger"
	"github.com/acesastra/ace-portal/test/mocks"
)

const allowedDomain = "@sastra.ac.in"

func exchangeAs(email string) func(context.Context, string) (*auth.Session, error) {
	return func(context.Context, string) (*auth.Session, error) {
		return mocks.SessionFor("acc-1", email, "Test Student"), nil
	}
}

func newTestService(authn *mocks.MockAuthenticator, profiles *mocks.MockProfileChecker, admin Admin) *Service {
	return NewService(authn, profiles, admin, allowedDomain, DefaultDepartments(nil), logger.NewNop())
}

func TestHandleCallback_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		params CallbackParams
		want   Outcome
	}{
		{
			name:   "signup trigger rejection",
			params: CallbackParams{Error: "server_error", ErrorDescription: "Database error saving new user"},
			want:   OutcomeInvalidEmailDomain,
		},
		{
			name:   "structured domain code",
			params: CallbackParams{Error: "access_denied", ErrorCode: "invalid_email_domain"},
			want:   OutcomeInvalidEmailDomain,
		},
		{
			name:   "server error with other description",
			params: CallbackParams{Error: "server_error", ErrorDescription: "upstream timeout"},
			want:   OutcomeOAuthError,
		},
		{
			name:   "user cancelled consent",
			params: CallbackParams{Error: "access_denied"},
			want:   OutcomeOAuthError,
		},
		{
			name:   "no code and no error",
			params: CallbackParams{},
			want:   OutcomeAuthCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := &mocks.MockAuthenticator{}
			svc := newTestService(authn, &mocks.MockProfileChecker{}, &mocks.MockAdmin{})

			result := svc.HandleCallback(context.Background(), tt.params)

			assert.Equal(t, tt.want, result.Outcome)
			assert.False(t, result.OK())
			assert.Empty(t, authn.Exchanged, "provider errors must not exchange a code")
		})
	}
}

func TestHandleCallback_InvalidState(t *testing.T) {
	authn := &mocks.MockAuthenticator{
		VerifyStateFunc: func(string) (string, error) { return "", auth.ErrInvalidState },
	}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, &mocks.MockAdmin{})

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "forged"})

	assert.Equal(t, OutcomeOAuthError, result.Outcome)
	assert.Empty(t, authn.Exchanged)
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	authn := &mocks.MockAuthenticator{
		ExchangeCodeFunc: func(context.Context, string) (*auth.Session, error) {
			return nil, errors.New("invalid_grant")
		},
	}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, &mocks.MockAdmin{})

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	assert.Equal(t, OutcomeAuthCodeError, result.Outcome)
}

func TestHandleCallback_DomainMismatch(t *testing.T) {
	for _, email := range []string{"someone@gmail.com", "12345678@sastra.ac.in.evil.com", ""} {
		t.Run(email, func(t *testing.T) {
			calls := &mocks.CallLog{}
			authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs(email), Calls: calls}
			admin := &mocks.MockAdmin{Calls: calls}
			profiles := &mocks.MockProfileChecker{
				ExistsForUserFunc: func(context.Context, string) (bool, error) {
					t.Fatal("profile check must not run for a rejected domain")
					return false, nil
				},
			}
			svc := newTestService(authn, profiles, admin)

			result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

			assert.Equal(t, OutcomeInvalidEmailDomain, result.Outcome)
			assert.Nil(t, result.Session)
			assert.Equal(t, []string{"delete acc-1", "signout session-acc-1"}, calls.Calls())
			assert.Empty(t, admin.Profiles)
		})
	}
}

func TestHandleCallback_DomainMismatch_CleanupFailuresKeepOutcome(t *testing.T) {
	authn := &mocks.MockAuthenticator{
		ExchangeCodeFunc: exchangeAs("someone@gmail.com"),
		SignOutFunc:      func(context.Context, string) error { return errors.New("redis down") },
	}
	admin := &mocks.MockAdmin{
		DeleteAccountFunc: func(context.Context, string) error { return errors.New("permission denied") },
	}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, admin)

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	assert.Equal(t, OutcomeInvalidEmailDomain, result.Outcome)
	assert.Len(t, admin.Deleted, 1)
	assert.Len(t, authn.SignedOut, 1, "sign-out still runs after a failed delete")
}

func TestHandleCallback_DomainMismatch_WithoutAdminStillSignsOut(t *testing.T) {
	authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("someone@gmail.com")}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, nil)

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	assert.Equal(t, OutcomeInvalidEmailDomain, result.Outcome)
	assert.Len(t, authn.SignedOut, 1)
}

func TestHandleCallback_DomainCheckIsCaseInsensitive(t *testing.T) {
	authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("12345678@SASTRA.AC.IN")}
	admin := &mocks.MockAdmin{}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, admin)

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Empty(t, admin.Deleted)
	assert.Empty(t, authn.SignedOut)
}

func TestHandleCallback_ProfileCheckFailed(t *testing.T) {
	authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("12345678@sastra.ac.in")}
	profiles := &mocks.MockProfileChecker{
		ExistsForUserFunc: func(context.Context, string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	admin := &mocks.MockAdmin{}
	svc := newTestService(authn, profiles, admin)

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	assert.Equal(t, OutcomeProfileCheckFailed, result.Outcome)
	assert.Empty(t, admin.Profiles)
	assert.Equal(t, []string{"session-acc-1"}, authn.SignedOut)
}

func TestHandleCallback_CreatesProfile(t *testing.T) {
	authn := &mocks.MockAuthenticator{
		VerifyStateFunc:  func(string) (string, error) { return "/events/upcoming", nil },
		ExchangeCodeFunc: exchangeAs("12345678@sastra.ac.in"),
	}
	admin := &mocks.MockAdmin{}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, admin)

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	require.True(t, result.OK())
	assert.Equal(t, "/events/upcoming", result.Next)
	assert.Empty(t, authn.SignedOut)
	require.NotNil(t, result.Session)
	require.Len(t, admin.Profiles, 1)
	assert.Equal(t, repository.NewProfile{
		UserID:             "acc-1",
		Name:               "Test Student",
		RegistrationNumber: "12345678",
		Year:               2023,
		Department:         UnknownDepartment,
	}, admin.Profiles[0])
}

func TestHandleCallback_ExistingProfileIsNoOp(t *testing.T) {
	created := false
	profiles := &mocks.MockProfileChecker{
		ExistsForUserFunc: func(context.Context, string) (bool, error) { return created, nil },
	}
	admin := &mocks.MockAdmin{
		CreateProfileFunc: func(context.Context, repository.NewProfile) error {
			created = true
			return nil
		},
	}
	authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("12345678@sastra.ac.in")}
	svc := newTestService(authn, profiles, admin)

	first := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})
	second := svc.HandleCallback(context.Background(), CallbackParams{Code: "def", State: "s"})

	assert.True(t, first.OK())
	assert.True(t, second.OK())
	assert.Len(t, admin.Profiles, 1, "second login must not create another profile")
}

func TestHandleCallback_ParseErrors(t *testing.T) {
	tests := []struct {
		email string
		want  Outcome
	}{
		{"12@sastra.ac.in", OutcomeEmailParseError},
		{"@sastra.ac.in", OutcomeEmailParseError},
		{"1ab45678@sastra.ac.in", OutcomeYearParseError},
		{"1-245678@sastra.ac.in", OutcomeYearParseError},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs(tt.email)}
			admin := &mocks.MockAdmin{}
			svc := newTestService(authn, &mocks.MockProfileChecker{}, admin)

			result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

			assert.Equal(t, tt.want, result.Outcome)
			assert.Empty(t, admin.Profiles)
			assert.Equal(t, []string{"session-acc-1"}, authn.SignedOut)
		})
	}
}

func TestHandleCallback_ProfileCreateFailed(t *testing.T) {
	calls := &mocks.CallLog{}
	authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("12345678@sastra.ac.in"), Calls: calls}
	admin := &mocks.MockAdmin{
		CreateProfileFunc: func(context.Context, repository.NewProfile) error {
			return errors.New("function create_new_user_profile does not exist")
		},
		Calls: calls,
	}
	svc := newTestService(authn, &mocks.MockProfileChecker{}, admin)

	result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

	assert.Equal(t, OutcomeProfileCreateFailed, result.Outcome)
	assert.Equal(t, []string{"create acc-1", "signout session-acc-1"}, calls.Calls())
}

func TestHandleCallback_ProfileSetupError(t *testing.T) {
	t.Run("admin not configured", func(t *testing.T) {
		authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("12345678@sastra.ac.in")}
		svc := newTestService(authn, &mocks.MockProfileChecker{}, nil)

		result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

		assert.Equal(t, OutcomeProfileSetupError, result.Outcome)
		assert.Equal(t, []string{"session-acc-1"}, authn.SignedOut)
	})

	t.Run("panic in admin step", func(t *testing.T) {
		authn := &mocks.MockAuthenticator{ExchangeCodeFunc: exchangeAs("12345678@sastra.ac.in")}
		admin := &mocks.MockAdmin{
			CreateProfileFunc: func(context.Context, repository.NewProfile) error {
				panic("nil client")
			},
		}
		svc := newTestService(authn, &mocks.MockProfileChecker{}, admin)

		result := svc.HandleCallback(context.Background(), CallbackParams{Code: "abc", State: "s"})

		assert.Equal(t, OutcomeProfileSetupError, result.Outcome)
		assert.Equal(t, []string{"session-acc-1"}, authn.SignedOut)
	})
}
