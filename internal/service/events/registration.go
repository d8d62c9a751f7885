package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/acesastra/ace-portal/internal/metrics"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/service/leaderboard"
)

// Registration errors.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrProfileRequired    = errors.New("profile required")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrContactRequired    = errors.New("contact_required")
)

// Registration outcomes.
const (
	StatusRegistered      = "registered"
	StatusConfirmRequired = "confirm_required"
)

// RegistrationStatus describes whether the current member can register.
type RegistrationStatus struct {
	Registered    bool    `json:"registered"`
	CanRegister   bool    `json:"can_register"`
	NeedsContact  bool    `json:"needs_contact"`
	ContactNumber *string `json:"contact_number"`
}

// RegisterRequest is a registration attempt.
type RegisterRequest struct {
	EventID       string
	UserID        string
	ContactNumber string
	Confirmed     bool
}

// RegisterResult is returned on success or when confirmation is still needed.
type RegisterResult struct {
	Status      string                  `json:"status"`
	Participant *leaderboard.EventEntry `json:"participant,omitempty"`
}

// GetRegistrationStatus reports the member's registration state for an event.
func (s *Service) GetRegistrationStatus(ctx context.Context, eventID, userID string) (*RegistrationStatus, error) {
	var (
		event      *models.Event
		profile    *models.UserProfile
		registered bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = s.eventRepo.GetByID(gctx, eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.profileRepo.GetByUserID(gctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			profile = nil
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		registered, err = s.eventRepo.IsRegistered(gctx, userID, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := &RegistrationStatus{
		Registered:  registered,
		CanRegister: profile != nil && !registered && event.AcceptsRegistrations(),
	}
	if profile != nil {
		status.NeedsContact = !profile.HasContactNumber()
		status.ContactNumber = profile.ContactNumber
	}
	return status, nil
}

// Register registers a member for an event. Checks run in order: event
// exists and is open, profile exists, not already registered, contact
// number present and valid, then confirmation. A changed contact number is
// saved before the confirmation check so it survives a cancelled dialog.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	result, err := s.register(ctx, req)
	switch {
	case err != nil:
		metrics.RecordEventRegistration(registrationMetricStatus(err))
	default:
		metrics.RecordEventRegistration(result.Status)
	}
	return result, err
}

func (s *Service) register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !event.AcceptsRegistrations() {
		return nil, ErrRegistrationClosed
	}

	profile, err := s.profileRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, err
	}

	registered, err := s.eventRepo.IsRegistered(ctx, req.UserID, req.EventID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, ErrAlreadyRegistered
	}

	contact := strings.TrimSpace(req.ContactNumber)
	if contact == "" {
		if !profile.HasContactNumber() {
			return nil, ErrContactRequired
		}
	} else {
		if !models.ValidContactNumber(contact) {
			return nil, models.ErrInvalidContactNumber
		}
		if !profile.HasContactNumber() || *profile.ContactNumber != contact {
			if err := s.profileRepo.UpdateContactNumber(ctx, req.UserID, &contact); err != nil {
				return nil, fmt.Errorf("failed to save contact number: %w", err)
			}
			profile.ContactNumber = &contact
		}
	}

	if !req.Confirmed {
		return &RegisterResult{Status: StatusConfirmRequired}, nil
	}

	reg := &models.Registration{
		EventID: event.ID,
		UserID:  req.UserID,
	}
	if err := s.eventRepo.CreateRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	reg.Profile = profile

	s.log.Info().
		Str("event_id", event.ID).
		Str("user_id", req.UserID).
		Msg("Member registered for event")

	entry := leaderboard.BuildEventEntries([]models.Registration{*reg}, false)[0]
	return &RegisterResult{Status: StatusRegistered, Participant: &entry}, nil
}

func registrationMetricStatus(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, ErrRegistrationClosed):
		return "closed"
	case errors.Is(err, ErrProfileRequired):
		return "profile_required"
	case errors.Is(err, ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, ErrContactRequired):
		return "contact_required"
	case errors.Is(err, models.ErrInvalidContactNumber):
		return "invalid_contact"
	default:
		return "error"
	}
}
