// Package profiles provides member pages and self-service settings.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/acesastra/ace-portal/internal/config"
	"github.com/acesastra/ace-portal/internal/metrics"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/service/badges"
	"github.com/acesastra/ace-portal/internal/service/events"
	"github.com/acesastra/ace-portal/internal/share"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// ErrSettingsNotFound is returned when the signed-in account has no profile.
var ErrSettingsNotFound = errors.New("settings not found")

// ProfileRepository interface for profile operations.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateContactNumber(ctx context.Context, userID string, contact *string) error
}

// RegistrationRepository interface for a member's registrations.
type RegistrationRepository interface {
	ListUserRegistrations(ctx context.Context, userID string, statuses []models.EventStatus, ascending bool) ([]models.Registration, error)
}

// BadgeLister lists a member's earned badges.
type BadgeLister interface {
	ForUser(ctx context.Context, userID string) ([]badges.Earned, error)
}

// CardBuilder renders events as list cards.
type CardBuilder interface {
	NewCard(e *models.Event) events.Card
}

// Member is the public part of a profile.
type Member struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Department         string `json:"department"`
	Year               int    `json:"year"`
	CurrentRating      int    `json:"current_rating"`
}

// HistoryEntry is an event a member took part in.
type HistoryEntry struct {
	Event    events.Card `json:"event"`
	Points   *int        `json:"points"`
	Attended *bool       `json:"attended"`
}

// UserPage is the public member page.
type UserPage struct {
	Member   Member          `json:"member"`
	Badges   []badges.Earned `json:"badges"`
	History  []HistoryEntry  `json:"history"`
	Upcoming []events.Card   `json:"upcoming"`
	Meta     share.Meta      `json:"meta"`
	Share    []share.Link    `json:"share"`
}

// Settings is the signed-in member's own profile.
type Settings struct {
	Member
	ContactNumber *string `json:"contact_number"`
}

// Service serves member pages and settings.
type Service struct {
	profileRepo ProfileRepository
	regRepo     RegistrationRepository
	badges      BadgeLister
	cards       CardBuilder
	share       *share.Builder
	site        config.SiteConfig
	log         *logger.Logger
}

// NewService creates a new profile service.
func NewService(
	profileRepo *repository.ProfileRepository,
	eventRepo *repository.EventRepository,
	badgeService *badges.Service,
	eventService *events.Service,
	shareBuilder *share.Builder,
	site config.SiteConfig,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(profileRepo, eventRepo, badgeService, eventService, shareBuilder, site, log)
}

// NewServiceWithInterfaces creates a new profile service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	profileRepo ProfileRepository,
	regRepo RegistrationRepository,
	badgeLister BadgeLister,
	cards CardBuilder,
	shareBuilder *share.Builder,
	site config.SiteConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		profileRepo: profileRepo,
		regRepo:     regRepo,
		badges:      badgeLister,
		cards:       cards,
		share:       shareBuilder,
		site:        site,
		log:         log,
	}
}

func newMember(p *models.UserProfile) Member {
	return Member{
		ID:                 p.UserID,
		Name:               p.Name,
		RegistrationNumber: p.RegistrationNumber,
		Department:         p.Department,
		Year:               p.Year,
		CurrentRating:      p.CurrentRating,
	}
}

// GetUserPage loads a member page. The profile, badges, history and
// upcoming registrations load concurrently; only a missing profile fails the
// page, the lists degrade to empty.
func (s *Service) GetUserPage(ctx context.Context, userID string) (*UserPage, error) {
	start := time.Now()
	defer func() { metrics.ObserveReadFanout("user_page", time.Since(start).Seconds()) }()

	var (
		profile  *models.UserProfile
		earned   []badges.Earned
		history  []models.Registration
		upcoming []models.Registration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profileRepo.GetByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		if earned, err = s.badges.ForUser(gctx, userID); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load member badges")
			earned = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.regRepo.ListUserRegistrations(gctx, userID, []models.EventStatus{models.EventStatusDone}, false)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load event history")
			history = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		upcoming, err = s.regRepo.ListUserRegistrations(gctx, userID,
			[]models.EventStatus{models.EventStatusOpen, models.EventStatusClosed}, true)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load upcoming registrations")
			upcoming = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &UserPage{
		Member:   newMember(profile),
		Badges:   earned,
		History:  make([]HistoryEntry, 0, len(history)),
		Upcoming: make([]events.Card, 0, len(upcoming)),
	}
	if page.Badges == nil {
		page.Badges = []badges.Earned{}
	}
	for _, reg := range history {
		if reg.Event == nil {
			continue
		}
		page.History = append(page.History, HistoryEntry{
			Event:    s.cards.NewCard(reg.Event),
			Points:   reg.Points,
			Attended: reg.Attended,
		})
	}
	for _, reg := range upcoming {
		if reg.Event == nil {
			continue
		}
		page.Upcoming = append(page.Upcoming, s.cards.NewCard(reg.Event))
	}

	pageURL := s.site.AbsoluteURL("/user/" + profile.UserID)
	page.Meta = share.Meta{
		Title:        fmt.Sprintf("%s - ACE SASTRA Member", profile.Name),
		Description:  fmt.Sprintf("View %s's profile at ACE SASTRA.", profile.Name),
		CanonicalURL: pageURL,
	}
	page.Share = s.share.Links(share.Content{
		URL:   pageURL,
		Title: page.Meta.Title,
		Text:  page.Meta.Description,
	})
	return page, nil
}

// GetSettings returns the signed-in member's own profile.
func (s *Service) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return &Settings{Member: newMember(profile), ContactNumber: profile.ContactNumber}, nil
}

// UpdateContact stores a new contact number. An empty value clears it;
// anything else must be exactly ten digits.
func (s *Service) UpdateContact(ctx context.Context, userID, contact string) (*Settings, error) {
	contact = strings.TrimSpace(contact)

	var value *string
	if contact != "" {
		if !models.ValidContactNumber(contact) {
			return nil, models.ErrInvalidContactNumber
		}
		value = &contact
	}

	if err := s.profileRepo.UpdateContactNumber(ctx, userID, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Bool("cleared", value == nil).Msg("Contact number updated")

	return s.GetSettings(ctx, userID)
}
