// Package events provides the event listing, detail and registration services.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/acesastra/ace-portal/internal/config"
	"github.com/acesastra/ace-portal/internal/metrics"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/service/leaderboard"
	"github.com/acesastra/ace-portal/internal/share"
	"github.com/acesastra/ace-portal/internal/storage"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// EventRepository interface for event and registration operations.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListByStatus(ctx context.Context, status models.EventStatus, ascending bool) ([]models.Event, error)
	ListParticipants(ctx context.Context, eventID string) ([]models.Registration, error)
	IsRegistered(ctx context.Context, userID, eventID string) (bool, error)
	CreateRegistration(ctx context.Context, reg *models.Registration) error
}

// ProfileRepository interface for the profile reads and writes registration needs.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateContactNumber(ctx context.Context, userID string, contact *string) error
}

// Card is the list view of an event.
type Card struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Location      string             `json:"location"`
	StartTime     time.Time          `json:"start_time"`
	Date          string             `json:"date"`
	Status        models.EventStatus `json:"status"`
	Type          models.EventType   `json:"type"`
	OrganizerInfo *string            `json:"organizer_info,omitempty"`
	ImageURL      string             `json:"image_url,omitempty"`
}

// PastEvents is the archive view: every year that has completed events and
// the events of the selected year.
type PastEvents struct {
	Years  []int  `json:"years"`
	Year   int    `json:"year"`
	Events []Card `json:"events"`
}

// Detail is the event page.
type Detail struct {
	Event        Card                     `json:"event"`
	Participants []leaderboard.EventEntry `json:"participants"`
	Leaderboard  bool                     `json:"leaderboard"`
	Share        []share.Link             `json:"share"`
}

// Service handles event reads and registrations.
type Service struct {
	eventRepo   EventRepository
	profileRepo ProfileRepository
	urls        *storage.URLBuilder
	share       *share.Builder
	site        config.SiteConfig
	loc         *time.Location
	log         *logger.Logger
}

// NewService creates a new event service.
func NewService(
	eventRepo *repository.EventRepository,
	profileRepo *repository.ProfileRepository,
	urls *storage.URLBuilder,
	shareBuilder *share.Builder,
	site config.SiteConfig,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(eventRepo, profileRepo, urls, shareBuilder, site, log)
}

// NewServiceWithInterfaces creates a new event service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	eventRepo EventRepository,
	profileRepo ProfileRepository,
	urls *storage.URLBuilder,
	shareBuilder *share.Builder,
	site config.SiteConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		eventRepo:   eventRepo,
		profileRepo: profileRepo,
		urls:        urls,
		share:       shareBuilder,
		site:        site,
		loc:         site.Location(),
		log:         log,
	}
}

// NewCard builds the list view of an event.
func (s *Service) NewCard(e *models.Event) Card {
	return Card{
		ID:            e.ID,
		Name:          e.Name,
		Description:   e.Description,
		Location:      e.Location,
		StartTime:     e.StartTime,
		Date:          FormatEventDate(e.StartTime.In(s.loc)),
		Status:        e.Status,
		Type:          e.Type,
		OrganizerInfo: e.OrganizerInfo,
		ImageURL:      s.urls.EventImage(e.ImageKey),
	}
}

func (s *Service) cards(events []models.Event) []Card {
	cards := make([]Card, 0, len(events))
	for i := range events {
		cards = append(cards, s.NewCard(&events[i]))
	}
	return cards
}

// Upcoming returns OPEN events, soonest first. Query failures degrade to an
// empty list.
func (s *Service) Upcoming(ctx context.Context) []Card {
	events, err := s.eventRepo.ListByStatus(ctx, models.EventStatusOpen, true)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load upcoming events")
		return []Card{}
	}
	return s.cards(events)
}

// Past returns the archive of DONE events for a year. A year of 0 selects
// the latest year that has events.
func (s *Service) Past(ctx context.Context, year int) PastEvents {
	result := PastEvents{Years: []int{}, Events: []Card{}}

	events, err := s.eventRepo.ListByStatus(ctx, models.EventStatusDone, false)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load past events")
		return result
	}

	result.Years = AvailableYears(events, s.loc)
	if year == 0 && len(result.Years) > 0 {
		year = result.Years[0]
	}
	result.Year = year
	result.Events = s.cards(FilterByYear(events, year, s.loc))
	return result
}

// GetDetail returns the event page. The event and its participants load
// concurrently; a participant query failure degrades to an empty list.
func (s *Service) GetDetail(ctx context.Context, eventID string) (*Detail, error) {
	start := time.Now()
	defer func() { metrics.ObserveReadFanout("event_detail", time.Since(start).Seconds()) }()

	var (
		event *models.Event
		regs  []models.Registration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = s.eventRepo.GetByID(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		regs, err = s.eventRepo.ListParticipants(gctx, eventID)
		if err != nil {
			s.log.Error().Err(err).Str("event_id", eventID).Msg("Failed to load participants")
			regs = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	card := s.NewCard(event)
	pageURL := s.site.AbsoluteURL("/events/" + event.ID)

	return &Detail{
		Event:        card,
		Participants: leaderboard.BuildEventEntries(regs, event.IsCompleted()),
		Leaderboard:  event.IsCompleted(),
		Share: s.share.Links(share.Content{
			URL:   pageURL,
			Title: fmt.Sprintf("%s - %s", event.Name, s.site.Name),
			Text:  fmt.Sprintf("Check out %s at %s on %s!", event.Name, s.site.Name, card.Date),
		}),
	}, nil
}

// IsNotFound reports whether err means the requested event does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrEventNotFound)
}
