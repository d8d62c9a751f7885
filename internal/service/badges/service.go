// Package badges provides the badge catalog and earned-badge views.
package badges

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/acesastra/ace-portal/internal/config"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/share"
	"github.com/acesastra/ace-portal/internal/storage"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// earnedDateLayout formats the date a badge was earned ("January 2, 2006").
const earnedDateLayout = "January 2, 2006"

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetAll(ctx context.Context) ([]models.Badge, error)
	GetByID(ctx context.Context, id string) (*models.Badge, error)
	GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
	GetUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error)
	GetHolders(ctx context.Context, badgeID string) ([]models.UserBadge, error)
}

// View is a catalog entry with its icon URL resolved.
type View struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        models.BadgeType `json:"type"`
	IconURL     string           `json:"icon_url,omitempty"`
}

// Holder is a member who earned a badge.
type Holder struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earned_at"`
}

// Detail is the badge page.
type Detail struct {
	Badge   View     `json:"badge"`
	Holders []Holder `json:"holders"`
}

// Earned is a badge in a member's collection.
type Earned struct {
	Badge      View      `json:"badge"`
	EarnedAt   time.Time `json:"earned_at"`
	EarnedDate string    `json:"earned_date"`
}

// EarnedPage is the shareable page of one earned badge.
type EarnedPage struct {
	Earned
	UserID   string       `json:"user_id"`
	UserName string       `json:"user_name"`
	Meta     share.Meta   `json:"meta"`
	Share    []share.Link `json:"share"`
}

// Service serves badge reads.
type Service struct {
	badgeRepo BadgeRepository
	urls      *storage.URLBuilder
	share     *share.Builder
	site      config.SiteConfig
	loc       *time.Location
	log       *logger.Logger
}

// NewService creates a new badge service.
func NewService(
	badgeRepo *repository.BadgeRepository,
	urls *storage.URLBuilder,
	shareBuilder *share.Builder,
	site config.SiteConfig,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(badgeRepo, urls, shareBuilder, site, log)
}

// NewServiceWithInterfaces creates a new badge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	badgeRepo BadgeRepository,
	urls *storage.URLBuilder,
	shareBuilder *share.Builder,
	site config.SiteConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo: badgeRepo,
		urls:      urls,
		share:     shareBuilder,
		site:      site,
		loc:       site.Location(),
		log:       log,
	}
}

func (s *Service) view(b *models.Badge) View {
	return View{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Type:        b.Type,
		IconURL:     s.urls.BadgeIcon(b.IconKey),
	}
}

func (s *Service) earned(ub *models.UserBadge) Earned {
	e := Earned{
		EarnedAt:   ub.EarnedAt,
		EarnedDate: ub.EarnedAt.In(s.loc).Format(earnedDateLayout),
	}
	if ub.Badge != nil {
		e.Badge = s.view(ub.Badge)
	}
	return e
}

// GetCatalog returns every badge ordered by name. Failures degrade to an
// empty catalog.
func (s *Service) GetCatalog(ctx context.Context) []View {
	badges, err := s.badgeRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load badge catalog")
		return []View{}
	}

	views := make([]View, 0, len(badges))
	for i := range badges {
		views = append(views, s.view(&badges[i]))
	}
	return views
}

// GetDetail returns a badge with its holders. Holder query failures degrade
// to an empty list; a missing badge returns repository.ErrNotFound.
func (s *Service) GetDetail(ctx context.Context, badgeID string) (*Detail, error) {
	var (
		badge   *models.Badge
		holders []models.UserBadge
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		badge, err = s.badgeRepo.GetByID(gctx, badgeID)
		return err
	})
	g.Go(func() error {
		var err error
		holders, err = s.badgeRepo.GetHolders(gctx, badgeID)
		if err != nil {
			s.log.Error().Err(err).Str("badge_id", badgeID).Msg("Failed to load badge holders")
			holders = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &Detail{Badge: s.view(badge), Holders: make([]Holder, 0, len(holders))}
	for _, h := range holders {
		holder := Holder{UserID: h.UserID, EarnedAt: h.EarnedAt}
		if h.Profile != nil {
			holder.Name = h.Profile.Name
		}
		detail.Holders = append(detail.Holders, holder)
	}
	return detail, nil
}

// ForUser returns the badges a member has earned, newest first.
func (s *Service) ForUser(ctx context.Context, userID string) ([]Earned, error) {
	userBadges, err := s.badgeRepo.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges of user %s: %w", userID, err)
	}

	earned := make([]Earned, 0, len(userBadges))
	for i := range userBadges {
		earned = append(earned, s.earned(&userBadges[i]))
	}
	return earned, nil
}

// GetEarnedPage returns one earned badge of a member with page metadata and
// share links.
func (s *Service) GetEarnedPage(ctx context.Context, userID, badgeID string) (*EarnedPage, error) {
	ub, err := s.badgeRepo.GetUserBadge(ctx, userID, badgeID)
	if err != nil {
		return nil, err
	}

	page := &EarnedPage{Earned: s.earned(ub), UserID: ub.UserID}
	if ub.Profile != nil {
		page.UserName = ub.Profile.Name
	}

	title := fmt.Sprintf("%s earned %q badge!", page.UserName, page.Badge.Name)
	pageURL := s.site.AbsoluteURL(fmt.Sprintf("/user/%s/badge/%s", ub.UserID, ub.BadgeID))

	page.Meta = share.Meta{
		Title:        title,
		Description:  fmt.Sprintf("%s earned on %s. %s", page.Badge.Name, page.EarnedDate, page.Badge.Description),
		CanonicalURL: pageURL,
	}
	page.Share = s.share.Links(share.Content{
		URL:   pageURL,
		Title: title,
		Text:  fmt.Sprintf("%s earned the %q badge at %s!", page.UserName, page.Badge.Name, s.site.Name),
	})
	return page, nil
}
