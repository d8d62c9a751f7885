// Package site provides the public REST API of the club portal: events,
// registrations, badges, member pages, settings, the contact form and the
// leaderboard.
package site

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acesastra/ace-portal/internal/api/middleware"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/service/badges"
	"github.com/acesastra/ace-portal/internal/service/contact"
	"github.com/acesastra/ace-portal/internal/service/events"
	"github.com/acesastra/ace-portal/internal/service/leaderboard"
	"github.com/acesastra/ace-portal/internal/service/profiles"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// EventService interface for event operations.
type EventService interface {
	Upcoming(ctx context.Context) []events.Card
	Past(ctx context.Context, year int) events.PastEvents
	GetDetail(ctx context.Context, eventID string) (*events.Detail, error)
	GetRegistrationStatus(ctx context.Context, eventID, userID string) (*events.RegistrationStatus, error)
	Register(ctx context.Context, req events.RegisterRequest) (*events.RegisterResult, error)
}

// BadgeService interface for badge operations.
type BadgeService interface {
	GetCatalog(ctx context.Context) []badges.View
	GetDetail(ctx context.Context, badgeID string) (*badges.Detail, error)
	GetEarnedPage(ctx context.Context, userID, badgeID string) (*badges.EarnedPage, error)
}

// ProfileService interface for member pages and settings.
type ProfileService interface {
	GetUserPage(ctx context.Context, userID string) (*profiles.UserPage, error)
	GetSettings(ctx context.Context, userID string) (*profiles.Settings, error)
	UpdateContact(ctx context.Context, userID, contact string) (*profiles.Settings, error)
}

// ContactService interface for the contact form.
type ContactService interface {
	Submit(ctx context.Context, form contact.Form) (*models.ContactMessage, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetGlobalLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
}

// Handler handles site API requests.
type Handler struct {
	eventService       EventService
	badgeService       BadgeService
	profileService     ProfileService
	contactService     ContactService
	leaderboardService LeaderboardService
	log                *logger.Logger
}

// NewHandler creates a new site handler.
func NewHandler(
	eventService *events.Service,
	badgeService *badges.Service,
	profileService *profiles.Service,
	contactService *contact.Service,
	leaderboardService *leaderboard.Service,
	log *logger.Logger,
) *Handler {
	return NewHandlerWithInterfaces(eventService, badgeService, profileService, contactService, leaderboardService, log)
}

// NewHandlerWithInterfaces creates a new site handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	eventService EventService,
	badgeService BadgeService,
	profileService ProfileService,
	contactService ContactService,
	leaderboardService LeaderboardService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		eventService:       eventService,
		badgeService:       badgeService,
		profileService:     profileService,
		contactService:     contactService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// RegisterRoutes mounts the API on a router group. Session resolution must
// already run on the group.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/events/upcoming", h.GetUpcomingEvents)
	r.GET("/events/past", h.GetPastEvents)
	r.GET("/events/:id", h.GetEvent)

	r.GET("/badges", h.GetBadgeCatalog)
	r.GET("/badges/:id", h.GetBadge)

	r.GET("/users/:id", h.GetUserPage)
	r.GET("/users/:id/badges/:badgeId", h.GetUserBadge)

	r.GET("/leaderboard", h.GetLeaderboard)
	r.POST("/contact", h.SubmitContact)

	private := r.Group("", middleware.RequireSession())
	private.GET("/events/:id/registration", h.GetRegistrationStatus)
	private.POST("/events/:id/registrations", h.Register)
	private.GET("/settings", h.GetSettings)
	private.PUT("/settings/contact", h.UpdateContact)
}

// GetLeaderboard returns the club-wide leaderboard.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetGlobalLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// accountID returns the signed-in account. Routes using it sit behind
// RequireSession.
func accountID(c *gin.Context) string {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return ""
	}
	return p.AccountID
}

// parseLimit parses and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
