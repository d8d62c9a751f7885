package site

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/service/events"
)

// registerRequest is the registration payload.
type registerRequest struct {
	ContactNumber string `json:"contact_number"`
	Confirmed     bool   `json:"confirmed"`
}

// GetUpcomingEvents returns open events.
// GET /api/v1/events/upcoming.
func (h *Handler) GetUpcomingEvents(c *gin.Context) {
	cards := h.eventService.Upcoming(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"events": cards,
		"total":  len(cards),
	})
}

// GetPastEvents returns completed events of one year.
// GET /api/v1/events/past?year=2024.
func (h *Handler) GetPastEvents(c *gin.Context) {
	year := 0
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 {
			h.errorResponse(c, http.StatusBadRequest, "invalid year parameter: "+s)
			return
		}
		year = y
	}

	c.JSON(http.StatusOK, h.eventService.Past(c.Request.Context(), year))
}

// GetEvent returns an event with its participants.
// GET /api/v1/events/:id.
func (h *Handler) GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	detail, err := h.eventService.GetDetail(c.Request.Context(), eventID)
	if err != nil {
		if events.IsNotFound(err) {
			h.errorResponse(c, http.StatusNotFound, "event not found")
			return
		}
		h.log.Error().Err(err).Str("event_id", eventID).Msg("Failed to get event")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve event")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetRegistrationStatus reports whether the member can register.
// GET /api/v1/events/:id/registration.
func (h *Handler) GetRegistrationStatus(c *gin.Context) {
	eventID := c.Param("id")

	status, err := h.eventService.GetRegistrationStatus(c.Request.Context(), eventID, accountID(c))
	if err != nil {
		if events.IsNotFound(err) {
			h.errorResponse(c, http.StatusNotFound, "event not found")
			return
		}
		h.log.Error().Err(err).Str("event_id", eventID).Msg("Failed to get registration status")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve registration status")
		return
	}

	c.JSON(http.StatusOK, status)
}

// Register registers the member for an event.
// POST /api/v1/events/:id/registrations.
func (h *Handler) Register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.eventService.Register(c.Request.Context(), events.RegisterRequest{
		EventID:       c.Param("id"),
		UserID:        accountID(c),
		ContactNumber: body.ContactNumber,
		Confirmed:     body.Confirmed,
	})
	if err != nil {
		status, message := registrationError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("event_id", c.Param("id")).Msg("Failed to register for event")
		}
		h.errorResponse(c, status, message)
		return
	}

	if result.Status == events.StatusConfirmRequired {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func registrationError(err error) (int, string) {
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		return http.StatusNotFound, "event not found"
	case errors.Is(err, events.ErrRegistrationClosed):
		return http.StatusConflict, "registration closed"
	case errors.Is(err, events.ErrProfileRequired):
		return http.StatusForbidden, "profile required"
	case errors.Is(err, events.ErrAlreadyRegistered):
		return http.StatusConflict, "already registered"
	case errors.Is(err, events.ErrContactRequired):
		return http.StatusUnprocessableEntity, "contact_required"
	case errors.Is(err, models.ErrInvalidContactNumber):
		return http.StatusUnprocessableEntity, models.ErrInvalidContactNumber.Error()
	default:
		return http.StatusInternalServerError, "Failed to register for event"
	}
}
