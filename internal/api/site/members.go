package site

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/service/contact"
	"github.com/acesastra/ace-portal/internal/service/profiles"
)

// updateContactRequest is the settings payload for the contact number.
type updateContactRequest struct {
	ContactNumber string `json:"contact_number"`
}

// GetBadgeCatalog returns every badge.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog := h.badgeService.GetCatalog(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"badges": catalog,
		"total":  len(catalog),
	})
}

// GetBadge returns a badge and its holders.
// GET /api/v1/badges/:id.
func (h *Handler) GetBadge(c *gin.Context) {
	badgeID := c.Param("id")

	detail, err := h.badgeService.GetDetail(c.Request.Context(), badgeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "badge not found")
			return
		}
		h.log.Error().Err(err).Str("badge_id", badgeID).Msg("Failed to get badge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetUserPage returns a member page.
// GET /api/v1/users/:id.
func (h *Handler) GetUserPage(c *gin.Context) {
	userID := c.Param("id")

	page, err := h.profileService.GetUserPage(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user page")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetUserBadge returns one earned badge of a member.
// GET /api/v1/users/:id/badges/:badgeId.
func (h *Handler) GetUserBadge(c *gin.Context) {
	userID := c.Param("id")
	badgeID := c.Param("badgeId")

	page, err := h.badgeService.GetEarnedPage(c.Request.Context(), userID, badgeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "badge not found")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Str("badge_id", badgeID).Msg("Failed to get user badge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetSettings returns the signed-in member's profile.
// GET /api/v1/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.profileService.GetSettings(c.Request.Context(), accountID(c))
	if err != nil {
		h.settingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateContact sets or clears the member's contact number.
// PUT /api/v1/settings/contact.
func (h *Handler) UpdateContact(c *gin.Context) {
	var body updateContactRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.profileService.UpdateContact(c.Request.Context(), accountID(c), body.ContactNumber)
	if err != nil {
		h.settingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *Handler) settingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profiles.ErrSettingsNotFound):
		h.errorResponse(c, http.StatusNotFound, profiles.ErrSettingsNotFound.Error())
	case errors.Is(err, models.ErrInvalidContactNumber):
		h.errorResponse(c, http.StatusUnprocessableEntity, models.ErrInvalidContactNumber.Error())
	default:
		h.log.Error().Err(err).Str("user_id", accountID(c)).Msg("Failed to handle settings")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to handle settings")
	}
}

// SubmitContact stores a contact form message.
// POST /api/v1/contact.
func (h *Handler) SubmitContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), form)
	if err != nil {
		var ve *contact.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     "validation failed",
				"fields":    ve.Fields,
				"timestamp": time.Now().UTC(),
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to store contact message")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     msg.ID,
		"status": "received",
	})
}
