package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acesastra/ace-portal/internal/config"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/service/badges"
	"github.com/acesastra/ace-portal/internal/service/events"
	"github.com/acesastra/ace-portal/internal/share"
	"github.com/acesastra/ace-portal/internal/storage"
	"github.com/acesastra/ace-portal/pkg/logger"
	"github.com/acesastra/ace-portal/test/testdb"
)

type fixture struct {
	db      *repository.DB
	service *Service
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)
	log := logger.NewNop()
	site := config.SiteConfig{Name: "ACE SASTRA", URL: "https://ace.example.com", TimeZone: "UTC"}
	urls := storage.NewURLBuilder(&config.StorageConfig{PublicBaseURL: "https://cdn.example.com", BadgeBucket: "badges", EventBucket: "event-images"})
	shareBuilder := share.NewBuilder("ACE | SASTRA")

	eventRepo := repository.NewEventRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	badgeService := badges.NewService(repository.NewBadgeRepository(db), urls, shareBuilder, site, log)
	eventService := events.NewService(eventRepo, profileRepo, urls, shareBuilder, site, log)

	return &fixture{
		db:      db,
		service: NewService(profileRepo, eventRepo, badgeService, eventService, shareBuilder, site, log),
	}
}

func (f *fixture) createMember(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Account{ID: id, Provider: "google", Subject: "sub-" + id, Email: id + "@sastra.ac.in"}).Error)
	require.NoError(t, f.db.Create(&models.UserProfile{
		UserID:             id,
		Name:               name,
		RegistrationNumber: "123005001",
		Department:         "CSE",
		Year:               2023,
	}).Error)
}

func (f *fixture) register(t *testing.T, userID, name string, status models.EventStatus, start time.Time, points *int) {
	t.Helper()
	event := &models.Event{Name: name, Description: name, Location: "Hall", StartTime: start, Status: status, Type: models.EventTypeTalk}
	require.NoError(t, f.db.Create(event).Error)
	require.NoError(t, f.db.Create(&models.Registration{EventID: event.ID, UserID: userID, Points: points}).Error)
}

func TestGetUserPage(t *testing.T) {
	f := setupTestService(t)
	f.createMember(t, "u1", "Alice")

	base := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	points := 75
	f.register(t, "u1", "Old Contest", models.EventStatusDone, base.AddDate(0, -2, 0), nil)
	f.register(t, "u1", "Recent Contest", models.EventStatusDone, base, &points)
	f.register(t, "u1", "Next Week", models.EventStatusClosed, base.AddDate(0, 0, 7), nil)
	f.register(t, "u1", "Tomorrow", models.EventStatusOpen, base.AddDate(0, 0, 1), nil)
	f.register(t, "u1", "Cancelled", models.EventStatusCancelled, base, nil)

	badge := &models.Badge{Name: "Speaker", Description: "Gave a talk", IconKey: "speaker.png"}
	require.NoError(t, f.db.Create(badge).Error)
	require.NoError(t, repository.NewBadgeRepository(f.db).AwardBadge(context.Background(), "u1", badge.ID, base))

	page, err := f.service.GetUserPage(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", page.Member.ID)
	assert.Equal(t, "Alice", page.Member.Name)

	require.Len(t, page.History, 2)
	assert.Equal(t, "Recent Contest", page.History[0].Event.Name)
	require.NotNil(t, page.History[0].Points)
	assert.Equal(t, 75, *page.History[0].Points)
	assert.Equal(t, "Old Contest", page.History[1].Event.Name)

	require.Len(t, page.Upcoming, 2)
	assert.Equal(t, "Tomorrow", page.Upcoming[0].Name)
	assert.Equal(t, "Next Week", page.Upcoming[1].Name)

	require.Len(t, page.Badges, 1)
	assert.Equal(t, "Speaker", page.Badges[0].Badge.Name)

	assert.Equal(t, "Alice - ACE SASTRA Member", page.Meta.Title)
	assert.Equal(t, "View Alice's profile at ACE SASTRA.", page.Meta.Description)
	assert.Equal(t, "https://ace.example.com/user/u1", page.Meta.CanonicalURL)
	assert.Len(t, page.Share, len(share.Platforms))
}

func TestGetUserPage_Empty(t *testing.T) {
	f := setupTestService(t)
	f.createMember(t, "u1", "Alice")

	page, err := f.service.GetUserPage(context.Background(), "u1")
	require.NoError(t, err)

	assert.NotNil(t, page.Badges)
	assert.Empty(t, page.Badges)
	assert.Empty(t, page.History)
	assert.Empty(t, page.Upcoming)
}

func TestGetUserPage_NotFound(t *testing.T) {
	f := setupTestService(t)

	_, err := f.service.GetUserPage(context.Background(), "missing")

	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestGetSettings(t *testing.T) {
	f := setupTestService(t)
	f.createMember(t, "u1", "Alice")

	settings, err := f.service.GetSettings(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", settings.Name)
	assert.Nil(t, settings.ContactNumber)

	_, err = f.service.GetSettings(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestUpdateContact(t *testing.T) {
	f := setupTestService(t)
	f.createMember(t, "u1", "Alice")
	ctx := context.Background()

	settings, err := f.service.UpdateContact(ctx, "u1", "1234567890")
	require.NoError(t, err)
	require.NotNil(t, settings.ContactNumber)
	assert.Equal(t, "1234567890", *settings.ContactNumber)

	_, err = f.service.UpdateContact(ctx, "u1", "12345")
	assert.ErrorIs(t, err, models.ErrInvalidContactNumber)

	settings, err = f.service.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", *settings.ContactNumber, "invalid input must not overwrite")

	settings, err = f.service.UpdateContact(ctx, "u1", "")
	require.NoError(t, err)
	assert.Nil(t, settings.ContactNumber)

	_, err = f.service.UpdateContact(ctx, "missing", "1234567890")
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}
