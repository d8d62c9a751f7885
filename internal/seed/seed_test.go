package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/pkg/logger"
	"github.com/acesastra/ace-portal/test/testdb"
)

const sampleSeed = `
badges:
  - name: Speaker
    description: Delivered a talk at a club event
    icon: speaker.png
  - name: Contest Winner
    description: Won a club contest
    icon: winner.png
    type: AUTOMATIC
events:
  - name: Code Sprint 2024
    description: Competitive programming contest
    location: Main Hall
    start_time: 2024-03-22T09:00:00+05:30
    status: DONE
    type: CONTEST
    image: posters/sprint.png
  - name: Intro to Go
    description: Hands-on workshop
    location: Lab 3
    start_time: 2025-02-01T14:00:00+05:30
    type: WORKSHOP
awards:
  - user_id: member-1
    badge: Speaker
    earned_at: 2024-04-01T10:00:00Z
  - user_id: ghost
    badge: Speaker
`

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(sampleSeed))
	require.NoError(t, err)

	require.Len(t, catalog.Badges, 2)
	assert.Equal(t, "MANUAL", catalog.Badges[0].Type)
	assert.Equal(t, "AUTOMATIC", catalog.Badges[1].Type)

	require.Len(t, catalog.Events, 2)
	assert.Equal(t, "OPEN", catalog.Events[1].Status)
	assert.Equal(t, 2024, catalog.Events[0].StartTime.Year())

	require.Len(t, catalog.Awards, 2)
	assert.True(t, catalog.Awards[0].EarnedAt.Equal(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "badges: [", "failed to parse"},
		{"badge without name", "badges:\n  - description: x\n", "name is required"},
		{"unknown badge type", "badges:\n  - name: A\n    type: SPECIAL\n", "unknown type"},
		{"event without start", "events:\n  - name: E\n    type: TALK\n", "start_time is required"},
		{"unknown status", "events:\n  - name: E\n    type: TALK\n    start_time: 2024-01-01T00:00:00Z\n    status: LIVE\n", "unknown status"},
		{"unknown event type", "events:\n  - name: E\n    type: PARTY\n    start_time: 2024-01-01T00:00:00Z\n", "unknown type"},
		{"award of undefined badge", "awards:\n  - user_id: u\n    badge: Missing\n", "not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q should contain %q", err, tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSeed), 0o600))

	catalog, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Badges, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Account{ID: "member-1", Provider: "google", Subject: "sub-1", Email: "m@sastra.ac.in"}).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: "member-1", Name: "Member", RegistrationNumber: "123005001", Department: "CSE", Year: 2023}).Error)

	catalog, err := Parse([]byte(sampleSeed))
	require.NoError(t, err)

	seeder := NewSeeder(db, logger.NewNop())
	summary, err := seeder.Apply(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, Summary{Badges: 2, Events: 2, Awards: 1, SkippedAwards: 1}, summary)

	// A second run updates in place.
	catalog.Events[1].Status = string(models.EventStatusClosed)
	_, err = seeder.Apply(ctx, catalog)
	require.NoError(t, err)

	eventRepo := repository.NewEventRepository(db)
	closed, err := eventRepo.ListByStatus(ctx, models.EventStatusClosed, true)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "Intro to Go", closed[0].Name)

	var eventCount, badgeCount, awardCount int64
	db.Model(&models.Event{}).Count(&eventCount)
	db.Model(&models.Badge{}).Count(&badgeCount)
	db.Model(&models.UserBadge{}).Count(&awardCount)
	assert.Equal(t, int64(2), eventCount)
	assert.Equal(t, int64(2), badgeCount)
	assert.Equal(t, int64(1), awardCount)

	done, err := eventRepo.ListByStatus(ctx, models.EventStatusDone, false)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.NotNil(t, done[0].ImageKey)
	assert.Equal(t, "posters/sprint.png", *done[0].ImageKey)
}
