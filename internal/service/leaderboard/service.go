// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// PointsRepository interface for aggregated points.
type PointsRepository interface {
	TotalPointsByMember(ctx context.Context, limit int) ([]repository.MemberPoints, error)
}

// Entry represents a single entry in the club-wide leaderboard.
type Entry struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	TotalPoints  int    `json:"total_points"`
	EventsScored int    `json:"events_scored"`
	Rank         int    `json:"rank"`
}

// EventEntry is a participant of a single event. Rank is 0 for unscored
// participants.
type EventEntry struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Points     *int   `json:"points"`
	Attended   *bool  `json:"attended"`
	Rank       int    `json:"rank,omitempty"`
}

// Service handles leaderboard generation.
type Service struct {
	pointsRepo PointsRepository
	log        *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(eventRepo *repository.EventRepository, log *logger.Logger) *Service {
	return &Service{pointsRepo: eventRepo, log: log}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(pointsRepo PointsRepository, log *logger.Logger) *Service {
	return &Service{pointsRepo: pointsRepo, log: log}
}

// GetGlobalLeaderboard returns members ranked by points summed over completed events.
func (s *Service) GetGlobalLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.pointsRepo.TotalPointsByMember(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get member points: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			UserID:       row.UserID,
			Name:         row.Name,
			Department:   row.Department,
			TotalPoints:  row.TotalPoints,
			EventsScored: row.EventsScored,
		})
	}

	// Assign ranks; equal totals share a rank
	for i := range entries {
		if i > 0 && entries[i].TotalPoints == entries[i-1].TotalPoints {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}

	s.log.Debug().Int("entries", len(entries)).Msg("Built global leaderboard")

	return entries, nil
}

// BuildEventEntries converts registrations, already ordered by points
// descending with unscored last, into participant entries. When ranked is
// true scored participants get standard competition ranks (1, 2, 2, 4).
func BuildEventEntries(regs []models.Registration, ranked bool) []EventEntry {
	entries := make([]EventEntry, 0, len(regs))
	for _, reg := range regs {
		entry := EventEntry{
			UserID:   reg.UserID,
			Points:   reg.Points,
			Attended: reg.Attended,
		}
		if reg.Profile != nil {
			entry.Name = reg.Profile.Name
			entry.Department = reg.Profile.Department
			entry.Year = reg.Profile.Year
		}
		entries = append(entries, entry)
	}

	if !ranked {
		return entries
	}

	for i := range entries {
		if entries[i].Points == nil {
			continue
		}
		if i > 0 && entries[i-1].Points != nil && *entries[i-1].Points == *entries[i].Points {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}
