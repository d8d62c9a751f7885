package events

import (
	"fmt"
	"sort"
	"time"

	"github.com/acesastra/ace-portal/internal/models"
)

// FormatEventDate renders a date as "1st Jan 2024".
func FormatEventDate(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%d%s %s %d", day, daySuffix(day), t.Format("Jan"), t.Year())
}

func daySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// AvailableYears returns the distinct start years of events, newest first.
func AvailableYears(events []models.Event, loc *time.Location) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, e := range events {
		year := e.StartTime.In(loc).Year()
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// FilterByYear keeps the events that start in the given year.
func FilterByYear(events []models.Event, year int, loc *time.Location) []models.Event {
	filtered := make([]models.Event, 0, len(events))
	if year == 0 {
		return filtered
	}
	for _, e := range events {
		if e.StartTime.In(loc).Year() == year {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
