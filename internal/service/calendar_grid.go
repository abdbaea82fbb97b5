package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/models"
)

// DefaultMaxEventsPerDay is the number of events shown in a day cell before "+N more".
const DefaultMaxEventsPerDay = 3

// DateKeyFor formats a zero-padded YYYY-MM-DD key. Day 0 is a grid placeholder
// and yields ("", false) without performing any lookup.
func DateKeyFor(year, month, day int) (string, bool) {
	if day <= 0 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// MonthGrid maps a flat event list onto the backend's week-major day matrix.
type MonthGrid struct {
	Year      int
	Month     int
	MonthName string
	Grid      [][]int
	Events    []models.CalendarEvent
}

// NewMonthGrid builds a grid from the backend month payload.
func NewMonthGrid(data models.MonthlyCalendarData) *MonthGrid {
	name := data.MonthName
	if name == "" && data.Month >= 1 && data.Month <= 12 {
		name = time.Month(data.Month).String()
	}
	return &MonthGrid{
		Year:      data.Year,
		Month:     data.Month,
		MonthName: name,
		Grid:      data.CalendarGrid,
		Events:    data.Events,
	}
}

// EventsForDay returns the events whose inclusive span covers the day, in input order.
func (g *MonthGrid) EventsForDay(day int) []models.CalendarEvent {
	key, ok := DateKeyFor(g.Year, g.Month, day)
	if !ok {
		return nil
	}
	matches := make([]models.CalendarEvent, 0)
	for _, event := range g.Events {
		if event.OccursOn(key) {
			matches = append(matches, event)
		}
	}
	return matches
}

// Weeks renders the grid into display cells. At most limit events are listed per
// cell; the remainder is reported as MoreCount. limit <= 0 uses the default.
func (g *MonthGrid) Weeks(limit int, today time.Time) [][]dto.DayCell {
	if limit <= 0 {
		limit = DefaultMaxEventsPerDay
	}
	todayKey := today.Format("2006-01-02")
	weeks := make([][]dto.DayCell, 0, len(g.Grid))
	for _, week := range g.Grid {
		cells := make([]dto.DayCell, 0, len(week))
		for _, day := range week {
			key, ok := DateKeyFor(g.Year, g.Month, day)
			if !ok {
				cells = append(cells, dto.DayCell{Day: 0, Events: []models.CalendarEvent{}})
				continue
			}
			events := g.EventsForDay(day)
			visible := events
			if len(visible) > limit {
				visible = visible[:limit]
			}
			cells = append(cells, dto.DayCell{
				Day:       day,
				Date:      key,
				Events:    visible,
				Total:     len(events),
				MoreCount: len(events) - len(visible),
				IsToday:   key == todayKey,
			})
		}
		weeks = append(weeks, cells)
	}
	return weeks
}

// IsWithinBounds reports whether the first day of (year, month) falls inside the
// academic year. Without an academic year navigation is unrestricted.
func IsWithinBounds(year, month int, academicYear *models.AcademicYear) bool {
	if academicYear == nil {
		return true
	}
	key, ok := DateKeyFor(year, month, 1)
	if !ok {
		return false
	}
	return academicYear.Contains(key)
}

// AdjacentMonth shifts (year, month) by delta months.
func AdjacentMonth(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), int(t.Month())
}
