package dto

import "github.com/noah-isme/seminary-calendar/internal/models"

// MonthRequest captures the path parameters of the month view.
type MonthRequest struct {
	Year  int `validate:"min=1900,max=2200"`
	Month int `validate:"min=1,max=12"`
}

// DayCell is one cell of the rendered month grid. Placeholder cells have Day 0.
type DayCell struct {
	Day       int                    `json:"day"`
	Date      string                 `json:"date,omitempty"`
	Events    []models.CalendarEvent `json:"events"`
	Total     int                    `json:"total"`
	MoreCount int                    `json:"more_count"`
	IsToday   bool                   `json:"is_today"`
}

// MonthNavigation tells clients whether the adjacent months may be opened.
type MonthNavigation struct {
	Previous     MonthRef `json:"previous"`
	Next         MonthRef `json:"next"`
	CanGoBack    bool     `json:"can_navigate_prev"`
	CanGoNext    bool     `json:"can_navigate_next"`
	AcademicYear *string  `json:"academic_year,omitempty"`
}

// MonthRef identifies a month.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthGridResponse is the gateway payload for GET /calendar/month/:year/:month.
type MonthGridResponse struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	MonthName       string          `json:"month_name"`
	MaxEventsPerDay int             `json:"max_events_per_day"`
	Weeks           [][]DayCell     `json:"weeks"`
	Navigation      MonthNavigation `json:"navigation"`
	TotalEvents     int             `json:"total_events"`
}

// UpcomingRequest captures upcoming-events query parameters.
type UpcomingRequest struct {
	Limit     int `validate:"min=0,max=100"`
	DaysAhead int `validate:"min=0,max=366"`
}

// ExportRequest describes one export invocation.
type ExportRequest struct {
	Format  string `validate:"required,oneof=csv excel ics pdf"`
	Filters *models.CalendarFilters
}
