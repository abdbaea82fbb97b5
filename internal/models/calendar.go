package models

import "strings"

// EventPriority orders events by importance.
type EventPriority string

const (
	EventPriorityLow    EventPriority = "low"
	EventPriorityMedium EventPriority = "medium"
	EventPriorityHigh   EventPriority = "high"
	EventPriorityUrgent EventPriority = "urgent"
)

// Label returns the human readable priority.
func (p EventPriority) Label() string {
	switch p {
	case EventPriorityLow:
		return "Low"
	case EventPriorityMedium:
		return "Medium"
	case EventPriorityHigh:
		return "High"
	case EventPriorityUrgent:
		return "Urgent"
	default:
		return ""
	}
}

// ICSPriority maps the priority onto the RFC 5545 PRIORITY scale.
func (p EventPriority) ICSPriority() int {
	switch p {
	case EventPriorityUrgent:
		return 1
	case EventPriorityHigh:
		return 3
	case EventPriorityLow:
		return 7
	default:
		return 5
	}
}

// EventType classifies calendar events for display.
type EventType string

const (
	EventTypeHoliday      EventType = "holiday"
	EventTypeExam         EventType = "exam"
	EventTypeRegistration EventType = "registration"
	EventTypeSemester     EventType = "semester"
	EventTypeOrientation  EventType = "orientation"
	EventTypeGraduation   EventType = "graduation"
	EventTypeDeadline     EventType = "deadline"
	EventTypeMeeting      EventType = "meeting"
	EventTypeConference   EventType = "conference"
	EventTypeWorkshop     EventType = "workshop"
	EventTypeOther        EventType = "other"
)

var eventTypeLabels = map[EventType]string{
	EventTypeHoliday:      "Holiday",
	EventTypeExam:         "Examination",
	EventTypeRegistration: "Registration",
	EventTypeSemester:     "Semester",
	EventTypeOrientation:  "Orientation",
	EventTypeGraduation:   "Graduation",
	EventTypeDeadline:     "Deadline",
	EventTypeMeeting:      "Meeting",
	EventTypeConference:   "Conference",
	EventTypeWorkshop:     "Workshop",
	EventTypeOther:        "Other",
}

// Label translates the event type, defaulting to "Other" for unknown values.
func (t EventType) Label() string {
	if label, ok := eventTypeLabels[t]; ok {
		return label
	}
	return eventTypeLabels[EventTypeOther]
}

// EventCategory groups events and carries the colour used for visual coding.
type EventCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// CalendarEvent is an event record as served by the backend.
type CalendarEvent struct {
	ID               int            `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	StartDate        string         `json:"start_date"`
	EndDate          string         `json:"end_date,omitempty"`
	StartTime        string         `json:"start_time,omitempty"`
	EndTime          string         `json:"end_time,omitempty"`
	IsAllDay         bool           `json:"is_all_day"`
	Location         string         `json:"location,omitempty"`
	Category         *EventCategory `json:"category,omitempty"`
	Priority         EventPriority  `json:"priority"`
	EventType        EventType      `json:"event_type"`
	IsFeatured       bool           `json:"is_featured"`
	AcademicYearName string         `json:"academic_year_name,omitempty"`
	IsUpcoming       bool           `json:"is_upcoming"`
	IsCurrent        bool           `json:"is_current"`
	IsPast           bool           `json:"is_past"`
}

// Normalize trims the textual fields and drops times from all-day events. The
// raw end date is kept as served; SpanEnd is the single place that defaults it.
func (e *CalendarEvent) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.StartDate = strings.TrimSpace(e.StartDate)
	e.EndDate = strings.TrimSpace(e.EndDate)
	e.StartTime = strings.TrimSpace(e.StartTime)
	e.EndTime = strings.TrimSpace(e.EndTime)
	if e.IsAllDay {
		e.StartTime = ""
		e.EndTime = ""
	}
}

// SpanEnd returns max(end_date, start_date) without mutating the record.
func (e CalendarEvent) SpanEnd() string {
	if e.EndDate == "" || e.EndDate < e.StartDate {
		return e.StartDate
	}
	return e.EndDate
}

// OccursOn reports whether the inclusive span covers the YYYY-MM-DD date key.
func (e CalendarEvent) OccursOn(dateKey string) bool {
	if dateKey == "" || e.StartDate == "" {
		return false
	}
	return e.StartDate <= dateKey && dateKey <= e.SpanEnd()
}

// CategoryName returns the category name or an empty string.
func (e CalendarEvent) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return e.Category.Name
}

// StatusLabel derives the exclusive status label. Current wins over Upcoming.
func (e CalendarEvent) StatusLabel() string {
	switch {
	case e.IsCurrent:
		return "Current"
	case e.IsUpcoming:
		return "Upcoming"
	default:
		return "Past"
	}
}

// NormalizeEvents normalizes a slice in place and returns it.
func NormalizeEvents(events []CalendarEvent) []CalendarEvent {
	for i := range events {
		events[i].Normalize()
	}
	return events
}

// AcademicYear bounds valid calendar navigation.
type AcademicYear struct {
	ID        int    `json:"id"`
	Year      string `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsCurrent bool   `json:"is_current"`
}

// Contains reports start_date <= date <= end_date.
func (y AcademicYear) Contains(dateKey string) bool {
	return y.StartDate <= dateKey && dateKey <= y.EndDate
}

// CurrentAcademicYear returns the year flagged current, if any.
func CurrentAcademicYear(years []AcademicYear) *AcademicYear {
	for i := range years {
		if years[i].IsCurrent {
			year := years[i]
			return &year
		}
	}
	return nil
}

// MonthlyCalendarData is the backend's month view payload.
type MonthlyCalendarData struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	MonthName    string          `json:"month_name"`
	CalendarGrid [][]int         `json:"calendar_grid"`
	Events       []CalendarEvent `json:"events"`
}

// UpcomingEvent is the compact record served by the upcoming endpoint.
type UpcomingEvent struct {
	ID         int            `json:"id"`
	Title      string         `json:"title"`
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date,omitempty"`
	StartTime  string         `json:"start_time,omitempty"`
	IsAllDay   bool           `json:"is_all_day"`
	Location   string         `json:"location,omitempty"`
	Category   *EventCategory `json:"category,omitempty"`
	Priority   EventPriority  `json:"priority"`
	EventType  EventType      `json:"event_type"`
	IsFeatured bool           `json:"is_featured"`
	DaysUntil  int            `json:"days_until"`
}

// EventStatistics aggregates event counts for an academic year.
type EventStatistics struct {
	TotalEvents    int            `json:"total_events"`
	UpcomingEvents int            `json:"upcoming_events"`
	CurrentEvents  int            `json:"current_events"`
	FeaturedEvents int            `json:"featured_events"`
	ByType         map[string]int `json:"by_type"`
	ByPriority     map[string]int `json:"by_priority"`
	ByCategory     map[string]int `json:"by_category"`
}

// PaginatedEvents mirrors the backend's paginated list envelope.
type PaginatedEvents struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []CalendarEvent `json:"results"`
}

// Pagination describes list metadata returned to API clients.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
