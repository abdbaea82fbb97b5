package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
)

// DefaultProductID identifies generated calendars when no product id is configured.
const DefaultProductID = "-//Seminary//Academic Calendar//EN"

// ErrNoEntries is returned when an iCalendar document would have no components.
var ErrNoEntries = errors.New("ics requires at least one event")

// CalendarEntry is a single VEVENT. Start and End are absolute instants for
// timed entries; for all-day entries only their calendar dates are used and End
// is exclusive.
type CalendarEntry struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Category    string
	Priority    int
	AllDay      bool
	Start       time.Time
	End         time.Time
}

// ICSExporter renders calendar entries as an RFC 5545 document.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an ICS exporter. A nil clock falls back to time.Now.
func NewICSExporter(productID string, now func() time.Time) *ICSExporter {
	if productID == "" {
		productID = DefaultProductID
	}
	if now == nil {
		now = time.Now
	}
	return &ICSExporter{productID: productID, now: now}
}

// Render encodes one VCALENDAR with a VEVENT per entry, in input order.
func (e *ICSExporter) Render(entries []CalendarEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	stamp := e.now().UTC()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, e.productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	for i, entry := range entries {
		if entry.UID == "" {
			return nil, fmt.Errorf("ics entry %d has no uid", i)
		}
		if entry.Start.IsZero() {
			return nil, fmt.Errorf("ics entry %s has no start", entry.UID)
		}
		cal.Children = append(cal.Children, buildEvent(entry, stamp).Component)
	}

	buf := &bytes.Buffer{}
	if err := ical.NewEncoder(buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

func buildEvent(entry CalendarEntry, stamp time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, entry.UID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

	start, end := entryBounds(entry)
	if entry.AllDay {
		event.Props.SetDate(ical.PropDateTimeStart, start)
		event.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	}

	event.Props.SetText(ical.PropSummary, entry.Summary)
	if entry.Location != "" {
		event.Props.SetText(ical.PropLocation, entry.Location)
	}
	if entry.Description != "" {
		event.Props.SetText(ical.PropDescription, entry.Description)
	}
	if entry.Category != "" {
		event.Props.SetText(ical.PropCategories, entry.Category)
	}
	if entry.Priority > 0 {
		priority := ical.NewProp(ical.PropPriority)
		priority.Value = strconv.Itoa(entry.Priority)
		event.Props.Set(priority)
	}
	event.Props.SetText(ical.PropStatus, "CONFIRMED")
	event.Props.SetText(ical.PropTransparency, "OPAQUE")
	return event
}

// entryBounds fills a missing or non-positive end: one day for all-day entries,
// one hour otherwise.
func entryBounds(entry CalendarEntry) (time.Time, time.Time) {
	start, end := entry.Start, entry.End
	if entry.AllDay {
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if end.IsZero() {
			return start, start.AddDate(0, 0, 1)
		}
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
		return start, end
	}
	if end.IsZero() || !end.After(start) {
		end = start.Add(time.Hour)
	}
	return start, end
}
