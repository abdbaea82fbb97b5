package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/models"
	appErrors "github.com/noah-isme/seminary-calendar/pkg/errors"
	"github.com/noah-isme/seminary-calendar/pkg/export"
)

const (
	defaultExportPageSize = 100
	defaultExportMaxPages = 50
	defaultUIDDomain      = "calendar.seminary.edu"
	exportTitle           = "Academic Calendar"
)

// ExportColumns is the fixed column order of tabular exports.
var ExportColumns = []string{
	"Title", "Description", "Event Type", "Category", "Start Date", "End Date",
	"Start Time", "End Time", "All Day", "Location", "Priority", "Academic Year",
	"Featured", "Status",
}

type eventPager interface {
	Events(ctx context.Context, query string) (*models.PaginatedEvents, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	FilenameBase       string
	UIDDomain          string
	ProductID          string
	AllDayEndExclusive bool
	PageSize           int
	MaxPages           int
	Location           *time.Location
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	Filename string
	Location string
	Format   export.Format
	Events   int
	Size     int
}

// ExportService fetches every matching event, renders it and hands the file to a sink.
type ExportService struct {
	events    eventPager
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
	csv       *export.CSVExporter
	excel     *export.CSVExporter
	ics       *export.ICSExporter
	pdf       *export.PDFExporter
}

// NewExportService constructs an ExportService. A nil clock uses time.Now.
func NewExportService(events eventPager, metrics *MetricsService, validate *validator.Validate, cfg ExportConfig, logger *zap.Logger, now func() time.Time) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultExportPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultExportMaxPages
	}
	if cfg.UIDDomain == "" {
		cfg.UIDDomain = defaultUIDDomain
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportService{
		events:    events,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       now,
		csv:       export.NewCSVExporter(),
		excel:     export.NewExcelExporter(),
		ics:       export.NewICSExporter(cfg.ProductID, now),
		pdf:       export.NewPDFExporter(now),
	}
}

// Export runs one export end to end. The rendered file is dropped without
// delivery when ctx is done by the time rendering finishes.
func (s *ExportService) Export(ctx context.Context, req dto.ExportRequest, sink export.Sink) (result *ExportResult, err error) {
	if verr := s.validator.Struct(req); verr != nil {
		return nil, appErrors.Wrap(verr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be one of csv, excel, ics, pdf")
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	start := time.Now()
	size := 0
	defer func() {
		if !errors.Is(err, context.Canceled) {
			s.metrics.ObserveExport(string(format), size, time.Since(start), err)
		}
	}()

	events, err := s.FetchAll(ctx, req.Filters)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("Export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrExportFailed, err, fmt.Sprintf("Export failed: could not load events for %s", format))
	}

	payload, err := s.Render(format, events)
	if err != nil {
		if errors.Is(err, appErrors.ErrNothingToExport) {
			return nil, err
		}
		s.logger.Error("Export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, http.StatusInternalServerError, fmt.Sprintf("Export failed: could not render %s", format))
	}
	size = len(payload)

	if err = ctx.Err(); err != nil {
		s.logger.Info("export discarded, caller gone", zap.String("format", string(format)))
		return nil, err
	}

	file := export.File{
		Name:        export.GenerateFilename(s.cfg.FilenameBase, format.Extension(), s.now().In(s.cfg.Location)),
		ContentType: format.ContentType(),
		Data:        payload,
	}
	location, err := sink.Deliver(ctx, file)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("Export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, http.StatusInternalServerError, fmt.Sprintf("Export failed: could not deliver %s", format))
	}

	s.logger.Info("export delivered",
		zap.String("format", string(format)),
		zap.String("file", file.Name),
		zap.Int("events", len(events)),
		zap.Int("bytes", size),
	)
	return &ExportResult{Filename: file.Name, Location: location, Format: format, Events: len(events), Size: size}, nil
}

// FetchAll walks the paginated events endpoint sequentially. The walk stops at
// the last page or after MaxPages, whichever comes first.
func (s *ExportService) FetchAll(ctx context.Context, filters *models.CalendarFilters) ([]models.CalendarEvent, error) {
	base := MergeFilters(filters, models.NewCalendarFilters().Set(models.FilterPageSize, s.cfg.PageSize))
	events := make([]models.CalendarEvent, 0)
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		query := BuildQueryString(MergeFilters(base, models.NewCalendarFilters().Set(models.FilterPage, page)))
		result, err := s.events.Events(ctx, query)
		if err != nil {
			return nil, err
		}
		events = append(events, result.Results...)
		if result.Next == nil || *result.Next == "" || len(result.Results) == 0 {
			return events, nil
		}
	}
	s.logger.Warn("export truncated at page limit", zap.Int("max_pages", s.cfg.MaxPages), zap.Int("events", len(events)))
	return events, nil
}

// Render serializes events in the requested format.
func (s *ExportService) Render(format export.Format, events []models.CalendarEvent) ([]byte, error) {
	switch format {
	case export.FormatCSV:
		return s.csv.Render(BuildEventDataset(events))
	case export.FormatExcel:
		return s.excel.Render(BuildEventDataset(events))
	case export.FormatPDF:
		return s.pdf.Render(BuildEventDataset(events), exportTitle)
	case export.FormatICS:
		entries, err := s.CalendarEntries(events)
		if err != nil {
			return nil, err
		}
		payload, err := s.ics.Render(entries)
		if errors.Is(err, export.ErrNoEntries) {
			return nil, appErrors.Clone(appErrors.ErrNothingToExport, "no events to export as ics")
		}
		return payload, err
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// BuildEventDataset maps events onto the fixed export columns, in input order.
func BuildEventDataset(events []models.CalendarEvent) export.Dataset {
	rows := make([]map[string]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, map[string]string{
			"Title":         event.Title,
			"Description":   event.Description,
			"Event Type":    event.EventType.Label(),
			"Category":      event.CategoryName(),
			"Start Date":    event.StartDate,
			"End Date":      event.EndDate,
			"Start Time":    event.StartTime,
			"End Time":      event.EndTime,
			"All Day":       yesNo(event.IsAllDay),
			"Location":      event.Location,
			"Priority":      event.Priority.Label(),
			"Academic Year": event.AcademicYearName,
			"Featured":      yesNo(event.IsFeatured),
			"Status":        event.StatusLabel(),
		})
	}
	return export.Dataset{Headers: ExportColumns, Rows: rows}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// CalendarEntries converts events into iCalendar entries. Wall-clock times are
// read in the configured calendar location.
func (s *ExportService) CalendarEntries(events []models.CalendarEvent) ([]export.CalendarEntry, error) {
	entries := make([]export.CalendarEntry, 0, len(events))
	for _, event := range events {
		entry := export.CalendarEntry{
			UID:         strconv.Itoa(event.ID) + "@" + s.cfg.UIDDomain,
			Summary:     event.Title,
			Description: event.Description,
			Location:    event.Location,
			Category:    event.CategoryName(),
			Priority:    event.Priority.ICSPriority(),
		}
		startDay, err := parseDate(event.StartDate, s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("event %d: invalid start_date %q", event.ID, event.StartDate)
		}
		endDay, err := parseDate(event.SpanEnd(), s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("event %d: invalid end_date %q", event.ID, event.EndDate)
		}

		if event.IsAllDay || event.StartTime == "" {
			entry.AllDay = true
			entry.Start = startDay
			if s.cfg.AllDayEndExclusive {
				entry.End = endDay.AddDate(0, 0, 1)
			} else if event.EndDate != "" {
				entry.End = endDay
			}
			entries = append(entries, entry)
			continue
		}

		entry.Start, err = atClock(startDay, event.StartTime)
		if err != nil {
			return nil, fmt.Errorf("event %d: invalid start_time %q", event.ID, event.StartTime)
		}
		if event.EndTime != "" {
			entry.End, err = atClock(endDay, event.EndTime)
			if err != nil {
				return nil, fmt.Errorf("event %d: invalid end_time %q", event.ID, event.EndTime)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, loc)
}

// atClock sets an HH:MM or HH:MM:SS wall-clock time on day.
func atClock(day time.Time, clock string) (time.Time, error) {
	layout := "15:04"
	if strings.Count(clock, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
}
