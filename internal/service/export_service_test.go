package service

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/models"
	appErrors "github.com/noah-isme/seminary-calendar/pkg/errors"
	"github.com/noah-isme/seminary-calendar/pkg/export"
	"github.com/noah-isme/seminary-calendar/pkg/storage"
)

var exportNow = time.Date(2025, 5, 9, 15, 0, 0, 0, time.UTC)

type pagerStub struct {
	pages   [][]models.CalendarEvent
	queries []string
	err     error
}

func (p *pagerStub) Events(_ context.Context, query string) (*models.PaginatedEvents, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, p.err
	}
	values, _ := url.ParseQuery(query)
	page := 1
	if n, err := strconv.Atoi(values.Get("page")); err == nil {
		page = n
	}
	if page > len(p.pages) {
		return &models.PaginatedEvents{}, nil
	}
	result := &models.PaginatedEvents{Results: p.pages[page-1]}
	if page < len(p.pages) {
		next := "next"
		result.Next = &next
	}
	return result, nil
}

type sinkStub struct {
	files []export.File
	err   error
}

func (s *sinkStub) Deliver(_ context.Context, file export.File) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.files = append(s.files, file)
	return "mem://" + file.Name, nil
}

func newExportServiceForTest(pager eventPager, cfg ExportConfig) *ExportService {
	cfg.AllDayEndExclusive = true
	return NewExportService(pager, NewMetricsService(), nil, cfg, zap.NewNop(), func() time.Time { return exportNow })
}

func TestBuildEventDatasetScenario(t *testing.T) {
	dataset := BuildEventDataset([]models.CalendarEvent{finalsWeek()})
	out, err := export.NewCSVExporter().Render(dataset)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Title","Description","Event Type","Category","Start Date","End Date","Start Time","End Time","All Day","Location","Priority","Academic Year","Featured","Status"`, lines[0])
	assert.Equal(t, `"Finals Week","","Examination","Exams","2025-05-10","2025-05-14","","","Yes","","High","","No","Past"`, lines[1])
}

func TestBuildEventDatasetDefaultsAndOrder(t *testing.T) {
	events := []models.CalendarEvent{
		{ID: 2, Title: "b", EventType: "retreat", IsUpcoming: true, IsCurrent: true},
		{ID: 1, Title: "a", IsUpcoming: true, IsFeatured: true, AcademicYearName: "2024-2025"},
	}
	dataset := BuildEventDataset(events)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, "b", dataset.Rows[0]["Title"])
	assert.Equal(t, "Other", dataset.Rows[0]["Event Type"])
	assert.Equal(t, "Current", dataset.Rows[0]["Status"])
	assert.Equal(t, "", dataset.Rows[0]["Category"])
	assert.Equal(t, "", dataset.Rows[0]["End Date"])
	assert.Equal(t, "Upcoming", dataset.Rows[1]["Status"])
	assert.Equal(t, "Yes", dataset.Rows[1]["Featured"])
	assert.Equal(t, "2024-2025", dataset.Rows[1]["Academic Year"])
}

func TestCSVExportRoundTripPreservesTitlesAndDates(t *testing.T) {
	events := []models.CalendarEvent{
		finalsWeek(),
		{ID: 2, Title: `Chapel "Sing", Part 2`, Description: "multi\nline", StartDate: "2025-05-11", StartTime: "10:00"},
	}
	svc := newExportServiceForTest(&pagerStub{}, ExportConfig{})
	for _, format := range []export.Format{export.FormatCSV, export.FormatExcel} {
		out, err := svc.Render(format, events)
		require.NoError(t, err)
		parsed, err := export.ParseCSV(out)
		require.NoError(t, err)
		require.Len(t, parsed.Rows, len(events))
		for i, event := range events {
			assert.Equal(t, event.Title, parsed.Rows[i]["Title"])
			assert.Equal(t, event.StartDate, parsed.Rows[i]["Start Date"])
			assert.Equal(t, event.EndDate, parsed.Rows[i]["End Date"])
		}
	}
}

func TestICSExportAllDaySpanScenario(t *testing.T) {
	svc := newExportServiceForTest(&pagerStub{}, ExportConfig{})
	out, err := svc.Render(export.FormatICS, []models.CalendarEvent{finalsWeek()})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "DTSTART;VALUE=DATE:20250510")
	assert.Contains(t, text, "DTEND;VALUE=DATE:20250515")
	assert.Contains(t, text, "UID:1@calendar.seminary.edu")
	assert.Contains(t, text, "PRIORITY:3")
	assert.Contains(t, text, "CATEGORIES:Exams")
}

func TestICSExportInclusiveAllDayEnd(t *testing.T) {
	svc := NewExportService(&pagerStub{}, nil, nil, ExportConfig{AllDayEndExclusive: false}, nil, func() time.Time { return exportNow })
	out, err := svc.Render(export.FormatICS, []models.CalendarEvent{
		finalsWeek(),
		{ID: 2, Title: "Single", StartDate: "2025-06-01", IsAllDay: true},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "DTEND;VALUE=DATE:20250514")
	assert.Contains(t, string(out), "DTEND;VALUE=DATE:20250602")
}

func TestICSExportTimedEventsUseCalendarZone(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	svc := newExportServiceForTest(&pagerStub{}, ExportConfig{Location: loc, UIDDomain: "example.org"})
	out, err := svc.Render(export.FormatICS, []models.CalendarEvent{
		{ID: 5, Title: "Chapel", StartDate: "2025-05-11", StartTime: "10:00:00", EndTime: "11:30"},
		{ID: 6, Title: "Lecture", StartDate: "2025-05-12", StartTime: "09:00"},
	})
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(out)).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "5@example.org", events[0].Props.Get(ical.PropUID).Value)
	assert.Equal(t, "20250511T160000Z", events[0].Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20250511T173000Z", events[0].Props.Get(ical.PropDateTimeEnd).Value)
	assert.Equal(t, "20250512T150000Z", events[1].Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20250512T160000Z", events[1].Props.Get(ical.PropDateTimeEnd).Value)
	assert.Equal(t, "5", events[1].Props.Get(ical.PropPriority).Value)
}

func TestICSExportRejectsEmptyAndMalformed(t *testing.T) {
	svc := newExportServiceForTest(&pagerStub{}, ExportConfig{})
	_, err := svc.Render(export.FormatICS, nil)
	require.ErrorIs(t, err, appErrors.ErrNothingToExport)

	_, err = svc.Render(export.FormatICS, []models.CalendarEvent{{ID: 1, StartDate: "05/10/2025", IsAllDay: true}})
	require.Error(t, err)
}

func TestFetchAllWalksPages(t *testing.T) {
	pager := &pagerStub{pages: [][]models.CalendarEvent{
		{{ID: 1, StartDate: "2025-05-01"}, {ID: 2, StartDate: "2025-05-02"}},
		{{ID: 3, StartDate: "2025-05-03"}},
	}}
	svc := newExportServiceForTest(pager, ExportConfig{PageSize: 2})
	filters := models.NewCalendarFilters().Set(models.FilterCategory, 4).Set(models.FilterPage, 9)

	events, err := svc.FetchAll(context.Background(), filters)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"category=4&page=1&page_size=2", "category=4&page=2&page_size=2"}, pager.queries)
}

func TestFetchAllStopsAtPageLimit(t *testing.T) {
	pages := make([][]models.CalendarEvent, 5)
	for i := range pages {
		pages[i] = []models.CalendarEvent{{ID: i + 1, StartDate: "2025-05-01"}}
	}
	pager := &pagerStub{pages: pages}
	svc := newExportServiceForTest(pager, ExportConfig{MaxPages: 2})

	events, err := svc.FetchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Len(t, pager.queries, 2)
}

func TestExportDeliversNamedFile(t *testing.T) {
	pager := &pagerStub{pages: [][]models.CalendarEvent{{finalsWeek()}}}
	svc := newExportServiceForTest(pager, ExportConfig{FilenameBase: "academic_calendar"})
	sink := &sinkStub{}

	result, err := svc.Export(context.Background(), dto.ExportRequest{Format: "excel"}, sink)
	require.NoError(t, err)
	assert.Equal(t, "academic_calendar_2025-05-09.xlsx", result.Filename)
	assert.Equal(t, "mem://academic_calendar_2025-05-09.xlsx", result.Location)
	assert.Equal(t, 1, result.Events)
	require.Len(t, sink.files, 1)
	assert.True(t, bytes.HasPrefix(sink.files[0].Data, []byte(export.ByteOrderMark)))
	assert.Equal(t, "application/vnd.ms-excel;charset=utf-8", sink.files[0].ContentType)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().ExportsGenerated)
}

func TestExportToFileSink(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	pager := &pagerStub{pages: [][]models.CalendarEvent{{finalsWeek()}}}
	svc := newExportServiceForTest(pager, ExportConfig{})

	result, err := svc.Export(context.Background(), dto.ExportRequest{Format: "ics"}, export.NewFileSink(store))
	require.NoError(t, err)
	content, err := os.ReadFile(result.Location)
	require.NoError(t, err)
	assert.Contains(t, string(content), "BEGIN:VEVENT")
	assert.True(t, strings.HasSuffix(result.Location, "academic_calendar_2025-05-09.ics"))
}

func TestExportBackendFailure(t *testing.T) {
	pager := &pagerStub{err: appErrors.WrapAs(appErrors.ErrUpstream, errors.New("connection refused"), "")}
	svc := newExportServiceForTest(pager, ExportConfig{})
	sink := &sinkStub{}

	_, err := svc.Export(context.Background(), dto.ExportRequest{Format: "csv"}, sink)
	require.ErrorIs(t, err, appErrors.ErrExportFailed)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 502, appErr.Status)
	assert.Contains(t, appErr.Message, "Export failed")
	assert.Empty(t, sink.files)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().ExportsFailed)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(&pagerStub{}, ExportConfig{})
	_, err := svc.Export(context.Background(), dto.ExportRequest{Format: "docx"}, &sinkStub{})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportDiscardedWhenCallerGone(t *testing.T) {
	pager := &pagerStub{pages: [][]models.CalendarEvent{{finalsWeek()}}}
	svc := newExportServiceForTest(pager, ExportConfig{})
	sink := &sinkStub{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Export(ctx, dto.ExportRequest{Format: "csv"}, sink)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.files)
	assert.Empty(t, pager.queries)
}

func TestExportDeliveryFailure(t *testing.T) {
	pager := &pagerStub{pages: [][]models.CalendarEvent{{finalsWeek()}}}
	svc := newExportServiceForTest(pager, ExportConfig{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{Format: "pdf"}, &sinkStub{err: errors.New("disk full")})
	require.ErrorIs(t, err, appErrors.ErrExportFailed)
	assert.Equal(t, 500, appErrors.FromError(err).Status)
}

func TestExportRendersPDFListing(t *testing.T) {
	pager := &pagerStub{pages: [][]models.CalendarEvent{{finalsWeek()}}}
	sink := &sinkStub{}
	svc := newExportServiceForTest(pager, ExportConfig{FilenameBase: "academic_calendar"})

	result, err := svc.Export(context.Background(), dto.ExportRequest{Format: "pdf"}, sink)
	require.NoError(t, err)
	assert.Equal(t, "academic_calendar_2025-05-09.pdf", result.Filename)
	require.Len(t, sink.files, 1)
	assert.Equal(t, "application/pdf", sink.files[0].ContentType)
	assert.True(t, bytes.HasPrefix(sink.files[0].Data, []byte("%PDF-")))
	assert.Equal(t, len(sink.files[0].Data), result.Size)
}

func TestExcelExportIsIdempotentUnderFixedClock(t *testing.T) {
	events := []models.CalendarEvent{finalsWeek(), {ID: 8, Title: "Fête, \"Closing\"", StartDate: "2025-05-30", IsAllDay: true}}
	svc := newExportServiceForTest(&pagerStub{pages: [][]models.CalendarEvent{events}}, ExportConfig{FilenameBase: "academic_calendar"})

	first, err := svc.Render(export.FormatExcel, events)
	require.NoError(t, err)
	second, err := svc.Render(export.FormatExcel, events)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.True(t, bytes.HasPrefix(first, []byte(export.ByteOrderMark)))

	sink := &sinkStub{}
	for i := 0; i < 2; i++ {
		_, err := svc.Export(context.Background(), dto.ExportRequest{Format: "excel"}, sink)
		require.NoError(t, err)
	}
	require.Len(t, sink.files, 2)
	assert.Equal(t, "academic_calendar_2025-05-09.xlsx", sink.files[0].Name)
	assert.Equal(t, sink.files[0].Name, sink.files[1].Name)
	assert.Equal(t, sink.files[0].Data, sink.files[1].Data)
	assert.Equal(t, first, sink.files[0].Data)
}
