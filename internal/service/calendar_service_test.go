package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/models"
	appErrors "github.com/noah-isme/seminary-calendar/pkg/errors"
)

type backendStub struct {
	years      []models.AcademicYear
	yearsErr   error
	categories []models.EventCategory
	month      *models.MonthlyCalendarData
	upcoming   []models.UpcomingEvent
	stats      *models.EventStatistics
	queries    []string
	calls      map[string]int
}

func (b *backendStub) hit(name string) {
	if b.calls == nil {
		b.calls = map[string]int{}
	}
	b.calls[name]++
}

func (b *backendStub) AcademicYears(context.Context) ([]models.AcademicYear, error) {
	b.hit("years")
	return b.years, b.yearsErr
}

func (b *backendStub) Categories(context.Context) ([]models.EventCategory, error) {
	b.hit("categories")
	return b.categories, nil
}

func (b *backendStub) Events(_ context.Context, query string) (*models.PaginatedEvents, error) {
	b.hit("events")
	b.queries = append(b.queries, query)
	return &models.PaginatedEvents{Count: 1, Results: []models.CalendarEvent{finalsWeek()}}, nil
}

func (b *backendStub) Month(context.Context, int, int) (*models.MonthlyCalendarData, error) {
	b.hit("month")
	return b.month, nil
}

func (b *backendStub) Upcoming(context.Context, int, int) ([]models.UpcomingEvent, error) {
	b.hit("upcoming")
	return b.upcoming, nil
}

func (b *backendStub) Statistics(context.Context, string) (*models.EventStatistics, error) {
	b.hit("statistics")
	return b.stats, nil
}

func currentYear() models.AcademicYear {
	return models.AcademicYear{ID: 2, Year: "2024-2025", StartDate: "2024-09-01", EndDate: "2025-05-31", IsCurrent: true}
}

func newCalendarServiceForTest(backend calendarBackend, cache *CacheService) *CalendarService {
	svc := NewCalendarService(backend, cache, nil, CalendarServiceConfig{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestCalendarServiceMonthBuildsGridAndNavigation(t *testing.T) {
	backend := &backendStub{
		years: []models.AcademicYear{currentYear()},
		month: &models.MonthlyCalendarData{Year: 2025, Month: 5, MonthName: "May", CalendarGrid: may2025Grid(), Events: []models.CalendarEvent{finalsWeek()}},
	}
	svc := newCalendarServiceForTest(backend, nil)

	resp, hit, err := svc.Month(context.Background(), dto.MonthRequest{Year: 2025, Month: 5})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "May", resp.MonthName)
	assert.Equal(t, DefaultMaxEventsPerDay, resp.MaxEventsPerDay)
	assert.Equal(t, 1, resp.TotalEvents)
	require.Len(t, resp.Weeks, 5)

	cell := resp.Weeks[2][0]
	assert.Equal(t, 12, cell.Day)
	require.Len(t, cell.Events, 1)
	assert.Equal(t, "Finals Week", cell.Events[0].Title)
	assert.True(t, cell.IsToday)

	assert.True(t, resp.Navigation.CanGoBack)
	assert.False(t, resp.Navigation.CanGoNext)
	assert.Equal(t, dto.MonthRef{Year: 2025, Month: 6}, resp.Navigation.Next)
	require.NotNil(t, resp.Navigation.AcademicYear)
	assert.Equal(t, "2024-2025", *resp.Navigation.AcademicYear)
}

func TestCalendarServiceMonthUnboundedWithoutAcademicYear(t *testing.T) {
	backend := &backendStub{
		yearsErr: appErrors.WrapAs(appErrors.ErrUpstream, errors.New("down"), ""),
		month:    &models.MonthlyCalendarData{CalendarGrid: may2025Grid()},
	}
	svc := newCalendarServiceForTest(backend, nil)

	resp, _, err := svc.Month(context.Background(), dto.MonthRequest{Year: 2025, Month: 5})
	require.NoError(t, err)
	assert.Equal(t, 2025, resp.Year)
	assert.Equal(t, "May", resp.MonthName)
	assert.True(t, resp.Navigation.CanGoBack)
	assert.True(t, resp.Navigation.CanGoNext)
	assert.Nil(t, resp.Navigation.AcademicYear)
}

func TestCalendarServiceValidatesRequests(t *testing.T) {
	svc := newCalendarServiceForTest(&backendStub{}, nil)

	_, _, err := svc.Month(context.Background(), dto.MonthRequest{Year: 2025, Month: 13})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, _, err = svc.Upcoming(context.Background(), dto.UpcomingRequest{Limit: 500})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCalendarServiceCurrentAcademicYear(t *testing.T) {
	svc := newCalendarServiceForTest(&backendStub{years: []models.AcademicYear{currentYear()}}, nil)
	year, _, err := svc.CurrentAcademicYear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, year.ID)

	svc = newCalendarServiceForTest(&backendStub{years: []models.AcademicYear{}}, nil)
	_, _, err = svc.CurrentAcademicYear(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCalendarServiceEventsUsesFilterQueryAndCache(t *testing.T) {
	cache, _ := newRedisCache(t)
	backend := &backendStub{}
	svc := newCalendarServiceForTest(backend, cache)
	filters := models.NewCalendarFilters().Set(models.FilterSearch, "finals").Clear(models.FilterCategory)

	page, hit, err := svc.Events(context.Background(), filters)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, page.Count)

	_, hit, err = svc.Events(context.Background(), filters)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"search=finals"}, backend.queries)
}

func TestCalendarServicePassThroughs(t *testing.T) {
	backend := &backendStub{
		categories: []models.EventCategory{{ID: 1, Name: "Exams"}},
		upcoming:   []models.UpcomingEvent{{ID: 3, Title: "Graduation", DaysUntil: 4}},
		stats:      &models.EventStatistics{TotalEvents: 12},
	}
	svc := newCalendarServiceForTest(backend, nil)

	categories, _, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	upcoming, _, err := svc.Upcoming(context.Background(), dto.UpcomingRequest{Limit: 5, DaysAhead: 30})
	require.NoError(t, err)
	assert.Equal(t, 4, upcoming[0].DaysUntil)

	stats, _, err := svc.Statistics(context.Background(), "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalEvents)
}
