package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/models"
	appErrors "github.com/noah-isme/seminary-calendar/pkg/errors"
)

type calendarBackend interface {
	AcademicYears(ctx context.Context) ([]models.AcademicYear, error)
	Categories(ctx context.Context) ([]models.EventCategory, error)
	Events(ctx context.Context, query string) (*models.PaginatedEvents, error)
	Month(ctx context.Context, year, month int) (*models.MonthlyCalendarData, error)
	Upcoming(ctx context.Context, limit, daysAhead int) ([]models.UpcomingEvent, error)
	Statistics(ctx context.Context, academicYear string) (*models.EventStatistics, error)
}

// CalendarServiceConfig tunes the read side of the gateway.
type CalendarServiceConfig struct {
	MaxEventsPerDay int
	Location        *time.Location
}

// CalendarService reads calendar data from the backend, caching where enabled.
type CalendarService struct {
	backend   calendarBackend
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CalendarServiceConfig
	now       func() time.Time
}

// NewCalendarService constructs the service.
func NewCalendarService(backend calendarBackend, cache *CacheService, validate *validator.Validate, cfg CalendarServiceConfig, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxEventsPerDay <= 0 {
		cfg.MaxEventsPerDay = DefaultMaxEventsPerDay
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &CalendarService{backend: backend, cache: cache, validator: validate, logger: logger, cfg: cfg, now: time.Now}
}

// AcademicYears lists all academic years.
func (s *CalendarService) AcademicYears(ctx context.Context) ([]models.AcademicYear, bool, error) {
	return cached(ctx, s.cache, CacheKey("academic_years"), s.backend.AcademicYears)
}

// CurrentAcademicYear returns the year flagged current.
func (s *CalendarService) CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, bool, error) {
	years, hit, err := s.AcademicYears(ctx)
	if err != nil {
		return nil, false, err
	}
	current := models.CurrentAcademicYear(years)
	if current == nil {
		return nil, hit, appErrors.Clone(appErrors.ErrNotFound, "no current academic year")
	}
	return current, hit, nil
}

// Categories lists all event categories.
func (s *CalendarService) Categories(ctx context.Context) ([]models.EventCategory, bool, error) {
	return cached(ctx, s.cache, CacheKey("categories"), s.backend.Categories)
}

// Events fetches one page of events matching the filters.
func (s *CalendarService) Events(ctx context.Context, filters *models.CalendarFilters) (*models.PaginatedEvents, bool, error) {
	query := BuildQueryString(filters)
	return cached(ctx, s.cache, CacheKey("events", query), func(ctx context.Context) (*models.PaginatedEvents, error) {
		return s.backend.Events(ctx, query)
	})
}

// Month renders the month grid with navigation bounded by the current academic year.
func (s *CalendarService) Month(ctx context.Context, req dto.MonthRequest) (*dto.MonthGridResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year or month")
	}
	key := CacheKey("month", strconv.Itoa(req.Year), strconv.Itoa(req.Month))
	data, hit, err := cached(ctx, s.cache, key, func(ctx context.Context) (*models.MonthlyCalendarData, error) {
		return s.backend.Month(ctx, req.Year, req.Month)
	})
	if err != nil {
		return nil, false, err
	}
	if data.Year == 0 {
		data.Year, data.Month = req.Year, req.Month
	}

	academicYear := s.boundingYear(ctx)
	grid := NewMonthGrid(*data)
	prevY, prevM := AdjacentMonth(req.Year, req.Month, -1)
	nextY, nextM := AdjacentMonth(req.Year, req.Month, 1)
	nav := dto.MonthNavigation{
		Previous:  dto.MonthRef{Year: prevY, Month: prevM},
		Next:      dto.MonthRef{Year: nextY, Month: nextM},
		CanGoBack: IsWithinBounds(prevY, prevM, academicYear),
		CanGoNext: IsWithinBounds(nextY, nextM, academicYear),
	}
	if academicYear != nil {
		nav.AcademicYear = &academicYear.Year
	}

	return &dto.MonthGridResponse{
		Year:            grid.Year,
		Month:           grid.Month,
		MonthName:       grid.MonthName,
		MaxEventsPerDay: s.cfg.MaxEventsPerDay,
		Weeks:           grid.Weeks(s.cfg.MaxEventsPerDay, s.now().In(s.cfg.Location)),
		Navigation:      nav,
		TotalEvents:     len(grid.Events),
	}, hit, nil
}

// boundingYear loads the current academic year for navigation. Failures leave
// navigation unrestricted rather than failing the month view.
func (s *CalendarService) boundingYear(ctx context.Context) *models.AcademicYear {
	year, _, err := s.CurrentAcademicYear(ctx)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			s.logger.Warn("academic year unavailable, navigation unbounded", zap.Error(err))
		}
		return nil
	}
	return year
}

// Upcoming lists events starting soon.
func (s *CalendarService) Upcoming(ctx context.Context, req dto.UpcomingRequest) ([]models.UpcomingEvent, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid limit or days_ahead")
	}
	key := CacheKey("upcoming", strconv.Itoa(req.Limit), strconv.Itoa(req.DaysAhead))
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.UpcomingEvent, error) {
		return s.backend.Upcoming(ctx, req.Limit, req.DaysAhead)
	})
}

// Statistics returns aggregate counts, optionally for one academic year.
func (s *CalendarService) Statistics(ctx context.Context, academicYear string) (*models.EventStatistics, bool, error) {
	return cached(ctx, s.cache, CacheKey("statistics", academicYear), func(ctx context.Context) (*models.EventStatistics, error) {
		return s.backend.Statistics(ctx, academicYear)
	})
}
