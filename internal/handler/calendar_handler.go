package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/middleware"
	"github.com/noah-isme/seminary-calendar/internal/models"
	"github.com/noah-isme/seminary-calendar/internal/service"
	appErrors "github.com/noah-isme/seminary-calendar/pkg/errors"
	"github.com/noah-isme/seminary-calendar/pkg/response"
)

type calendarService interface {
	AcademicYears(ctx context.Context) ([]models.AcademicYear, bool, error)
	CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, bool, error)
	Categories(ctx context.Context) ([]models.EventCategory, bool, error)
	Events(ctx context.Context, filters *models.CalendarFilters) (*models.PaginatedEvents, bool, error)
	Month(ctx context.Context, req dto.MonthRequest) (*dto.MonthGridResponse, bool, error)
	Upcoming(ctx context.Context, req dto.UpcomingRequest) ([]models.UpcomingEvent, bool, error)
	Statistics(ctx context.Context, academicYear string) (*models.EventStatistics, bool, error)
}

// CalendarHandler exposes the read-only calendar endpoints.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// AcademicYears godoc
// @Summary List academic years
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/academic-years [get]
func (h *CalendarHandler) AcademicYears(c *gin.Context) {
	years, hit, err := h.service.AcademicYears(c.Request.Context())
	respond(c, years, hit, err)
}

// CurrentAcademicYear godoc
// @Summary Current academic year
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/academic-years/current [get]
func (h *CalendarHandler) CurrentAcademicYear(c *gin.Context) {
	year, hit, err := h.service.CurrentAcademicYear(c.Request.Context())
	respond(c, year, hit, err)
}

// Categories godoc
// @Summary List event categories
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/categories [get]
func (h *CalendarHandler) Categories(c *gin.Context) {
	categories, hit, err := h.service.Categories(c.Request.Context())
	respond(c, categories, hit, err)
}

// Events godoc
// @Summary List events
// @Tags Calendar
// @Produce json
// @Param academic_year query int false "Academic year ID"
// @Param category query int false "Category ID"
// @Param event_type query string false "Event type"
// @Param priority query string false "Priority"
// @Param time_filter query string false "upcoming, current, past, this_week or this_month"
// @Param featured query bool false "Featured only"
// @Param search query string false "Free text search"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	filters := service.FiltersFromQuery(c.Request.URL.Query())
	page, hit, err := h.service.Events(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, hit)
	pagination := &models.Pagination{
		Page:       intFilter(filters, models.FilterPage, 1),
		PageSize:   intFilter(filters, models.FilterPageSize, len(page.Results)),
		TotalCount: page.Count,
	}
	response.JSON(c, http.StatusOK, page.Results, pagination, middleware.ResponseMeta(c))
}

// Month godoc
// @Summary Month grid
// @Tags Calendar
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/month/{year}/{month} [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	year, errYear := strconv.Atoi(c.Param("year"))
	month, errMonth := strconv.Atoi(c.Param("month"))
	if errYear != nil || errMonth != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and month must be numeric"))
		return
	}
	grid, hit, err := h.service.Month(c.Request.Context(), dto.MonthRequest{Year: year, Month: month})
	respond(c, grid, hit, err)
}

// Upcoming godoc
// @Summary Upcoming events
// @Tags Calendar
// @Produce json
// @Param limit query int false "Maximum events"
// @Param days_ahead query int false "Look-ahead window in days"
// @Success 200 {object} response.Envelope
// @Router /calendar/upcoming [get]
func (h *CalendarHandler) Upcoming(c *gin.Context) {
	limit, errLimit := optionalInt(c.Query("limit"))
	days, errDays := optionalInt(c.Query("days_ahead"))
	if errLimit != nil || errDays != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit and days_ahead must be numeric"))
		return
	}
	events, hit, err := h.service.Upcoming(c.Request.Context(), dto.UpcomingRequest{Limit: limit, DaysAhead: days})
	respond(c, events, hit, err)
}

// Statistics godoc
// @Summary Event statistics
// @Tags Calendar
// @Produce json
// @Param academic_year query string false "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /calendar/statistics [get]
func (h *CalendarHandler) Statistics(c *gin.Context) {
	stats, hit, err := h.service.Statistics(c.Request.Context(), c.Query("academic_year"))
	respond(c, stats, hit, err)
}

func respond(c *gin.Context, data interface{}, cacheHit bool, err error) {
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ResponseMeta(c))
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func intFilter(filters *models.CalendarFilters, key string, fallback int) int {
	if value, ok := filters.Get(key); ok {
		if n, ok := value.(int); ok && n > 0 {
			return n
		}
	}
	return fallback
}
