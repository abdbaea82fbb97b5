package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/models"
	appErrors "github.com/noah-isme/seminary-calendar/pkg/errors"
)

const (
	defaultBackendTimeout = 10 * time.Second
	maxErrorBody          = 512
)

type backendObserver interface {
	ObserveBackendCall(endpoint string, duration time.Duration, err error)
}

// CalendarRepository reads calendar data from the REST backend. It keeps no
// state between calls and never retries.
type CalendarRepository struct {
	baseURL    string
	httpClient *http.Client
	metrics    backendObserver
	logger     *zap.Logger
}

// NewCalendarRepository constructs a backend client. A nil httpClient gets one
// with the given timeout.
func NewCalendarRepository(baseURL string, timeout time.Duration, httpClient *http.Client, metrics backendObserver, logger *zap.Logger) *CalendarRepository {
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    metrics,
		logger:     logger,
	}
}

// AcademicYears lists every academic year.
func (r *CalendarRepository) AcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	var years []models.AcademicYear
	if err := r.getList(ctx, "academic_years", "/calendar/academic-years/", &years); err != nil {
		return nil, err
	}
	return years, nil
}

// Categories lists every event category.
func (r *CalendarRepository) Categories(ctx context.Context) ([]models.EventCategory, error) {
	var categories []models.EventCategory
	if err := r.getList(ctx, "categories", "/calendar/categories/", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Events fetches one page of events. query is an already encoded query string.
func (r *CalendarRepository) Events(ctx context.Context, query string) (*models.PaginatedEvents, error) {
	path := "/calendar/events/"
	if query != "" {
		path += "?" + query
	}
	var page models.PaginatedEvents
	if err := r.getJSON(ctx, "events", path, &page); err != nil {
		return nil, err
	}
	models.NormalizeEvents(page.Results)
	return &page, nil
}

// Month fetches the month view for (year, month).
func (r *CalendarRepository) Month(ctx context.Context, year, month int) (*models.MonthlyCalendarData, error) {
	var data models.MonthlyCalendarData
	if err := r.getJSON(ctx, "month", fmt.Sprintf("/calendar/month/%d/%d/", year, month), &data); err != nil {
		return nil, err
	}
	models.NormalizeEvents(data.Events)
	return &data, nil
}

// Upcoming fetches events starting within daysAhead days. Zero values are
// left to the backend defaults.
func (r *CalendarRepository) Upcoming(ctx context.Context, limit, daysAhead int) ([]models.UpcomingEvent, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if daysAhead > 0 {
		params.Set("days_ahead", strconv.Itoa(daysAhead))
	}
	path := "/calendar/upcoming/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var events []models.UpcomingEvent
	if err := r.getList(ctx, "upcoming", path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Statistics fetches aggregate counts, optionally scoped to an academic year.
func (r *CalendarRepository) Statistics(ctx context.Context, academicYear string) (*models.EventStatistics, error) {
	path := "/calendar/statistics/"
	if academicYear != "" {
		path += "?academic_year=" + url.QueryEscape(academicYear)
	}
	var stats models.EventStatistics
	if err := r.getJSON(ctx, "statistics", path, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Ping checks that the backend answers the cheapest endpoint.
func (r *CalendarRepository) Ping(ctx context.Context) error {
	_, err := r.do(ctx, "ping", "/calendar/categories/")
	return err
}

// getList decodes either a bare JSON array or a paginated envelope's results.
func (r *CalendarRepository) getList(ctx context.Context, endpoint, path string, dest interface{}) error {
	body, err := r.do(ctx, endpoint, path)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil || len(envelope.Results) == 0 {
			return r.malformed(endpoint, fmt.Errorf("expected list or results envelope: %v", err))
		}
		trimmed = envelope.Results
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return r.malformed(endpoint, err)
	}
	return nil
}

func (r *CalendarRepository) getJSON(ctx context.Context, endpoint, path string, dest interface{}) error {
	body, err := r.do(ctx, endpoint, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return r.malformed(endpoint, err)
	}
	return nil
}

func (r *CalendarRepository) do(ctx context.Context, endpoint, path string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.ObserveBackendCall(endpoint, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrUpstream, fmt.Errorf("create request: %w", err), "")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("calendar backend unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrUpstream, err, "")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		r.logger.Warn("calendar backend error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, appErrors.WrapAs(appErrors.ErrUpstream, fmt.Errorf("backend status %d", resp.StatusCode), "")
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrUpstream, fmt.Errorf("read response: %w", err), "")
	}
	return body, nil
}

func (r *CalendarRepository) malformed(endpoint string, err error) error {
	r.logger.Error("calendar backend payload malformed", zap.String("endpoint", endpoint), zap.Error(err))
	return appErrors.WrapAs(appErrors.ErrUpstreamMalformed, err, "")
}
