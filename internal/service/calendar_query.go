package service

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/noah-isme/seminary-calendar/internal/models"
)

// BuildQueryString serializes filters in insertion order, skipping nil and empty values.
func BuildQueryString(filters *models.CalendarFilters) string {
	if filters == nil {
		return ""
	}
	parts := make([]string, 0, filters.Len())
	for _, key := range filters.Keys() {
		value, _ := filters.Get(key)
		raw, ok := stringifyFilterValue(value)
		if !ok {
			continue
		}
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(raw))
	}
	return strings.Join(parts, "&")
}

// MergeFilters shallow-merges patch over current. Keys present in patch always
// overwrite, including cleared ones; keys absent from patch are left untouched.
func MergeFilters(current, patch *models.CalendarFilters) *models.CalendarFilters {
	merged := current.Clone()
	if patch == nil {
		return merged
	}
	for _, key := range patch.Keys() {
		value, _ := patch.Get(key)
		merged.Set(key, value)
	}
	return merged
}

// FiltersFromQuery lifts supported keys out of an HTTP query. Empty values are
// kept as cleared keys so they never reach the backend.
func FiltersFromQuery(values url.Values) *models.CalendarFilters {
	filters := models.NewCalendarFilters()
	for _, key := range models.FilterKeys {
		if _, ok := values[key]; !ok {
			continue
		}
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			filters.Clear(key)
			continue
		}
		filters.Set(key, coerceFilterValue(key, raw))
	}
	return filters
}

func coerceFilterValue(key, raw string) any {
	switch key {
	case models.FilterAcademicYear, models.FilterCategory, models.FilterPage, models.FilterPageSize:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case models.FilterFeatured:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// stringifyFilterValue renders one filter value. Nil values of any type,
// typed nil pointers included, are skipped; other pointers are dereferenced.
func stringifyFilterValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "", false
		}
	}
	if rv.Kind() == reflect.Pointer {
		if _, ok := value.(fmt.Stringer); !ok {
			return stringifyFilterValue(rv.Elem().Interface())
		}
	}

	switch v := value.(type) {
	case string:
		return v, v != ""
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case models.TimeFilter:
		return string(v), v != ""
	case models.EventType:
		return string(v), v != ""
	case models.EventPriority:
		return string(v), v != ""
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		s := fmt.Sprint(v)
		return s, s != ""
	}
}
