package models

// Known CalendarFilters keys, in the order the backend documents them.
const (
	FilterAcademicYear = "academic_year"
	FilterCategory     = "category"
	FilterEventType    = "event_type"
	FilterPriority     = "priority"
	FilterFeatured     = "featured"
	FilterTimeFilter   = "time_filter"
	FilterSearch       = "search"
	FilterOrderBy      = "order_by"
	FilterPage         = "page"
	FilterPageSize     = "page_size"
	FilterStartDate    = "start_date"
	FilterEndDate      = "end_date"
)

// FilterKeys lists every supported filter key.
var FilterKeys = []string{
	FilterAcademicYear,
	FilterCategory,
	FilterEventType,
	FilterPriority,
	FilterFeatured,
	FilterTimeFilter,
	FilterSearch,
	FilterOrderBy,
	FilterPage,
	FilterPageSize,
	FilterStartDate,
	FilterEndDate,
}

// TimeFilter narrows events relative to today.
type TimeFilter string

const (
	TimeFilterUpcoming  TimeFilter = "upcoming"
	TimeFilterCurrent   TimeFilter = "current"
	TimeFilterThisWeek  TimeFilter = "this_week"
	TimeFilterThisMonth TimeFilter = "this_month"
	TimeFilterNextMonth TimeFilter = "next_month"
)

// CalendarFilters is an ordered set of query fields. A key is either absent,
// present with a value, or present but cleared (nil value). Cleared keys
// survive merges and are skipped when serialized.
type CalendarFilters struct {
	keys   []string
	values map[string]any
}

// NewCalendarFilters returns an empty filter set.
func NewCalendarFilters() *CalendarFilters {
	return &CalendarFilters{values: map[string]any{}}
}

// Set stores value under key, keeping the key's original position when it already exists.
func (f *CalendarFilters) Set(key string, value any) *CalendarFilters {
	if f.values == nil {
		f.values = map[string]any{}
	}
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// Clear marks key as explicitly cleared.
func (f *CalendarFilters) Clear(key string) *CalendarFilters {
	return f.Set(key, nil)
}

// Get returns the stored value and whether the key is present at all.
func (f *CalendarFilters) Get(key string) (any, bool) {
	if f == nil || f.values == nil {
		return nil, false
	}
	value, ok := f.values[key]
	return value, ok
}

// Has reports whether key is present, cleared or not.
func (f *CalendarFilters) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Delete removes key entirely so it reads as "not specified".
func (f *CalendarFilters) Delete(key string) {
	if f == nil || f.values == nil {
		return
	}
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the present keys in insertion order.
func (f *CalendarFilters) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of present keys.
func (f *CalendarFilters) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Clone copies the filter set.
func (f *CalendarFilters) Clone() *CalendarFilters {
	clone := NewCalendarFilters()
	if f == nil {
		return clone
	}
	for _, key := range f.keys {
		clone.Set(key, f.values[key])
	}
	return clone
}
