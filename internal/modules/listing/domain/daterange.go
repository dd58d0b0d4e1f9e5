package domain

import (
	"strings"
	"time"
)

// Date range presets.
const (
	PresetToday  = "today"
	PresetWeek   = "week"
	PresetMonth  = "month"
	PresetYear   = "year"
	PresetCustom = "custom"
)

const dateLayout = "2006-01-02"

// DateRange is a date-range criterion: a named preset relative to now, or custom bounds.
// Custom bounds are inclusive whole days: From snaps to start of day, To to end of day.
type DateRange struct {
	Preset string
	From   time.Time
	To     time.Time
}

// ParseDateRange builds a range from textual input (preset name plus optional yyyy-mm-dd
// bounds). Unknown presets fall back to All; unparseable bounds are treated as missing.
func ParseDateRange(preset, from, to string, loc *time.Location) DateRange {
	r := DateRange{Preset: strings.ToLower(strings.TrimSpace(preset))}
	if loc == nil {
		loc = time.UTC
	}
	if parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(from), loc); err == nil {
		r.From = parsed
	}
	if parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(to), loc); err == nil {
		r.To = parsed
	}
	return r.normalized()
}

func (r DateRange) normalized() DateRange {
	switch r.Preset {
	case PresetToday, PresetWeek, PresetMonth, PresetYear:
		return DateRange{Preset: r.Preset}
	case PresetCustom:
		return r
	default:
		return DateRange{Preset: All}
	}
}

// Contains reports whether t falls inside the range evaluated at now.
func (r DateRange) Contains(t, now time.Time) bool {
	t = t.In(now.Location())
	switch r.Preset {
	case All, "":
		return true
	case PresetToday:
		start := startOfDay(now)
		return !t.Before(start) && t.Before(start.AddDate(0, 0, 1))
	case PresetWeek:
		start := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		return !t.Before(start) && t.Before(start.AddDate(0, 0, 7))
	case PresetMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	case PresetYear:
		return t.Year() == now.Year()
	case PresetCustom:
		if r.From.IsZero() || r.To.IsZero() {
			return true
		}
		from := startOfDay(onDay(r.From, now.Location()))
		to := endOfDay(onDay(r.To, now.Location()))
		return !t.Before(from) && !t.After(to)
	default:
		return true
	}
}

// WithinDates filters on a date field. Items whose date is missing or unparseable are
// excluded from every range except All.
type WithinDates[T any] struct {
	Key   string
	Field func(T) string
}

func (f WithinDates[T]) Name() string { return f.Key }

func (f WithinDates[T]) Bind(c Criteria, now time.Time) Predicate[T] {
	r := c.Range(f.Key)
	if r.Preset == All || f.Field == nil {
		return nil
	}
	return func(item T) bool {
		at, ok := ParseTimestamp(f.Field(item), now.Location())
		if !ok {
			return false
		}
		return r.Contains(at, now)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParseTimestamp accepts the timestamp formats the backend emits. Timestamps without a zone
// are read in loc (UTC when nil). ok is false for empty or unparseable input.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// onDay keeps the calendar day of a custom bound and moves it into loc.
func onDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
