package domain

import (
	"maps"
	"strings"
)

// All is the sentinel value meaning "no constraint" for categorical and date-range filters.
const All = "all"

// Criteria is the active set of filter values for one list screen, keyed by filter name.
// The zero value has every filter at its default. Criteria values are immutable: the With*
// methods return modified copies so a View computed from an older value is never disturbed.
type Criteria struct {
	values map[string]string
	ranges map[string]DateRange
}

// NewCriteria returns criteria with every filter at its default.
func NewCriteria() Criteria {
	return Criteria{}
}

// Value returns the text or categorical value for name, or "" when unset.
func (c Criteria) Value(name string) string {
	return c.values[criterionKey(name)]
}

// Range returns the date range for name. Unset ranges report the All preset.
func (c Criteria) Range(name string) DateRange {
	if r, ok := c.ranges[criterionKey(name)]; ok {
		return r
	}
	return DateRange{Preset: All}
}

// With sets a text or categorical value. An empty value restores the default.
func (c Criteria) With(name, value string) Criteria {
	key := criterionKey(name)
	if key == "" {
		return c
	}
	next := c.clone()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(next.values, key)
		return next
	}
	next.values[key] = value
	return next
}

// WithRange sets a date range. Choosing a preset other than custom drops any custom bounds.
func (c Criteria) WithRange(name string, r DateRange) Criteria {
	key := criterionKey(name)
	if key == "" {
		return c
	}
	next := c.clone()
	r = r.normalized()
	if r.Preset == All {
		delete(next.ranges, key)
		return next
	}
	next.ranges[key] = r
	return next
}

// Clear resets every filter to its default.
func (c Criteria) Clear() Criteria {
	return Criteria{}
}

// IsZero reports whether every filter is at its default.
func (c Criteria) IsZero() bool {
	return len(c.values) == 0 && len(c.ranges) == 0
}

// Snapshot renders the criteria as flat metadata, e.g. for websocket messages.
func (c Criteria) Snapshot() map[string]string {
	out := make(map[string]string, len(c.values)+len(c.ranges)*3)
	maps.Copy(out, c.values)
	for name, r := range c.ranges {
		out[name] = r.Preset
		if r.Preset == PresetCustom {
			if !r.From.IsZero() {
				out[name+"From"] = r.From.Format(dateLayout)
			}
			if !r.To.IsZero() {
				out[name+"To"] = r.To.Format(dateLayout)
			}
		}
	}
	return out
}

func (c Criteria) clone() Criteria {
	next := Criteria{
		values: make(map[string]string, len(c.values)+1),
		ranges: make(map[string]DateRange, len(c.ranges)+1),
	}
	maps.Copy(next.values, c.values)
	maps.Copy(next.ranges, c.ranges)
	return next
}

func criterionKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
