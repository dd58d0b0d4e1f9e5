package domain

import (
	"slices"
	"strings"
)

// SortState is the tri-state sort toggle of a sortable column.
type SortState string

const (
	SortNone SortState = "none"
	SortAsc  SortState = "asc"
	SortDesc SortState = "desc"
)

// Toggle cycles none -> asc -> desc -> none.
func (s SortState) Toggle() SortState {
	switch s {
	case SortAsc:
		return SortDesc
	case SortDesc:
		return SortNone
	default:
		return SortAsc
	}
}

// ParseSortState accepts asc/ascending and desc/descending in any case; anything else is none.
func ParseSortState(raw string) SortState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	default:
		return SortNone
	}
}

// NumericKey extracts the sort key of an item. Missing values should report zero.
type NumericKey[T any] func(T) float64

// SortBy returns a sorted copy of items. SortNone, or a nil key, returns a copy in input order.
func SortBy[T any](items []T, key NumericKey[T], state SortState) []T {
	out := slices.Clone(items)
	if key == nil || (state != SortAsc && state != SortDesc) {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		ka, kb := key(a), key(b)
		if state == SortDesc {
			ka, kb = kb, ka
		}
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
	return out
}
