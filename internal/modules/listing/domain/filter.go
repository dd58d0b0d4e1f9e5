package domain

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Predicate reports whether an item survives a filter.
type Predicate[T any] func(T) bool

// Filter is a named criterion that narrows a collection. Bind returns nil when the filter is
// inactive under the given criteria, so inactive filters cost nothing per item.
type Filter[T any] interface {
	Name() string
	Bind(c Criteria, now time.Time) Predicate[T]
}

// Apply keeps the items that satisfy every active filter. The input slice is never modified.
func Apply[T any](items []T, filters []Filter[T], c Criteria, now time.Time) []T {
	active := make([]Predicate[T], 0, len(filters))
	for _, f := range filters {
		if p := f.Bind(c, now); p != nil {
			active = append(active, p)
		}
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesAll(item, active) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll[T any](item T, predicates []Predicate[T]) bool {
	for _, p := range predicates {
		if !p(item) {
			return false
		}
	}
	return true
}

// TextSearch matches a case-insensitive substring against any of the designated fields.
type TextSearch[T any] struct {
	Key    string
	Fields func(T) []string
}

func (f TextSearch[T]) Name() string { return f.Key }

func (f TextSearch[T]) Bind(c Criteria, _ time.Time) Predicate[T] {
	caser := cases.Fold()
	term := foldWith(caser, c.Value(f.Key))
	if term == "" || f.Fields == nil {
		return nil
	}
	return func(item T) bool {
		for _, field := range f.Fields(item) {
			if field != "" && strings.Contains(foldWith(caser, field), term) {
				return true
			}
		}
		return false
	}
}

// Equals matches a categorical field by case-insensitive equality. The All sentinel or an
// empty value disables it.
type Equals[T any] struct {
	Key   string
	Field func(T) string
}

func (f Equals[T]) Name() string { return f.Key }

func (f Equals[T]) Bind(c Criteria, _ time.Time) Predicate[T] {
	caser := cases.Fold()
	want := foldWith(caser, c.Value(f.Key))
	if want == "" || want == All || f.Field == nil {
		return nil
	}
	return func(item T) bool {
		return foldWith(caser, f.Field(item)) == want
	}
}

// OneOf matches when the item's categorical field equals any comma separated value.
type OneOf[T any] struct {
	Key   string
	Field func(T) string
}

func (f OneOf[T]) Name() string { return f.Key }

func (f OneOf[T]) Bind(c Criteria, _ time.Time) Predicate[T] {
	caser := cases.Fold()
	raw := c.Value(f.Key)
	if raw == "" || foldWith(caser, raw) == All || f.Field == nil {
		return nil
	}
	allowed := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if v := foldWith(caser, part); v != "" {
			allowed = append(allowed, v)
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	return func(item T) bool {
		return slices.Contains(allowed, foldWith(caser, f.Field(item)))
	}
}

// foldWith case-folds s. A Caser keeps state between calls, so each bound predicate owns one
// and is only ever evaluated by the Apply call that bound it.
func foldWith(caser cases.Caser, s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return caser.String(s)
}
