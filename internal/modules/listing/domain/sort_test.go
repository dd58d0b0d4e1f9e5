package domain

import (
	"slices"
	"testing"
)

func stockKey(r record) float64 { return r.Stock }

func stocks(items []record) []float64 {
	out := make([]float64, 0, len(items))
	for _, item := range items {
		out = append(out, item.Stock)
	}
	return out
}

func TestSortByStockAscending(t *testing.T) {
	items := []record{{Stock: 5}, {Stock: 0}, {Stock: 12}}
	if got := stocks(SortBy(items, stockKey, SortAsc)); !slices.Equal(got, []float64{0, 5, 12}) {
		t.Fatalf("unexpected order %v", got)
	}
	if got := stocks(SortBy(items, stockKey, SortDesc)); !slices.Equal(got, []float64{12, 5, 0}) {
		t.Fatalf("unexpected order %v", got)
	}
	if got := stocks(items); !slices.Equal(got, []float64{5, 0, 12}) {
		t.Fatalf("SortBy mutated its input: %v", got)
	}
}

func TestToggleCyclesBackToNone(t *testing.T) {
	state := SortNone
	seen := []SortState{}
	for range 3 {
		state = state.Toggle()
		seen = append(seen, state)
	}
	if !slices.Equal(seen, []SortState{SortAsc, SortDesc, SortNone}) {
		t.Fatalf("unexpected cycle %v", seen)
	}

	items := []record{{Name: "x", Stock: 5}, {Name: "y", Stock: 0}, {Name: "z", Stock: 12}}
	if got := names(SortBy(items, stockKey, state)); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Fatalf("expected original order after full cycle, got %v", got)
	}
}

func TestParseSortState(t *testing.T) {
	cases := map[string]SortState{"ASC": SortAsc, " descending ": SortDesc, "": SortNone, "up": SortNone}
	for input, expected := range cases {
		if got := ParseSortState(input); got != expected {
			t.Fatalf("ParseSortState(%q) expected %q got %q", input, expected, got)
		}
	}
}
