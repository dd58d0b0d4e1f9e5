package domain

import (
	"cmp"
	"slices"

	"bookshelfWs/internal/shared/normalization"
)

// Category is one entry of the catalog taxonomy a seller picks from.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NormalizeCategories keeps the named categories of records, sorted by name. Duplicate names
// keep their first entry.
func NormalizeCategories(records []map[string]any) []Category {
	seen := make(map[string]struct{}, len(records))
	out := make([]Category, 0, len(records))
	for _, raw := range records {
		name := normalization.AsString(raw["name"])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Category{ID: normalization.AsString(raw["id"]), Name: name})
	}
	slices.SortStableFunc(out, func(a, b Category) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
