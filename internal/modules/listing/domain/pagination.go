package domain

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a derived collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// TotalPages returns max(1, ceil(count/size)).
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage bounds page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate slices items into the requested page. The page is clamped into range, so
// len(result.Items) never exceeds size.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(items), size)
	page = ClampPage(page, total)
	start := (page - 1) * size
	end := min(start+size, len(items))
	if start > end {
		start = end
	}
	return Page[T]{
		Items:      items[start:end:end],
		Page:       page,
		PageSize:   size,
		TotalPages: total,
		Total:      len(items),
	}
}

// PagedQuery carries list preferences received over HTTP or websocket commands.
type PagedQuery struct {
	Page    int
	Limit   int
	Search  string
	Sort    SortState
	Range   string
	From    string
	To      string
	Filters map[string]string
}

// Reserved query keys; every other non-empty key is a categorical filter.
var reservedQueryKeys = map[string]struct{}{
	"page": {}, "limit": {}, "q": {}, "search": {}, "sort": {},
	"range": {}, "from": {}, "to": {}, "token": {}, "confirm": {}, "reload": {},
}

// QueryFromValues reads a PagedQuery from URL query parameters.
func QueryFromValues(values url.Values) PagedQuery {
	query := PagedQuery{
		Search: firstNonEmpty(values.Get("q"), values.Get("search")),
		Sort:   ParseSortState(values.Get("sort")),
		Range:  values.Get("range"),
		From:   values.Get("from"),
		To:     values.Get("to"),
	}
	query.Page, _ = strconv.Atoi(strings.TrimSpace(values.Get("page")))
	query.Limit, _ = strconv.Atoi(strings.TrimSpace(values.Get("limit")))
	for key := range values {
		if _, reserved := reservedQueryKeys[strings.ToLower(key)]; reserved {
			continue
		}
		if query.Filters == nil {
			query.Filters = make(map[string]string)
		}
		query.Filters[key] = values.Get(key)
	}
	return query
}

// Normalize returns a sanitized copy: page >= 1, limit in [1, MaxPageSize] (defaultLimit when unset),
// trimmed search, lower-cased filter keys with empty entries dropped.
func (q PagedQuery) Normalize(defaultLimit int) PagedQuery {
	normalized := q
	if normalized.Page <= 0 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultLimit
	}
	if normalized.Limit <= 0 {
		normalized.Limit = DefaultPageSize
	}
	if normalized.Limit > MaxPageSize {
		normalized.Limit = MaxPageSize
	}
	normalized.Search = strings.TrimSpace(normalized.Search)
	if normalized.Sort == "" {
		normalized.Sort = SortNone
	}
	normalized.Range = strings.ToLower(strings.TrimSpace(normalized.Range))
	normalized.Filters = sanitizeFilters(normalized.Filters)
	return normalized
}

// Criteria converts the query into criteria for a screen whose text filter is searchKey and
// whose date filter is rangeKey (either may be empty when the screen has none).
func (q PagedQuery) Criteria(searchKey, rangeKey string) Criteria {
	c := NewCriteria()
	if searchKey != "" {
		c = c.With(searchKey, q.Search)
	}
	for key, value := range q.Filters {
		c = c.With(key, value)
	}
	if rangeKey != "" && q.Range != "" {
		c = c.WithRange(rangeKey, ParseDateRange(q.Range, q.From, q.To, nil))
	}
	return c
}

func sanitizeFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	sanitized := make(map[string]string, len(filters))
	for key, value := range filters {
		trimmedKey := strings.ToLower(strings.TrimSpace(key))
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}
		sanitized[trimmedKey] = trimmedValue
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
